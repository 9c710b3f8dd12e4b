package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/graphawesome/internal/chart"
	"github.com/seenimoa/graphawesome/internal/document"
	"github.com/seenimoa/graphawesome/internal/feed"
	"github.com/seenimoa/graphawesome/internal/logging"
	"github.com/seenimoa/graphawesome/internal/markup"
	"github.com/seenimoa/graphawesome/internal/scene"
	"github.com/seenimoa/graphawesome/internal/workbook"
	"github.com/seenimoa/graphawesome/pkg/models"
)

// renderEnv is what every rendering command builds from the loaded config.
type renderEnv struct {
	renderer *chart.Renderer
	parser   markup.Parser
	logger   *slog.Logger
}

func newRenderEnv(cmd *cobra.Command) (*renderEnv, error) {
	logger := logging.New(cfg.Logging, cmd.ErrOrStderr())
	r, err := chart.NewFromConfig(cfg.Render, logger)
	if err != nil {
		return nil, err
	}
	return &renderEnv{
		renderer: r,
		parser:   markup.Parser{DefaultSize: cfg.Render.DefaultSize, MarginRatio: cfg.Render.MarginRatio},
		logger:   logger,
	}, nil
}

func (e *renderEnv) pipeline() *document.Pipeline {
	return document.New(e.renderer, e.parser,
		document.WithWorkers(cfg.Render.Workers),
		document.WithLogger(e.logger),
	)
}

// --- Chart Command ---

var chartCmd = &cobra.Command{
	Use:   "chart [classes...]",
	Short: "Render one marker class list",
	Long: `Render one marker class list to SVG, PNG, or a YAML/JSON dump of the
resolved spec and its primitives.

  gawesome chart ga-pie ga-legend ga-xs-a-b-c ga-ys-1-2-3 -o pie.svg
  gawesome chart "ga-line ga-l ga-ys-1-3-2" -f png --scale 2 -o line.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newRenderEnv(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		scale, _ := cmd.Flags().GetFloat64("scale")
		output, _ := cmd.Flags().GetString("output")

		spec, err := env.parser.Parse(strings.Fields(strings.Join(args, " ")))
		if err != nil {
			return err
		}
		res, err := env.renderer.Render(spec)
		if err != nil {
			return err
		}
		if format == "png" {
			if err := scene.CheckCanvas(res.Root(), scale); err != nil {
				return err
			}
		}

		return withOutput(cmd, output, func(w io.Writer) error {
			return writeResult(w, res, format, scene.RasterOptions{Scale: scale, Fonts: env.renderer.Fonts()})
		})
	},
}

func init() {
	chartCmd.Flags().StringP("format", "f", "svg", "output format: svg, png, yaml or json")
	chartCmd.Flags().Float64("scale", 1, "pixels per unit for png output")
	chartCmd.Flags().StringP("output", "o", "-", "output file (- for stdout)")
}

// chartDump is the yaml/json view of a render.
type chartDump struct {
	Spec   models.ChartSpec `json:"spec"             yaml:"spec"`
	Chart  *models.Group    `json:"chart,omitempty"  yaml:"chart,omitempty"`
	Legend *models.Group    `json:"legend,omitempty" yaml:"legend,omitempty"`
}

// writeResult encodes res in the requested format.
func writeResult(w io.Writer, res chart.Result, format string, ropts scene.RasterOptions) error {
	switch format {
	case "svg":
		return scene.WriteSVG(w, res.Root())
	case "png":
		return scene.WritePNG(w, res.Root(), ropts)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(chartDump{Spec: res.Spec, Chart: res.Chart, Legend: res.Legend}); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(chartDump{Spec: res.Spec, Chart: res.Chart, Legend: res.Legend})
	default:
		return fmt.Errorf("unknown format %q (want svg, png, yaml or json)", format)
	}
}

// --- Render Command ---

var renderCmd = &cobra.Command{
	Use:   "render [file.html]",
	Short: "Render every marker of an HTML document",
	Long: `Replace every marker element of an HTML document with an inline SVG chart.
Use - to read stdin. Markers that fail are kept and tagged with data-ga-error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newRenderEnv(cmd)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")

		in := cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		var stats document.Stats
		err = withOutput(cmd, output, func(w io.Writer) error {
			stats, err = env.pipeline().RenderHTML(cmd.Context(), in, "", w)
			return err
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "rendered %d of %d charts (%d failed)\n", stats.Rendered, stats.Found, stats.Failed)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringP("output", "o", "-", "output file (- for stdout)")
}

// --- Xlsx Command ---

var xlsxCmd = &cobra.Command{
	Use:   "xlsx [book.xlsx]",
	Short: "Render one chart per workbook sheet",
	Long: `Render the chart defined on each sheet of an .xlsx workbook.
Cell A1 holds the marker classes; columns A, B and C below it hold the
labels, values and optional bubble weights. Each chart is written to
<out-dir>/<sheet>.<format>.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newRenderEnv(cmd)
		if err != nil {
			return err
		}
		outDir, _ := cmd.Flags().GetString("out-dir")
		format, _ := cmd.Flags().GetString("format")
		scale, _ := cmd.Flags().GetFloat64("scale")
		if format != "svg" && format != "png" {
			return fmt.Errorf("unknown format %q (want svg or png)", format)
		}

		charts, readErr := workbook.Open(args[0], env.parser)
		if len(charts) == 0 && readErr != nil {
			return readErr
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}

		var errs []error
		if readErr != nil {
			errs = append(errs, readErr)
		}
		for _, c := range charts {
			res, err := env.renderer.Render(c.Spec)
			if err != nil {
				errs = append(errs, &workbook.SheetError{Sheet: c.Sheet, Err: err})
				continue
			}
			if format == "png" {
				if err := scene.CheckCanvas(res.Root(), scale); err != nil {
					errs = append(errs, &workbook.SheetError{Sheet: c.Sheet, Err: err})
					continue
				}
			}
			path := filepath.Join(outDir, fileName(c.Sheet)+"."+format)
			err = writeFile(path, func(w io.Writer) error {
				return writeResult(w, res, format, scene.RasterOptions{Scale: scale, Fonts: env.renderer.Fonts()})
			})
			if err != nil {
				errs = append(errs, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", c.Sheet, path)
		}
		return errors.Join(errs...)
	},
}

func init() {
	xlsxCmd.Flags().String("out-dir", ".", "directory for the rendered charts")
	xlsxCmd.Flags().StringP("format", "f", "svg", "output format: svg or png")
	xlsxCmd.Flags().Float64("scale", 1, "pixels per unit for png output")
}

// fileName makes a sheet name safe to use as a file name.
func fileName(sheet string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, sheet)
	if name == "" || name == "." || name == ".." {
		return "sheet"
	}
	return name
}

// --- Feed Command ---

var feedCmd = &cobra.Command{
	Use:   "feed [url...]",
	Short: "Fetch feeds and render the markers in their items",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newRenderEnv(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		fetcher := feed.New(env.pipeline(), cfg.Feed, env.logger)
		results, err := fetcher.FetchAll(cmd.Context(), args)
		if err != nil {
			return err
		}

		return withOutput(cmd, output, func(w io.Writer) error {
			switch format {
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			case "yaml":
				enc := yaml.NewEncoder(w)
				if err := enc.Encode(results); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
		})
	},
}

func init() {
	feedCmd.Flags().StringP("format", "f", "json", "output format: json or yaml")
	feedCmd.Flags().StringP("output", "o", "-", "output file (- for stdout)")
}

// --- Output helpers ---

// withOutput runs write against stdout for "-" and against the named file
// otherwise.
func withOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(cmd.OutOrStdout())
	}
	return writeFile(path, write)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
