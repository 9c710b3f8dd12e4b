// gawesome renders chart markers ("ga-pie ga-ys-1-2-3") to SVG and PNG.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/graphawesome/api"
	"github.com/seenimoa/graphawesome/internal/config"
	"github.com/seenimoa/graphawesome/internal/logging"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gawesome",
	Short: "gawesome renders charts from marker class lists",
	Long: `gawesome turns marker class lists such as
"ga-donut ga-legend ga-xs-north-south ga-ys-10-20" into SVG or PNG charts.
It renders single markers, whole HTML documents, Excel workbooks and
RSS/Atom feeds, and can serve all of it over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(xlsxCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "gawesome %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if p, _ := cmd.Flags().GetInt("port"); p != 0 {
			cfg.API.Port = p
		}
		logger := logging.New(cfg.Logging, os.Stderr)

		api.Version = version
		srv, err := api.NewServer(cfg, logger)
		if err != nil {
			return err
		}
		if noUI, _ := cmd.Flags().GetBool("no-ui"); noUI {
			srv.SetServeUI(false)
		}

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		logger.Info("starting API server", "addr", addr)
		return srv.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (default from config)")
	serveCmd.Flags().Bool("no-ui", false, "do not serve the demo page at /")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration in effect",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		rule := strings.Repeat("═", 39)
		fmt.Fprintln(out, rule)
		fmt.Fprintln(out, "  gawesome: configuration")
		fmt.Fprintln(out, rule)
		fmt.Fprintf(out, "  Version:        %s (%s)\n", version, commit)
		fmt.Fprintf(out, "  Default size:   %dpx, margin %g of width\n", cfg.Render.DefaultSize, cfg.Render.MarginRatio)
		fmt.Fprintf(out, "  Legend:         item %g, padding %g of width\n", cfg.Render.LegendItemRatio, cfg.Render.LegendPaddingRatio)
		fmt.Fprintf(out, "  Text metric:    %s\n", measurerName(cfg.Render))
		fmt.Fprintf(out, "  Workers:        %d\n", cfg.Render.Workers)
		fmt.Fprintf(out, "  API server:     %s:%d (cache %ds)\n", cfg.API.Host, cfg.API.Port, cfg.API.CacheTTL)
		fmt.Fprintf(out, "  Feeds:          %g req/s, timeout %ds\n", cfg.Feed.RequestsPerSec, cfg.Feed.TimeoutSec)
		fmt.Fprintf(out, "  Logging:        %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)
		fmt.Fprintln(out, rule)
		return nil
	},
}

func measurerName(rc config.RenderConfig) string {
	if rc.Measurer != "font" {
		return "fixed character width"
	}
	if rc.FontFile == "" {
		return "font (Go Regular)"
	}
	return "font (" + rc.FontFile + ")"
}
