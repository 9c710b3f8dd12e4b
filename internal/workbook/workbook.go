// Package workbook reads chart definitions from .xlsx workbooks.
//
// Each sheet holds at most one chart. Cell A1 carries the marker classes
// (for example "ga-pie ga-l ga-legend"); the rows below supply the data:
// column A the label or x value, column B the y value and column C the
// optional bubble weight. Rows whose B cell is not a number, such as a
// header row, are skipped. Data from the sheet replaces any ga-xs/ys/zs
// tokens in A1.
package workbook

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/seenimoa/graphawesome/internal/markup"
	"github.com/seenimoa/graphawesome/pkg/models"
)

// Chart is the spec read from one sheet.
type Chart struct {
	Sheet string           `json:"sheet"`
	Spec  models.ChartSpec `json:"spec"`
}

// SheetError reports a sheet whose chart could not be read.
type SheetError struct {
	Sheet string
	Err   error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %q: %v", e.Sheet, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// Open reads every chart of the workbook at path.
func Open(path string, parser markup.Parser) ([]Chart, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return Read(f, parser)
}

// Read returns the charts of f in sheet order. Sheets without a marker in A1
// are skipped. Sheets that fail are reported together, after the charts
// that could be read.
func Read(f *excelize.File, parser markup.Parser) ([]Chart, error) {
	var (
		charts []Chart
		errs   []error
	)
	for _, sheet := range f.GetSheetList() {
		c, ok, err := readSheet(f, sheet, parser)
		if err != nil {
			errs = append(errs, &SheetError{Sheet: sheet, Err: err})
			continue
		}
		if ok {
			charts = append(charts, c)
		}
	}
	return charts, errors.Join(errs...)
}

func readSheet(f *excelize.File, sheet string, parser markup.Parser) (Chart, bool, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Chart{}, false, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Chart{}, false, nil
	}
	classes := strings.Fields(rows[0][0])
	if !markup.HasMarker(classes) {
		return Chart{}, false, nil
	}

	spec, err := parser.Resolve(classes)
	if err != nil {
		return Chart{}, false, err
	}

	var (
		xs     []string
		ys, zs []float64
		hasZ   bool
	)
	for _, row := range rows[1:] {
		y, ok := numberAt(row, 1)
		if !ok {
			continue
		}
		xs = append(xs, cellAt(row, 0))
		ys = append(ys, y)
		z, zok := numberAt(row, 2)
		hasZ = hasZ || zok
		zs = append(zs, z)
	}

	spec.Xs, spec.Ys, spec.Zs = xs, ys, nil
	if hasZ {
		spec.Zs = zs
	}
	if err := spec.Validate(); err != nil {
		return Chart{}, false, err
	}
	return Chart{Sheet: sheet, Spec: spec}, true, nil
}

func cellAt(row []string, col int) string {
	if col < len(row) {
		return strings.TrimSpace(row[col])
	}
	return ""
}

func numberAt(row []string, col int) (float64, bool) {
	s := cellAt(row, col)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
