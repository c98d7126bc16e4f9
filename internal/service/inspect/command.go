package inspect

import (
	"context"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/logger"
	"github.com/oshokin/slipsense/internal/raster"
	rasterrepo "github.com/oshokin/slipsense/internal/repository/raster"
)

// maxCategories is the largest number of distinct integer values for which
// a layer is treated as categorical.
const maxCategories = 16

// Options contains inputs for the inspect entry point.
type Options struct {
	// Paths lists the raster files to summarize.
	Paths []string
	// Out receives the rendered summaries.
	Out io.Writer
}

// Summary describes one raster.
type Summary struct {
	Name      string
	Rows      int
	Cols      int
	CRS       string
	Transform raster.Transform
	NoData    *float64
	// Valid counts cells holding data.
	Valid   int
	Min     float64
	Max     float64
	Mean    float64
	NonZero int
	// Categories maps each integer value to its cell count. It is nil for
	// continuous layers.
	Categories map[int]int
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Faint(true)
)

// Run summarizes every file and writes the result to opts.Out.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "inspect")
	store := rasterrepo.NewFileStore()

	for _, path := range opts.Paths {
		g, err := store.Read(ctx, path)
		if err != nil {
			return err
		}

		summary := Summarize(g)
		logger.DebugKV(ctx, "Raster summarized", "path", path, "valid", summary.Valid)

		if _, err = io.WriteString(opts.Out, Render(summary)); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	return nil
}

// Summarize computes the statistics of a grid, skipping no-data cells.
func Summarize(g *raster.Grid) *Summary {
	rows, cols := g.Dims()
	s := &Summary{
		Name:      g.Name,
		Rows:      rows,
		Cols:      cols,
		CRS:       g.CRS,
		Transform: g.Transform,
	}

	if g.HasNoData {
		noData := g.NoData
		s.NoData = &noData
	}

	values := g.Values()
	categories := make(map[int]int)
	categorical := true

	for _, v := range values {
		if v != 0 {
			s.NonZero++
		}

		if !categorical {
			continue
		}

		if v != math.Trunc(v) || (len(categories) == maxCategories && categories[int(v)] == 0) {
			categorical = false

			continue
		}

		categories[int(v)]++
	}

	s.Valid = len(values)
	if s.Valid == 0 {
		return s
	}

	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	s.Mean = stat.Mean(values, nil)

	if categorical {
		s.Categories = categories
	}

	return s
}

// Render formats a summary for the terminal.
func Render(s *Summary) string {
	var b strings.Builder

	line := func(label, format string, args ...any) {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label)), fmt.Sprintf(format, args...))
	}

	b.WriteString(headingStyle.Render(s.Name))
	b.WriteString("\n")

	line("size", "%d x %d", s.Rows, s.Cols)

	crs := s.CRS
	if crs == "" {
		crs = "(none)"
	}

	line("crs", "%s", crs)
	line("transform", "%g %g %g / %g %g %g",
		s.Transform.A, s.Transform.B, s.Transform.C, s.Transform.D, s.Transform.E, s.Transform.F)

	if s.NoData != nil {
		line("nodata", "%g", *s.NoData)
	}

	total := s.Rows * s.Cols
	line("valid", "%d of %d", s.Valid, total)

	if s.Valid == 0 {
		return b.String()
	}

	line("range", "%g .. %g (mean %.4g)", s.Min, s.Max, s.Mean)
	line("non-zero", "%d (%.2f%%)", s.NonZero, 100*float64(s.NonZero)/float64(s.Valid))

	for _, value := range slices.Sorted(maps.Keys(s.Categories)) {
		label := fmt.Sprintf("= %d", value)
		if zone := hazard.Zone(value); value >= 0 && zone.Valid() {
			label += " " + zone.String()
		}

		line(label, "%d", s.Categories[value])
	}

	return b.String()
}
