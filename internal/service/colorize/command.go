package colorize

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/logger"
	"github.com/oshokin/slipsense/internal/raster"
	rasterrepo "github.com/oshokin/slipsense/internal/repository/raster"
)

// DefaultFilePermissions is used for written images.
const DefaultFilePermissions = 0o644

// Options contains inputs for the colorize entry point.
type Options struct {
	// HazardPath is the fused hazard grid to render.
	HazardPath string
	// OutputPath is the PNG file to write.
	OutputPath string
	// Scale is the width in pixels of one cell. Zero means one.
	Scale int
}

// errBadScale is returned for negative scales.
var errBadScale = errors.New("scale must not be negative")

// palette maps zone codes to their tile colors.
//
//nolint:gochecknoglobals // Read-only lookup table.
var palette = color.Palette{
	hazard.Safe:       color.RGBA{},
	hazard.Deposition: color.RGBA{R: 255, G: 255, A: 255},
	hazard.Transit:    color.RGBA{R: 255, G: 165, A: 255},
	hazard.Failure:    color.RGBA{R: 255, A: 255},
}

// Run reads the hazard grid and writes its PNG rendering.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "colorize")

	if opts.Scale < 0 {
		return errBadScale
	}

	fused, err := rasterrepo.NewFileStore().Read(ctx, opts.HazardPath)
	if err != nil {
		return err
	}

	img := Render(fused, max(1, opts.Scale))

	f, err := os.OpenFile(filepath.Clean(opts.OutputPath), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}

	if err = png.Encode(f, img); err != nil {
		_ = f.Close()

		return fmt.Errorf("encode image: %w", err)
	}

	if err = f.Close(); err != nil {
		return fmt.Errorf("close image: %w", err)
	}

	logger.InfoKV(ctx, "Hazard map rendered", "path", opts.OutputPath, "width", img.Rect.Dx(), "height", img.Rect.Dy())

	return nil
}

// Render paints every cell as a scale x scale block. Cells without data or
// with a value that is not a zone code stay transparent.
func Render(band raster.Band, scale int) *image.Paletted {
	rows, cols := band.Dims()
	img := image.NewPaletted(image.Rect(0, 0, cols*scale, rows*scale), palette)

	for r := range rows {
		for c := range cols {
			index := uint8(hazard.Safe)

			v := band.Value(r, c)
			if zone := hazard.Zone(v); v >= 0 && float64(zone) == v && zone.Valid() {
				index = uint8(zone)
			}

			if index == uint8(hazard.Safe) {
				continue
			}

			for y := r * scale; y < (r+1)*scale; y++ {
				for x := c * scale; x < (c+1)*scale; x++ {
					img.SetColorIndex(x, y, index)
				}
			}
		}
	}

	return img
}
