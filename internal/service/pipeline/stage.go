package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/slipsense/internal/config"
	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/flow"
	"github.com/oshokin/slipsense/internal/logger"
	"github.com/oshokin/slipsense/internal/raster"
	"github.com/oshokin/slipsense/internal/repository/paths"
	"github.com/oshokin/slipsense/internal/repository/postgis"
	rasterrepo "github.com/oshokin/slipsense/internal/repository/raster"
	"github.com/oshokin/slipsense/internal/repository/report"
)

const (
	// stagingPrefix names the temporary directory created inside outputs.dir.
	stagingPrefix = ".staging-"
	// backupPrefix names the directory holding replaced outputs during commit.
	backupPrefix = ".previous-"
)

// outputDirPermissions is used when outputs.dir does not exist yet.
const outputDirPermissions = 0o755

// stagedBand is one raster output.
type stagedBand struct {
	name string
	band raster.Band
	opts rasterrepo.WriteOptions
}

// writeOutputs writes every product into a staging directory and moves the
// files into place only once all of them were written.
func writeOutputs(
	ctx context.Context,
	store *rasterrepo.FileStore,
	cfg *config.Config,
	in *inputs,
	res *result,
	rep *hazard.Report,
) error {
	out := cfg.Outputs
	geometry := in.stack.Geometry()

	if err := os.MkdirAll(filepath.Clean(out.Dir), outputDirPermissions); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	staging, err := os.MkdirTemp(out.Dir, stagingPrefix)
	if err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}

	defer func() {
		if removeErr := os.RemoveAll(staging); removeErr != nil {
			logger.WarnKV(ctx, "Failed to remove staging directory", "path", staging, "error", removeErr)
		}
	}()

	categorical := rasterrepo.WriteOptions{Integer: true}

	bands := []stagedBand{
		{out.Hazard, res.hazard, categorical},
		{out.Transit, res.transit, categorical},
		{out.Deposition, res.deposition, categorical},
	}

	if out.FlowDirection != "" {
		noData := float64(flow.NoneCode)
		bands = append(bands, stagedBand{
			name: out.FlowDirection,
			band: res.directions.Encoded(in.encoding),
			opts: rasterrepo.WriteOptions{Integer: true, NoData: &noData},
		})
	}

	for _, b := range bands {
		if err = store.Write(ctx, filepath.Join(staging, b.name), b.band, geometry, b.opts); err != nil {
			return fmt.Errorf("write %s: %w", b.name, err)
		}
	}

	collection, err := paths.NewCollection(res.trace.Paths, res.lines, res.geographic)
	if err != nil {
		return fmt.Errorf("build runout paths: %w", err)
	}

	if err = paths.NewFileRepository(filepath.Join(staging, out.Paths)).Save(ctx, collection); err != nil {
		return err
	}

	if cfg.PostGIS.DSN != "" {
		if err = savePostGIS(ctx, cfg.PostGIS, rep.RunID, collection); err != nil {
			return err
		}
	}

	rep.FinishedAt = time.Now().UTC()
	if err = report.NewFileRepository(filepath.Join(staging, out.Report)).Save(ctx, rep); err != nil {
		return err
	}

	if err = commit(staging, out.Dir, os.Rename); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Outputs written", "dir", out.Dir)

	return nil
}

// savePostGIS mirrors the runout paths into the configured table.
func savePostGIS(ctx context.Context, settings config.PostGIS, runID string, fc *paths.FeatureCollection) error {
	sink, err := postgis.Connect(ctx, settings.DSN, settings.Table)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := sink.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Failed to close PostGIS connection", "error", closeErr)
		}
	}()

	if err = sink.EnsureTable(ctx); err != nil {
		return err
	}

	if err = sink.Save(ctx, runID, fc); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Runout paths stored in PostGIS", "table", settings.Table, "paths", len(fc.Features))

	return nil
}

// commit moves every staged file into dir. Files it would replace are set
// aside first; if any move fails, the files already placed are removed and
// the set-aside ones are restored, so dir keeps the previous outputs.
func commit(staging, dir string, rename func(from, to string) error) (err error) {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return fmt.Errorf("list staged outputs: %w", err)
	}

	backup, err := os.MkdirTemp(dir, backupPrefix)
	if err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	defer os.RemoveAll(backup) //nolint:errcheck // Only holds replaced outputs.

	var placed, replaced []string

	defer func() {
		if err == nil {
			return
		}

		for _, name := range placed {
			_ = os.Remove(filepath.Join(dir, name))
		}

		for _, name := range replaced {
			_ = os.Rename(filepath.Join(backup, name), filepath.Join(dir, name))
		}
	}()

	for _, entry := range entries {
		name := entry.Name()
		target := filepath.Join(dir, name)

		if _, statErr := os.Lstat(target); statErr == nil {
			if err = rename(target, filepath.Join(backup, name)); err != nil {
				return fmt.Errorf("set aside previous %s: %w", name, err)
			}

			replaced = append(replaced, name)
		}

		if err = rename(filepath.Join(staging, name), target); err != nil {
			return fmt.Errorf("move %s into place: %w", name, err)
		}

		placed = append(placed, name)
	}

	return nil
}
