package postgis

import (
	"context"
	"errors"
	"fmt"

	"github.com/ctessum/geom/encoding/wkb"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/repository/paths"
)

// DefaultTable is used when no table name is configured.
const DefaultTable = "runout_paths"

var (
	// errNoTable is returned when the sink is created without a table name.
	errNoTable = errors.New("table name must be provided")
	// ErrNotGeographic is returned for collections in native map coordinates,
	// which the WGS84 geometry column cannot hold.
	ErrNotGeographic = fmt.Errorf("%w: postgis sink needs WGS84 paths", hazard.ErrConfiguration)
)

// Record is one row of the runout path table.
type Record struct {
	RunID       string `db:"run_id"`
	PathID      int    `db:"path_id"`
	Termination string `db:"termination"`
	SeedRow     int    `db:"seed_row"`
	SeedCol     int    `db:"seed_col"`
	Cells       int    `db:"cells"`

	// Geometry is the line as little-endian WKB.
	Geometry []byte `db:"geometry"`
}

// Sink writes runout paths to PostGIS.
type Sink struct {
	// db is the open connection pool.
	db *sqlx.DB
	// table is the quoted target table name.
	table string
}

// Connect opens a PostgreSQL connection and wraps it in a Sink.
func Connect(ctx context.Context, dsn, table string) (*Sink, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgis: %w", err)
	}

	sink, err := NewSink(db, table)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return sink, nil
}

// NewSink wraps an existing connection.
func NewSink(db *sqlx.DB, table string) (*Sink, error) {
	if table == "" {
		return nil, errNoTable
	}

	return &Sink{db: db, table: pq.QuoteIdentifier(table)}, nil
}

// Close releases the connection pool.
func (s *Sink) Close() error {
	return s.db.Close()
}

// EnsureTable creates the target table when it is missing.
func (s *Sink) EnsureTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createStatement(s.table)); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}

	return nil
}

// Save inserts every feature of the collection under runID in one transaction.
func (s *Sink) Save(ctx context.Context, runID string, fc *paths.FeatureCollection) error {
	records, err := Records(runID, fc)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	//nolint:errcheck // Rollback after Commit is a no-op.
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, insertStatement(s.table))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}

	defer stmt.Close() //nolint:errcheck // Released with the transaction.

	for _, record := range records {
		if _, err = stmt.ExecContext(ctx, record); err != nil {
			return fmt.Errorf("insert path %d: %w", record.PathID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Records flattens a collection into table rows. Only WGS84 collections
// are accepted.
func Records(runID string, fc *paths.FeatureCollection) ([]Record, error) {
	if !fc.Geographic() {
		return nil, ErrNotGeographic
	}

	records := make([]Record, 0, len(fc.Features))

	for _, feature := range fc.Features {
		line, err := feature.Line()
		if err != nil {
			return nil, err
		}

		geometry, err := wkb.Encode(line, wkb.NDR)
		if err != nil {
			return nil, fmt.Errorf("encode path %d geometry: %w", feature.Properties.ID, err)
		}

		records = append(records, Record{
			RunID:       runID,
			PathID:      feature.Properties.ID,
			Termination: feature.Properties.Termination,
			SeedRow:     feature.Properties.SeedRow,
			SeedCol:     feature.Properties.SeedCol,
			Cells:       feature.Properties.Cells,
			Geometry:    geometry,
		})
	}

	return records, nil
}

func createStatement(table string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			run_id      UUID    NOT NULL,
			path_id     INTEGER NOT NULL,
			termination TEXT    NOT NULL,
			seed_row    INTEGER NOT NULL,
			seed_col    INTEGER NOT NULL,
			cells       INTEGER NOT NULL,
			geom        GEOMETRY(LineString, 4326),
			PRIMARY KEY (run_id, path_id)
		)`, table)
}

func insertStatement(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s (run_id, path_id, termination, seed_row, seed_col, cells, geom)
		VALUES (:run_id, :path_id, :termination, :seed_row, :seed_col, :cells,
			ST_GeomFromWKB(:geometry, 4326))`, table)
}
