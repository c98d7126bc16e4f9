package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/oshokin/slipsense/internal/domain/hazard"
)

// DefaultFilePermissions is used for the written report.
const DefaultFilePermissions = 0o644

// Repository defines persistence operations for run reports.
type Repository interface {
	Load(ctx context.Context) (*hazard.Report, error)
	Save(ctx context.Context, report *hazard.Report) error
}

// FileRepository persists a report as a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the report file.
	path string
	// mu serializes access to the file.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when the report file does not exist.
	ErrNotFound = errors.New("report not found")
	// errMalformed is returned when a field has the wrong shape.
	errMalformed = errors.New("malformed report")
)

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Save writes the report to disk.
func (r *FileRepository) Save(_ context.Context, report *hazard.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	message, err := toProto(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline:       true,
		EmitUnpopulated: true,
	}

	data, err := marshalOptions.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err = os.WriteFile(r.path, data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}

	return nil
}

// Load reads the report from disk.
func (r *FileRepository) Load(_ context.Context) (*hazard.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read report file: %w", err)
	}

	var message structpb.Struct
	if err = protojson.Unmarshal(contents, &message); err != nil {
		return nil, fmt.Errorf("decode report file: %w", err)
	}

	return fromProto(&message)
}

// toProto converts the domain report into a protobuf Struct.
func toProto(report *hazard.Report) (*structpb.Struct, error) {
	started, err := timestampString(report.StartedAt)
	if err != nil {
		return nil, err
	}

	finished, err := timestampString(report.FinishedAt)
	if err != nil {
		return nil, err
	}

	terminations := make(map[string]any, len(report.Terminations))
	for reason, n := range report.Terminations {
		terminations[reason.String()] = n
	}

	zones := make(map[string]any, len(report.Zones))
	for zone, n := range report.Zones {
		zones[zone.String()] = n
	}

	settings := make(map[string]any, len(report.Settings))
	for k, v := range report.Settings {
		settings[k] = v
	}

	return structpb.NewStruct(map[string]any{
		"run_id":           report.RunID,
		"started_at":       started,
		"finished_at":      finished,
		"rows":             report.Rows,
		"cols":             report.Cols,
		"seeds":            report.Seeds,
		"paths":            report.Paths,
		"discarded":        report.Discarded,
		"terminations":     terminations,
		"zones":            zones,
		"transit_cells":    report.TransitCells,
		"deposition_cells": report.DepositionCells,
		"reprojected":      report.Reprojected,
		"settings":         settings,
	})
}

// fromProto converts a protobuf Struct back into the domain report.
func fromProto(message *structpb.Struct) (*hazard.Report, error) {
	fields := message.GetFields()
	number := func(key string) int {
		return int(fields[key].GetNumberValue())
	}

	started, err := parseTimestamp(fields["started_at"].GetStringValue())
	if err != nil {
		return nil, err
	}

	finished, err := parseTimestamp(fields["finished_at"].GetStringValue())
	if err != nil {
		return nil, err
	}

	report := &hazard.Report{
		RunID:           fields["run_id"].GetStringValue(),
		StartedAt:       started,
		FinishedAt:      finished,
		Rows:            number("rows"),
		Cols:            number("cols"),
		Seeds:           number("seeds"),
		Paths:           number("paths"),
		Discarded:       number("discarded"),
		TransitCells:    number("transit_cells"),
		DepositionCells: number("deposition_cells"),
		Reprojected:     fields["reprojected"].GetBoolValue(),
		Terminations:    make(map[hazard.Termination]int),
		Zones:           make(map[hazard.Zone]int),
		Settings:        make(map[string]float64),
	}

	names := make(map[string]hazard.Termination)
	for _, reason := range hazard.Terminations() {
		names[reason.String()] = reason
	}

	for name, v := range fields["terminations"].GetStructValue().GetFields() {
		reason, ok := names[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown termination %q", errMalformed, name)
		}

		report.Terminations[reason] = int(v.GetNumberValue())
	}

	zones := make(map[string]hazard.Zone)
	for _, zone := range hazard.Zones() {
		zones[zone.String()] = zone
	}

	for name, v := range fields["zones"].GetStructValue().GetFields() {
		zone, ok := zones[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown zone %q", errMalformed, name)
		}

		report.Zones[zone] = int(v.GetNumberValue())
	}

	for k, v := range fields["settings"].GetStructValue().GetFields() {
		report.Settings[k] = v.GetNumberValue()
	}

	return report, nil
}

// timestampString renders t in the canonical protobuf JSON form.
func timestampString(t time.Time) (string, error) {
	if t.IsZero() {
		return "", nil
	}

	data, err := protojson.Marshal(timestamppb.New(t))
	if err != nil {
		return "", fmt.Errorf("encode timestamp: %w", err)
	}

	return strings.Trim(string(data), `"`), nil
}

// parseTimestamp reverses timestampString.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	var ts timestamppb.Timestamp
	if err := protojson.Unmarshal([]byte(`"`+s+`"`), &ts); err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q: %w", errMalformed, s, err)
	}

	return ts.AsTime(), nil
}
