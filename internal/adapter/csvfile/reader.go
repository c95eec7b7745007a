// Package csvfile reads USGS feed CSV files from disk.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/felt-quakes/internal/domain"
)

// ErrNoHeader is returned for an empty file.
var ErrNoHeader = errors.New("csv has no header row")

// Reader loads raw records from a CSV file.
// It implements catalog.Source.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a Reader for the file at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Records reads every row of the file and returns all rows after the header.
func (r *Reader) Records(ctx context.Context) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.path, err)
	}

	r.logger.Debug("csv loaded", "path", r.path, "records", len(records))
	return records, nil
}

// Decode parses CSV content and drops the header row. Rows may have
// differing column counts; short rows read missing columns as empty.
func Decode(src io.Reader) ([]domain.RawRecord, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var records []domain.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		records = append(records, domain.RawRecord(row))
	}
	return records, nil
}
