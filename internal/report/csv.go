// Package report appends listings to per-lifecycle CSV files.
package report

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nhle/autoniq-extractor/internal/model"
)

// Columns is the fixed CSV column order.
var Columns = []string{"VIN", "Mileage", "Color", "Year", "Make", "Model", "Link"}

// CSVWriter appends listings to cars.<type>.csv files in a directory.
// Rows are never deduplicated: appending the same listings twice yields
// duplicate rows.
type CSVWriter struct {
	dir string
}

// NewCSVWriter returns a writer for dir.
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

// FileName returns the report file name for a lifecycle type.
func FileName(t model.LifecycleType) string {
	return "cars." + t.String() + ".csv"
}

// Path returns the full report path for a lifecycle type.
func (w *CSVWriter) Path(t model.LifecycleType) string {
	return filepath.Join(w.dir, FileName(t))
}

// WriteAll appends every group. The three classified reports are always
// touched, so they exist with a header even when empty; the unclassified
// report only when it has rows.
func (w *CSVWriter) WriteAll(groups map[model.LifecycleType][]model.Listing) error {
	for _, t := range model.LifecycleTypes {
		if err := w.Append(t, groups[t]); err != nil {
			return err
		}
	}
	if rows := groups[model.LifecycleUnset]; len(rows) > 0 {
		if err := w.Append(model.LifecycleUnset, rows); err != nil {
			return err
		}
	}
	return nil
}

// Append writes listings to the report for t. The header is written only
// when the file does not exist yet or is empty.
func (w *CSVWriter) Append(t model.LifecycleType, listings []model.Listing) error {
	path := w.Path(t)

	needHeader := false
	fi, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		needHeader = true
	case err != nil:
		return fmt.Errorf("checking report %s: %w", path, err)
	case fi.Size() == 0:
		needHeader = true
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating report directory %s: %w", w.dir, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening report %s: %w", path, err)
	}
	defer f.Close()

	bufw := bufio.NewWriter(f)
	cw := csv.NewWriter(bufw)

	if needHeader {
		if err := cw.Write(Columns); err != nil {
			return fmt.Errorf("writing header to %s: %w", path, err)
		}
	}

	for _, l := range listings {
		if err := cw.Write(row(l)); err != nil {
			return fmt.Errorf("writing row for %s to %s: %w", l.VIN, path, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing report %s: %w", path, err)
	}
	if err := bufw.Flush(); err != nil {
		return fmt.Errorf("flushing report %s: %w", path, err)
	}

	return f.Close()
}

func row(l model.Listing) []string {
	return []string{
		l.VIN,
		strconv.FormatFloat(l.Mileage, 'f', -1, 64),
		l.Color,
		l.Year,
		l.Make,
		l.Model,
		l.SourceLink,
	}
}
