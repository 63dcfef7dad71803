package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/autoniq-extractor/internal/model"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

var camry = model.Listing{
	VIN:        "4T1B11HK5KU123456",
	Mileage:    45231,
	Color:      "Silver, Metallic",
	Year:       "2019",
	Make:       "Toyota",
	Model:      "Camry XLE",
	SourceLink: "https://autoniq.com/v/1",
	Lifecycle:  model.LifecycleSold,
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	w := NewCSVWriter(t.TempDir())

	require.NoError(t, w.Append(model.LifecycleSold, []model.Listing{camry}))
	require.NoError(t, w.Append(model.LifecycleSold, []model.Listing{camry}))

	rows := readCSV(t, w.Path(model.LifecycleSold))
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, []string{
		"4T1B11HK5KU123456", "45231", "Silver, Metallic",
		"2019", "Toyota", "Camry XLE", "https://autoniq.com/v/1",
	}, rows[1])
	// Re-running with the same input duplicates rows.
	assert.Equal(t, rows[1], rows[2])
}

func TestAppendFractionalMileage(t *testing.T) {
	w := NewCSVWriter(t.TempDir())

	l := camry
	l.Mileage = 1234.5
	require.NoError(t, w.Append(model.LifecycleBought, []model.Listing{l}))

	rows := readCSV(t, w.Path(model.LifecycleBought))
	assert.Equal(t, "1234.5", rows[1][1])
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	plain := camry
	plain.Lifecycle = model.LifecycleUnset

	err := w.WriteAll(map[model.LifecycleType][]model.Listing{
		model.LifecycleSold:  {camry},
		model.LifecycleUnset: {plain},
	})
	require.NoError(t, err)

	for _, name := range []string{
		"cars.bought.csv", "cars.sold.csv", "cars.backinstock.csv", "cars.unclassified.csv",
	} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	assert.Len(t, readCSV(t, w.Path(model.LifecycleBought)), 1)
	assert.Len(t, readCSV(t, w.Path(model.LifecycleSold)), 2)
	assert.Len(t, readCSV(t, w.Path(model.LifecycleUnset)), 2)
}

func TestWriteAllSkipsEmptyUnclassified(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewCSVWriter(dir).WriteAll(nil))

	assert.NoFileExists(t, filepath.Join(dir, "cars.unclassified.csv"))
	assert.FileExists(t, filepath.Join(dir, "cars.sold.csv"))
}

func TestAppendHeaderForEmptyExistingFile(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)
	require.NoError(t, os.WriteFile(w.Path(model.LifecycleSold), nil, 0o644))

	require.NoError(t, w.Append(model.LifecycleSold, []model.Listing{camry}))

	rows := readCSV(t, w.Path(model.LifecycleSold))
	assert.Equal(t, Columns, rows[0])
}
