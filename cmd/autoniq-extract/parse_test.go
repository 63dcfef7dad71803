package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/autoniq-extractor/internal/model"
)

const soldEML = "From: Autoniq <alerts@autoniq.com>\r\n" +
	"To: buyer@example.com\r\n" +
	"Subject: Watch list update\r\n" +
	"Message-ID: <sold-1@autoniq.com>\r\n" +
	"Date: Tue, 14 Mar 2023 09:30:00 +0000\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<html><body>\r\n" +
	"<div style=\"font-weight:bold\">Vehicle Sold</div>\r\n" +
	"<table>\r\n" +
	"<tr><td style=\"font-weight:bold\">Vehicle:</td>" +
	"<td><a href=\"https://autoniq.com/v/9\">2019 Toyota Camry SE</a></td></tr>\r\n" +
	"<tr><td style=\"font-weight:bold\">VIN:</td><td>4T1B11HK5KU123456</td></tr>\r\n" +
	"<tr><td style=\"font-weight:bold\">Mileage:</td><td>45210</td></tr>\r\n" +
	"<tr><td style=\"font-weight:bold\">Color:</td><td>Celestial Silver</td></tr>\r\n" +
	"</table>\r\n" +
	"</body></html>\r\n"

const noMileageEML = "From: Autoniq <alerts@autoniq.com>\r\n" +
	"Subject: Watch list update\r\n" +
	"Message-ID: <bought-2@autoniq.com>\r\n" +
	"Date: Tue, 14 Mar 2023 10:00:00 +0000\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<html><body>\r\n" +
	"<div style=\"font-weight:bold\">Vehicle Bought</div>\r\n" +
	"<table>\r\n" +
	"<tr><td style=\"font-weight:bold\">VIN:</td><td>1HGCV1F34JA000001</td></tr>\r\n" +
	"</table>\r\n" +
	"</body></html>\r\n"

// setupParse points the command at a fresh config whose reports land in
// the returned directory.
func setupParse(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	reports := filepath.Join(dir, "reports")
	require.NoError(t, os.MkdirAll(reports, 0o755))

	cfg := "reports:\n  dir: " + reports + "\nlog:\n  level: error\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	cfgFile, logLevel = path, "error"
	t.Cleanup(func() { cfgFile, logLevel = "", "" })
	return reports
}

func writeEML(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func runParse(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := parseCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestParseCommandJSON(t *testing.T) {
	reports := setupParse(t)
	sold := writeEML(t, "sold.eml", soldEML)
	broken := writeEML(t, "nomileage.eml", noMileageEML)

	out := runParse(t, "--json", sold, broken)

	var got struct {
		Listings   []model.Listing   `json:"listings"`
		Rejections []model.Rejection `json:"rejections"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	require.Len(t, got.Listings, 1)
	l := got.Listings[0]
	assert.Equal(t, "4T1B11HK5KU123456", l.VIN)
	assert.Equal(t, 45210.0, l.Mileage)
	assert.Equal(t, "Celestial Silver", l.Color)
	assert.Equal(t, "2019", l.Year)
	assert.Equal(t, "Toyota", l.Make)
	assert.Equal(t, "Camry SE", l.Model)
	assert.Equal(t, "https://autoniq.com/v/9", l.SourceLink)
	assert.Equal(t, model.LifecycleSold, l.Lifecycle)

	require.Len(t, got.Rejections, 1)
	assert.Equal(t, model.RejectionStructural, got.Rejections[0].Kind)

	entries, err := os.ReadDir(reports)
	require.NoError(t, err)
	assert.Empty(t, entries, "reports are only written with --write")
}

func TestParseCommandWrite(t *testing.T) {
	reports := setupParse(t)
	sold := writeEML(t, "sold.eml", soldEML)

	out := runParse(t, "--write", sold)
	assert.Contains(t, out, "4T1B11HK5KU123456")

	data, err := os.ReadFile(filepath.Join(reports, "cars.sold.csv"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "4T1B11HK5KU123456"))

	bought, err := os.ReadFile(filepath.Join(reports, "cars.bought.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(bought), "\n"), "header only")
}

func TestParseCommandMissingFile(t *testing.T) {
	setupParse(t)

	cmd := parseCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.eml")})
	assert.Error(t, cmd.Execute())
}
