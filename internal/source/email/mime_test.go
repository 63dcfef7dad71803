package email

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/autoniq-extractor/internal/source"
)

const multipartMessage = "From: Autoniq <alerts@autoniq.com>\r\n" +
	"To: buyer@example.com\r\n" +
	"Subject: Vehicle Sold\r\n" +
	"Date: Sat, 09 Mar 2024 14:00:00 +0000\r\n" +
	"Message-Id: <abc123@autoniq.com>\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=\"b1\"\r\n" +
	"\r\n" +
	"--b1\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Vehicle: 2019 Toyota Camry\r\n" +
	"--b1\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"Content-Transfer-Encoding: quoted-printable\r\n" +
	"\r\n" +
	"<div style=3D\"x\">Sold!</div>\r\n" +
	"--b1--\r\n"

const singlePartHTML = "From: alerts@autoniq.com\r\n" +
	"Subject: Back in stock\r\n" +
	"Content-Type: text/html; charset=iso-8859-1\r\n" +
	"\r\n" +
	"<p>Caf\xe9</p>\r\n"

func TestParseMIMEBodyMultipart(t *testing.T) {
	text, html := parseMIMEBody([]byte(multipartMessage))

	assert.Equal(t, "Vehicle: 2019 Toyota Camry", strings.TrimSpace(text))
	assert.Equal(t, `<div style="x">Sold!</div>`, strings.TrimSpace(html))
}

func TestParseMIMEBodySinglePartCharset(t *testing.T) {
	text, html := parseMIMEBody([]byte(singlePartHTML))

	assert.Empty(t, text)
	assert.Equal(t, "<p>Café</p>", strings.TrimSpace(html))
}

func TestParseRawMessageEnvelope(t *testing.T) {
	parsed, err := parseRawMessage([]byte(multipartMessage))
	require.NoError(t, err)

	assert.Equal(t, "abc123@autoniq.com", parsed.Envelope.MessageID)
	assert.Equal(t, "Vehicle Sold", parsed.Envelope.Subject)
	assert.Equal(t, "alerts@autoniq.com", parsed.Envelope.From)
	assert.True(t, parsed.Envelope.Date.Equal(
		time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC),
	))
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "one.eml")
	second := filepath.Join(dir, "two.eml")
	require.NoError(t, os.WriteFile(first, []byte(multipartMessage), 0o644))
	require.NoError(t, os.WriteFile(second, []byte(singlePartHTML), 0o644))

	src := NewFileSource(first, second)
	assert.Equal(t, source.SourceTypeFile, src.Type())

	status, err := src.ValidateConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2 message files", status)

	messages, err := src.FetchMessages(context.Background(), source.Query{})
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, uint32(1), messages[0].UID)
	assert.True(t, messages[0].IsPlainText())
	assert.Equal(t, uint32(2), messages[1].UID)
	assert.False(t, messages[1].IsPlainText())
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.eml"))

	_, err := src.ValidateConnection(context.Background())
	assert.Error(t, err)

	_, err = src.FetchMessages(context.Background(), source.Query{})
	assert.Error(t, err)
}

func TestSearchCriteria(t *testing.T) {
	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	c := searchCriteria(since, "alerts@autoniq.com")
	assert.Equal(t, since, c.Since)
	require.Len(t, c.Header, 1)
	assert.Equal(t, "From", c.Header[0].Key)
	assert.Equal(t, "alerts@autoniq.com", c.Header[0].Value)

	assert.Empty(t, searchCriteria(since, "").Header)
}
