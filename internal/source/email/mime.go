package email

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// parseMIMEBody parses a raw RFC 2822 message using go-message and
// returns its first text/plain and text/html inline parts, decoded to
// UTF-8. Attachments are skipped.
func parseMIMEBody(raw []byte) (textBody string, htmlBody string) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		// If parsing fails, try treating the whole thing as plain text
		return string(raw), ""
	}
	defer mr.Close()

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := h.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain") && textBody == "":
			textBody = string(body)
		case strings.HasPrefix(contentType, "text/html") && htmlBody == "":
			htmlBody = string(body)
		}
	}

	return textBody, htmlBody
}

// parseRawMessage reads envelope fields from the message header and the
// bodies via parseMIMEBody. It is used for messages that did not come
// through IMAP, where no server envelope is available.
func parseRawMessage(raw []byte) (ParsedMessage, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return ParsedMessage{}, fmt.Errorf("reading message header: %w", err)
	}
	header := mr.Header
	_ = mr.Close()

	var env Envelope
	env.MessageID, _ = header.MessageID()
	env.Subject, _ = header.Subject()
	env.Date, _ = header.Date()
	if from, err := header.AddressList("From"); err == nil && len(from) > 0 {
		env.From = from[0].Address
	}

	parsed := ParsedMessage{Envelope: env}
	parsed.TextBody, parsed.HTMLBody = parseMIMEBody(raw)

	return parsed, nil
}
