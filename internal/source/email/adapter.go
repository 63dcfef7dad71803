package email

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/nhle/autoniq-extractor/internal/extract"
	"github.com/nhle/autoniq-extractor/internal/source"
)

// Adapter implements source.Source for an IMAP mailbox.
type Adapter struct {
	imapClient *IMAPClient
	mailbox    string
	username   string
}

// NewAdapter creates a new IMAP source adapter reading from mailbox.
func NewAdapter(
	imapHost, imapPort string,
	username, password string,
	useTLS bool,
	mailbox string,
	log zerolog.Logger,
) *Adapter {
	return &Adapter{
		imapClient: NewIMAPClient(
			imapHost, imapPort, username, password, useTLS, log,
		),
		mailbox:  mailbox,
		username: username,
	}
}

// Type returns the source type identifier.
func (a *Adapter) Type() source.SourceType {
	return source.SourceTypeIMAP
}

// ValidateConnection verifies IMAP credentials by connecting,
// authenticating, and selecting the mailbox.
func (a *Adapter) ValidateConnection(
	ctx context.Context,
) (string, error) {
	count, err := a.imapClient.SelectMailbox(ctx, a.mailbox)
	if err != nil {
		return "", fmt.Errorf("validating email connection: %w", err)
	}

	return fmt.Sprintf(
		"%s: %s holds %d messages", a.username, a.mailbox, count,
	), nil
}

// FetchMessages retrieves the notifications matching q.
func (a *Adapter) FetchMessages(
	ctx context.Context,
	q source.Query,
) ([]extract.Message, error) {
	parsed, err := a.imapClient.FetchMessages(ctx, a.mailbox, q.Since, q.From)
	if err != nil {
		return nil, fmt.Errorf("fetching email messages: %w", err)
	}

	messages := make([]extract.Message, 0, len(parsed))
	for _, p := range parsed {
		messages = append(messages, toMessage(p))
	}

	return messages, nil
}

// FileSource implements source.Source over RFC 5322 files on disk, such
// as messages saved from a mail client. The query is ignored.
type FileSource struct {
	paths []string
}

// NewFileSource creates a source reading the given .eml files.
func NewFileSource(paths ...string) *FileSource {
	return &FileSource{paths: paths}
}

// Type returns the source type identifier.
func (s *FileSource) Type() source.SourceType {
	return source.SourceTypeFile
}

// ValidateConnection checks that every file is readable.
func (s *FileSource) ValidateConnection(
	_ context.Context,
) (string, error) {
	for _, p := range s.paths {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("checking message file: %w", err)
		}
	}
	return fmt.Sprintf("%d message files", len(s.paths)), nil
}

// FetchMessages reads and parses every file.
func (s *FileSource) FetchMessages(
	ctx context.Context,
	_ source.Query,
) ([]extract.Message, error) {
	messages := make([]extract.Message, 0, len(s.paths))
	for i, p := range s.paths {
		if err := ctx.Err(); err != nil {
			return messages, err
		}

		raw, err := os.ReadFile(p)
		if err != nil {
			return messages, fmt.Errorf("reading message file %s: %w", p, err)
		}

		parsed, err := parseRawMessage(raw)
		if err != nil {
			return messages, fmt.Errorf("parsing message file %s: %w", p, err)
		}
		parsed.Envelope.UID = uint32(i + 1)

		messages = append(messages, toMessage(parsed))
	}
	return messages, nil
}

// toMessage converts a ParsedMessage to the extraction input.
func toMessage(p ParsedMessage) extract.Message {
	return extract.Message{
		UID:       p.Envelope.UID,
		MessageID: p.Envelope.MessageID,
		Subject:   p.Envelope.Subject,
		Date:      p.Envelope.Date,
		TextBody:  p.TextBody,
		HTMLBody:  p.HTMLBody,
	}
}
