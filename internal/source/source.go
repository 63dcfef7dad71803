package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/autoniq-extractor/internal/extract"
)

// AuthError indicates that authentication with the mail server failed.
type AuthError struct {
	SourceType SourceType
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.SourceType, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// SourceType identifies the kind of message source.
type SourceType string

const (
	SourceTypeIMAP SourceType = "imap"
	SourceTypeFile SourceType = "file"
)

// Query selects which notifications to fetch.
type Query struct {
	// Since is the watermark. Mail servers compare dates only, so
	// messages from the watermark's day are returned again.
	Since time.Time

	// From restricts results to one sender. Empty means any sender.
	From string
}

// Source delivers notification messages to the extraction pipeline.
type Source interface {
	// Type returns the source type identifier.
	Type() SourceType

	// ValidateConnection verifies credentials and connectivity.
	// Returns a human-readable status message on success.
	ValidateConnection(ctx context.Context) (string, error)

	// FetchMessages returns the messages matching q in server order.
	FetchMessages(ctx context.Context, q Query) ([]extract.Message, error)
}
