// Package credential keeps the IMAP password in the system keyring.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "autoniq-extractor"

// ErrNotFound is returned when no password is stored for a username.
var ErrNotFound = keyring.ErrKeyNotFound

// IsNotFound reports whether err means nothing is stored under the key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Store reads and writes IMAP passwords, keyed by username.
type Store struct {
	ring keyring.Keyring
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Open opens the first keyring backend available on this system.
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/autoniq-extractor/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("autoniq-extractor-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewStore(ring), nil
}

func imapKey(username string) string {
	return "imap:" + username
}

// IMAPPassword returns the password saved for username.
func (s *Store) IMAPPassword(username string) (string, error) {
	item, err := s.ring.Get(imapKey(username))
	if err != nil {
		return "", fmt.Errorf("getting password for %s: %w", username, err)
	}
	if len(item.Data) == 0 {
		return "", fmt.Errorf("getting password for %s: %w", username, ErrNotFound)
	}
	return string(item.Data), nil
}

// SetIMAPPassword saves password for username, replacing any previous one.
func (s *Store) SetIMAPPassword(username, password string) error {
	if username == "" {
		return errors.New("saving password: empty username")
	}

	err := s.ring.Set(keyring.Item{
		Key:         imapKey(username),
		Data:        []byte(password),
		Label:       "Autoniq extractor IMAP password",
		Description: username,
	})
	if err != nil {
		return fmt.Errorf("saving password for %s: %w", username, err)
	}
	return nil
}

// DeleteIMAPPassword forgets the password for username. Deleting a
// password that was never saved is not an error.
func (s *Store) DeleteIMAPPassword(username string) error {
	err := s.ring.Remove(imapKey(username))
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("deleting password for %s: %w", username, err)
	}
	return nil
}
