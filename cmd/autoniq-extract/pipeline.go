package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/autoniq-extractor/internal/batch"
	"github.com/nhle/autoniq-extractor/internal/credential"
	"github.com/nhle/autoniq-extractor/internal/report"
	"github.com/nhle/autoniq-extractor/internal/source"
	"github.com/nhle/autoniq-extractor/internal/source/email"
	"github.com/nhle/autoniq-extractor/internal/store"
)

// imapFlags are the command-line overrides shared by mailbox commands.
type imapFlags struct {
	emailAddress string
	password     string
}

func (f *imapFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.emailAddress, "email-address", "",
		"IMAP username (overrides imap.username)")
	cmd.Flags().StringVar(&f.password, "password", "",
		"IMAP password (overrides config, environment and keyring)")
}

// applyIMAPFlags merges flag overrides into the configuration and makes
// sure a password is available. The lookup order is flag, config or
// environment, keyring, then an interactive prompt.
func (a *app) applyIMAPFlags(f imapFlags) error {
	if f.emailAddress != "" {
		a.cfg.IMAP.Username = f.emailAddress
	}
	if a.cfg.IMAP.Host == "" {
		return errors.New("imap.host is not configured; run `autoniq-extract init` first")
	}
	if a.cfg.IMAP.Username == "" {
		return errors.New("no IMAP username; set imap.username or pass --email-address")
	}

	if f.password != "" {
		a.cfg.IMAP.Password = f.password
		return nil
	}
	if a.cfg.IMAP.Password != "" {
		return nil
	}

	var pw string
	creds, err := credential.Open()
	if err == nil {
		pw, err = creds.IMAPPassword(a.cfg.IMAP.Username)
	}
	switch {
	case err == nil:
		a.log.Debug().Str("username", a.cfg.IMAP.Username).Msg("using keyring password")
		a.cfg.IMAP.Password = pw
		return nil
	case !credential.IsNotFound(err):
		a.log.Warn().Err(err).Msg("reading keyring")
	}

	pw, err = promptPassword(a.cfg.IMAP.Username)
	if err != nil {
		return err
	}
	a.cfg.IMAP.Password = pw
	return nil
}

// promptPassword asks for the IMAP password on the terminal.
func promptPassword(username string) (string, error) {
	var pw string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("IMAP password").
				Description("Password for " + username).
				EchoMode(huh.EchoModePassword).
				Value(&pw).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("password is required")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return pw, nil
}

// newIMAPSource builds the mailbox source from the configuration.
func (a *app) newIMAPSource() source.Source {
	c := a.cfg.IMAP
	return email.NewAdapter(
		c.Host, c.Port, c.Username, c.Password, c.TLS, c.Mailbox,
		a.log.With().Str("component", "imap").Logger(),
	)
}

// openStore opens the archive database, or returns nil when archiving is
// disabled.
func (a *app) openStore() (store.Store, error) {
	if a.cfg.Store.Driver == "" {
		return nil, nil
	}
	s, err := store.Open(a.cfg.Store.Driver, a.cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	return s, nil
}

// newRunner wires a batch runner for src. st may be nil.
func (a *app) newRunner(src source.Source, st store.Store) (*batch.Runner, error) {
	policy, err := batch.ParsePolicy(a.cfg.Reports.Unclassified)
	if err != nil {
		return nil, err
	}

	return batch.NewRunner(
		src,
		report.NewCSVWriter(a.cfg.Reports.Dir),
		a.log.With().Str("component", "batch").Logger(),
		batch.Options{
			From:   a.cfg.IMAP.From,
			Policy: policy,
			Store:  st,
		},
	), nil
}
