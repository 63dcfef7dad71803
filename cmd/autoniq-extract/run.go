package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nhle/autoniq-extractor/internal/batch"
	"github.com/nhle/autoniq-extractor/internal/sync"
	"github.com/nhle/autoniq-extractor/internal/theme"
	"github.com/nhle/autoniq-extractor/internal/watermark"
)

func runCmd() *cobra.Command {
	var flags imapFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process new notifications once and update the reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			if err := a.applyIMAPFlags(flags); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, closeStore, err := a.newPoller()
			if err != nil {
				return err
			}
			defer closeStore()

			p.OnResult = func(res batch.Result) { a.printResult(cmd.OutOrStdout(), res) }
			_, err = p.RunOnce(ctx)
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func watchCmd() *cobra.Command {
	var flags imapFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Process new notifications periodically until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			if err := a.applyIMAPFlags(flags); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, closeStore, err := a.newPoller()
			if err != nil {
				return err
			}
			defer closeStore()

			p.OnResult = func(res batch.Result) { a.printResult(cmd.OutOrStdout(), res) }
			return p.Start(ctx)
		},
	}
	flags.register(cmd)
	return cmd
}

// newPoller wires the IMAP source, reports, archive and watermark file.
// The returned func closes the archive.
func (a *app) newPoller() (*sync.Poller, func(), error) {
	start, err := a.cfg.IMAP.StartTime()
	if err != nil {
		return nil, nil, err
	}

	st, err := a.openStore()
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if st == nil {
			return
		}
		if err := st.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing archive")
		}
	}

	runner, err := a.newRunner(a.newIMAPSource(), st)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	p := sync.New(
		runner,
		watermark.NewFileStore(a.cfg.Watermark.Path),
		start,
		a.cfg.Poll.Interval(),
		a.cfg.IMAP.Timeout(),
		a.log.With().Str("component", "poller").Logger(),
	)
	return p, closeStore, nil
}

// printResult echoes every found car and the batch totals to w.
func (a *app) printResult(w io.Writer, res batch.Result) {
	for _, l := range res.Listings {
		fmt.Fprintln(w, theme.RenderListing(l))
	}
	for _, r := range res.Rejections {
		fmt.Fprintln(w, theme.RenderRejection(r))
	}
	fmt.Fprintln(w, theme.RenderSummary(res.Found, res.Parsed(), len(res.Rejections), a.cfg.IMAP.From))
}
