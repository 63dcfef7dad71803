// Package batch runs one extraction pass: fetch, build, group, report.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/autoniq-extractor/internal/extract"
	"github.com/nhle/autoniq-extractor/internal/model"
	"github.com/nhle/autoniq-extractor/internal/source"
	"github.com/nhle/autoniq-extractor/internal/store"
	"github.com/nhle/autoniq-extractor/internal/watermark"
)

// ReportWriter persists grouped listings. *report.CSVWriter implements it.
type ReportWriter interface {
	WriteAll(groups map[model.LifecycleType][]model.Listing) error
}

// Result is the outcome of one batch.
type Result struct {
	// Found is the number of messages fetched.
	Found int

	// Listings holds every listing built, in message order, after the
	// unclassified policy has been applied.
	Listings []model.Listing

	// Groups holds the listings to report, keyed by lifecycle type.
	// LifecycleUnset collects unclassified listings under PolicySeparate.
	Groups map[model.LifecycleType][]model.Listing

	// Rejections lists the messages that produced no listing.
	Rejections []model.Rejection
}

// Parsed returns the number of listings built.
func (r Result) Parsed() int {
	return len(r.Listings)
}

// Options configures a Runner.
type Options struct {
	// From restricts fetching to one sender.
	From string

	// Policy handles plain-text listings.
	Policy Policy

	// Store archives runs when non-nil.
	Store store.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

// Runner executes batches against a message source.
type Runner struct {
	src     source.Source
	reports ReportWriter
	builder *extract.Builder
	log     zerolog.Logger
	opts    Options
}

// NewRunner creates a Runner reading from src and writing to reports.
func NewRunner(
	src source.Source,
	reports ReportWriter,
	log zerolog.Logger,
	opts Options,
) *Runner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{
		src:     src,
		reports: reports,
		builder: extract.NewBuilder(),
		log:     log,
		opts:    opts,
	}
}

// Run fetches the messages received since wm, writes the reports and
// returns the advanced watermark. On error the watermark is returned
// unchanged so the next run retries the same window.
func (r *Runner) Run(
	ctx context.Context,
	wm watermark.Watermark,
) (Result, watermark.Watermark, error) {
	started := r.opts.Now().UTC()
	run := model.Run{
		StartedAt: started,
		Since:     wm.Time,
		Watermark: wm.Time,
	}
	run.ID = r.beginRun(ctx, run)

	r.log.Info().
		Str("since", wm.String()).
		Str("from", r.opts.From).
		Str("source", string(r.src.Type())).
		Msg("starting batch")

	msgs, err := r.src.FetchMessages(ctx, source.Query{
		Since: wm.Time,
		From:  r.opts.From,
	})
	if err != nil {
		err = fmt.Errorf("fetching messages: %w", err)
		r.finishRun(ctx, run, Result{}, err)
		return Result{}, wm, err
	}

	r.log.Info().
		Int("found", len(msgs)).
		Str("from", r.opts.From).
		Msg("found emails")

	res := r.Process(msgs)

	if err := r.reports.WriteAll(res.Groups); err != nil {
		err = fmt.Errorf("writing reports: %w", err)
		r.finishRun(ctx, run, res, err)
		return res, wm, err
	}

	next := watermark.New(r.opts.Now().UTC())
	run.Watermark = next.Time
	r.finishRun(ctx, run, res, nil)

	r.log.Info().
		Int("found", res.Found).
		Int("parsed", res.Parsed()).
		Int("rejected", len(res.Rejections)).
		Str("watermark", next.String()).
		Msg("batch complete")

	return res, next, nil
}

// Process builds and groups msgs without any I/O.
func (r *Runner) Process(msgs []extract.Message) Result {
	res := Result{
		Found:  len(msgs),
		Groups: make(map[model.LifecycleType][]model.Listing),
	}

	for _, msg := range msgs {
		out, err := r.builder.Inspect(msg)
		if err != nil {
			res.Rejections = append(res.Rejections, r.reject(msg, err))
			continue
		}

		l := out.Listing
		if !out.Described {
			r.log.Debug().
				Uint32("uid", msg.UID).
				Str("vin", l.VIN).
				Msg("vehicle description not recognised")
		}
		if !msg.IsPlainText() && !out.Classified {
			r.log.Debug().
				Uint32("uid", msg.UID).
				Str("vin", l.VIN).
				Str("lifecycle", l.Lifecycle.String()).
				Msg("no headline, using default lifecycle")
		}

		l, keep := r.opts.Policy.apply(l)
		res.Listings = append(res.Listings, l)
		if !keep {
			r.log.Debug().
				Uint32("uid", msg.UID).
				Str("vin", l.VIN).
				Msg("dropping unclassified listing")
			continue
		}
		res.Groups[l.Lifecycle] = append(res.Groups[l.Lifecycle], l)
	}

	return res
}

// reject logs a failed message and converts it into a Rejection.
func (r *Runner) reject(msg extract.Message, err error) model.Rejection {
	rej := model.Rejection{
		MessageID: msg.MessageID,
		UID:       msg.UID,
		Subject:   msg.Subject,
		Kind:      model.RejectionStructural,
		Reason:    err.Error(),
	}

	ev := r.log.Warn()
	if extract.IsNumericConversion(err) {
		rej.Kind = model.RejectionNumeric
		ev = r.log.Error()
	}
	ev.Err(err).
		Uint32("uid", msg.UID).
		Str("message_id", msg.MessageID).
		Str("subject", msg.Subject).
		Msg("skipping message")

	return rej
}

// beginRun archives the start of a run. Archive failures never fail the
// batch.
func (r *Runner) beginRun(ctx context.Context, run model.Run) string {
	if r.opts.Store == nil {
		return ""
	}
	id, err := r.opts.Store.CreateRun(ctx, run)
	if err != nil {
		r.log.Error().Err(err).Msg("archiving run")
		return ""
	}
	return id
}

// finishRun archives the outcome of a run.
func (r *Runner) finishRun(
	ctx context.Context,
	run model.Run,
	res Result,
	runErr error,
) {
	if r.opts.Store == nil || run.ID == "" {
		return
	}

	finished := r.opts.Now().UTC()
	run.FinishedAt = &finished
	run.Found = res.Found
	run.Parsed = res.Parsed()
	run.Rejected = len(res.Rejections)
	if runErr != nil {
		run.Error = runErr.Error()
	}

	// A cancelled batch is still recorded.
	ctx = context.WithoutCancel(ctx)

	if err := r.opts.Store.InsertListings(ctx, run.ID, res.Listings); err != nil {
		r.log.Error().Err(err).Str("run", run.ID).Msg("archiving listings")
	}
	if err := r.opts.Store.InsertRejections(ctx, run.ID, res.Rejections); err != nil {
		r.log.Error().Err(err).Str("run", run.ID).Msg("archiving rejections")
	}
	if err := r.opts.Store.FinishRun(ctx, run); err != nil {
		r.log.Error().Err(err).Str("run", run.ID).Msg("archiving run outcome")
	}
}
