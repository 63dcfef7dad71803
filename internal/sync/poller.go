// Package sync runs extraction batches and persists the watermark between
// them.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/autoniq-extractor/internal/batch"
	"github.com/nhle/autoniq-extractor/internal/source"
	"github.com/nhle/autoniq-extractor/internal/watermark"
)

// SyncState represents the current state of the poller.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncRunning:
		return "running"
	case SyncError:
		return "error"
	default:
		return "idle"
	}
}

// SyncStatus holds the outcome of the most recent batch.
type SyncStatus struct {
	State     SyncState
	LastSync  time.Time
	Watermark watermark.Watermark
	Parsed    int
	Rejected  int
	Error     error
}

// BatchRunner runs one batch from a watermark. *batch.Runner implements it.
type BatchRunner interface {
	Run(ctx context.Context, wm watermark.Watermark) (batch.Result, watermark.Watermark, error)
}

// WatermarkStore loads and saves the watermark. *watermark.FileStore
// implements it.
type WatermarkStore interface {
	Load(start time.Time) (watermark.Watermark, error)
	Save(w watermark.Watermark) error
}

// defaultInterval applies when the configured interval is not positive.
const defaultInterval = 15 * time.Minute

// Poller runs batches one at a time, either once or on a ticker.
type Poller struct {
	runner   BatchRunner
	marks    WatermarkStore
	start    time.Time
	interval time.Duration
	timeout  time.Duration
	log      zerolog.Logger

	// OnResult, when set, is called after every successful batch.
	OnResult func(batch.Result)

	mu     gosync.Mutex
	status SyncStatus
}

// New creates a Poller. start seeds the watermark when none has been
// saved yet; timeout bounds each batch (zero means no limit).
func New(
	runner BatchRunner,
	marks WatermarkStore,
	start time.Time,
	interval, timeout time.Duration,
	log zerolog.Logger,
) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		runner:   runner,
		marks:    marks,
		start:    start,
		interval: interval,
		timeout:  timeout,
		log:      log,
	}
}

// RunOnce loads the watermark, runs a batch and saves the advanced
// watermark. The watermark is only written when the batch succeeded.
func (p *Poller) RunOnce(ctx context.Context) (batch.Result, error) {
	p.setState(SyncRunning)

	wm, err := p.marks.Load(p.start)
	if err != nil {
		err = fmt.Errorf("loading watermark: %w", err)
		p.fail(err)
		return batch.Result{}, err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	res, next, err := p.runner.Run(ctx, wm)
	if err != nil {
		p.fail(err)
		return res, err
	}

	if err := p.marks.Save(next); err != nil {
		err = fmt.Errorf("saving watermark: %w", err)
		p.fail(err)
		return res, err
	}

	p.mu.Lock()
	p.status = SyncStatus{
		State:     SyncIdle,
		LastSync:  time.Now(),
		Watermark: next,
		Parsed:    res.Parsed(),
		Rejected:  len(res.Rejections),
	}
	p.mu.Unlock()

	if p.OnResult != nil {
		p.OnResult(res)
	}

	return res, nil
}

// Start runs a batch immediately and then once per interval until ctx is
// cancelled. Batch failures are logged and retried on the next tick;
// authentication failures stop the loop since retrying cannot fix them.
func (p *Poller) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info().Dur("interval", p.interval).Msg("watching for notifications")

	for {
		if _, err := p.RunOnce(ctx); err != nil {
			if source.IsAuthError(err) {
				return err
			}
			if ctx.Err() == nil {
				p.log.Error().Err(err).Msg("batch failed, retrying next interval")
			}
		}

		select {
		case <-ctx.Done():
			p.log.Info().Msg("stopping watcher")
			return nil
		case <-ticker.C:
		}
	}
}

// Status returns the outcome of the most recent batch.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) setState(state SyncState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.State = state
}

func (p *Poller) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.State = SyncError
	p.status.Error = err
}
