package config

import (
	"context"
	"sync"
	"time"

	"github.com/lc/plugkit/internal/log"
)

// Small buffer so a Trigger never blocks while a run is in progress.
const _triggerBufferSize = 1

// Reloader runs LoadAll on a fixed interval and on demand. Runs are
// serialized through a single goroutine.
type Reloader struct {
	loader   *Loader
	interval time.Duration
	onReport func(*Report)

	trigger chan struct{}
	wg      sync.WaitGroup

	mu       sync.Mutex // protects cancelFn
	cancelFn context.CancelFunc
}

// NewReloader creates a Reloader for loader. onReport may be nil. A
// non-positive interval disables periodic runs; Trigger still works.
func NewReloader(loader *Loader, interval time.Duration, onReport func(*Report)) *Reloader {
	return &Reloader{
		loader:   loader,
		interval: interval,
		onReport: onReport,
		trigger:  make(chan struct{}, _triggerBufferSize),
	}
}

// Run starts the background loop. The loop stops when ctx is cancelled or
// Close is called. A Reloader runs at most once; later calls are ignored.
func (r *Reloader) Run(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelFn != nil {
		log.Warn("reloader: already started")
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancelFn = cancel

	r.wg.Add(1)
	go r.runLoop(runCtx)

	log.Info("reloader: started", "interval", r.interval.String())
}

// Trigger requests a run. Requests made while one is already pending are
// coalesced.
func (r *Reloader) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
		log.Debug("reloader: run already pending")
	}
}

// Close stops the loop and waits for an in-flight run to finish.
func (r *Reloader) Close() {
	r.mu.Lock()
	cancel := r.cancelFn
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
	log.Info("reloader: stopped")
}

func (r *Reloader) runLoop(ctx context.Context) {
	defer r.wg.Done()

	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-tick:
			r.run()
		case <-r.trigger:
			r.run()
		case <-ctx.Done():
			return
		}
	}
}

func (r *Reloader) run() {
	report := r.loader.LoadAll()
	if err := report.Err(); err != nil {
		log.Warn("reloader: run finished with failures", "run_id", report.RunID, "failed", len(report.Failed()))
	}
	if r.onReport != nil {
		r.onReport(report)
	}
}
