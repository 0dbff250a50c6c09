package webhelper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marcus-crane/spotilocal/shared"
)

const DefaultPollInterval = shared.DEFAULT_POLL_INTERVAL_MS * time.Millisecond

type ReactorState int

const (
	ReactorIdle ReactorState = iota
	ReactorRunning
	ReactorStopped
)

func (s ReactorState) String() string {
	switch s {
	case ReactorIdle:
		return "idle"
	case ReactorRunning:
		return "running"
	case ReactorStopped:
		return "stopped"
	}
	return "unknown"
}

// StatusFetcher is satisfied by *Client.
type StatusFetcher interface {
	Status(ctx context.Context) (Status, error)
}

// Handler receives each successful snapshot along with what changed since the
// previous successful one. Returning false stops the reactor.
type Handler func(status Status, changes ChangeSet) bool

// Reactor polls the webhelper on a fixed interval and reports changes to a
// Handler. A reactor runs at most once; construct a new one to poll again.
type Reactor struct {
	fetcher  StatusFetcher
	handler  Handler
	interval time.Duration
	logger   *slog.Logger
	id       string

	mu    sync.Mutex
	state ReactorState
	last  *Status
	done  chan struct{}
}

type ReactorOption func(*Reactor)

func WithInterval(interval time.Duration) ReactorOption {
	return func(r *Reactor) {
		if interval > 0 {
			r.interval = interval
		}
	}
}

func WithLogger(logger *slog.Logger) ReactorOption {
	return func(r *Reactor) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewReactor(fetcher StatusFetcher, handler Handler, opts ...ReactorOption) *Reactor {
	r := &Reactor{
		fetcher:  fetcher,
		handler:  handler,
		interval: DefaultPollInterval,
		logger:   slog.Default(),
		id:       uuid.NewString(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(slog.String("reactor_id", r.id))
	return r
}

// ID uniquely identifies this reactor run.
func (r *Reactor) ID() string {
	return r.id
}

func (r *Reactor) State() ReactorState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Last returns the most recent successfully fetched snapshot.
func (r *Reactor) Last() (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Status{}, false
	}
	return *r.last, true
}

// Start launches the polling goroutine. It fails unless the reactor is idle.
func (r *Reactor) Start() error {
	r.mu.Lock()
	if r.state != ReactorIdle {
		r.mu.Unlock()
		return ErrReactorStarted
	}
	r.state = ReactorRunning
	r.mu.Unlock()

	r.logger.Info("Starting webhelper reactor", slog.Duration("interval", r.interval))
	go r.run()
	return nil
}

// Done is closed once the reactor has stopped.
func (r *Reactor) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the handler stops the reactor. It never returns for a
// reactor that was not started.
func (r *Reactor) Wait() {
	<-r.done
}

func (r *Reactor) run() {
	defer func() {
		r.mu.Lock()
		r.state = ReactorStopped
		r.mu.Unlock()
		close(r.done)
		r.logger.Info("Webhelper reactor stopped")
	}()

	ctx := context.Background()
	for r.poll(ctx) {
		time.Sleep(r.interval)
	}
}

// poll runs one cycle and reports whether the reactor should keep going.
func (r *Reactor) poll(ctx context.Context) bool {
	status, err := r.fetcher.Status(ctx)
	if err != nil {
		// The client drops out briefly when changing tracks or restarting so
		// failed cycles are skipped rather than treated as fatal
		r.logger.Debug("Skipping poll cycle", slog.String("error", err.Error()))
		return true
	}

	r.mu.Lock()
	changes := AllChanged()
	if r.last != nil {
		changes = Diff(status, *r.last)
	}
	r.last = &status
	r.mu.Unlock()

	return r.handler(status, changes)
}
