package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/katapios/lazybones/internal/channel"
)

// State represents the current state of a channel's ingestion.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateError
)

// Status holds the ingestion state for a single channel.
type Status struct {
	Channel  channel.ChannelType
	State    State
	LastSync time.Time
	Err      error
}

// Result describes one completed ingestion pass.
type Result struct {
	Channel channel.ChannelType
	Added   int
	Err     error
}

// passTimeout is the maximum time allowed for a single ingestion pass.
const passTimeout = 30 * time.Second

// pollerEntry holds a registered pipeline, its interval, and its own
// trigger channel, so a Refresh for one channel cannot be consumed by
// another channel's goroutine.
type pollerEntry struct {
	pipeline *External
	typ      channel.ChannelType
	interval time.Duration
	trigger  chan struct{}
}

// Poller orchestrates background ingestion of registered channels.
// Results are reported through an optional callback and the log.
type Poller struct {
	entries  []pollerEntry
	statuses map[channel.ChannelType]*Status
	stopCh   chan struct{}
	onResult func(Result)
	log      *logrus.Logger
	mu       sync.Mutex
	running  bool
}

// NewPoller creates a poller. onResult may be nil.
func NewPoller(logger *logrus.Logger, onResult func(Result)) *Poller {
	return &Poller{
		statuses: make(map[channel.ChannelType]*Status),
		stopCh:   make(chan struct{}),
		onResult: onResult,
		log:      logger,
	}
}

// Register adds an ingestion pipeline polled at the given interval.
func (p *Poller) Register(pipeline *External, typ channel.ChannelType, interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if interval <= 0 {
		interval = 120 * time.Second
	}
	p.entries = append(p.entries, pollerEntry{
		pipeline: pipeline,
		typ:      typ,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	})
	p.statuses[typ] = &Status{Channel: typ, State: StateIdle}
}

// Start launches a polling goroutine per registered channel. Calling
// Start on a running poller is a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	entries := make([]pollerEntry, len(p.entries))
	copy(entries, p.entries)
	p.mu.Unlock()

	for _, entry := range entries {
		go p.pollChannel(entry)
	}
}

// Stop halts all polling goroutines.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate pass of a single channel.
func (p *Poller) Refresh(typ channel.ChannelType) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, entry := range p.entries {
		if entry.typ != typ {
			continue
		}
		select {
		case entry.trigger <- struct{}{}:
		default:
			// A pass is already pending.
		}
	}
}

// RefreshAll triggers an immediate pass of every registered channel.
func (p *Poller) RefreshAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, entry := range p.entries {
		select {
		case entry.trigger <- struct{}{}:
		default:
		}
	}
}

// Statuses returns the current ingestion status of all channels.
func (p *Poller) Statuses() []Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	statuses := make([]Status, 0, len(p.statuses))
	for _, s := range p.statuses {
		statuses = append(statuses, *s)
	}
	return statuses
}

// pollChannel runs the polling loop for a single channel.
func (p *Poller) pollChannel(entry pollerEntry) {
	ticker := time.NewTicker(entry.interval)
	defer ticker.Stop()

	// Initial pass immediately.
	p.runPass(entry)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.runPass(entry)
		case <-entry.trigger:
			p.runPass(entry)
		}
	}
}

// runPass performs one ingestion pass and records its outcome.
func (p *Poller) runPass(entry pollerEntry) {
	p.setStatus(entry.typ, StateRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), passTimeout)
	defer cancel()

	added, err := entry.pipeline.Run(ctx)
	if err != nil {
		p.setStatus(entry.typ, StateError, err)

		logEntry := p.log.WithField("channel", string(entry.typ)).WithError(err)
		switch {
		case channel.IsAuthError(err):
			logEntry.Warn("channel authentication expired")
		case channel.IsUnavailable(err):
			logEntry.Warn("channel unavailable, will retry")
		default:
			logEntry.Error("ingestion pass failed")
		}
	} else {
		p.setStatus(entry.typ, StateIdle, nil)
	}

	if p.onResult != nil {
		p.onResult(Result{Channel: entry.typ, Added: added, Err: err})
	}
}

// setStatus updates the status for a channel type.
func (p *Poller) setStatus(typ channel.ChannelType, state State, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status, ok := p.statuses[typ]
	if !ok {
		return
	}
	status.State = state
	status.Err = err
	if state == StateIdle && err == nil {
		status.LastSync = time.Now()
	}
}
