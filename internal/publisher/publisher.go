// Package publisher posts the status report on a fixed cadence, limited to a
// daily time window.
package publisher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fentz26/breakroom/internal/models"
	"github.com/fentz26/breakroom/internal/report"
)

// Source supplies snapshots.
type Source interface {
	Snapshot() models.Snapshot
}

// Config controls cadence and gating.
type Config struct {
	Interval time.Duration
	// Window limits publishing to part of the day. A nil window publishes
	// around the clock.
	Window *Window
}

// Header returns the status update heading for interval.
func Header(interval time.Duration) string {
	return fmt.Sprintf("**%d-Minute Status Update:**", int(interval.Minutes()))
}

// Publisher periodically sends the formatted snapshot to its transports.
type Publisher struct {
	source     Source
	transports []Transport
	config     Config
	logger     *zap.Logger
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a publisher. logger may be nil.
func New(source Source, cfg Config, logger *zap.Logger, transports ...Transport) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Publisher{
		source:     source,
		transports: transports,
		config:     cfg,
		logger:     logger,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins the publish loop.
func (p *Publisher) Start() {
	p.wg.Add(1)
	go p.loop()
	p.logger.Info("Publisher started", zap.Duration("interval", p.config.Interval))
}

// Stop stops the loop and waits for an in-flight publish to finish.
func (p *Publisher) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("Publisher stopped")
}

func (p *Publisher) loop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.Tick(p.ctx)
		}
	}
}

// Tick publishes once if the current time is inside the window and reports
// whether it did.
func (p *Publisher) Tick(ctx context.Context) bool {
	if w := p.config.Window; w != nil && !w.Contains(p.now()) {
		return false
	}

	snap := p.source.Snapshot()
	text := report.Periodic(Header(p.config.Interval), snap)
	for _, t := range p.transports {
		if err := t.Send(ctx, text, snap); err != nil {
			p.logger.Warn("Status update failed", zap.String("transport", t.Name()), zap.Error(err))
		}
	}
	return true
}
