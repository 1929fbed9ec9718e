// Package controlplane provides the presence coordinator and its HTTP API.
package controlplane

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fentz26/breakroom/internal/audit"
	"github.com/fentz26/breakroom/internal/dispatch"
	"github.com/fentz26/breakroom/internal/intent"
	"github.com/fentz26/breakroom/internal/ledger"
	"github.com/fentz26/breakroom/internal/models"
	"github.com/fentz26/breakroom/internal/presence"
	"github.com/fentz26/breakroom/internal/report"
)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLedger sets the durable absence log.
func WithLedger(sink ledger.Sink) Option {
	return func(s *Service) { s.ledger = sink }
}

// WithRecorder enables the decision audit trail.
func WithRecorder(r *audit.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithQueue routes side effects through q. Without a queue they run inline
// after the registry is released.
func WithQueue(q *dispatch.Queue) Option {
	return func(s *Service) { s.queue = q }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source used for messages without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service is the presence coordinator. Every Handle and Snapshot call runs as
// one serialized step over the registry; side effects are dispatched after
// the step commits.
type Service struct {
	mu         sync.Mutex
	controller *presence.Controller

	logger   *zap.Logger
	ledger   ledger.Sink
	recorder *audit.Recorder
	queue    *dispatch.Queue
	metrics  *Metrics
	now      func() time.Time

	subMu       sync.RWMutex
	subscribers []func(models.Result)

	// Post-commit work runs in commit order; tickets are issued under mu.
	order   *commitOrder
	tickets uint64
}

// commitOrder lets post-commit work run outside the registry lock while
// keeping the order in which steps committed.
type commitOrder struct {
	mu   sync.Mutex
	cond *sync.Cond
	next uint64
}

func newCommitOrder() *commitOrder {
	o := &commitOrder{}
	o.cond = sync.NewCond(&o.mu)
	return o
}

// wait blocks until every ticket before t is done.
func (o *commitOrder) wait(t uint64) {
	o.mu.Lock()
	for o.next != t {
		o.cond.Wait()
	}
	o.mu.Unlock()
}

// done releases the ticket currently being served.
func (o *commitOrder) done() {
	o.mu.Lock()
	o.next++
	o.mu.Unlock()
	o.cond.Broadcast()
}

// NewService creates a coordinator with an empty registry.
func NewService(cfg presence.Capacity, opts ...Option) *Service {
	s := &Service{
		controller: presence.NewController(presence.NewRegistry(), cfg),
		logger:     zap.NewNop(),
		ledger:     ledger.Nop{},
		now:        time.Now,
		order:      newCommitOrder(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capacity returns the configured limits.
func (s *Service) Capacity() presence.Capacity {
	return s.controller.Capacity()
}

// Subscribe registers fn to receive every result after it commits.
// Subscribers are called synchronously and must not block.
func (s *Service) Subscribe(fn func(models.Result)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Validate checks that msg can be handled.
func Validate(msg models.Message) error {
	if strings.TrimSpace(string(msg.AgentID)) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrMissingAgent)
	}
	return nil
}

// Handle classifies msg, applies it to the registry and returns the notice
// plus a snapshot when state changed or a status was requested.
func (s *Service) Handle(ctx context.Context, msg models.Message) models.Result {
	if msg.At.IsZero() {
		msg.At = s.now()
	}
	name := msg.DisplayName
	if name == "" {
		name = string(msg.AgentID)
	}

	in := intent.Classify(msg.Text)

	s.mu.Lock()
	tr := s.controller.Admit(msg.AgentID, name, in)
	res := models.Result{
		AgentID:     msg.AgentID,
		DisplayName: name,
		Intent:      in,
		Outcome:     tr.Outcome,
		Changed:     tr.Committed(),
	}
	if res.Changed || tr.Outcome == models.OutcomeStatus {
		snap := s.controller.Registry().Snapshot(s.controller.Capacity(), msg.At)
		res.Snapshot = &snap
	}
	ticket := s.tickets
	s.tickets++
	s.mu.Unlock()

	res.Notice = report.Notice(report.NoticeInput{
		DisplayName: name,
		Intent:      in,
		Outcome:     tr.Outcome,
		PrevLabel:   tr.PrevLabel,
	})

	s.logger.Debug("Handled message",
		zap.String("agent_id", string(msg.AgentID)),
		zap.String("intent", string(in.Kind)),
		zap.String("outcome", string(tr.Outcome)))

	s.order.wait(ticket)
	defer s.order.done()
	s.afterCommit(ctx, msg, name, tr, res)
	return res
}

// Snapshot returns a consistent view of the registry.
func (s *Service) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Registry().Snapshot(s.controller.Capacity(), s.now())
}

// afterCommit fans the result out to metrics, the ledger, the audit trail and
// subscribers. Nothing here can change the decision already made. Calls run
// one at a time in commit order, so a later step's ledger end can never reach
// the sink before an earlier step's start.
func (s *Service) afterCommit(ctx context.Context, msg models.Message, name string, tr presence.Transition, res models.Result) {
	if s.metrics != nil {
		s.metrics.ObserveResult(res)
		if res.Snapshot != nil {
			s.metrics.SetAgents(*res.Snapshot)
		}
	}

	if category, ok := tr.Ended(); ok {
		ev := ledger.Event{AgentID: msg.AgentID, DisplayName: name, Category: category, At: msg.At}
		s.submit(ctx, "ledger.end", func(ctx context.Context) error {
			return s.ledger.End(ctx, ev)
		})
	}
	if category, ok := tr.Started(); ok {
		ev := ledger.Event{AgentID: msg.AgentID, DisplayName: name, Category: category, At: msg.At}
		s.submit(ctx, "ledger.start", func(ctx context.Context) error {
			return s.ledger.Start(ctx, ev)
		})
	}

	if s.recorder != nil {
		details := fmt.Sprintf("%s -> %s", tr.From, tr.To)
		s.submit(ctx, "audit.record", func(ctx context.Context) error {
			_, err := s.recorder.Record(ctx, msg, res, details)
			return err
		})
	}

	s.subMu.RLock()
	subscribers := s.subscribers
	s.subMu.RUnlock()
	for _, fn := range subscribers {
		fn(res)
	}
}

func (s *Service) submit(ctx context.Context, name string, run func(context.Context) error) {
	if s.queue != nil {
		s.queue.Submit(dispatch.Job{Name: name, Run: run})
		return
	}

	if err := run(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("Side effect failed", zap.String("job", name), zap.Error(err))
		if s.metrics != nil {
			s.metrics.JobFailed(name)
		}
	}
}
