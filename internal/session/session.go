// Package session runs editors: one editor per session, driven by a
// single worker goroutine, with scene updates pushed to subscribers.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/productflow/internal/editor"
	"github.com/gyaneshwarpardhi/productflow/internal/input"
	"github.com/gyaneshwarpardhi/productflow/internal/metrics"
	"github.com/gyaneshwarpardhi/productflow/internal/surface"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrQueueFull       = errors.New("session queue full")
	ErrTimeout         = errors.New("event processing timeout")
	ErrTooManySessions = errors.New("too many open sessions")
)

// Result is the outcome of processing a single input event.
type Result struct {
	EventID    string          `json:"event_id"`
	DurationMs float64         `json:"duration_ms"`
	Outcome    surface.Outcome `json:"outcome"`
	State      editor.State    `json:"state"`
	Error      string          `json:"error,omitempty"`

	err error
}

// Err returns the error the editor reported for the event, if any.
func (r *Result) Err() error { return r.err }

// work is one job for the session worker. Exactly one of ev or apply is
// set; notify, when set, receives the post-job state.
type work struct {
	ev      *input.Event
	apply   func(*editor.Editor)
	notify  chan editor.State
	resultC chan *Result
}

// Session owns one editor. All access to the editor goes through the
// worker, so the editor itself needs no locking.
type Session struct {
	id        string
	createdAt time.Time
	ed        *editor.Editor
	surf      *surface.Surface
	pool      *workerPool[*work]
	timeout   time.Duration
	log       *slog.Logger

	dirty bool // set by the editor's change listener, worker-only

	mu     sync.RWMutex
	closed bool
	subs   map[chan editor.State]struct{}
}

// Options configures a new Session.
type Options struct {
	Editor       editor.Options
	Items        surface.ItemLookup
	QueueDepth   int
	EventTimeout time.Duration
	Logger       *slog.Logger
}

// New creates a session and starts its worker. ctx bounds the worker's lifetime.
func New(ctx context.Context, opts Options) *Session {
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = 256
	}
	if opts.EventTimeout <= 0 {
		opts.EventTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	id := uuid.NewString()
	logger := opts.Logger.With("session", id)
	opts.Editor.Logger = logger

	s := &Session{
		id:        id,
		createdAt: time.Now(),
		timeout:   opts.EventTimeout,
		log:       logger,
		subs:      make(map[chan editor.State]struct{}),
	}
	s.ed = editor.New(opts.Editor)
	s.ed.OnChange(func(c editor.Change) {
		s.dirty = true
		metrics.Mutations.WithLabelValues(string(c.Op)).Inc()
	})
	s.surf = surface.New(s.ed, opts.Items, logger)
	s.pool = newWorkerPool[*work](ctx, 1, opts.QueueDepth, s.process)
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was opened.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

func (s *Session) process(_ context.Context, w *work) {
	start := time.Now()
	res := &Result{}
	s.dirty = false

	if w.ev != nil {
		res.EventID = w.ev.ID
		out, err := s.surf.Dispatch(w.ev)
		res.Outcome = out
		status := "ok"
		if err != nil {
			res.err = err
			res.Error = err.Error()
			status = "error"
			s.log.Debug("event rejected", "event", w.ev.ID, "type", w.ev.Type, "err", err)
		}
		metrics.EventsProcessed.WithLabelValues(string(w.ev.Type), status).Inc()
		metrics.EventProcessingDuration.Observe(float64(time.Since(w.ev.ReceivedAt).Microseconds()) / 1000)
	}
	if w.apply != nil {
		w.apply(s.ed)
	}

	res.State = s.ed.State()
	if s.dirty {
		s.broadcast(res.State)
	}
	if w.notify != nil {
		s.mu.RLock()
		if _, ok := s.subs[w.notify]; ok && !s.dirty {
			deliver(w.notify, res.State)
		}
		s.mu.RUnlock()
	}
	res.DurationMs = float64(time.Since(start).Microseconds()) / 1000
	metrics.QueueUtilization.WithLabelValues(s.id).Set(s.queueUtilization())

	if w.resultC != nil {
		w.resultC <- res
	}
}

// submit enqueues w unless the session is closed or its queue is full.
func (s *Session) submit(w *work) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSessionClosed
	}
	if !s.pool.Submit(w) {
		metrics.EventsDropped.Inc()
		return fmt.Errorf("%w (capacity %d)", ErrQueueFull, s.pool.QueueCap())
	}
	metrics.EventsEnqueued.Inc()
	return nil
}

func (s *Session) await(ctx context.Context, resultC chan *Result) (*Result, error) {
	select {
	case res := <-resultC:
		return res, nil
	case <-time.After(s.timeout):
		return nil, fmt.Errorf("%w after %v", ErrTimeout, s.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Dispatch processes an input event on the session worker and waits for
// the result. Editor errors (validation, dangling references) come back in
// Result.Err; the returned error covers queueing and timeouts only.
func (s *Session) Dispatch(ctx context.Context, ev *input.Event) (*Result, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now()
	}
	resultC := make(chan *Result, 1)
	if err := s.submit(&work{ev: ev, resultC: resultC}); err != nil {
		return nil, err
	}
	return s.await(ctx, resultC)
}

// DispatchAsync enqueues an event without waiting. Subscribers see its effect.
func (s *Session) DispatchAsync(ev *input.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now()
	}
	return s.submit(&work{ev: ev})
}

// State returns the editor state as seen by the worker.
func (s *Session) State(ctx context.Context) (editor.State, error) {
	resultC := make(chan *Result, 1)
	if err := s.submit(&work{resultC: resultC}); err != nil {
		return editor.State{}, err
	}
	res, err := s.await(ctx, resultC)
	if err != nil {
		return editor.State{}, err
	}
	return res.State, nil
}

// SetHistoryLimit applies a new undo depth limit asynchronously.
func (s *Session) SetHistoryLimit(limit int) error {
	return s.submit(&work{apply: func(ed *editor.Editor) { ed.SetHistoryLimit(limit) }})
}

// Subscribe returns a channel that receives the state after every change,
// starting with the current state. Slow readers only see the latest state.
// The channel is closed by cancel or when the session closes.
func (s *Session) Subscribe() (<-chan editor.State, func(), error) {
	ch := make(chan editor.State, 1)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, nil, ErrSessionClosed
	}
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	metrics.Subscribers.Inc()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
			metrics.Subscribers.Dec()
		}
	}
	if err := s.submit(&work{notify: ch}); err != nil {
		cancel()
		return nil, nil, err
	}
	return ch, cancel, nil
}

func (s *Session) broadcast(st editor.State) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subs {
		deliver(ch, st)
	}
}

// deliver replaces whatever the reader has not consumed yet with st.
// Only the session worker sends, so the second send cannot block.
func deliver(ch chan editor.State, st editor.State) {
	select {
	case ch <- st:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}

func (s *Session) queueUtilization() float64 {
	if s.pool.QueueCap() == 0 {
		return 0
	}
	return float64(s.pool.QueueLen()) / float64(s.pool.QueueCap())
}

// Close stops accepting work, finishes what is queued and closes every
// subscriber channel. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.pool.Drain()

	s.mu.Lock()
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
		metrics.Subscribers.Dec()
	}
	s.mu.Unlock()
	metrics.QueueUtilization.DeleteLabelValues(s.id)
	s.log.Info("session closed")
}
