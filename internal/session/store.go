package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mind-engage/selfcheck/internal/attempt"
	"github.com/mind-engage/selfcheck/internal/catalogue"
	"github.com/mind-engage/selfcheck/internal/controller"
	"github.com/mind-engage/selfcheck/internal/question"
)

var (
	ErrPageNotFound     = errors.New("page not found")
	ErrQuestionNotFound = errors.New("question not found on page")
)

// Observer is told about every evaluated submission and page lifecycle
// change.
type Observer interface {
	Submitted(kind question.Kind, out controller.Outcome, status attempt.Status)
	PagesMounted(n int)
}

type nopObserver struct{}

func (nopObserver) Submitted(question.Kind, controller.Outcome, attempt.Status) {}
func (nopObserver) PagesMounted(int)                                         {}

// page is one mounted copy of a question set. It owns the guess state of
// every question on it; controllers run in controlled mode over it.
type page struct {
	id       string
	setID    string
	title    string
	order    []string
	states   map[string]*attempt.State
	ctrls    map[string]*controller.Controller
	mu       sync.Mutex // serialises submissions on this page
	lastSeen time.Time
}

// View is what the page gets back after mount, reset or a read.
type View struct {
	ID        string                `json:"page_id"`
	SetID     string                `json:"set_id"`
	Title     string                `json:"title"`
	Questions []controller.Snapshot `json:"questions"`
}

// Store holds mounted pages in memory. Nothing outlives the process.
type Store struct {
	mu       sync.RWMutex
	pages    map[string]*page
	source   catalogue.Source
	policy   controller.UnparsedPolicy
	idleTTL  time.Duration
	logger   *zap.Logger
	observer Observer
	now      func() time.Time
}

type Option func(*Store)

func WithPolicy(p controller.UnparsedPolicy) Option { return func(s *Store) { s.policy = p } }
func WithIdleTTL(d time.Duration) Option            { return func(s *Store) { s.idleTTL = d } }
func WithObserver(o Observer) Option                { return func(s *Store) { s.observer = o } }
func WithClock(now func() time.Time) Option         { return func(s *Store) { s.now = now } }

func NewStore(src catalogue.Source, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		pages:    map[string]*page{},
		source:   src,
		policy:   controller.CountWellFormedOnly,
		idleTTL:  2 * time.Hour,
		logger:   logger,
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Mount loads set setID and creates fresh guess state for each visible
// question.
func (s *Store) Mount(ctx context.Context, setID string) (View, error) {
	set, err := s.source.Get(ctx, setID)
	if err != nil {
		return View{}, err
	}
	p := &page{
		id:       uuid.NewString(),
		setID:    set.ID,
		title:    set.Title,
		states:   make(map[string]*attempt.State, len(set.Questions)),
		ctrls:    make(map[string]*controller.Controller, len(set.Questions)),
		lastSeen: s.now(),
	}
	for _, q := range set.Questions {
		if q.Hidden {
			continue
		}
		st := attempt.New()
		c, err := controller.New(q, controller.WithState(&st), controller.WithUnparsedPolicy(s.policy))
		if err != nil {
			return View{}, fmt.Errorf("set %s: %w", set.ID, err)
		}
		p.order = append(p.order, q.Name)
		p.states[q.Name] = &st
		p.ctrls[q.Name] = c
	}

	v := p.view()

	s.mu.Lock()
	s.pages[p.id] = p
	n := len(s.pages)
	s.mu.Unlock()

	s.observer.PagesMounted(n)
	s.logger.Info("page mounted", zap.String("page_id", p.id), zap.String("set_id", p.setID), zap.Int("questions", len(p.order)))
	return v, nil
}

func (s *Store) get(pageID string) (*page, error) {
	s.mu.RLock()
	p, ok := s.pages[pageID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, pageID)
	}
	return p, nil
}

func (s *Store) View(pageID string) (View, error) {
	p, err := s.get(pageID)
	if err != nil {
		return View{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSeen = s.now()
	return p.view(), nil
}

// Submit evaluates raw for question name on the page. Duplicate submits
// after the question resolved come back as controller.InertNoOp.
func (s *Store) Submit(pageID, name, raw string) (controller.Snapshot, controller.Outcome, error) {
	p, err := s.get(pageID)
	if err != nil {
		return controller.Snapshot{}, "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.ctrls[name]
	if !ok {
		return controller.Snapshot{}, "", fmt.Errorf("%w: %s", ErrQuestionNotFound, name)
	}
	p.lastSeen = s.now()
	snap, out := c.Submit(raw)

	kind := c.Question().Kind
	s.observer.Submitted(kind, out, snap.Status)
	s.logger.Debug("submission evaluated",
		zap.String("page_id", p.id),
		zap.String("question", name),
		zap.String("kind", string(kind)),
		zap.String("outcome", string(out)),
		zap.String("status", string(snap.Status)),
		zap.Int("attempts", snap.Attempts),
	)
	return snap, out, nil
}

// Reset returns every question on the page to its initial state.
func (s *Store) Reset(pageID string) (View, error) {
	p, err := s.get(pageID)
	if err != nil {
		return View{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, st := range p.states {
		st.Reset()
	}
	p.lastSeen = s.now()
	s.logger.Info("page reset", zap.String("page_id", p.id))
	return p.view(), nil
}

// Unmount destroys the page and all of its guess state.
func (s *Store) Unmount(pageID string) error {
	s.mu.Lock()
	_, ok := s.pages[pageID]
	delete(s.pages, pageID)
	n := len(s.pages)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, pageID)
	}
	s.observer.PagesMounted(n)
	s.logger.Info("page unmounted", zap.String("page_id", pageID))
	return nil
}

// Sweep unmounts pages idle for longer than the idle TTL and returns how
// many were dropped.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.idleTTL)
	s.mu.Lock()
	dropped := 0
	for id, p := range s.pages {
		p.mu.Lock()
		idle := p.lastSeen.Before(cutoff)
		p.mu.Unlock()
		if idle {
			delete(s.pages, id)
			dropped++
		}
	}
	n := len(s.pages)
	s.mu.Unlock()
	if dropped > 0 {
		s.observer.PagesMounted(n)
		s.logger.Info("idle pages swept", zap.Int("dropped", dropped), zap.Int("remaining", n))
	}
	return dropped
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

func (p *page) view() View {
	v := View{ID: p.id, SetID: p.setID, Title: p.title, Questions: make([]controller.Snapshot, 0, len(p.order))}
	for _, name := range p.order {
		v.Questions = append(v.Questions, p.ctrls[name].Snapshot())
	}
	return v
}
