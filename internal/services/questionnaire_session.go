package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/majorcompass-backend/internal/modules/questionnaire"
	"github.com/yungbote/majorcompass-backend/internal/platform/ctxutil"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

// QuestionnaireService keeps one live step controller per owner and routes
// HTTP calls into it. Owners come from the request context.
type QuestionnaireService interface {
	Start(ctx context.Context, forceFresh bool) (questionnaire.Snapshot, error)
	Current(ctx context.Context) (questionnaire.Snapshot, error)
	Answer(ctx context.Context, cmds []questionnaire.Command) (questionnaire.Snapshot, error)
	Next(ctx context.Context) (questionnaire.Snapshot, error)
	Back(ctx context.Context) (questionnaire.Snapshot, error)
	Catalog() *questionnaire.Catalog
	Drop(ownerID uuid.UUID)
	Sweep(now time.Time) int
	RunJanitor(ctx context.Context, interval time.Duration)
}

type sessionEntry struct {
	ctrl     *questionnaire.Controller
	lastSeen time.Time
	gen      uint64
}

type questionnaireService struct {
	log     *logger.Logger
	deps    questionnaire.ControllerDeps
	idleTTL time.Duration
	now     func() time.Time

	group singleflight.Group

	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionEntry
	// gens holds the owner's current generation. Forced starts and drops
	// move it forward so initializations begun earlier cannot register.
	gens  map[uuid.UUID]ownerGen
	epoch uint64
}

type ownerGen struct {
	gen uint64
	at  time.Time
}

func NewQuestionnaireService(log *logger.Logger, deps questionnaire.ControllerDeps, idleTTL time.Duration) QuestionnaireService {
	if deps.Catalog == nil {
		deps.Catalog = questionnaire.DefaultCatalog()
	}
	if deps.Log == nil {
		deps.Log = log
	}
	if idleTTL <= 0 {
		idleTTL = 2 * time.Hour
	}
	return &questionnaireService{
		log:      log.With("service", "QuestionnaireService"),
		deps:     deps,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: map[uuid.UUID]*sessionEntry{},
		gens:     map[uuid.UUID]ownerGen{},
	}
}

func (s *questionnaireService) Catalog() *questionnaire.Catalog { return s.deps.Catalog }

// Start initializes a controller for the caller. Without forceFresh a live,
// non-terminal controller is reused; with it the controller is replaced and
// any incomplete attempt is discarded by the resolver.
func (s *questionnaireService) Start(ctx context.Context, forceFresh bool) (questionnaire.Snapshot, error) {
	ownerID := ctxutil.OwnerID(ctx)
	if ownerID == uuid.Nil {
		return questionnaire.Snapshot{}, questionnaire.ErrNoOwner
	}
	ctrl, err := s.obtain(ctx, ownerID, forceFresh, true)
	if err != nil {
		return questionnaire.Snapshot{}, err
	}
	return ctrl.Snapshot(), nil
}

// Current returns the caller's snapshot, resuming from persisted progress
// when no controller is live. Terminal sessions are reported as-is.
func (s *questionnaireService) Current(ctx context.Context) (questionnaire.Snapshot, error) {
	ownerID := ctxutil.OwnerID(ctx)
	if ownerID == uuid.Nil {
		return questionnaire.Snapshot{}, questionnaire.ErrNoOwner
	}
	ctrl, err := s.obtain(ctx, ownerID, false, false)
	if err != nil {
		return questionnaire.Snapshot{}, err
	}
	return ctrl.Snapshot(), nil
}

func (s *questionnaireService) Answer(ctx context.Context, cmds []questionnaire.Command) (questionnaire.Snapshot, error) {
	ctrl, err := s.controllerFor(ctx)
	if err != nil {
		return questionnaire.Snapshot{}, err
	}
	return ctrl.Dispatch(cmds...)
}

func (s *questionnaireService) Next(ctx context.Context) (questionnaire.Snapshot, error) {
	ctrl, err := s.controllerFor(ctx)
	if err != nil {
		return questionnaire.Snapshot{}, err
	}
	snap, err := ctrl.Next(ctx)
	s.touch(ctrl.OwnerID())
	return snap, err
}

func (s *questionnaireService) Back(ctx context.Context) (questionnaire.Snapshot, error) {
	ctrl, err := s.controllerFor(ctx)
	if err != nil {
		return questionnaire.Snapshot{}, err
	}
	return ctrl.Back()
}

// Drop forgets the owner's live controller. Persisted progress is untouched.
// Initializations still running for the owner are not registered.
func (s *questionnaireService) Drop(ownerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, ownerID)
	s.advance(ownerID)
}

// Sweep evicts controllers idle for longer than the idle TTL, skipping any
// with a transition in flight. It returns the number evicted.
func (s *questionnaireService) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for owner, e := range s.sessions {
		if now.Sub(e.lastSeen) < s.idleTTL {
			continue
		}
		if e.ctrl.Snapshot().Busy {
			continue
		}
		delete(s.sessions, owner)
		n++
	}
	for owner, g := range s.gens {
		if _, live := s.sessions[owner]; !live && now.Sub(g.at) >= s.idleTTL {
			delete(s.gens, owner)
		}
	}
	return n
}

func (s *questionnaireService) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if n := s.Sweep(t); n > 0 {
				s.log.Debug("Evicted idle questionnaire sessions", "count", n)
			}
		}
	}
}

func (s *questionnaireService) controllerFor(ctx context.Context) (*questionnaire.Controller, error) {
	ownerID := ctxutil.OwnerID(ctx)
	if ownerID == uuid.Nil {
		return nil, questionnaire.ErrNoOwner
	}
	return s.obtain(ctx, ownerID, false, false)
}

func (s *questionnaireService) lookup(ownerID uuid.UUID) *questionnaire.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[ownerID]
	if !ok {
		return nil
	}
	e.lastSeen = s.now()
	return e.ctrl
}

func (s *questionnaireService) touch(ownerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[ownerID]; ok {
		e.lastSeen = s.now()
	}
}

// obtain returns the owner's controller, creating and initializing one when
// needed. Concurrent initializations for the same owner and generation
// collapse into one. A forced start opens a new generation, so a resume that
// began before it is discarded instead of replacing the fresh controller.
func (s *questionnaireService) obtain(ctx context.Context, ownerID uuid.UUID, forceFresh, restartTerminal bool) (*questionnaire.Controller, error) {
	usable := func(c *questionnaire.Controller) bool {
		return c != nil && !(restartTerminal && c.Terminal())
	}
	if !forceFresh {
		if c := s.lookup(ownerID); usable(c) {
			return c, nil
		}
	}

	gen := s.generation(ownerID, forceFresh)
	key := ownerID.String() + ":" + strconv.FormatUint(gen, 10)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		existing := s.lookup(ownerID)
		if !forceFresh && usable(existing) {
			return existing, nil
		}
		if forceFresh && existing != nil && existing.Snapshot().Busy {
			return nil, questionnaire.ErrTransitionInFlight
		}
		ctrl := questionnaire.NewController(ownerID, s.deps)
		if _, err := ctrl.Initialize(context.WithoutCancel(ctx), forceFresh); err != nil {
			return nil, err
		}
		registered, err := s.register(ownerID, gen, ctrl)
		if err != nil {
			return nil, err
		}
		if registered == ctrl {
			s.log.Debug("Questionnaire session started", "owner_id", ownerID.String(), "force_fresh", forceFresh)
		}
		return registered, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*questionnaire.Controller), nil
}

// generation returns the owner's current generation, opening a new one
// first when bump is set.
func (s *questionnaireService) generation(ownerID uuid.UUID, bump bool) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bump {
		s.advance(ownerID)
	}
	return s.gens[ownerID].gen
}

// advance opens a new generation for the owner. Callers hold s.mu.
func (s *questionnaireService) advance(ownerID uuid.UUID) {
	s.epoch++
	s.gens[ownerID] = ownerGen{gen: s.epoch, at: s.now()}
}

// register stores ctrl as the owner's live controller if gen is still
// current. A superseded controller is dropped and the newer live one is
// returned; if that one is still initializing the caller gets
// ErrTransitionInFlight and may retry.
func (s *questionnaireService) register(ownerID uuid.UUID, gen uint64, ctrl *questionnaire.Controller) (*questionnaire.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.gens[ownerID].gen
	if cur != gen {
		s.log.Debug("Discarding superseded questionnaire session", "owner_id", ownerID.String())
		if e, ok := s.sessions[ownerID]; ok && e.gen == cur {
			e.lastSeen = s.now()
			return e.ctrl, nil
		}
		return nil, questionnaire.ErrTransitionInFlight
	}
	s.sessions[ownerID] = &sessionEntry{ctrl: ctrl, lastSeen: s.now(), gen: gen}
	return ctrl, nil
}
