package questionnaire

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var errStoreDown = errors.New("store unavailable")

// memStore is an in-memory AttemptStore that enforces one incomplete
// attempt per owner and lets tests inject failures per operation.
type memStore struct {
	mu       sync.Mutex
	attempts map[uuid.UUID]*Attempt
	recs     map[uuid.UUID]*Result
	now      func() time.Time

	failFind, failCreate, failUpdate, failDelete, failInsert bool
	// failCompleteOnly fails only the completion write.
	failCompleteOnly bool

	creates, updates, deletes int
	// beforeCreate runs inside CreateAttempt before the uniqueness check.
	beforeCreate func(ownerID uuid.UUID)
}

func newMemStore() *memStore {
	return &memStore{
		attempts: map[uuid.UUID]*Attempt{},
		recs:     map[uuid.UUID]*Result{},
		now:      time.Now,
	}
}

func (m *memStore) CreateAttempt(_ context.Context, ownerID uuid.UUID) (*Attempt, error) {
	if hook := m.beforeCreate; hook != nil {
		m.beforeCreate = nil
		hook(ownerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return nil, errStoreDown
	}
	for _, a := range m.attempts {
		if a.OwnerID == ownerID && !a.IsCompleted {
			return nil, ErrAttemptConflict
		}
	}
	now := m.now()
	a := &Attempt{ID: uuid.New(), OwnerID: ownerID, Slices: Slices{}, CreatedAt: now, UpdatedAt: now}
	m.attempts[a.ID] = a
	m.creates++
	return copyAttempt(a), nil
}

func (m *memStore) UpdateAttempt(_ context.Context, id uuid.UUID, upd AttemptUpdate) (*Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate || (m.failCompleteOnly && upd.Complete) {
		return nil, errStoreDown
	}
	a, ok := m.attempts[id]
	if !ok || a.IsCompleted {
		return nil, ErrAttemptNotFound
	}
	for step, raw := range upd.Slices {
		a.Slices[step] = append([]byte(nil), raw...)
	}
	if upd.Complete {
		a.IsCompleted = true
		at := upd.CompletedAt
		a.CompletedAt = &at
	}
	a.UpdatedAt = m.now()
	m.updates++
	return copyAttempt(a), nil
}

func (m *memStore) FindIncompleteAttempt(_ context.Context, ownerID uuid.UUID) (*Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFind {
		return nil, errStoreDown
	}
	for _, a := range m.attempts {
		if a.OwnerID == ownerID && !a.IsCompleted {
			return copyAttempt(a), nil
		}
	}
	return nil, nil
}

func (m *memStore) DeleteAttempt(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return errStoreDown
	}
	if a, ok := m.attempts[id]; ok && !a.IsCompleted {
		delete(m.attempts, id)
		m.deletes++
	}
	return nil
}

func (m *memStore) InsertRecommendation(_ context.Context, attemptID, _ uuid.UUID, res *Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert {
		return errStoreDown
	}
	m.recs[attemptID] = res.Clone()
	return nil
}

func (m *memStore) incompleteCount(ownerID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.attempts {
		if a.OwnerID == ownerID && !a.IsCompleted {
			n++
		}
	}
	return n
}

func (m *memStore) get(id uuid.UUID) *Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.attempts[id]; ok {
		return copyAttempt(a)
	}
	return nil
}

// seed stores an attempt directly, bypassing the uniqueness check.
func (m *memStore) seed(a *Attempt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.Slices == nil {
		a.Slices = Slices{}
	}
	m.attempts[a.ID] = a
}

func copyAttempt(a *Attempt) *Attempt {
	out := *a
	out.Slices = make(Slices, len(a.Slices))
	for k, v := range a.Slices {
		out.Slices[k] = append([]byte(nil), v...)
	}
	return &out
}

type scorerFunc func(ctx context.Context, answers AnswerState) (*Result, error)

func (f scorerFunc) Score(ctx context.Context, answers AnswerState) (*Result, error) {
	return f(ctx, answers)
}

func okScorer() Scorer {
	return scorerFunc(func(context.Context, AnswerState) (*Result, error) {
		return &Result{
			Recommendations: []Recommendation{{Major: "Physics", ConfidenceScore: 91, Reasoning: "Strong science interest."}},
			Summary:         "You lean analytical.",
		}, nil
	})
}
