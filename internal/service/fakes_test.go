package service

import (
	"context"
	"fmt"
	"reviewpilot/internal/model"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memReviewRepo is an in-memory repository.ReviewRepo
type memReviewRepo struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]*model.CandidateReview
	order   []primitive.ObjectID

	inserts int
	deletes int
	findErr error
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{records: map[primitive.ObjectID]*model.CandidateReview{}}
}

func sameLocation(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func inPool(r *model.CandidateReview, key model.PoolKey) bool {
	return r.BusinessID == key.BusinessID && sameLocation(r.LocationID, key.LocationID) && r.Fingerprint == key.Fingerprint
}

func (m *memReviewRepo) Find(_ context.Context, key model.PoolKey, consumed *bool) ([]*model.CandidateReview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	out := []*model.CandidateReview{}
	for _, id := range m.order {
		r, ok := m.records[id]
		if !ok || !inPool(r, key) {
			continue
		}
		if consumed != nil && r.Consumed != *consumed {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memReviewRepo) InsertBatch(_ context.Context, reviews []*model.CandidateReview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	for _, r := range reviews {
		if r.ID.IsZero() {
			r.ID = primitive.NewObjectID()
		}
		r.CreatedAt = time.Now()
		cp := *r
		m.records[r.ID] = &cp
		m.order = append(m.order, r.ID)
	}
	return nil
}

func (m *memReviewRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.CandidateReview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memReviewRepo) MarkConsumed(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[id]; ok && !r.Consumed {
		now := time.Now()
		r.Consumed = true
		r.ConsumedAt = &now
	}
	return nil
}

func (m *memReviewRepo) CountConsumed(_ context.Context, key model.PoolKey) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.records {
		if inPool(r, key) && r.Consumed {
			n++
		}
	}
	return n, nil
}

func (m *memReviewRepo) DeletePool(_ context.Context, key model.PoolKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	for id, r := range m.records {
		if inPool(r, key) {
			delete(m.records, id)
		}
	}
	return nil
}

func (m *memReviewRepo) EnsureIndexes(context.Context) error { return nil }

func (m *memReviewRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type memBusinessRepo struct {
	businesses map[primitive.ObjectID]*model.Business
}

func (m *memBusinessRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.Business, error) {
	if b, ok := m.businesses[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

type memLocationRepo struct {
	locations map[primitive.ObjectID]*model.Location
}

func (m *memLocationRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.Location, error) {
	if l, ok := m.locations[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

// fakeGenerator returns numbered reviews and records every strategy it was asked for
type fakeGenerator struct {
	mu         sync.Mutex
	calls      int
	strategies []string
	err        error
}

func (g *fakeGenerator) Generate(_ context.Context, strategy string, batchSize int) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.strategies = append(g.strategies, strategy)
	if g.err != nil {
		return nil, g.err
	}
	out := make([]string, batchSize)
	for i := range out {
		out[i] = fmt.Sprintf("review %d/%d for %q", g.calls, i+1, strategy)
	}
	return out, nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// fakeLock is a cache.PoolLock whose state is set by the test
type fakeLock struct {
	held     map[string]bool
	acquired []string
	released []string
	err      error
}

func newFakeLock() *fakeLock { return &fakeLock{held: map[string]bool{}} }

func (l *fakeLock) Acquire(_ context.Context, poolKey string) (string, bool, error) {
	if l.err != nil {
		return "", false, l.err
	}
	if l.held[poolKey] {
		return "", false, nil
	}
	l.held[poolKey] = true
	l.acquired = append(l.acquired, poolKey)
	return "token-" + poolKey, true, nil
}

func (l *fakeLock) Release(_ context.Context, poolKey, _ string) error {
	delete(l.held, poolKey)
	l.released = append(l.released, poolKey)
	return nil
}

func (l *fakeLock) Wait(_ context.Context, poolKey string, _ time.Duration) (bool, error) {
	return !l.held[poolKey], nil
}

type recordedEvent struct {
	businessID string
	msgType    string
	payload    interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBroadcaster) BroadcastToBusiness(businessID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{businessID: businessID, msgType: msgType, payload: payload})
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.msgType
	}
	return out
}
