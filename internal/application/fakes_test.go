package application

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vendora-app/vendora/internal/domain/entity"
	"github.com/vendora-app/vendora/internal/domain/errs"
	repo "github.com/vendora-app/vendora/internal/domain/repository"
	"github.com/vendora-app/vendora/internal/domain/service"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type memUsers struct {
	mu    sync.Mutex
	byID  map[string]*entity.User
	err   error
	calls int
}

var _ repo.UserRepository = (*memUsers)(nil)

func newMemUsers(users ...*entity.User) *memUsers {
	m := &memUsers{byID: map[string]*entity.User{}}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, x := range m.byID {
		if x.Email == u.Email {
			return errs.ErrAlreadyExists
		}
	}
	u.ID = uuid.NewString()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *memUsers) FindByIDs(_ context.Context, ids []string) ([]entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	out := []entity.User{}
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

// memPurchases is an in-memory PurchaseRepository with the same CAS semantics as the Postgres one.
type memPurchases struct {
	mu     sync.Mutex
	items  map[string]*entity.Purchase
	clock  time.Time
	err    error
	writes int
}

var _ repo.PurchaseRepository = (*memPurchases)(nil)

func newMemPurchases() *memPurchases {
	return &memPurchases{
		items: map[string]*entity.Purchase{},
		clock: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func clonePurchase(p *entity.Purchase) *entity.Purchase {
	cp := *p
	cp.Participants = append([]entity.UserSummary{}, p.Participants...)
	cp.Images = append([]entity.Image{}, p.Images...)
	if p.SaleAmount != nil {
		v := *p.SaleAmount
		cp.SaleAmount = &v
	}
	if p.SaleDate != nil {
		v := *p.SaleDate
		cp.SaleDate = &v
	}
	return &cp
}

func (m *memPurchases) Create(_ context.Context, p *entity.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.writes++
	m.clock = m.clock.Add(time.Minute)
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = m.clock, m.clock
	for i := range p.Images {
		p.Images[i].ID = uuid.NewString()
	}
	m.items[p.ID] = clonePurchase(p)
	return nil
}

func (m *memPurchases) GetByID(_ context.Context, id string) (*entity.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.items[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return clonePurchase(p), nil
}

func (m *memPurchases) ListVisibleTo(_ context.Context, userID string) ([]*entity.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []*entity.Purchase{}
	for _, p := range m.items {
		if service.CanView(userID, p) {
			out = append(out, clonePurchase(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memPurchases) ListSold(_ context.Context, f repo.SalesFilter) ([]*entity.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []*entity.Purchase{}
	for _, p := range m.items {
		if p.Status != entity.StatusSold || !service.CanView(f.UserID, p) || p.SaleDate == nil {
			continue
		}
		if p.SaleDate.Before(f.From) || p.SaleDate.After(f.To) {
			continue
		}
		if f.Partner == repo.PartnerWith && !p.HasPartners() || f.Partner == repo.PartnerWithout && p.HasPartners() {
			continue
		}
		out = append(out, clonePurchase(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SaleDate.After(*out[j].SaleDate) })
	return out, nil
}

func (m *memPurchases) UpdateSale(_ context.Context, p *entity.Purchase, expected entity.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cur, ok := m.items[p.ID]
	if !ok {
		return errs.ErrNotFound
	}
	if cur.Status != expected {
		return errs.ErrConflict
	}
	m.writes++
	cur.Status, cur.SaleAmount, cur.SaleDate = p.Status, p.SaleAmount, p.SaleDate
	return nil
}

func (m *memPurchases) AddImages(_ context.Context, purchaseID string, urls []string) ([]entity.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[purchaseID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	added := make([]entity.Image, 0, len(urls))
	for _, u := range urls {
		added = append(added, entity.Image{ID: uuid.NewString(), URL: u})
	}
	cur.Images = append(cur.Images, added...)
	return added, nil
}

func (m *memPurchases) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return errs.ErrNotFound
	}
	m.writes++
	delete(m.items, id)
	return nil
}

type fakeIndex struct {
	indexed []string
	removed []string
	hits    []SearchHit
	err     error
}

func (f *fakeIndex) Index(_ context.Context, p *entity.Purchase) error {
	f.indexed = append(f.indexed, p.ID)
	return f.err
}

func (f *fakeIndex) Remove(_ context.Context, id string) error {
	f.removed = append(f.removed, id)
	return f.err
}

func (f *fakeIndex) Search(_ context.Context, _, _ string, _ int) ([]SearchHit, error) {
	return f.hits, f.err
}

type notified struct {
	actorID    string
	purchaseID string
	settlement service.Settlement
}

type fakeNotifier struct {
	calls []notified
	err   error
}

func (f *fakeNotifier) SaleRecorded(_ context.Context, actorID string, p *entity.Purchase, s service.Settlement) error {
	f.calls = append(f.calls, notified{actorID, p.ID, s})
	return f.err
}

type fakeSessions struct {
	current map[string]string
	fields  map[string]map[string]any
	err     error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{current: map[string]string{}, fields: map[string]map[string]any{}}
}

func (f *fakeSessions) Save(_ context.Context, userID, sid string, fields map[string]any) error {
	if f.err != nil {
		return f.err
	}
	f.current[userID] = sid
	f.fields[userID] = fields
	return nil
}

func (f *fakeSessions) Current(_ context.Context, userID string) (string, error) {
	return f.current[userID], f.err
}

func (f *fakeSessions) Delete(_ context.Context, userID string) error {
	delete(f.current, userID)
	return f.err
}

type fakeJobs struct {
	jobs []any
	err  error
}

func (f *fakeJobs) PublishJSON(_ context.Context, body any) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, body)
	return nil
}

var errBoom = errors.New("boom")

func ptr[T any](v T) *T { return &v }
