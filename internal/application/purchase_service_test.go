package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora-app/vendora/internal/domain/entity"
	"github.com/vendora-app/vendora/internal/domain/errs"
)

type purchaseFixture struct {
	svc      *PurchaseService
	repo     *memPurchases
	users    *memUsers
	index    *fakeIndex
	notifier *fakeNotifier

	owner, partner, stranger *entity.User
}

func newPurchaseFixture() *purchaseFixture {
	owner := &entity.User{ID: uuid.NewString(), Email: "owner@example.com", Name: "Owner"}
	partner := &entity.User{ID: uuid.NewString(), Email: "partner@example.com", Name: "Partner"}
	stranger := &entity.User{ID: uuid.NewString(), Email: "stranger@example.com", Name: "Stranger"}

	f := &purchaseFixture{
		repo:     newMemPurchases(),
		users:    newMemUsers(owner, partner, stranger),
		index:    &fakeIndex{},
		notifier: &fakeNotifier{},
		owner:    owner,
		partner:  partner,
		stranger: stranger,
	}
	f.svc = NewPurchaseService(f.repo, f.users, f.index, f.notifier, quietLogger())
	return f
}

func (f *purchaseFixture) create(t *testing.T, ownerID string, partnerIDs ...string) *entity.Purchase {
	t.Helper()
	in := CreatePurchaseInput{
		Name:           "Camera lot",
		TotalAmount:    ptr(1000.0),
		OwnerInvest:    ptr(600.0),
		PartnerInvest:  ptr(400.0),
		ParticipantIDs: partnerIDs,
	}
	p, err := f.svc.Create(context.Background(), ownerID, in)
	require.NoError(t, err)
	return p
}

func TestPurchaseService_Create_InvestmentTolerance(t *testing.T) {
	cases := []struct {
		name    string
		total   float64
		owner   float64
		partner *float64
		wantErr bool
	}{
		{"exact split", 1000, 600, ptr(400.0), false},
		{"within tolerance", 1000, 600.005, ptr(399.99), false},
		{"at tolerance", 1000, 600, ptr(399.99), false},
		{"over tolerance", 1000, 600, ptr(399.98), true},
		{"partner defaults to zero", 1000, 1000, nil, false},
		{"owner alone short", 1000, 900, nil, true},
		{"negative partner", 1000, 1100, ptr(-100.0), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newPurchaseFixture()
			p, err := f.svc.Create(context.Background(), f.owner.ID, CreatePurchaseInput{
				Name:          "Item",
				TotalAmount:   ptr(tc.total),
				OwnerInvest:   ptr(tc.owner),
				PartnerInvest: tc.partner,
			})
			if tc.wantErr {
				require.ErrorIs(t, err, errs.ErrValidation)
				assert.Zero(t, f.repo.writes)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, entity.StatusBought, p.Status)
			assert.Nil(t, p.SaleAmount)
			assert.Nil(t, p.SaleDate)
			if tc.partner == nil {
				assert.Equal(t, 0.0, p.PartnerInvest)
			}
		})
	}
}

func TestPurchaseService_Create_MissingFields(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()

	for name, in := range map[string]CreatePurchaseInput{
		"name":  {Name: "  ", TotalAmount: ptr(10.0), OwnerInvest: ptr(10.0)},
		"total": {Name: "x", OwnerInvest: ptr(10.0)},
		"owner": {Name: "x", TotalAmount: ptr(10.0)},
	} {
		_, err := f.svc.Create(ctx, f.owner.ID, in)
		var ve *errs.ValidationError
		require.ErrorAs(t, err, &ve, name)
		assert.Equal(t, "missing required fields", ve.Message, name)
	}
}

func TestPurchaseService_Create_Unauthenticated(t *testing.T) {
	f := newPurchaseFixture()
	in := CreatePurchaseInput{Name: "x", TotalAmount: ptr(1.0), OwnerInvest: ptr(1.0)}

	_, err := f.svc.Create(context.Background(), "", in)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	_, err = f.svc.Create(context.Background(), uuid.NewString(), in)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestPurchaseService_Create_ParticipantsAreASet(t *testing.T) {
	f := newPurchaseFixture()
	p, err := f.svc.Create(context.Background(), f.owner.ID, CreatePurchaseInput{
		Name:           "Shared",
		Description:    ptr("two partners"),
		TotalAmount:    ptr(100.0),
		OwnerInvest:    ptr(50.0),
		PartnerInvest:  ptr(50.0),
		ImageURLs:      []string{"https://img/1.jpg", " ", "https://img/2.jpg"},
		ParticipantIDs: []string{f.partner.ID, f.owner.ID, f.partner.ID},
		PartnerID:      f.stranger.ID,
	})
	require.NoError(t, err)

	ids := []string{}
	for _, u := range p.Participants {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []string{f.partner.ID, f.stranger.ID}, ids)
	require.NotNil(t, p.User)
	assert.Equal(t, f.owner.Email, p.User.Email)
	require.Len(t, p.Images, 2)
	assert.Equal(t, "https://img/2.jpg", p.Images[1].URL)
	assert.Equal(t, []string{p.ID}, f.index.indexed)
}

func TestPurchaseService_Create_UnknownParticipant(t *testing.T) {
	f := newPurchaseFixture()
	base := CreatePurchaseInput{Name: "x", TotalAmount: ptr(1.0), OwnerInvest: ptr(1.0)}

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		in := base
		in.PartnerID = id
		_, err := f.svc.Create(context.Background(), f.owner.ID, in)
		var ve *errs.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "unknown participant", ve.Message)
	}
	assert.Zero(t, f.repo.writes)
}

func TestPurchaseService_Create_NoPartnersSkipsLookup(t *testing.T) {
	f := newPurchaseFixture()
	p := f.create(t, f.owner.ID)
	assert.Empty(t, p.Participants)
	assert.NotNil(t, p.Participants)
	assert.Zero(t, f.users.calls)
}

func TestPurchaseService_Create_IndexFailureIsNotFatal(t *testing.T) {
	f := newPurchaseFixture()
	f.index.err = errBoom
	p := f.create(t, f.owner.ID)
	assert.NotEmpty(t, p.ID)
}

func TestPurchaseService_Create_StoreError(t *testing.T) {
	f := newPurchaseFixture()
	f.repo.err = errBoom
	_, err := f.svc.Create(context.Background(), f.owner.ID, CreatePurchaseInput{Name: "x", TotalAmount: ptr(1.0), OwnerInvest: ptr(1.0)})
	assert.ErrorIs(t, err, errBoom)
}

func TestPurchaseService_List_OnlyOwnedOrShared(t *testing.T) {
	f := newPurchaseFixture()
	own := f.create(t, f.owner.ID)
	shared := f.create(t, f.partner.ID, f.owner.ID)
	f.create(t, f.stranger.ID)
	f.create(t, f.partner.ID)

	got, err := f.svc.List(context.Background(), f.owner.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// newest first
	assert.Equal(t, shared.ID, got[0].ID)
	assert.Equal(t, own.ID, got[1].ID)

	got, err = f.svc.List(context.Background(), f.stranger.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = f.svc.List(context.Background(), "")
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestPurchaseService_Get(t *testing.T) {
	f := newPurchaseFixture()
	p := f.create(t, f.owner.ID, f.partner.ID)
	ctx := context.Background()

	got, err := f.svc.Get(ctx, f.partner.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = f.svc.Get(ctx, f.stranger.ID, p.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)
	_, err = f.svc.Get(ctx, f.owner.ID, "nope")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestPurchaseService_SellUnsell_RoundTrip(t *testing.T) {
	f := newPurchaseFixture()
	p := f.create(t, f.owner.ID, f.partner.ID)
	ctx := context.Background()

	sold, err := f.svc.MarkSold(ctx, f.partner.ID, p.ID, SaleInput{SaleAmount: ptr(1500.0), SaleDate: "2026-03-15"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSold, sold.Status)
	require.NotNil(t, sold.SaleAmount)
	assert.Equal(t, 1500.0, *sold.SaleAmount)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), *sold.SaleDate)

	require.Len(t, f.notifier.calls, 1)
	call := f.notifier.calls[0]
	assert.Equal(t, f.partner.ID, call.actorID)
	assert.Equal(t, 500.0, call.settlement.Profit)
	assert.Equal(t, 300.0, call.settlement.OwnerProfit)
	assert.Equal(t, 600.0, call.settlement.PartnerPayout)

	reverted, err := f.svc.UnmarkSold(ctx, f.owner.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Status, reverted.Status)
	assert.Equal(t, p.SaleAmount, reverted.SaleAmount)
	assert.Equal(t, p.SaleDate, reverted.SaleDate)

	stored, err := f.repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusBought, stored.Status)
	assert.Nil(t, stored.SaleAmount)
	assert.Nil(t, stored.SaleDate)
	assert.Len(t, f.index.indexed, 3)
}

func TestPurchaseService_MarkSold_Errors(t *testing.T) {
	f := newPurchaseFixture()
	p := f.create(t, f.owner.ID, f.partner.ID)
	ctx := context.Background()
	valid := SaleInput{SaleAmount: ptr(10.0), SaleDate: "2026-01-02"}

	cases := []struct {
		name  string
		actor string
		id    string
		in    SaleInput
		want  error
	}{
		{"no session", "", p.ID, valid, errs.ErrUnauthenticated},
		{"missing purchase", f.owner.ID, uuid.NewString(), valid, errs.ErrNotFound},
		{"malformed id", f.owner.ID, "42", valid, errs.ErrNotFound},
		{"third party", f.stranger.ID, p.ID, valid, errs.ErrForbidden},
		{"third party without fields", f.stranger.ID, p.ID, SaleInput{}, errs.ErrForbidden},
		{"missing amount", f.owner.ID, p.ID, SaleInput{SaleDate: "2026-01-02"}, errs.ErrValidation},
		{"missing date", f.owner.ID, p.ID, SaleInput{SaleAmount: ptr(10.0)}, errs.ErrValidation},
		{"negative amount", f.owner.ID, p.ID, SaleInput{SaleAmount: ptr(-1.0), SaleDate: "2026-01-02"}, errs.ErrValidation},
		{"bad date", f.owner.ID, p.ID, SaleInput{SaleAmount: ptr(10.0), SaleDate: "15/03/2026"}, errs.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.MarkSold(ctx, tc.actor, tc.id, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Empty(t, f.notifier.calls)
}

func TestPurchaseService_Transitions(t *testing.T) {
	f := newPurchaseFixture()
	p := f.create(t, f.owner.ID)
	ctx := context.Background()

	_, err := f.svc.UnmarkSold(ctx, f.owner.ID, p.ID)
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)

	_, err = f.svc.MarkSold(ctx, f.owner.ID, p.ID, SaleInput{SaleAmount: ptr(1.0), SaleDate: "2026-01-02"})
	require.NoError(t, err)
	_, err = f.svc.MarkSold(ctx, f.owner.ID, p.ID, SaleInput{SaleAmount: ptr(2.0), SaleDate: "2026-01-03"})
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)

	_, err = f.svc.UnmarkSold(ctx, f.stranger.ID, p.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)
}

// staleRepo serves a snapshot taken before a concurrent write landed.
type staleRepo struct {
	*memPurchases
	snapshot *entity.Purchase
}

func (s *staleRepo) GetByID(_ context.Context, _ string) (*entity.Purchase, error) {
	return clonePurchase(s.snapshot), nil
}

func TestPurchaseService_MarkSold_ConcurrentSaleConflicts(t *testing.T) {
	f := newPurchaseFixture()
	p := f.create(t, f.owner.ID, f.partner.ID)
	ctx := context.Background()

	snapshot, err := f.repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	_, err = f.svc.MarkSold(ctx, f.owner.ID, p.ID, SaleInput{SaleAmount: ptr(1200.0), SaleDate: "2026-02-01"})
	require.NoError(t, err)

	late := NewPurchaseService(&staleRepo{memPurchases: f.repo, snapshot: snapshot}, f.users, nil, nil, quietLogger())
	_, err = late.MarkSold(ctx, f.partner.ID, p.ID, SaleInput{SaleAmount: ptr(900.0), SaleDate: "2026-02-02"})
	assert.ErrorIs(t, err, errs.ErrConflict)

	stored, err := f.repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, *stored.SaleAmount)
}

func TestPurchaseService_MarkSold_DeletedMeanwhile(t *testing.T) {
	f := newPurchaseFixture()
	p := f.create(t, f.owner.ID, f.partner.ID)
	ctx := context.Background()

	snapshot, err := f.repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, f.owner.ID, p.ID))

	late := NewPurchaseService(&staleRepo{memPurchases: f.repo, snapshot: snapshot}, f.users, nil, nil, quietLogger())
	_, err = late.MarkSold(ctx, f.partner.ID, p.ID, SaleInput{SaleAmount: ptr(900.0), SaleDate: "2026-02-02"})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestPurchaseService_Delete(t *testing.T) {
	f := newPurchaseFixture()
	p := f.create(t, f.owner.ID, f.partner.ID)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Delete(ctx, f.partner.ID, p.ID), errs.ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.stranger.ID, p.ID), errs.ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(ctx, "", p.ID), errs.ErrUnauthenticated)

	require.NoError(t, f.svc.Delete(ctx, f.owner.ID, p.ID))
	assert.Equal(t, []string{p.ID}, f.index.removed)
	_, err := f.repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestPurchaseService_Delete_NotFoundForAnyActor(t *testing.T) {
	f := newPurchaseFixture()
	missing := uuid.NewString()
	for _, actor := range []string{f.owner.ID, f.partner.ID, f.stranger.ID} {
		assert.ErrorIs(t, f.svc.Delete(context.Background(), actor, missing), errs.ErrNotFound)
		assert.ErrorIs(t, f.svc.Delete(context.Background(), actor, "garbage"), errs.ErrNotFound)
	}
}

func TestPurchaseService_AddImages(t *testing.T) {
	f := newPurchaseFixture()
	p := f.create(t, f.owner.ID, f.partner.ID)
	ctx := context.Background()

	got, err := f.svc.AddImages(ctx, f.partner.ID, p.ID, []string{"https://img/a.png", ""})
	require.NoError(t, err)
	require.Len(t, got.Images, 1)
	assert.Equal(t, "https://img/a.png", got.Images[0].URL)

	_, err = f.svc.AddImages(ctx, f.owner.ID, p.ID, []string{" "})
	assert.ErrorIs(t, err, errs.ErrValidation)
	_, err = f.svc.AddImages(ctx, f.stranger.ID, p.ID, []string{"https://img/b.png"})
	assert.ErrorIs(t, err, errs.ErrForbidden)
}

func TestPurchaseService_Preview(t *testing.T) {
	f := newPurchaseFixture()
	p := f.create(t, f.owner.ID, f.partner.ID)

	st, err := f.svc.Preview(context.Background(), f.owner.ID, p.ID, 1500)
	require.NoError(t, err)
	assert.Equal(t, 500.0, st.Profit)
	assert.Equal(t, 300.0, st.OwnerProfit)
	assert.Equal(t, 200.0, st.PartnerProfit)
	assert.Equal(t, 900.0, st.OwnerPayout)
	assert.Equal(t, 600.0, st.PartnerPayout)

	_, err = f.svc.Preview(context.Background(), f.owner.ID, p.ID, -5)
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, 1, f.repo.writes, "preview must not write")
}

func TestPurchaseService_Search(t *testing.T) {
	f := newPurchaseFixture()
	f.index.hits = []SearchHit{{ID: "1", Name: "Camera"}}
	ctx := context.Background()

	hits, err := f.svc.Search(ctx, f.owner.ID, "camera", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = f.svc.Search(ctx, f.owner.ID, "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	f.svc.Index = nil
	hits, err = f.svc.Search(ctx, f.owner.ID, "camera", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	_, err = f.svc.Search(ctx, "", "camera", 10)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestParseSaleDate(t *testing.T) {
	d, err := ParseSaleDate("2026-04-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseSaleDate("2026-04-01T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 8, 30, 0, 0, time.UTC), d)

	_, err = ParseSaleDate("yesterday")
	assert.ErrorIs(t, err, errs.ErrValidation)
}
