package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/models"
)

// fakeSubmissionStore keeps submissions in memory and enforces the same
// pending-only transition rule the database repository does.
type fakeSubmissionStore struct {
	subs        map[int]*models.PaymentSubmission
	transitions int
	applied     []decimal.Decimal
}

func newFakeSubmissionStore(subs ...*models.PaymentSubmission) *fakeSubmissionStore {
	f := &fakeSubmissionStore{subs: map[int]*models.PaymentSubmission{}}
	for _, s := range subs {
		f.subs[s.ID] = s
	}
	return f
}

func (f *fakeSubmissionStore) Get(ctx context.Context, id int) (*models.PaymentSubmission, error) {
	sub, ok := f.subs[id]
	if !ok {
		return nil, apperrors.NotFound("payment submission not found")
	}
	cp := *sub
	return &cp, nil
}

func (f *fakeSubmissionStore) List(ctx context.Context, filter models.SubmissionFilter) ([]*models.PaymentSubmission, *models.Pagination, error) {
	var out []*models.PaymentSubmission
	for _, s := range f.subs {
		if filter.Status != "" && string(s.VerificationStatus) != filter.Status {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, &models.Pagination{CurrentPage: 1, TotalPages: 1, TotalCount: len(out), Limit: 20}, nil
}

func (f *fakeSubmissionStore) Stats(ctx context.Context) (*models.VerificationStats, error) {
	stats := &models.VerificationStats{TotalPendingAmount: decimal.Zero}
	for _, s := range f.subs {
		if s.VerificationStatus == models.VerificationPending {
			stats.PendingCount++
			stats.TotalPendingAmount = stats.TotalPendingAmount.Add(s.Amount)
		}
	}
	return stats, nil
}

func (f *fakeSubmissionStore) Transition(ctx context.Context, p models.TransitionParams) (*models.PaymentSubmission, error) {
	f.transitions++
	sub, ok := f.subs[p.SubmissionID]
	if !ok {
		return nil, apperrors.NotFound("payment submission not found")
	}
	if sub.VerificationStatus != models.VerificationPending {
		return nil, apperrors.InvalidState("submission already " + string(sub.VerificationStatus))
	}

	switch p.Action {
	case models.BulkActionVerify:
		sub.VerificationStatus = models.VerificationVerified
		amt := p.VerifiedAmount
		sub.VerifiedAmount = &amt
		if p.ApplyToAccount {
			f.applied = append(f.applied, p.VerifiedAmount)
		}
	case models.BulkActionReject:
		sub.VerificationStatus = models.VerificationRejected
	}
	sub.AdminNotes = p.AdminNotes
	sub.Version++

	cp := *sub
	return &cp, nil
}

type fakeNotifier struct {
	reviewed []int
}

func (f *fakeNotifier) SubmissionReviewed(ctx context.Context, sub *models.PaymentSubmission) {
	f.reviewed = append(f.reviewed, sub.ID)
}

func pendingSubmission(id int, amount string) *models.PaymentSubmission {
	return &models.PaymentSubmission{
		ID:                 id,
		LeaseID:            1,
		TenantID:           10,
		TenantName:         "Jane Wanjiku",
		TenantPhone:        "+254700000001",
		Amount:             decimal.RequireFromString(amount),
		PaymentMethod:      models.MethodMpesa,
		VerificationStatus: models.VerificationPending,
		Version:            1,
	}
}

func TestVerifyAppliesAndNotifies(t *testing.T) {
	store := newFakeSubmissionStore(pendingSubmission(1, "15000"))
	notifier := &fakeNotifier{}
	svc := NewVerificationService(store, notifier)

	amount := decimal.RequireFromString("14500")
	sub, err := svc.Verify(context.Background(), 1, models.VerifyRequest{
		AdminNotes:     "matched mpesa statement",
		VerifiedAmount: &amount,
		ApplyToAccount: true,
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, models.VerificationVerified, sub.VerificationStatus)
	require.NotNil(t, sub.VerifiedAmount)
	assert.True(t, sub.VerifiedAmount.Equal(amount))
	assert.Equal(t, 2, sub.Version)
	require.Len(t, store.applied, 1)
	assert.True(t, store.applied[0].Equal(amount))
	assert.Equal(t, []int{1}, notifier.reviewed)
}

func TestVerifyDefaultsToClaimedAmount(t *testing.T) {
	store := newFakeSubmissionStore(pendingSubmission(1, "15000"))
	svc := NewVerificationService(store, nil)

	sub, err := svc.Verify(context.Background(), 1, models.VerifyRequest{
		AdminNotes:     "ok",
		ApplyToAccount: true,
	}, 7)

	require.NoError(t, err)
	require.NotNil(t, sub.VerifiedAmount)
	assert.True(t, sub.VerifiedAmount.Equal(decimal.RequireFromString("15000")))
}

func TestVerifyValidation(t *testing.T) {
	store := newFakeSubmissionStore(pendingSubmission(1, "15000"))
	svc := NewVerificationService(store, nil)

	_, err := svc.Verify(context.Background(), 1, models.VerifyRequest{AdminNotes: "  "}, 7)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	negative := decimal.RequireFromString("-5")
	_, err = svc.Verify(context.Background(), 1, models.VerifyRequest{
		AdminNotes:     "ok",
		VerifiedAmount: &negative,
	}, 7)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Nothing should have reached the store
	assert.Equal(t, 0, store.transitions)
}

func TestVerifyAlreadyDecided(t *testing.T) {
	sub := pendingSubmission(1, "15000")
	sub.VerificationStatus = models.VerificationVerified
	store := newFakeSubmissionStore(sub)
	svc := NewVerificationService(store, nil)

	_, err := svc.Verify(context.Background(), 1, models.VerifyRequest{AdminNotes: "again"}, 7)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestRejectNeverTouchesLedger(t *testing.T) {
	store := newFakeSubmissionStore(pendingSubmission(1, "15000"))
	notifier := &fakeNotifier{}
	svc := NewVerificationService(store, notifier)

	sub, err := svc.Reject(context.Background(), 1, models.RejectRequest{AdminNotes: "reference not found in statement"}, 7)

	require.NoError(t, err)
	assert.Equal(t, models.VerificationRejected, sub.VerificationStatus)
	assert.Empty(t, store.applied)
	assert.Equal(t, []int{1}, notifier.reviewed)
}

func TestRejectNotFound(t *testing.T) {
	svc := NewVerificationService(newFakeSubmissionStore(), nil)

	_, err := svc.Reject(context.Background(), 99, models.RejectRequest{AdminNotes: "x"}, 7)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBulkVerifyPartialFailure(t *testing.T) {
	decided := pendingSubmission(2, "8000")
	decided.VerificationStatus = models.VerificationRejected
	store := newFakeSubmissionStore(
		pendingSubmission(1, "15000"),
		decided,
		pendingSubmission(3, "12000"),
	)
	svc := NewVerificationService(store, nil)

	result, err := svc.BulkVerify(context.Background(), models.BulkVerifyRequest{
		SubmissionIDs:   []int{1, 2, 3, 4},
		Action:          models.BulkActionVerify,
		AdminNotes:      "batch reconciliation 2026-09",
		ApplyToAccounts: true,
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, result.Succeeded)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, 2, result.Failed[0].SubmissionID)
	assert.Equal(t, 4, result.Failed[1].SubmissionID)

	// The two pending ones were verified with their claimed amounts
	assert.Len(t, store.applied, 2)
	assert.Equal(t, models.VerificationVerified, store.subs[1].VerificationStatus)
	assert.Equal(t, models.VerificationVerified, store.subs[3].VerificationStatus)
	// The decided one kept its terminal state
	assert.Equal(t, models.VerificationRejected, store.subs[2].VerificationStatus)
}

func TestBulkVerifyDeduplicatesIDs(t *testing.T) {
	store := newFakeSubmissionStore(pendingSubmission(1, "15000"))
	svc := NewVerificationService(store, nil)

	result, err := svc.BulkVerify(context.Background(), models.BulkVerifyRequest{
		SubmissionIDs: []int{1, 1, 1},
		Action:        models.BulkActionReject,
		AdminNotes:    "duplicate batch",
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, []int{1}, result.Succeeded)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 1, store.transitions)
}

func TestBulkVerifyValidation(t *testing.T) {
	svc := NewVerificationService(newFakeSubmissionStore(), nil)

	_, err := svc.BulkVerify(context.Background(), models.BulkVerifyRequest{
		SubmissionIDs: []int{1},
		Action:        "archive",
		AdminNotes:    "x",
	}, 7)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.BulkVerify(context.Background(), models.BulkVerifyRequest{
		Action:     models.BulkActionVerify,
		AdminNotes: "x",
	}, 7)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
