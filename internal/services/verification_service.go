package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/cache"
	"rental-backend/internal/metrics"
	"rental-backend/internal/models"
)

// SubmissionStore is the persistence the verification engine needs. The pgx
// repository implements it; tests use an in-memory fake.
type SubmissionStore interface {
	Get(ctx context.Context, id int) (*models.PaymentSubmission, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]*models.PaymentSubmission, *models.Pagination, error)
	Stats(ctx context.Context) (*models.VerificationStats, error)
	Transition(ctx context.Context, p models.TransitionParams) (*models.PaymentSubmission, error)
}

// Notifier tells the tenant what happened to their submission. Sends happen
// after the transaction commits; a notification failure never rolls back a
// decision.
type Notifier interface {
	SubmissionReviewed(ctx context.Context, sub *models.PaymentSubmission)
}

type VerificationService struct {
	Store    SubmissionStore
	Notifier Notifier
}

func NewVerificationService(store SubmissionStore, notifier Notifier) *VerificationService {
	return &VerificationService{Store: store, Notifier: notifier}
}

func (s *VerificationService) GetSubmission(ctx context.Context, id int) (*models.PaymentSubmission, error) {
	return s.Store.Get(ctx, id)
}

// ListSubmissions applies the dashboard filters
func (s *VerificationService) ListSubmissions(ctx context.Context, filter models.SubmissionFilter) (*models.SubmissionList, error) {
	subs, pagination, err := s.Store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []*models.PaymentSubmission{}
	}
	return &models.SubmissionList{Submissions: subs, Pagination: pagination}, nil
}

// Stats returns the dashboard counters, served from cache when fresh
func (s *VerificationService) Stats(ctx context.Context) (*models.VerificationStats, error) {
	if cached, ok := cache.GetVerificationStats(ctx); ok {
		return cached, nil
	}
	stats, err := s.Store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	cache.SetVerificationStats(ctx, stats)
	return stats, nil
}

// Verify transitions one pending submission to verified, optionally applying
// the verified amount to the lease's ledger. The caller's amount override
// wins over the tenant-claimed amount.
func (s *VerificationService) Verify(ctx context.Context, submissionID int, req models.VerifyRequest, actorID int) (*models.PaymentSubmission, error) {
	if strings.TrimSpace(req.AdminNotes) == "" {
		return nil, apperrors.Validation("admin notes are required to verify a submission")
	}

	amount := decimal.Zero
	if req.VerifiedAmount != nil {
		if !req.VerifiedAmount.IsPositive() {
			return nil, apperrors.Validation("verified amount must be greater than zero")
		}
		amount = *req.VerifiedAmount
	} else {
		// Default to the tenant-claimed amount
		sub, err := s.Store.Get(ctx, submissionID)
		if err != nil {
			return nil, err
		}
		amount = sub.Amount
	}

	sub, err := s.Store.Transition(ctx, models.TransitionParams{
		SubmissionID:   submissionID,
		Action:         models.BulkActionVerify,
		AdminNotes:     req.AdminNotes,
		VerifiedAmount: amount,
		ApplyToAccount: req.ApplyToAccount,
		ActorID:        actorID,
	})
	if err != nil {
		metrics.VerificationsTotal.WithLabelValues("verify", outcomeLabel(err)).Inc()
		return nil, err
	}

	metrics.VerificationsTotal.WithLabelValues("verify", "ok").Inc()
	if req.ApplyToAccount {
		applied, _ := amount.Float64()
		metrics.LedgerAppliedAmount.Add(applied)
	}
	cache.InvalidateVerificationStats(ctx)

	if s.Notifier != nil {
		s.Notifier.SubmissionReviewed(ctx, sub)
	}
	return sub, nil
}

// Reject transitions one pending submission to rejected. The ledger is never
// touched.
func (s *VerificationService) Reject(ctx context.Context, submissionID int, req models.RejectRequest, actorID int) (*models.PaymentSubmission, error) {
	if strings.TrimSpace(req.AdminNotes) == "" {
		return nil, apperrors.Validation("admin notes are required to reject a submission")
	}

	sub, err := s.Store.Transition(ctx, models.TransitionParams{
		SubmissionID: submissionID,
		Action:       models.BulkActionReject,
		AdminNotes:   req.AdminNotes,
		ActorID:      actorID,
	})
	if err != nil {
		metrics.VerificationsTotal.WithLabelValues("reject", outcomeLabel(err)).Inc()
		return nil, err
	}

	metrics.VerificationsTotal.WithLabelValues("reject", "ok").Inc()
	cache.InvalidateVerificationStats(ctx)

	if s.Notifier != nil {
		s.Notifier.SubmissionReviewed(ctx, sub)
	}
	return sub, nil
}

// BulkVerify applies one decision to a set of submissions, each in its own
// transaction: one failure never rolls back the others. A submission someone
// verified individually mid-batch lands in Failed with its reason instead of
// aborting the run.
func (s *VerificationService) BulkVerify(ctx context.Context, req models.BulkVerifyRequest, actorID int) (*models.BulkVerifyResult, error) {
	if req.Action != models.BulkActionVerify && req.Action != models.BulkActionReject {
		return nil, apperrors.Validation(fmt.Sprintf("unknown bulk action %q", req.Action))
	}
	if strings.TrimSpace(req.AdminNotes) == "" {
		return nil, apperrors.Validation("admin notes are required for bulk actions")
	}
	if len(req.SubmissionIDs) == 0 {
		return nil, apperrors.Validation("no submissions selected")
	}

	result := &models.BulkVerifyResult{
		Succeeded: []int{},
		Failed:    []models.BulkFailure{},
	}

	seen := make(map[int]bool, len(req.SubmissionIDs))
	for _, id := range req.SubmissionIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		if err := s.bulkOne(ctx, id, req, actorID); err != nil {
			result.Failed = append(result.Failed, models.BulkFailure{
				SubmissionID: id,
				Reason:       err.Error(),
			})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	cache.InvalidateVerificationStats(ctx)
	log.Printf("[Verification] bulk %s: %d succeeded, %d failed",
		req.Action, len(result.Succeeded), len(result.Failed))
	return result, nil
}

func (s *VerificationService) bulkOne(ctx context.Context, id int, req models.BulkVerifyRequest, actorID int) error {
	params := models.TransitionParams{
		SubmissionID: id,
		Action:       req.Action,
		AdminNotes:   req.AdminNotes,
		ActorID:      actorID,
	}

	if req.Action == models.BulkActionVerify {
		// Bulk mode has no per-item amount override: the submission's own
		// claimed amount is the verified amount.
		sub, err := s.Store.Get(ctx, id)
		if err != nil {
			metrics.VerificationsTotal.WithLabelValues(req.Action, outcomeLabel(err)).Inc()
			return err
		}
		params.VerifiedAmount = sub.Amount
		params.ApplyToAccount = req.ApplyToAccounts
	}

	sub, err := s.Store.Transition(ctx, params)
	if err != nil {
		metrics.VerificationsTotal.WithLabelValues(req.Action, outcomeLabel(err)).Inc()
		return err
	}

	metrics.VerificationsTotal.WithLabelValues(req.Action, "ok").Inc()
	if params.ApplyToAccount {
		applied, _ := params.VerifiedAmount.Float64()
		metrics.LedgerAppliedAmount.Add(applied)
	}
	if s.Notifier != nil {
		s.Notifier.SubmissionReviewed(ctx, sub)
	}
	return nil
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, apperrors.ErrValidation):
		return "validation"
	default:
		return "error"
	}
}
