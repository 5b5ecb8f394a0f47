package services

import (
	"context"
	"fmt"
	"log"

	"rental-backend/internal/models"
	"rental-backend/internal/sms"
)

// NotificationService pushes verification outcomes to tenants over SMS.
// It implements Notifier.
type NotificationService struct {
	SMS sms.Provider
}

func NewNotificationService(smsProvider sms.Provider) *NotificationService {
	return &NotificationService{SMS: smsProvider}
}

// SubmissionReviewed notifies the tenant that their payment submission was
// verified or rejected. Failures are logged and swallowed: the decision
// already committed and a dead phone number must not surface as an API error.
func (n *NotificationService) SubmissionReviewed(ctx context.Context, sub *models.PaymentSubmission) {
	if sub == nil || sub.TenantPhone == "" {
		return
	}

	var message string
	switch sub.VerificationStatus {
	case models.VerificationVerified:
		amount := sub.Amount
		if sub.VerifiedAmount != nil {
			amount = *sub.VerifiedAmount
		}
		message = fmt.Sprintf("Dear %s, your payment of KES %s (ref %s) has been verified and applied to your account. Thank you.",
			sub.TenantName, amount.StringFixed(2), sub.TransactionReference)
	case models.VerificationRejected:
		message = fmt.Sprintf("Dear %s, your payment submission (ref %s) could not be verified. Reason: %s. Please contact the management office.",
			sub.TenantName, sub.TransactionReference, sub.AdminNotes)
	default:
		return
	}

	if err := n.SMS.SendSMS(sub.TenantPhone, message, models.SMSTypeVerification, sub.TenantID); err != nil {
		log.Printf("[Notify] verification SMS to tenant %d failed: %v", sub.TenantID, err)
	}
}
