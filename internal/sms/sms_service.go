package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rental-backend/internal/models"
)

// Provider is an interface for sending SMS messages
type Provider interface {
	SendSMS(phone, message, messageType string, tenantID int) error
	SetLogRepository(repo LogRepo)
}

// LogRepo interface for logging sends
type LogRepo interface {
	Create(ctx context.Context, log *models.SMSLog) error
}

// GatewayService implements Provider against an Africa's Talking style
// bulk-messaging HTTP gateway
type GatewayService struct {
	APIKey   string
	Username string
	SenderID string
	Endpoint string
	LogRepo  LogRepo

	client *http.Client
}

// NewGatewayService creates a new SMS gateway client
func NewGatewayService(apiKey, username, senderID, endpoint string) *GatewayService {
	if endpoint == "" {
		endpoint = "https://api.africastalking.com/version1/messaging"
	}
	return &GatewayService{
		APIKey:   apiKey,
		Username: username,
		SenderID: senderID,
		Endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SetLogRepository sets the SMS log repository
func (s *GatewayService) SetLogRepository(repo LogRepo) {
	s.LogRepo = repo
}

type gatewayResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			Number string `json:"number"`
			Status string `json:"status"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// SendSMS sends a single SMS message and logs the outcome
func (s *GatewayService) SendSMS(phone, message, messageType string, tenantID int) error {
	form := url.Values{}
	form.Set("username", s.Username)
	form.Set("to", phone)
	form.Set("message", message)
	if s.SenderID != "" {
		form.Set("from", s.SenderID)
	}

	req, err := http.NewRequest(http.MethodPost, s.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiKey", s.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logSend(phone, message, messageType, tenantID, "failed", err.Error())
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		errMsg := fmt.Sprintf("gateway returned %d: %s", resp.StatusCode, string(body))
		s.logSend(phone, message, messageType, tenantID, "failed", errMsg)
		return fmt.Errorf("sms gateway error: %s", errMsg)
	}

	var parsed gatewayResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		for _, rcpt := range parsed.SMSMessageData.Recipients {
			if rcpt.Status != "Success" {
				errMsg := fmt.Sprintf("recipient %s status %s", rcpt.Number, rcpt.Status)
				s.logSend(phone, message, messageType, tenantID, "failed", errMsg)
				return fmt.Errorf("sms not delivered: %s", errMsg)
			}
		}
	}

	s.logSend(phone, message, messageType, tenantID, "sent", "")
	return nil
}

func (s *GatewayService) logSend(phone, message, messageType string, tenantID int, status, errMsg string) {
	if s.LogRepo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry := &models.SMSLog{
		Phone:        phone,
		Message:      message,
		MessageType:  messageType,
		TenantID:     tenantID,
		Status:       status,
		ErrorMessage: errMsg,
	}
	if err := s.LogRepo.Create(ctx, entry); err != nil {
		log.Printf("[SMS] failed to log send to %s: %v", phone, err)
	}
}

// NoopService satisfies Provider when SMS is disabled in config; sends are
// logged and dropped.
type NoopService struct {
	LogRepo LogRepo
}

func (s *NoopService) SetLogRepository(repo LogRepo) { s.LogRepo = repo }

func (s *NoopService) SendSMS(phone, message, messageType string, tenantID int) error {
	log.Printf("[SMS] disabled, dropping %s to %s", messageType, phone)
	return nil
}
