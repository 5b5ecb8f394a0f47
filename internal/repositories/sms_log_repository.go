package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"rental-backend/internal/models"
)

type SMSLogRepository struct {
	DB *pgxpool.Pool
}

func NewSMSLogRepository(db *pgxpool.Pool) *SMSLogRepository {
	return &SMSLogRepository{DB: db}
}

func (r *SMSLogRepository) Create(ctx context.Context, log *models.SMSLog) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO sms_logs(phone, message, message_type, tenant_id, status, error_message)
		VALUES($1, $2, $3, NULLIF($4, 0), $5, $6)
		RETURNING id, created_at
	`, log.Phone, log.Message, log.MessageType, log.TenantID, log.Status, log.ErrorMessage,
	).Scan(&log.ID, &log.CreatedAt)
}

// ListByPhone returns the send history for one phone number, newest first
func (r *SMSLogRepository) ListByPhone(ctx context.Context, phone string, limit int) ([]*models.SMSLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, phone, message, message_type, COALESCE(tenant_id, 0), status, COALESCE(error_message, ''), created_at
		FROM sms_logs WHERE phone=$1 ORDER BY created_at DESC LIMIT $2
	`, phone, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.SMSLog
	for rows.Next() {
		var l models.SMSLog
		if err := rows.Scan(&l.ID, &l.Phone, &l.Message, &l.MessageType,
			&l.TenantID, &l.Status, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
