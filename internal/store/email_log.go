package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/salesreport/internal/model"
)

type EmailLogStore struct {
	db *sql.DB
}

func NewEmailLogStore(db *sql.DB) *EmailLogStore {
	return &EmailLogStore{db: db}
}

// Record stores the outcome of one delivery attempt. sendErr may be nil.
func (s *EmailLogStore) Record(ctx context.Context, reportID, recipient string, sendErr error) (*model.EmailLog, error) {
	e := &model.EmailLog{
		ID:        uuid.NewString(),
		ReportID:  reportID,
		Recipient: recipient,
		Status:    model.EmailSent,
		CreatedAt: time.Now().UTC(),
	}
	if sendErr != nil {
		e.Status = model.EmailFailed
		e.Error = sendErr.Error()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO email_log (id, report_id, recipient, status, error, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.ReportID, e.Recipient, string(e.Status), e.Error, formatTime(e.CreatedAt),
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListForReport returns the delivery attempts for a report, oldest first.
func (s *EmailLogStore) ListForReport(ctx context.Context, reportID string) ([]model.EmailLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, report_id, recipient, status, error, created_at FROM email_log
		 WHERE report_id = ? ORDER BY created_at, rowid`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.EmailLog
	for rows.Next() {
		var e model.EmailLog
		var status, created string
		if err := rows.Scan(&e.ID, &e.ReportID, &e.Recipient, &status, &e.Error, &created); err != nil {
			return nil, err
		}
		e.Status = model.EmailStatus(status)
		e.CreatedAt = parseTime(created)
		logs = append(logs, e)
	}
	return logs, rows.Err()
}
