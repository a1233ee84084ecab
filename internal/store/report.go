package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/salesreport/internal/model"
)

type ReportStore struct {
	db *sql.DB
}

func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

// Create records a report written to path for the given upload.
func (s *ReportStore) Create(ctx context.Context, uploadID, startDate, endDate, path string) (*model.Report, error) {
	r := &model.Report{
		ID:        uuid.NewString(),
		UploadID:  uploadID,
		StartDate: startDate,
		EndDate:   endDate,
		Filepath:  path,
		Filename:  filepath.Base(path),
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, upload_id, start_date, end_date, filepath, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.UploadID, r.StartDate, r.EndDate, r.Filepath, formatTime(r.CreatedAt),
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// LatestForUpload returns the most recently generated report for an upload.
func (s *ReportStore) LatestForUpload(ctx context.Context, uploadID string) (*model.Report, error) {
	return s.get(ctx,
		`SELECT id, upload_id, start_date, end_date, filepath, created_at FROM reports
		 WHERE upload_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, uploadID)
}

// Get returns a report by ID.
func (s *ReportStore) Get(ctx context.Context, id string) (*model.Report, error) {
	return s.get(ctx,
		`SELECT id, upload_id, start_date, end_date, filepath, created_at FROM reports WHERE id = ?`, id)
}

// List returns all reports, newest first.
func (s *ReportStore) List(ctx context.Context) ([]model.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, upload_id, start_date, end_date, filepath, created_at FROM reports ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []model.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

func (s *ReportStore) get(ctx context.Context, query string, arg any) (*model.Report, error) {
	r, err := scanReport(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*model.Report, error) {
	var r model.Report
	var created string
	if err := row.Scan(&r.ID, &r.UploadID, &r.StartDate, &r.EndDate, &r.Filepath, &created); err != nil {
		return nil, err
	}
	r.Filename = filepath.Base(r.Filepath)
	r.CreatedAt = parseTime(created)
	return &r, nil
}
