package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/salesreport/internal/model"
)

type UploadStore struct {
	db *sql.DB
}

func NewUploadStore(db *sql.DB) *UploadStore {
	return &UploadStore{db: db}
}

// Create records a saved upload and returns it with its assigned ID.
func (s *UploadStore) Create(ctx context.Context, filename, path string, size int64) (*model.Upload, error) {
	u := &model.Upload{
		ID:        uuid.NewString(),
		Filename:  filename,
		Filepath:  path,
		SizeBytes: size,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (id, filename, filepath, size_bytes, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Filename, u.Filepath, u.SizeBytes, formatTime(u.CreatedAt),
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByPath returns the most recent upload saved at path. Re-uploading a
// file with the same name overwrites it on disk, so the newest row wins.
func (s *UploadStore) GetByPath(ctx context.Context, path string) (*model.Upload, error) {
	var u model.Upload
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, filename, filepath, size_bytes, created_at FROM uploads
		 WHERE filepath = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, path,
	).Scan(&u.ID, &u.Filename, &u.Filepath, &u.SizeBytes, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(created)
	return &u, nil
}
