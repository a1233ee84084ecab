package client

import "sync"

// Session records the path of the most recently uploaded file for the
// lifetime of a Controller. It starts empty and has no reset; discard the
// Controller to start over.
type Session struct {
	mu           sync.RWMutex
	uploadedPath string
}

// UploadedFilePath returns the stored path, or "" before any successful upload.
func (s *Session) UploadedFilePath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uploadedPath
}

// HasUpload reports whether report and email actions may run.
func (s *Session) HasUpload() bool {
	return s.UploadedFilePath() != ""
}

func (s *Session) setUploadedFilePath(path string) {
	s.mu.Lock()
	s.uploadedPath = path
	s.mu.Unlock()
}
