package client

import (
	"context"
	"io"
)

// Notifier shows a blocking, user-facing alert.
type Notifier interface {
	Notify(message string)
}

// Display is the area where generated report text is rendered.
// SetText replaces the previous content entirely.
type Display interface {
	SetText(text string)
}

// SelectedFile is a file chosen by the user for upload.
type SelectedFile struct {
	Name    string
	Content io.Reader
}

// FilePicker yields the file currently selected by the user.
// ok is false when nothing is selected.
type FilePicker interface {
	Selected(ctx context.Context) (file SelectedFile, ok bool, err error)
}
