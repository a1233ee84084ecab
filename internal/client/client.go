// Package client drives the upload, report and email actions against the
// report server on behalf of one interactive user.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
)

const (
	EndpointUpload         = "/upload"
	EndpointGenerateReport = "/generate-report"
	EndpointSendEmail      = "/send-email"
)

// User-facing notification texts.
const (
	MsgSelectFile    = "Please select a file"
	MsgUploadFirst   = "Please upload a file first"
	MsgUploadSuccess = "File uploaded successfully!"
	MsgUploadFailed  = "Failed to upload file"
	MsgNoReport      = "No report generated"
)

var errNullBody = errors.New("response body is null")

type uploadResult struct {
	Filepath string `json:"filepath"`
}

type reportRequest struct {
	Filepath  string `json:"filepath"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type reportResult struct {
	Report string `json:"report"`
}

type emailRequest struct {
	Filepath string `json:"filepath"`
}

type emailResult struct {
	Message string `json:"message"`
}

// Controller owns the session of one user and performs each action as a
// single request/response round trip. Actions may be called concurrently;
// nothing prevents overlap and the last response to arrive wins.
type Controller struct {
	baseURL  string
	http     *http.Client
	logger   *slog.Logger
	notifier Notifier
	display  Display
	session  Session
}

// Option configures a Controller.
type Option func(*Controller)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Controller) { c.http = hc }
}

// WithLogger sets the diagnostic logger. Transport and decode failures go
// here and nowhere else.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New returns a Controller with an empty session.
func New(baseURL string, notifier Notifier, display Display, opts ...Option) *Controller {
	c := &Controller{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{}, // no timeout: only the caller's context ends a request
		logger:   slog.Default(),
		notifier: notifier,
		display:  display,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session exposes the controller's session state for inspection.
func (c *Controller) Session() *Session {
	return &c.session
}

// UploadFile sends the picked file to the server and, on success, remembers
// the server-assigned path for later actions.
func (c *Controller) UploadFile(ctx context.Context, picker FilePicker) Outcome {
	file, ok, err := picker.Selected(ctx)
	if err != nil {
		c.logger.Error("Upload error", "err", err)
		return OutcomeNetworkError
	}
	if !ok {
		c.notifier.Notify(MsgSelectFile)
		return OutcomeRejected
	}

	body, contentType, err := encodeUpload(file)
	if err != nil {
		c.logger.Error("Upload error", "err", err)
		return OutcomeNetworkError
	}

	var res uploadResult
	if err := c.post(ctx, EndpointUpload, contentType, body, &res); err != nil {
		return c.swallow("Upload error", err)
	}

	if res.Filepath == "" {
		// A previous upload, if any, stays usable.
		c.notifier.Notify(MsgUploadFailed)
		return OutcomeFailed
	}

	c.session.setUploadedFilePath(res.Filepath)
	c.notifier.Notify(MsgUploadSuccess)
	return OutcomeSucceeded
}

// GenerateReport asks the server for a report over the given dates and
// renders it into the display. Dates are forwarded as typed, unvalidated.
func (c *Controller) GenerateReport(ctx context.Context, startDate, endDate string) Outcome {
	path := c.session.UploadedFilePath()
	if path == "" {
		c.notifier.Notify(MsgUploadFirst)
		return OutcomeRejected
	}

	req := reportRequest{Filepath: path, StartDate: startDate, EndDate: endDate}
	var res reportResult
	if err := c.postJSON(ctx, EndpointGenerateReport, req, &res); err != nil {
		return c.swallow("Report error", err)
	}

	if res.Report == "" {
		c.notifier.Notify(MsgNoReport)
		return OutcomeFailed
	}

	c.display.SetText(res.Report)
	return OutcomeSucceeded
}

// SendEmail asks the server to email the report for the uploaded file and
// shows whatever message the server returns, uninterpreted.
func (c *Controller) SendEmail(ctx context.Context) Outcome {
	path := c.session.UploadedFilePath()
	if path == "" {
		c.notifier.Notify(MsgUploadFirst)
		return OutcomeRejected
	}

	var res emailResult
	if err := c.postJSON(ctx, EndpointSendEmail, emailRequest{Filepath: path}, &res); err != nil {
		return c.swallow("Email error", err)
	}

	c.notifier.Notify(res.Message)
	return OutcomeSucceeded
}

// swallow logs a transport or decode failure. The user is not notified.
// TODO: surface these to the user once the product decides whether silent
// failure is intended; callers can already tell from the Outcome.
func (c *Controller) swallow(msg string, err error) Outcome {
	var netErr *NetworkError
	var decErr *DecodeError

	switch {
	case errors.As(err, &decErr):
		c.logger.Error(msg, "endpoint", decErr.Endpoint, "status", decErr.StatusCode, "err", decErr.Err)
		return OutcomeDecodeError
	case errors.As(err, &netErr):
		c.logger.Error(msg, "endpoint", netErr.Endpoint, "err", netErr.Err)
		return OutcomeNetworkError
	default:
		c.logger.Error(msg, "err", err)
		return OutcomeNetworkError
	}
}

func (c *Controller) postJSON(ctx context.Context, endpoint string, payload, dst any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.post(ctx, endpoint, "application/json", bytes.NewReader(body), dst)
}

// post performs the round trip. The status code is deliberately not checked:
// any JSON object, error responses included, is decoded into dst. A null body
// has no fields to read and is a decode error.
func (c *Controller) post(ctx context.Context, endpoint, contentType string, body io.Reader, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return &NetworkError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return &DecodeError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	if bytes.Equal(raw, []byte("null")) {
		return &DecodeError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: errNullBody}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &DecodeError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

func encodeUpload(file SelectedFile) (io.Reader, string, error) {
	if closer, ok := file.Content.(io.Closer); ok {
		defer closer.Close()
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return nil, "", fmt.Errorf("read selected file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
