package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu            sync.Mutex
	notifications []string
	displayed     []string
}

func (r *recorder) Notify(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, message)
}

func (r *recorder) SetText(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.displayed = append(r.displayed, text)
}

type fixture struct {
	ctrl  *Controller
	ui    *recorder
	logs  *bytes.Buffer
	calls *atomic.Int32
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()
	calls := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return newFixtureURL(srv.URL, calls)
}

func newFixtureURL(url string, calls *atomic.Int32) *fixture {
	ui := &recorder{}
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return &fixture{
		ctrl:  New(url, ui, ui, WithLogger(logger)),
		ui:    ui,
		logs:  logs,
		calls: calls,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type readerPicker struct {
	name    string
	content string
}

func (p readerPicker) Selected(context.Context) (SelectedFile, bool, error) {
	return SelectedFile{Name: p.name, Content: strings.NewReader(p.content)}, true, nil
}

var salesCSV = readerPicker{name: "sales.csv", content: "Date,Product,Amount\n2024-01-02,Widget,10\n"}

// routes answers each endpoint with a fixed body.
func routes(upload, report, email any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case EndpointUpload:
			writeJSON(w, http.StatusOK, upload)
		case EndpointGenerateReport:
			writeJSON(w, http.StatusOK, report)
		case EndpointSendEmail:
			writeJSON(w, http.StatusOK, email)
		default:
			http.NotFound(w, r)
		}
	}
}

func TestActionsRequireUpload(t *testing.T) {
	f := newFixture(t, routes(nil, map[string]string{"report": "x"}, map[string]string{"message": "x"}))
	ctx := context.Background()

	assert.Equal(t, OutcomeRejected, f.ctrl.GenerateReport(ctx, "2024-01-01", "2024-01-31"))
	assert.Equal(t, OutcomeRejected, f.ctrl.SendEmail(ctx))

	assert.Equal(t, []string{MsgUploadFirst, MsgUploadFirst}, f.ui.notifications)
	assert.Empty(t, f.ui.displayed)
	assert.Zero(t, f.calls.Load(), "no request may be sent before an upload")
}

func TestUploadWithoutSelection(t *testing.T) {
	f := newFixture(t, routes(map[string]string{"filepath": "uploads/x.csv"}, nil, nil))

	out := f.ctrl.UploadFile(context.Background(), PathPicker{})

	assert.Equal(t, OutcomeRejected, out)
	assert.Equal(t, []string{MsgSelectFile}, f.ui.notifications)
	assert.Zero(t, f.calls.Load())
	assert.False(t, f.ctrl.Session().HasUpload())
}

func TestUploadStoresFilepath(t *testing.T) {
	var gotName, gotContent string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, EndpointUpload, r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotName, gotContent = header.Filename, string(data)
		writeJSON(w, http.StatusOK, map[string]string{"filepath": "uploads/sales.csv"})
	})

	out := f.ctrl.UploadFile(context.Background(), salesCSV)

	assert.Equal(t, OutcomeSucceeded, out)
	assert.Equal(t, "uploads/sales.csv", f.ctrl.Session().UploadedFilePath())
	assert.Equal(t, []string{MsgUploadSuccess}, f.ui.notifications)
	assert.Equal(t, "sales.csv", gotName)
	assert.Equal(t, salesCSV.content, gotContent)
}

func TestUploadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "march sales.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Amount\n"), 0o644))

	var gotName string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		gotName = header.Filename
		writeJSON(w, http.StatusOK, map[string]string{"filepath": "uploads/march_sales.csv"})
	})

	assert.Equal(t, OutcomeSucceeded, f.ctrl.UploadFile(context.Background(), PathPicker{Path: path}))
	assert.Equal(t, "march sales.csv", gotName)
}

func TestUploadMissingFilepathKeepsSession(t *testing.T) {
	var n atomic.Int32
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if n.Add(1) == 1 {
			writeJSON(w, http.StatusOK, map[string]string{"filepath": "uploads/first.csv"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{})
	})
	ctx := context.Background()

	require.Equal(t, OutcomeSucceeded, f.ctrl.UploadFile(ctx, salesCSV))
	out := f.ctrl.UploadFile(ctx, salesCSV)

	assert.Equal(t, OutcomeFailed, out)
	assert.Equal(t, "uploads/first.csv", f.ctrl.Session().UploadedFilePath())
	assert.Equal(t, []string{MsgUploadSuccess, MsgUploadFailed}, f.ui.notifications)
}

func TestUploadErrorStatusIsDecodedNotInspected(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	})

	out := f.ctrl.UploadFile(context.Background(), salesCSV)

	assert.Equal(t, OutcomeFailed, out)
	assert.Equal(t, []string{MsgUploadFailed}, f.ui.notifications)
	assert.False(t, f.ctrl.Session().HasUpload())
}

func TestGenerateReportReplacesDisplay(t *testing.T) {
	var got reportRequest
	reports := []string{"Total: 1", "Total: 42"}
	var n atomic.Int32
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case EndpointUpload:
			writeJSON(w, http.StatusOK, map[string]string{"filepath": "uploads/sales.csv"})
		case EndpointGenerateReport:
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeJSON(w, http.StatusOK, map[string]string{"report": reports[n.Add(1)-1]})
		}
	})
	ctx := context.Background()
	require.Equal(t, OutcomeSucceeded, f.ctrl.UploadFile(ctx, salesCSV))

	assert.Equal(t, OutcomeSucceeded, f.ctrl.GenerateReport(ctx, "2024-01-01", "2024-01-31"))
	assert.Equal(t, OutcomeSucceeded, f.ctrl.GenerateReport(ctx, "2024-01-01", "2024-01-31"))

	assert.Equal(t, []string{"Total: 1", "Total: 42"}, f.ui.displayed)
	assert.Equal(t, reportRequest{Filepath: "uploads/sales.csv", StartDate: "2024-01-01", EndDate: "2024-01-31"}, got)
	assert.Equal(t, []string{MsgUploadSuccess}, f.ui.notifications)
}

func TestGenerateReportForwardsEmptyDates(t *testing.T) {
	var raw map[string]any
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == EndpointUpload {
			writeJSON(w, http.StatusOK, map[string]string{"filepath": "uploads/sales.csv"})
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		writeJSON(w, http.StatusOK, map[string]string{"report": "ok"})
	})
	ctx := context.Background()
	require.Equal(t, OutcomeSucceeded, f.ctrl.UploadFile(ctx, salesCSV))

	f.ctrl.GenerateReport(ctx, "", "")

	assert.Equal(t, map[string]any{"filepath": "uploads/sales.csv", "start_date": "", "end_date": ""}, raw)
}

func TestGenerateReportMissingReport(t *testing.T) {
	f := newFixture(t, routes(map[string]string{"filepath": "uploads/sales.csv"}, map[string]string{}, nil))
	ctx := context.Background()
	require.Equal(t, OutcomeSucceeded, f.ctrl.UploadFile(ctx, salesCSV))

	out := f.ctrl.GenerateReport(ctx, "2024-01-01", "2024-01-31")

	assert.Equal(t, OutcomeFailed, out)
	assert.Empty(t, f.ui.displayed)
	assert.Equal(t, []string{MsgUploadSuccess, MsgNoReport}, f.ui.notifications)
}

func TestSendEmailShowsServerMessage(t *testing.T) {
	var got emailRequest
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case EndpointUpload:
			writeJSON(w, http.StatusOK, map[string]string{"filepath": "uploads/sales.csv"})
		case EndpointSendEmail:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeJSON(w, http.StatusOK, map[string]string{"message": "Sent to user@example.com"})
		}
	})
	ctx := context.Background()
	require.Equal(t, OutcomeSucceeded, f.ctrl.UploadFile(ctx, salesCSV))

	assert.Equal(t, OutcomeSucceeded, f.ctrl.SendEmail(ctx))
	assert.Equal(t, "Sent to user@example.com", f.ui.notifications[len(f.ui.notifications)-1])
	assert.Equal(t, emailRequest{Filepath: "uploads/sales.csv"}, got)
}

func TestSendEmailMessageIsNotInterpreted(t *testing.T) {
	f := newFixture(t, routes(
		map[string]string{"filepath": "uploads/sales.csv"},
		nil,
		map[string]string{"message": "Failed to send email. Check logs."},
	))
	ctx := context.Background()
	require.Equal(t, OutcomeSucceeded, f.ctrl.UploadFile(ctx, salesCSV))

	assert.Equal(t, OutcomeSucceeded, f.ctrl.SendEmail(ctx))
	assert.Equal(t, []string{MsgUploadSuccess, "Failed to send email. Check logs."}, f.ui.notifications)
}

// Transport and decode failures are only logged. This is a known gap in the
// user experience; these tests pin the current behaviour.
func TestFailuresAreLoggedNotNotified(t *testing.T) {
	t.Run("network error on upload", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		f := newFixtureURL(url, &atomic.Int32{})

		out := f.ctrl.UploadFile(context.Background(), salesCSV)

		assert.Equal(t, OutcomeNetworkError, out)
		assert.Empty(t, f.ui.notifications)
		assert.Contains(t, f.logs.String(), "Upload error")
		assert.False(t, f.ctrl.Session().HasUpload())
	})

	t.Run("decode error on upload", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		})

		out := f.ctrl.UploadFile(context.Background(), salesCSV)

		assert.Equal(t, OutcomeDecodeError, out)
		assert.Empty(t, f.ui.notifications)
		assert.Contains(t, f.logs.String(), "Upload error")
		assert.Contains(t, f.logs.String(), "status=500")
	})

	for _, tc := range []struct {
		name   string
		action func(ctx context.Context, c *Controller) Outcome
		logMsg string
	}{
		{"report", func(ctx context.Context, c *Controller) Outcome { return c.GenerateReport(ctx, "a", "b") }, "Report error"},
		{"email", func(ctx context.Context, c *Controller) Outcome { return c.SendEmail(ctx) }, "Email error"},
	} {
		t.Run("decode error on "+tc.name, func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == EndpointUpload {
					writeJSON(w, http.StatusOK, map[string]string{"filepath": "uploads/sales.csv"})
					return
				}
				_, _ = w.Write([]byte("<html>oops</html>"))
			})
			ctx := context.Background()
			require.Equal(t, OutcomeSucceeded, f.ctrl.UploadFile(ctx, salesCSV))

			out := tc.action(ctx, f.ctrl)

			assert.Equal(t, OutcomeDecodeError, out)
			assert.Equal(t, []string{MsgUploadSuccess}, f.ui.notifications)
			assert.Empty(t, f.ui.displayed)
			assert.Contains(t, f.logs.String(), tc.logMsg)
		})
	}

	t.Run("null body on upload", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("null"))
		})

		out := f.ctrl.UploadFile(context.Background(), salesCSV)

		assert.Equal(t, OutcomeDecodeError, out)
		assert.Empty(t, f.ui.notifications)
		assert.Contains(t, f.logs.String(), "response body is null")
	})

	t.Run("null body on report and email", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == EndpointUpload {
				writeJSON(w, http.StatusOK, map[string]string{"filepath": "uploads/sales.csv"})
				return
			}
			writeJSON(w, http.StatusOK, nil)
		})
		ctx := context.Background()
		require.Equal(t, OutcomeSucceeded, f.ctrl.UploadFile(ctx, salesCSV))

		assert.Equal(t, OutcomeDecodeError, f.ctrl.GenerateReport(ctx, "2024-01-01", "2024-01-31"))
		assert.Equal(t, OutcomeDecodeError, f.ctrl.SendEmail(ctx))
		assert.Equal(t, []string{MsgUploadSuccess}, f.ui.notifications)
		assert.Empty(t, f.ui.displayed)
	})

	t.Run("wrong field type is a decode error", func(t *testing.T) {
		f := newFixture(t, routes(map[string]string{"filepath": "uploads/sales.csv"}, map[string]int{"report": 42}, nil))
		ctx := context.Background()
		require.Equal(t, OutcomeSucceeded, f.ctrl.UploadFile(ctx, salesCSV))

		assert.Equal(t, OutcomeDecodeError, f.ctrl.GenerateReport(ctx, "2024-01-01", "2024-01-31"))
		assert.Empty(t, f.ui.displayed)
	})

	t.Run("network error after upload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"filepath": "uploads/sales.csv"})
		}))
		f := newFixtureURL(srv.URL, &atomic.Int32{})
		ctx := context.Background()
		require.Equal(t, OutcomeSucceeded, f.ctrl.UploadFile(ctx, salesCSV))
		srv.Close()

		assert.Equal(t, OutcomeNetworkError, f.ctrl.GenerateReport(ctx, "2024-01-01", "2024-01-31"))
		assert.Equal(t, OutcomeNetworkError, f.ctrl.SendEmail(ctx))
		assert.Equal(t, []string{MsgUploadSuccess}, f.ui.notifications)
		assert.Contains(t, f.logs.String(), "Report error")
		assert.Contains(t, f.logs.String(), "Email error")
	})
}

func TestUploadUnreadableFileIsLogged(t *testing.T) {
	f := newFixture(t, routes(map[string]string{"filepath": "x"}, nil, nil))

	out := f.ctrl.UploadFile(context.Background(), PathPicker{Path: filepath.Join(t.TempDir(), "missing.csv")})

	assert.Equal(t, OutcomeNetworkError, out)
	assert.Empty(t, f.ui.notifications)
	assert.Zero(t, f.calls.Load())
	assert.Contains(t, f.logs.String(), "Upload error")
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "decode_error", OutcomeDecodeError.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}
