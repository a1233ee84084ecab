package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/report_email.tmpl
var templateFS embed.FS

var reportTmpl = template.Must(template.ParseFS(templateFS, "templates/report_email.tmpl"))

// ReportEmail is the data rendered into a report delivery email.
type ReportEmail struct {
	StartDate string
	EndDate   string
	Filename  string
	Sender    string
}

// Subject returns the subject line for the report email.
func (r ReportEmail) Subject() string {
	return fmt.Sprintf("Sales Report (%s to %s)", r.StartDate, r.EndDate)
}

// RenderReportEmail renders the plain-text body for a report email.
func RenderReportEmail(data ReportEmail) (string, error) {
	if data.Sender == "" {
		data.Sender = "Sales Reporter"
	}
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render report email: %w", err)
	}
	return buf.String(), nil
}
