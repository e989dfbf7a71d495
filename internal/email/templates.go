package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type intakeFormsEmailData struct {
	baseEmailData
	PatientName string
}

type visitScheduledEmailData struct {
	baseEmailData
	PatientName   string
	ScheduledDate string
}

type stallDigestEmailData struct {
	baseEmailData
	Items []stallDigestRow
}

type stallDigestRow struct {
	PatientName string
	Stage       string
	Waiting     string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderIntakeForms(patientName, formURL, templateType string) (subject, content string, err error) {
	if err := checkTemplateType(templateType); err != nil {
		return "", "", err
	}
	subject = subjectIntakeFormsNeuro
	if templateType == TemplateMSK {
		subject = subjectIntakeFormsMSK
	}
	content, err = renderEmailTemplate("intake_"+templateType+".html", intakeFormsEmailData{
		baseEmailData: baseEmailData{
			Title:    subject,
			Heading:  "Before your first visit",
			CTALabel: "Start questionnaire",
			CTAURL:   formURL,
		},
		PatientName: patientName,
	})
	return subject, content, err
}

func renderVisitScheduled(patientName string, scheduledDate time.Time, templateType string) (subject, content string, err error) {
	if err := checkTemplateType(templateType); err != nil {
		return "", "", err
	}
	content, err = renderEmailTemplate("visit_"+templateType+".html", visitScheduledEmailData{
		baseEmailData: baseEmailData{
			Title:   subjectVisitScheduled,
			Heading: "Your visit is booked",
		},
		PatientName:   patientName,
		ScheduledDate: scheduledDate.Format("Monday 2 January 2006, 15:04 MST"),
	})
	return subjectVisitScheduled, content, err
}

func renderStallDigest(items []StallDigestItem, now time.Time) (subject, content string, err error) {
	rows := make([]stallDigestRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, stallDigestRow{
			PatientName: it.PatientName,
			Stage:       it.Stage,
			Waiting:     formatWaiting(now.Sub(it.WaitingSince)),
		})
	}
	subject = fmt.Sprintf(subjectStallDigestFmt, len(items))
	content, err = renderEmailTemplate("stall_digest.html", stallDigestEmailData{
		baseEmailData: baseEmailData{
			Title:      subject,
			Heading:    "Prospects waiting on follow-up",
			Subheading: "These prospects have not moved in over 48 hours.",
		},
		Items: rows,
	})
	return subject, content, err
}

func formatWaiting(d time.Duration) string {
	hours := int(d.Hours())
	if hours < 48 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dd", hours/24)
}
