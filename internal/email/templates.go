package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
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

type leadQualifiedEmailData struct {
	baseEmailData
	SellerName string
	LeadName   string
	LeadPhone  string
	Score      int
	Reason     string
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

func renderLeadQualified(data LeadQualified) (string, error) {
	return renderEmailTemplate("lead_qualified.html", leadQualifiedEmailData{
		baseEmailData: baseEmailData{
			Title:      "Lead qualificado",
			Heading:    "Um lead está pronto para você",
			Subheading: "O agente de IA concluiu a qualificação e transferiu o atendimento.",
			CTALabel:   "Abrir painel de leads",
			CTAURL:     data.PanelURL,
		},
		SellerName: data.SellerName,
		LeadName:   data.LeadName,
		LeadPhone:  data.LeadPhone,
		Score:      data.Score,
		Reason:     data.Reason,
	})
}
