// Package domain holds the AI agent record and its persona rendering.
package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	DefaultTransferThreshold      = 6
	DefaultMaxUnqualifiedMessages = 5

	DefaultName    = "Vendedor"
	DefaultFolder  = "Geral"
	DefaultContext = "Vendedor experiente com foco em soluções de cobre nu para projetos industriais e residenciais."
	DefaultStyle   = "profissional"

	previewRunes = 500
)

// Settings is the agent configuration stored as JSON.
type Settings struct {
	TransferThreshold      int `json:"transfer_threshold"`
	MaxUnqualifiedMessages int `json:"max_unqualified_messages"`
}

// DefaultSettings is the configuration of a newly created agent.
func DefaultSettings() Settings {
	return Settings{
		TransferThreshold:      DefaultTransferThreshold,
		MaxUnqualifiedMessages: DefaultMaxUnqualifiedMessages,
	}
}

// Agent is the AI persona that answers a seller's leads.
type Agent struct {
	ID            uuid.UUID
	SellerID      uuid.UUID
	PersonaPrompt string
	Settings      Settings
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PersonaInput is the seller data the persona is rendered from. Empty fields
// take the defaults.
type PersonaInput struct {
	Name      string
	Portfolio string
	WhatsApp  string
	Email     string
	Context   string
	Style     string
}

//go:embed persona.tmpl
var personaSource string

var personaTemplate = template.Must(template.New("persona").Parse(personaSource))

type personaView struct {
	PersonaInput
	UpperName string
}

// RenderPersona builds the system prompt for a seller's agent. The output
// depends only on in.
func RenderPersona(in PersonaInput) (string, error) {
	return renderPersona(personaTemplate, in)
}

func renderPersona(tmpl *template.Template, in PersonaInput) (string, error) {
	in.Name = orDefault(in.Name, DefaultName)
	in.Portfolio = orDefault(in.Portfolio, DefaultFolder)
	in.WhatsApp = strings.TrimSpace(in.WhatsApp)
	in.Email = strings.TrimSpace(in.Email)
	in.Context = orDefault(in.Context, DefaultContext)
	in.Style = orDefault(in.Style, DefaultStyle)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, personaView{PersonaInput: in, UpperName: strings.ToUpper(in.Name)}); err != nil {
		return "", fmt.Errorf("render persona: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Preview returns the first 500 characters of a prompt followed by "...".
func Preview(prompt string) string {
	if utf8.RuneCountInString(prompt) <= previewRunes {
		return prompt + "..."
	}
	return string([]rune(prompt)[:previewRunes]) + "..."
}

func orDefault(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
