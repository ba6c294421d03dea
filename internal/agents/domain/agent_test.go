package domain

import (
	"strings"
	"testing"
	"text/template"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, in PersonaInput) string {
	t.Helper()
	out, err := RenderPersona(in)
	require.NoError(t, err)
	return out
}

func TestRenderPersonaIsDeterministic(t *testing.T) {
	in := PersonaInput{Name: "João Silva", Portfolio: "B", WhatsApp: "+5511999990000", Email: "joao@match.com"}
	assert.Equal(t, render(t, in), render(t, in))
}

func TestRenderPersonaReturnsExecError(t *testing.T) {
	broken := template.Must(template.New("persona").Parse("{{.Missing}}"))

	out, err := renderPersona(broken, PersonaInput{Name: "Ana"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render persona")
	assert.Empty(t, out)
}

func TestRenderPersonaFields(t *testing.T) {
	out := render(t, PersonaInput{Name: "João Silva", Portfolio: "B", WhatsApp: "+5511999990000", Email: "joao@match.com", Style: "descontraído"})

	assert.True(t, strings.HasPrefix(out, "VOCÊ É JOÃO SILVA, VENDEDOR DA MATCH SOLUTIONS\n"))
	assert.Contains(t, out, "- Nome: João Silva\n")
	assert.Contains(t, out, "- Carteira: B\n")
	assert.Contains(t, out, "- Empresa: Match Solutions\n- WhatsApp: +5511999990000\n- Email: joao@match.com\n")
	assert.Contains(t, out, "### PERSONALIDADE (Estilo: descontraído):")
	assert.Contains(t, out, "- ✅ Responda como se fosse João Silva")
	assert.True(t, strings.HasSuffix(out, "Aja naturalmente como um vendedor experiente da Match Solutions."))
}

func TestRenderPersonaDefaults(t *testing.T) {
	out := render(t, PersonaInput{})

	assert.Contains(t, out, "VOCÊ É VENDEDOR, VENDEDOR DA MATCH SOLUTIONS")
	assert.Contains(t, out, "- Carteira: Geral\n")
	assert.Contains(t, out, DefaultContext)
	assert.Contains(t, out, "(Estilo: profissional)")
	assert.NotContains(t, out, "- WhatsApp:")
	assert.NotContains(t, out, "- Email:")
	assert.Contains(t, out, "- Empresa: Match Solutions\n\n## 📋 SEU CONTEXTO PESSOAL")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "curto...", Preview("curto"))

	long := strings.Repeat("ç", 600)
	p := Preview(long)
	assert.Equal(t, 503, utf8.RuneCountInString(p))
	assert.True(t, strings.HasSuffix(p, "..."))
}

func TestDefaultSettings(t *testing.T) {
	assert.Equal(t, Settings{TransferThreshold: 6, MaxUnqualifiedMessages: 5}, DefaultSettings())
}
