package pipeline

import (
	"fmt"
	"strings"

	"crm_backend/internal/qualification/domain"
	"crm_backend/platform/ai/gateway"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

const (
	replyTemperature    = 0.8
	replyMaxTokens      = 500
	analysisTemperature = 0.3
	analysisMaxTokens   = 300
)

// leadContext renders the lead identity block sent as a system message.
func leadContext(lead domain.LeadSnapshot) string {
	var b strings.Builder
	b.WriteString("Informações do cliente atual:\n")
	fmt.Fprintf(&b, "- Nome: %s\n", lead.Name)
	fmt.Fprintf(&b, "- Empresa: %s\n", valueOr(lead.Company, "N/A"))
	fmt.Fprintf(&b, "- Telefone: %s\n", valueOr(lead.Phone, ""))
	fmt.Fprintf(&b, "- Canal: %s", valueOr(lead.Channel, ""))
	if lead.Notes != nil && strings.TrimSpace(*lead.Notes) != "" {
		fmt.Fprintf(&b, "\n- Notas: %s", *lead.Notes)
	}
	return b.String()
}

func buildReplyRequest(agent domain.AgentSnapshot, lead domain.LeadSnapshot, history []domain.Turn, message string) *model.LLMRequest {
	contents := make([]*genai.Content, 0, len(history)+2)
	contents = append(contents, textContent(gateway.RoleSystem, leadContext(lead)))
	for _, turn := range history {
		contents = append(contents, textContent(turn.Type.ChatRole(), turn.Body))
	}
	contents = append(contents, textContent(genai.RoleUser, message))

	return &model.LLMRequest{
		Contents: contents,
		Config: &genai.GenerateContentConfig{
			SystemInstruction: textContent(gateway.RoleSystem, agent.Persona),
			Temperature:       genai.Ptr[float32](replyTemperature),
			MaxOutputTokens:   replyMaxTokens,
		},
	}
}

func buildAnalysisRequest(history []domain.Turn, message string, threshold int) *model.LLMRequest {
	return &model.LLMRequest{
		Contents: []*genai.Content{textContent(genai.RoleUser, analysisPrompt(history, message, threshold))},
		Config: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](analysisTemperature),
			MaxOutputTokens: analysisMaxTokens,
		},
	}
}

// analysisPrompt asks the model for a JSON verdict over the conversation.
func analysisPrompt(history []domain.Turn, message string, threshold int) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, turn.Type.PromptLabel()+": "+turn.Body)
	}

	var b strings.Builder
	b.WriteString("Analise esta conversa de vendas e determine o score de qualificação.\n\n")
	b.WriteString("HISTÓRICO DA CONVERSA:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nÚLTIMA MENSAGEM DO CLIENTE:\n")
	b.WriteString(message)
	b.WriteString("\n\nCRITÉRIOS DE QUALIFICAÇÃO (pontuação):\n")
	for _, c := range domain.Rubric {
		fmt.Fprintf(&b, "- %s: %s\n", c.Label, points(c.Points))
	}
	b.WriteString("\nSINAIS NEGATIVOS:\n")
	for _, c := range domain.NegativeSignals {
		fmt.Fprintf(&b, "- %q: %s\n", c.Label, points(c.Points))
	}
	b.WriteString("\nRetorne APENAS um JSON válido sem markdown:\n")
	b.WriteString("{\n")
	fmt.Fprintf(&b, "  \"score\": [número de %d a %d],\n", domain.MinScore, domain.MaxScore)
	fmt.Fprintf(&b, "  \"deve_transferir\": [true se score >= %d, false caso contrário],\n", threshold)
	b.WriteString("  \"motivo\": \"[explicação breve em português]\",\n")
	b.WriteString("  \"criterios_identificados\": [\"lista de critérios encontrados\"]\n")
	b.WriteString("}")
	return b.String()
}

func points(n int) string {
	unit := "pontos"
	if n == 1 || n == -1 {
		unit = "ponto"
	}
	if n > 0 {
		return fmt.Sprintf("+%d %s", n, unit)
	}
	return fmt.Sprintf("%d %s", n, unit)
}

func textContent(role, text string) *genai.Content {
	return &genai.Content{Role: role, Parts: []*genai.Part{genai.NewPartFromText(text)}}
}

func valueOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}
