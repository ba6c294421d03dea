package gateway

import (
	"context"
	"strings"

	"google.golang.org/adk/model"
)

// GenerateText drains llm for req and returns the concatenated text of every
// response. Errors from the model are returned unchanged; a blank result
// becomes a KindEmpty CallError.
func GenerateText(ctx context.Context, llm model.LLM, req *model.LLMRequest) (string, error) {
	var builder strings.Builder
	for resp, err := range llm.GenerateContent(ctx, req, false) {
		if err != nil {
			return "", err
		}
		if resp == nil || resp.Content == nil {
			continue
		}
		builder.WriteString(contentText(resp.Content))
	}
	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", &CallError{Kind: KindEmpty}
	}
	return text, nil
}
