package openai

import (
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
)

const (
	systemPrompt = "You are a legal contract analysis engine for Indian startups. Respond with JSON only. No markdown. Never omit keys. Output must match the schema exactly."
	fixPrompt    = "You are a JSON repair tool. Return only valid JSON that matches the schema exactly."

	// maxDocumentChars keeps the prompt within model context limits.
	maxDocumentChars = 60000
)

const schemaDescription = `Return a JSON object with exactly these keys:
{
  "summary": string,
  "overall_risk": "low" | "medium" | "high",
  "clauses": [{"clause_type": string, "content": string, "confidence": number between 0 and 1, "risk_level": "low" | "medium" | "high"}],
  "risk_items": [{"issue": string, "severity": "low" | "medium" | "high", "recommendation": string}],
  "compliance": [{"law": string, "section": string, "compliant": boolean, "notes": string}],
  "entities": [{"type": string, "value": string, "context": string}],
  "processing_time": number
}
List clauses in the order they appear in the document.`

func buildMessages(fileName, text string) []goopenai.ChatCompletionMessage {
	return []goopenai.ChatCompletionMessage{
		{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: goopenai.ChatMessageRoleSystem, Content: schemaDescription},
		{Role: goopenai.ChatMessageRoleUser, Content: buildUserPrompt(fileName, text)},
	}
}

func buildFixMessages(raw string, cause error) []goopenai.ChatCompletionMessage {
	return []goopenai.ChatCompletionMessage{
		{Role: goopenai.ChatMessageRoleSystem, Content: fixPrompt},
		{Role: goopenai.ChatMessageRoleSystem, Content: schemaDescription},
		{Role: goopenai.ChatMessageRoleUser, Content: fmt.Sprintf("The previous output was rejected (%v). Repair it:\n%s", cause, raw)},
	}
}

func buildUserPrompt(fileName, text string) string {
	text = strings.TrimSpace(text)
	if len(text) > maxDocumentChars {
		text = text[:maxDocumentChars]
	}
	return fmt.Sprintf("Document name: %s\n\nDocument text:\n%s", fileName, text)
}
