// Package prompt assembles the system instructions, answer schema, and user
// prompt sent to the LLM on every generation attempt.
package prompt

import (
	"fmt"
	"strings"

	"portfolio-chat-be/internal/constant"
	"portfolio-chat-be/pkg/llm"
)

// historyWindow bounds how many prior turns flow into the prompt.
const historyWindow = 5

// SystemInstructions encodes the persona rules and the canonical profile
// facts. Canonical facts override retrieved context when they conflict.
func SystemInstructions(includePersonalTouch bool) string {
	var b strings.Builder
	b.WriteString("You are Tejas. Reply as a friendly human in first person. ")
	b.WriteString("Keep answers short (2-3 sentences) unless the user explicitly asks for more. ")
	b.WriteString("Be confident and conversational; vary phrasing so it never feels templated. ")
	b.WriteString("Ground your answer in the provided Context when relevant; if the answer is not in the Context, say \"I don't have that info yet\" instead of guessing. ")
	b.WriteString("Canonical profile: You are a full-stack engineer (frontend and backend). When discussing your work at Fynd, explicitly describe full-stack responsibilities; never imply you handled only frontend. ")
	if includePersonalTouch {
		b.WriteString("Personal touch: When the user asks about you, add one short, natural sentence (at most one) mentioning you enjoy sports, traveling, and learning about tech if it fits. ")
	}
	b.WriteString("You MUST output a single JSON object that conforms to the provided JSON Schema. Do not include any text before or after the JSON.")
	return b.String()
}

// AnswerSchema is the strict JSON schema for the structured answer. Only
// "answer" is required; everything else is opportunistic metadata.
func AnswerSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"answer": map[string]interface{}{
				"type":        "string",
				"description": "Final, user-visible answer in plain text.",
			},
			"confidence": map[string]interface{}{
				"type":        "number",
				"minimum":     0,
				"maximum":     1,
				"description": "Model self-rated confidence for the answer.",
			},
			"missing_info": map[string]interface{}{
				"type":        "boolean",
				"description": "True if the provided context did not contain the requested information.",
			},
			"followups": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Optional short follow-up suggestions for the user.",
			},
			"citations": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"filename": map[string]interface{}{"type": "string"},
						"type":     map[string]interface{}{"type": "string"},
						"snippet":  map[string]interface{}{"type": "string"},
					},
					"required": []string{"filename"},
				},
				"description": "Optional list of cited sources from the provided context.",
			},
		},
		"required":             []string{"answer"},
		"additionalProperties": false,
	}
}

// ResponseFormat is the OpenRouter json_schema enforcement envelope.
func ResponseFormat() map[string]interface{} {
	return map[string]interface{}{
		"type": "json_schema",
		"json_schema": map[string]interface{}{
			"name":   "assistant_response",
			"schema": AnswerSchema(),
			"strict": true,
		},
	}
}

// BuildMessages assembles the full message list: persona system block, the
// schema restated as a system message (belt and braces for providers that
// ignore response_format), the trailing history window, and the user prompt
// carrying context and question.
func BuildMessages(question, contextText, schemaJSON string, history []llm.Message, includePersonalTouch bool) []llm.Message {
	messages := []llm.Message{
		{Role: constant.ChatRoleSystem, Content: SystemInstructions(includePersonalTouch)},
		{Role: constant.ChatRoleSystem, Content: "JSON Schema (enforced): " + schemaJSON},
	}

	start := len(history) - historyWindow
	if start < 0 {
		start = 0
	}
	for _, m := range history[start:] {
		if m.Role == constant.ChatRoleUser || m.Role == constant.ChatRoleAssistant {
			messages = append(messages, m)
		}
	}

	userPrompt := fmt.Sprintf(
		"Follow the instructions and return a JSON object only.\n\n"+
			"Context:\n%s\n\n"+
			"Question: %s\n\n"+
			"JSON object must include at least the 'answer' field in plain text (no markdown). "+
			"If the information is missing in the context, set missing_info=true and set answer to \"I don't have that info yet\".",
		contextText, question,
	)
	messages = append(messages, llm.Message{Role: constant.ChatRoleUser, Content: userPrompt})

	return messages
}
