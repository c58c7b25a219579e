package service

import (
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/tieubaoca/manualbot/types"
)

const answerTemplate = `Answer the question as detailed as possible from the provided context, make sure to provide all the details. Give only answers you are confident in. Do not give information without a reference to the original document(s) or image(s). Avoid using Latex.

Context:
{{.context}}

Question:
{{.question}}

History:
{{.history}}

Answer:
`

// NewAnswerPrompt returns the grounded-answer template over context, question
// and history.
func NewAnswerPrompt() prompts.PromptTemplate {
	return prompts.NewPromptTemplate(answerTemplate, []string{"context", "question", "history"})
}

// FormatHistory renders turns as "role: content" lines.
func FormatHistory(history []types.Message) string {
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		lines = append(lines, msg.Role+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

// FormatContext joins retrieved chunk texts in rank order.
func FormatContext(documents []string) string {
	return strings.Join(documents, "\n")
}
