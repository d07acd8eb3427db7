package ai

import (
	"strings"

	"github.com/zhouzirui/nova-ai/backend/internal/model/persona"
)

// DocumentPreamble introduces uploaded document text in a composed prompt.
const DocumentPreamble = "Refer to the following document:\n\n"

// ComposePrompt builds the single prompt sent to the model. With document
// text present the document comes first, followed by the persona-prefixed
// user text; otherwise the result is just prefix + user text.
func ComposePrompt(p persona.Persona, documentText, userText string) string {
	prefixed := p.Prefix() + userText
	if documentText == "" {
		return prefixed
	}

	var builder strings.Builder
	builder.Grow(len(DocumentPreamble) + len(documentText) + 2 + len(prefixed))
	builder.WriteString(DocumentPreamble)
	builder.WriteString(documentText)
	builder.WriteString("\n\n")
	builder.WriteString(prefixed)
	return builder.String()
}
