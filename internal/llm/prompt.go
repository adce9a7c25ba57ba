package llm

import (
	"strings"

	"github.com/dgallion1/notegest/internal/reply"
	"github.com/dgallion1/notegest/internal/section"
)

const systemPrompt = `You expand study notes. Given the introduction section of a note, write concise, information-rich content for the Key Concepts and Evidence sections of the same note. Follow Markdown requirements.`

const sectionTemplate = section.Concepts + `
*   **Concept 1:** ...
*   **Concept 2:** ...
*   **Concept 3:** ...

` + section.Evidence + `
*   Detail 1: ...
*   Detail 2: ...
*   Detail 3: ...`

const markdownRules = `Guidelines:
- Preserve the exact headings shown above.
- Provide informative explanations in full sentences.
- Prefer bullet lists with at least three well-developed items per section.
- Do not add any extra sections or commentary outside of the two headings.`

const jsonRules = `Respond with ONLY a JSON object, no other text, with these fields:
- "section2": the complete Key Concepts section as Markdown, starting with its exact heading
- "section3": the complete Evidence section as Markdown, starting with its exact heading
- "tags": a list of 3 to 8 short topic tags (list of strings)

Guidelines:
- Preserve the exact headings shown above inside section2 and section3.
- Provide informative explanations in full sentences.
- Prefer bullet lists with at least three well-developed items per section.`

// BuildMessages creates the system and user messages asking the model to
// write sections 2 and 3 from the note introduction.
func BuildMessages(introduction string, format reply.Format) []Message {
	var sb strings.Builder
	sb.WriteString("You are provided the introduction section of a note:\n\n")
	sb.WriteString("<INTRODUCTION>\n")
	sb.WriteString(introduction)
	sb.WriteString("\n</INTRODUCTION>\n\n")
	sb.WriteString("Use only the information above and widely accepted background\n")
	sb.WriteString("knowledge to complete the following sections in Markdown:\n\n")
	sb.WriteString(sectionTemplate)
	sb.WriteString("\n\n")
	if format == reply.FormatJSON {
		sb.WriteString(jsonRules)
	} else {
		sb.WriteString(markdownRules)
	}
	sb.WriteString("\n")

	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: sb.String()},
	}
}
