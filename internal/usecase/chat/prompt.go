package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/docuchat/chat-backend/internal/entity"
)

// The grounding instruction asks the model to answer primarily from the
// context block and to name missing information before falling back to
// general knowledge.
const (
	contextHeader = "Answer the user's question based primarily on the following context documents.\n" +
		"If the context documents do not contain the necessary information to answer the question fully, " +
		"clearly state what information is missing from the context before providing an answer based on your general knowledge.\n" +
		"\n--- Context Documents ---\n"
	contextFooter = "\n--- End of Context ---\n"

	maxCitationExamples = 3
)

// assembledPrompt is the outcome of prompt assembly: the system-instruction
// channel carrying any injected context, and the turn history ending in the
// plain user question. The context block never enters the history, so
// persisted conversations stay readable.
type assembledPrompt struct {
	SystemInstruction string
	History           []entity.Message
	EmittedDocs       int
	SkippedDocs       int
}

// assemblePrompt merges prior turns, the latest user question, optionally
// retrieved documents and a caller-supplied system prompt into one request.
// It is a pure function of its inputs: the caller provides the timestamp for
// the new user turn.
func assemblePrompt(priorTurns []entity.Message, userText string, docs []entity.RetrievedDocument, systemPrompt string, now time.Time) assembledPrompt {
	history := make([]entity.Message, 0, len(priorTurns)+1)
	for i := range priorTurns {
		if priorTurns[i].IsValid() {
			history = append(history, priorTurns[i])
		}
	}
	history = append(history, entity.NewTextMessage(entity.RoleUser, strings.TrimSpace(userText), now))

	contextBlock, citations, skipped := buildContextBlock(docs)
	if contextBlock == "" {
		return assembledPrompt{
			SystemInstruction: systemPrompt,
			History:           history,
			SkippedDocs:       skipped,
		}
	}

	var b strings.Builder
	b.WriteString(contextHeader)
	b.WriteString(contextBlock)
	b.WriteString(contextFooter)
	b.WriteString("\n")
	b.WriteString(citationInstruction(citations))
	if systemPrompt != "" {
		b.WriteString("\n\n")
		b.WriteString(systemPrompt)
	}

	return assembledPrompt{
		SystemInstruction: b.String(),
		History:           history,
		EmittedDocs:       len(citations),
		SkippedDocs:       skipped,
	}
}

// buildContextBlock formats the retrieved documents in input order.
// Documents missing a name or content are skipped and do not consume an
// index slot; indices are 1-based over the emitted entries only.
func buildContextBlock(docs []entity.RetrievedDocument) (block string, citations []string, skipped int) {
	var b strings.Builder
	index := 0
	for i := range docs {
		doc := &docs[i]
		if !doc.Usable() {
			skipped++
			continue
		}
		index++

		score := ""
		if doc.Score != nil {
			score = fmt.Sprintf(" (Rel. Score: %.3f)", 1/(1+*doc.Score))
		}

		fmt.Fprintf(&b, "\n[%d] Source: %s%s\nContent:\n%s\n---\n", index, doc.DocumentName, score, doc.Content)
		citations = append(citations, fmt.Sprintf("[%d] %s", index, doc.DocumentName))
	}

	return b.String(), citations, skipped
}

func citationInstruction(citations []string) string {
	examples := citations
	if len(examples) > maxCitationExamples {
		examples = examples[:maxCitationExamples]
	}

	return fmt.Sprintf(
		"When referencing information only from the context documents provided above, cite the source using the format [Number] Document Name (e.g., %s).",
		strings.Join(examples, ", "),
	)
}
