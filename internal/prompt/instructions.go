package prompt

import (
	"fmt"
	"strings"

	"legalchat/internal/model"
)

// DefaultLanguage is used when a request does not name one.
const DefaultLanguage = "English"

// Disclaimer closes every generated legal answer.
const Disclaimer = "Please note: This information is for general guidance only and should not be taken as legal advice. For advice specific to your situation, please consult a qualified legal professional."

const chatInstructions = `You are a legal information assistant specializing in Ugandan law.

Formatting
  Write clean, readable paragraphs separated by one blank line.
  Start each major section on a new line with a plain title in title case.
  Never use asterisks, dashes or other symbols for formatting.

Grounding
  Base your answer on the context below. If the context does not cover the question, say so before answering from general knowledge.

Language
  Respond in %[1]s.

Disclaimer
  End with this paragraph: "%[2]s"

Current context:
%[3]s`

const analysisInstructions = `You are a legal document analyzer specializing in Ugandan law. Analyze the document below and give a structured breakdown of its key points, legal implications, and any potential issues or concerns.

Respond in %[1]s and end with this paragraph: "%[2]s"

Document (%[3]s):
%[4]s`

// maxHistoryTurns bounds how many prior messages are replayed to the generator.
const maxHistoryTurns = 10

// Payload is the generator input: instructions with context, and the user's question.
type Payload struct {
	System string
	User   string
}

// PayloadInput collects everything BuildPayload needs.
type PayloadInput struct {
	Context  string
	Language string
	History  []model.Message
	Question string
}

// BuildPayload renders the chat instructions. Empty context becomes FallbackContext,
// and the most recent user/assistant turns are appended as a transcript.
func BuildPayload(in PayloadInput) Payload {
	context := strings.TrimSpace(in.Context)
	if context == "" {
		context = FallbackContext
	}
	language := strings.TrimSpace(in.Language)
	if language == "" {
		language = DefaultLanguage
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, chatInstructions, language, Disclaimer, context)
	if transcript := renderHistory(in.History); transcript != "" {
		sb.WriteString(sectionSeparator)
		sb.WriteString("Conversation so far:\n")
		sb.WriteString(transcript)
	}
	return Payload{System: sb.String(), User: in.Question}
}

// BuildAnalysisPayload renders the document-analysis instructions.
// An empty question asks for a general analysis.
func BuildAnalysisPayload(docName, docText, question, language string) Payload {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	if strings.TrimSpace(question) == "" {
		question = "Provide a detailed analysis of this document."
	}
	return Payload{
		System: fmt.Sprintf(analysisInstructions, language, Disclaimer, docName, docText),
		User:   question,
	}
}

func renderHistory(history []model.Message) string {
	turns := make([]model.Message, 0, len(history))
	for _, m := range history {
		if m.Role == model.RoleSystem {
			continue
		}
		turns = append(turns, m)
	}
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}
	lines := make([]string, 0, len(turns))
	for _, m := range turns {
		speaker := "User"
		if m.Role == model.RoleAssistant {
			speaker = "Assistant"
		}
		lines = append(lines, speaker+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}
