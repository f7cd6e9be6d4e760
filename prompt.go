package docqa

import (
	"fmt"
	"strings"
)

const systemInstructions = "You are a helpful assistant that answers questions based on the provided context. Answer the question based only on the information given, citing sources with their [n] markers. If the answer is not in the context, say so."

const chatInstructions = "You are a helpful assistant. Answer the question from your own knowledge, clearly and concisely."

// Tokens reserved inside the context window for the model's answer.
const answerReserveTokens = 1024

// approxCharsPerToken is the budget heuristic used for history
// truncation. It deliberately overestimates nothing: four characters per
// token is conservative for English text.
const approxCharsPerToken = 4

// PromptInput is everything needed to assemble a generation prompt.
type PromptInput struct {
	Question      string
	Chunks        []RetrievedChunk
	History       []*Message
	ContextWindow int
}

// BuildPrompt assembles the generation prompt from a fixed template:
// system instructions, retrieved context with [n] citation markers, prior
// turns, and the question. History is truncated oldest-first so the
// result fits the context window with room reserved for the answer.
//
// With no retrieved chunks the prompt degrades to a plain chat turn; the
// model answers from its own knowledge.
func BuildPrompt(in PromptInput) string {
	var sb strings.Builder

	if len(in.Chunks) == 0 {
		sb.WriteString(chatInstructions)
		sb.WriteString("\n\n")
	} else {
		sb.WriteString(systemInstructions)
		sb.WriteString("\n\nContext:\n")
		for _, chunk := range in.Chunks {
			fmt.Fprintf(&sb, "[%d] %s\n\n", chunk.Ordinal, chunk.Text)
		}
	}

	question := fmt.Sprintf("Question: %s\n\nAnswer:", in.Question)

	if history := renderHistory(in.History, historyBudget(in.ContextWindow, sb.Len()+len(question))); history != "" {
		sb.WriteString("Previous conversation:\n")
		sb.WriteString(history)
		sb.WriteString("\n")
	}

	sb.WriteString(question)
	return sb.String()
}

// historyBudget returns the character budget left for history after the
// fixed prompt parts.
func historyBudget(contextWindow, fixedChars int) int {
	if contextWindow <= 0 {
		contextWindow = maxContextWindow
	}
	budget := (contextWindow-answerReserveTokens)*approxCharsPerToken - fixedChars
	if budget < 0 {
		return 0
	}
	return budget
}

// renderHistory renders as many of the most recent turns as fit within
// the character budget, oldest turns dropped first.
func renderHistory(history []*Message, budget int) string {
	if len(history) == 0 || budget <= 0 {
		return ""
	}

	rendered := make([]string, len(history))
	for i, msg := range history {
		role := "User"
		if msg.Role == RoleAssistant {
			role = "Assistant"
		}
		rendered[i] = fmt.Sprintf("%s: %s\n", role, msg.Content)
	}

	// Walk backwards from the newest turn until the budget is spent.
	start := len(rendered)
	used := 0
	for i := len(rendered) - 1; i >= 0; i-- {
		if used+len(rendered[i]) > budget {
			break
		}
		used += len(rendered[i])
		start = i
	}

	return strings.Join(rendered[start:], "")
}
