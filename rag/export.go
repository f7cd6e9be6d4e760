package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tverano/docqa"
)

// Export formats.
const (
	FormatMarkdown = "md"
	FormatJSON     = "json"
	FormatText     = "txt"
)

// ExportConversation renders a conversation and its messages in the
// given format.
func ExportConversation(ctx context.Context, convs docqa.ConversationService, messages docqa.MessageService, conversationID int64, format string) (string, error) {
	conv, err := convs.FindConversationByID(ctx, conversationID)
	if err != nil {
		return "", err
	}
	msgs, err := messages.FindMessages(ctx, conversationID)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatMarkdown:
		return exportMarkdown(conv, msgs), nil
	case FormatJSON:
		return exportJSON(conv, msgs)
	case FormatText:
		return exportText(conv, msgs), nil
	default:
		return "", docqa.Errorf(docqa.EINVALID, "unknown export format %q (want md, json, or txt)", format)
	}
}

func exportMarkdown(conv *docqa.Conversation, msgs []*docqa.Message) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", conv.Title)
	fmt.Fprintf(&sb, "_Exported %s, %d messages_\n", time.Now().UTC().Format("2006-01-02"), len(msgs))

	for _, msg := range msgs {
		fmt.Fprintf(&sb, "\n## %s\n\n%s\n", roleLabel(msg.Role), msg.Content)
		if len(msg.Citations) > 0 {
			sb.WriteString("\nSources:\n")
			for _, c := range msg.Citations {
				fmt.Fprintf(&sb, "- [%d] %s\n", c.Marker, c.FileName)
			}
		}
	}
	return sb.String()
}

func exportJSON(conv *docqa.Conversation, msgs []*docqa.Message) (string, error) {
	out, err := json.MarshalIndent(struct {
		Conversation *docqa.Conversation `json:"conversation"`
		Messages     []*docqa.Message    `json:"messages"`
	}{conv, msgs}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func exportText(conv *docqa.Conversation, msgs []*docqa.Message) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s\n", conv.Title, strings.Repeat("=", len(conv.Title)))

	for _, msg := range msgs {
		fmt.Fprintf(&sb, "\n[%s] %s\n", msg.CreatedAt.Format("2006-01-02 15:04"), roleLabel(msg.Role))
		sb.WriteString(msg.Content + "\n")
	}
	return sb.String()
}

func roleLabel(role string) string {
	if role == docqa.RoleAssistant {
		return "Assistant"
	}
	return "You"
}
