package main

import (
	"fmt"
	"strings"

	"github.com/tverano/docqa"
)

// Run executes the search command, matching conversation titles and
// message content.
func (c *SearchCmd) Run(deps *Dependencies) error {
	convs, err := deps.Conversations.FindConversations(deps.Ctx, docqa.ConversationFilter{Title: &c.Query})
	if err != nil {
		if docqa.ErrorCode(err) == docqa.ELOCKED {
			fmt.Fprintln(deps.Stderr, "Hint: The vault is locked. Pass --password to search encrypted history.")
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	msgs, err := deps.Messages.SearchMessages(deps.Ctx, c.Query, c.Limit)
	if err != nil {
		if docqa.ErrorCode(err) == docqa.ELOCKED {
			fmt.Fprintln(deps.Stderr, "Hint: The vault is locked. Pass --password to search encrypted history.")
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	if len(convs) == 0 && len(msgs) == 0 {
		fmt.Fprintf(deps.Stdout, "Nothing matches %q.\n", c.Query)
		return nil
	}

	for _, conv := range convs {
		fmt.Fprintf(deps.Stdout, "conversation %d  %s  (title match)\n", conv.ID, conv.Title)
	}
	for _, msg := range msgs {
		fmt.Fprintf(deps.Stdout, "conversation %d  %s  %s\n  %s\n",
			msg.ConversationID, msg.CreatedAt.Format("2006-01-02 15:04"), msg.Role, snippet(msg.Content, c.Query))
	}
	return nil
}

// snippet returns a short window of content around the first match.
func snippet(content, query string) string {
	const window = 60

	idx := strings.Index(strings.ToLower(content), strings.ToLower(query))
	if idx < 0 {
		idx = 0
	}
	start := idx - window/2
	if start < 0 {
		start = 0
	}
	end := start + window + len(query)
	if end > len(content) {
		end = len(content)
	}

	s := content[start:end]
	if start > 0 {
		s = "..." + s
	}
	if end < len(content) {
		s += "..."
	}
	return strings.ReplaceAll(s, "\n", " ")
}
