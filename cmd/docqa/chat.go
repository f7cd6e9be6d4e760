package main

import (
	"fmt"
	"os"

	"github.com/tverano/docqa"
	"github.com/tverano/docqa/rag"
)

// Run executes the chat list command.
func (c *ChatListCmd) Run(deps *Dependencies) error {
	convs, err := deps.Conversations.FindConversations(deps.Ctx, docqa.ConversationFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	if len(convs) == 0 {
		fmt.Fprintln(deps.Stdout, "No conversations found. Use 'docqa ask' to start one.")
		return nil
	}

	for _, conv := range convs {
		fmt.Fprintf(deps.Stdout, "%d  %s  %d messages  %s\n",
			conv.ID, conv.Title, conv.MessageCount, conv.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// Run executes the chat show command.
func (c *ChatShowCmd) Run(deps *Dependencies) error {
	conv, err := deps.Conversations.FindConversationByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	msgs, err := deps.Messages.FindMessages(deps.Ctx, conv.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "%s\n\n", conv.Title)
	for _, msg := range msgs {
		role := "You"
		if msg.Role == docqa.RoleAssistant {
			role = "Assistant"
		}
		fmt.Fprintf(deps.Stdout, "[%s] %s\n%s\n\n", msg.CreatedAt.Format("15:04"), role, msg.Content)
	}
	return nil
}

// Run executes the chat export command.
func (c *ChatExportCmd) Run(deps *Dependencies) error {
	out, err := rag.ExportConversation(deps.Ctx, deps.Conversations, deps.Messages, c.ID, c.Format)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	if c.Out == "" {
		fmt.Fprintln(deps.Stdout, out)
		return nil
	}

	if err := os.WriteFile(c.Out, []byte(out), 0644); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	fmt.Fprintf(deps.Stdout, "Exported conversation %d to %s\n", c.ID, c.Out)
	return nil
}

// Run executes the chat delete command.
func (c *ChatDeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return docqa.Errorf(docqa.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Conversations.DeleteConversation(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted conversation %d\n", c.ID)
	return nil
}
