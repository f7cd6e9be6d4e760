package main

import (
	"fmt"

	"github.com/tverano/docqa"
	"github.com/tverano/docqa/session"
)

// Run executes the ask command. Tokens stream to stdout as they arrive;
// the answer is persisted once generation ends.
func (c *AskCmd) Run(deps *Dependencies) error {
	answer, err := deps.Orchestrator.Ask(deps.Ctx, c.Conversation, c.Question)
	if err != nil {
		if docqa.ErrorCode(err) == docqa.EUNAVAILABLE {
			fmt.Fprintln(deps.Stderr, "Hint: Run 'docqa download' to fetch a model, and make sure Ollama is running.")
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}

	for token := range answer.Session.Tokens() {
		if token.Text != "" {
			fmt.Fprint(deps.Stdout, token.Text)
		}
	}
	fmt.Fprintln(deps.Stdout)

	msg, outcome, err := answer.Finalize(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docqa.ErrorMessage(err))
		return err
	}
	if outcome == session.OutcomeEmpty {
		fmt.Fprintln(deps.Stderr, "The model produced no output.")
		return nil
	}

	if len(msg.Citations) > 0 {
		fmt.Fprintln(deps.Stdout, "\nSources:")
		for _, cit := range msg.Citations {
			fmt.Fprintf(deps.Stdout, "  [%d] %s\n", cit.Marker, cit.FileName)
		}
	}
	fmt.Fprintf(deps.Stdout, "\n(conversation %d)\n", answer.Conversation.ID)
	return nil
}
