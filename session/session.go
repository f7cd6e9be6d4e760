// Package session manages live generation sessions. At most one session
// runs at a time; starting a new one cancels and drains its predecessor.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tverano/docqa"
)

// Outcome classifies how a session ended.
type Outcome int

const (
	// OutcomeCompleted means generation ran to its natural end.
	OutcomeCompleted Outcome = iota

	// OutcomeCancelled means the session was cancelled; any tokens
	// produced before cancellation are preserved.
	OutcomeCancelled

	// OutcomeFailed means the engine reported an error mid-stream.
	OutcomeFailed

	// OutcomeEmpty means generation completed without producing text.
	OutcomeEmpty
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	case OutcomeEmpty:
		return "empty"
	default:
		return "completed"
	}
}

// Session is one live generation. Tokens stream on Tokens(); Wait blocks
// for the terminal outcome.
type Session struct {
	id     string
	tokens chan docqa.Token
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	text    strings.Builder
	outcome Outcome
	err     error
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Tokens returns the token stream. The channel closes after the terminal
// token has been accounted for.
func (s *Session) Tokens() <-chan docqa.Token {
	return s.tokens
}

// Cancel requests cancellation. Safe to call repeatedly and after the
// session has ended.
func (s *Session) Cancel() {
	s.cancel()
}

// Wait blocks until the session ends and returns its outcome, the
// accumulated text, and the error for failed sessions.
func (s *Session) Wait() (Outcome, string, error) {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome, s.text.String(), s.err
}

// finish records the terminal state. Called once by the relay goroutine.
func (s *Session) finish(outcome Outcome, err error) {
	s.mu.Lock()
	s.outcome = outcome
	s.err = err
	if outcome == OutcomeCompleted && strings.TrimSpace(s.text.String()) == "" {
		s.outcome = OutcomeEmpty
	}
	s.mu.Unlock()
	close(s.done)
}

// Manager owns the single live session.
type Manager struct {
	mu      sync.Mutex
	current *Session
}

// NewManager creates a Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Start begins a new session for the prompt. Any session still running
// is cancelled and awaited first, so engine access is serialized.
func (m *Manager) Start(ctx context.Context, handle docqa.EngineHandle, prompt string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.Cancel()
		m.current.Wait()
		m.current = nil
	}

	genCtx, cancel := context.WithCancel(ctx)
	stream, err := handle.Generate(genCtx, prompt)
	if err != nil {
		cancel()
		return nil, err
	}

	s := &Session{
		id:     uuid.New().String(),
		tokens: make(chan docqa.Token, cap(stream)+1),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go relay(s, stream, genCtx, cancel)

	m.current = s
	return s, nil
}

// Cancel cancels the live session, if any.
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.Cancel()
	}
}

// relay forwards tokens from the engine stream, accumulating text and
// classifying the terminal token. Forwarding never blocks indefinitely:
// a consumer that stopped reading is unstuck by cancellation.
func relay(s *Session, stream <-chan docqa.Token, ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	defer close(s.tokens)

	for token := range stream {
		switch {
		case token.Err != nil:
			if errors.Is(token.Err, context.Canceled) {
				s.finish(OutcomeCancelled, nil)
			} else {
				s.finish(OutcomeFailed, token.Err)
			}
			forward(s, token)
			return
		case token.Done:
			s.finish(OutcomeCompleted, nil)
			forward(s, token)
			return
		default:
			s.mu.Lock()
			s.text.WriteString(token.Text)
			s.mu.Unlock()

			select {
			case s.tokens <- token:
			case <-ctx.Done():
				// Consumer is gone; drain the stream so the engine
				// goroutine can exit, then record cancellation.
				for range stream {
				}
				s.finish(OutcomeCancelled, nil)
				return
			}
		}
	}

	// Stream closed without a terminal token; treat as completed.
	s.finish(OutcomeCompleted, nil)
}

// forward delivers the terminal token if the consumer still has room.
// The outcome is already recorded, so dropping it loses nothing.
func forward(s *Session, token docqa.Token) {
	select {
	case s.tokens <- token:
	default:
	}
}
