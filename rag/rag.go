// Package rag orchestrates question answering: retrieval over the chunk
// index, prompt assembly, generation, and conversation persistence.
package rag

import (
	"context"
	"strings"

	"github.com/tverano/docqa"
	"github.com/tverano/docqa/session"
)

// topK is how many chunks ground an answer.
const topK = 5

// Orchestrator wires retrieval and generation into conversations.
type Orchestrator struct {
	profiler docqa.Profiler
	cache    docqa.ModelCache
	engine   docqa.Engine
	embedder docqa.Embedder
	index    docqa.VectorIndex
	chunks   docqa.ChunkService
	docs     docqa.DocumentService
	convs    docqa.ConversationService
	msgs     docqa.MessageService
	settings docqa.SettingService
	sessions *session.Manager
}

// Deps are the collaborators an Orchestrator needs.
type Deps struct {
	Profiler      docqa.Profiler
	ModelCache    docqa.ModelCache
	Engine        docqa.Engine
	Embedder      docqa.Embedder
	Index         docqa.VectorIndex
	Chunks        docqa.ChunkService
	Documents     docqa.DocumentService
	Conversations docqa.ConversationService
	Messages      docqa.MessageService
	Settings      docqa.SettingService
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(deps Deps) *Orchestrator {
	return &Orchestrator{
		profiler: deps.Profiler,
		cache:    deps.ModelCache,
		engine:   deps.Engine,
		embedder: deps.Embedder,
		index:    deps.Index,
		chunks:   deps.Chunks,
		docs:     deps.Documents,
		convs:    deps.Conversations,
		msgs:     deps.Messages,
		settings: deps.Settings,
		sessions: session.NewManager(),
	}
}

// ResolveModel returns the model that will answer questions: the user's
// configured choice if set, otherwise the best recommendation for this
// hardware. The model must be downloaded; a missing file is EUNAVAILABLE.
func (o *Orchestrator) ResolveModel(ctx context.Context) (docqa.ModelDescriptor, docqa.ExecutionParams, error) {
	profile := o.profiler.Detect(ctx)

	var model docqa.ModelDescriptor
	name, err := o.settings.GetSetting(ctx, docqa.SettingModel)
	if err != nil {
		return docqa.ModelDescriptor{}, docqa.ExecutionParams{}, err
	}
	if name != "" {
		if model, err = docqa.FindModel(name); err != nil {
			return docqa.ModelDescriptor{}, docqa.ExecutionParams{}, err
		}
	} else {
		model = docqa.RecommendModel(profile)
	}

	local, err := o.cache.List()
	if err != nil {
		return docqa.ModelDescriptor{}, docqa.ExecutionParams{}, err
	}
	found := false
	for _, m := range local {
		if m.Name == model.Name {
			found = true
			break
		}
	}
	if !found {
		return docqa.ModelDescriptor{}, docqa.ExecutionParams{}, docqa.Errorf(docqa.EUNAVAILABLE,
			"model %q is not downloaded; run the download command first", model.Name)
	}

	return model, docqa.DeriveExecutionParams(profile, model), nil
}

// Answer is an in-flight response. Stream tokens from Session, then call
// Finalize to persist the outcome.
type Answer struct {
	Conversation *docqa.Conversation
	Session      *session.Session
	Chunks       []docqa.RetrievedChunk

	handle docqa.EngineHandle
	msgs   docqa.MessageService
}

// Ask starts answering a question inside a conversation. A zero
// conversationID starts a new conversation titled from the question. The
// user message is persisted immediately; the assistant message is
// persisted by Finalize according to how generation ends.
func (o *Orchestrator) Ask(ctx context.Context, conversationID int64, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, docqa.Errorf(docqa.EINVALID, "question required")
	}

	model, params, err := o.ResolveModel(ctx)
	if err != nil {
		return nil, err
	}

	conv, err := o.resolveConversation(ctx, conversationID, question)
	if err != nil {
		return nil, err
	}

	// History is every turn before this question.
	history, err := o.msgs.FindMessages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	if err := o.msgs.CreateMessage(ctx, &docqa.Message{
		ConversationID: conv.ID,
		Role:           docqa.RoleUser,
		Content:        question,
	}); err != nil {
		return nil, err
	}

	retrieved, err := o.retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	prompt := docqa.BuildPrompt(docqa.PromptInput{
		Question:      question,
		Chunks:        retrieved,
		History:       history,
		ContextWindow: params.ContextWindow,
	})

	handle, err := o.engine.Load(ctx, model, params)
	if err != nil {
		return nil, err
	}

	s, err := o.sessions.Start(ctx, handle, prompt)
	if err != nil {
		handle.Close()
		return nil, err
	}

	return &Answer{
		Conversation: conv,
		Session:      s,
		Chunks:       retrieved,
		handle:       handle,
		msgs:         o.msgs,
	}, nil
}

// Finalize waits for generation to end and persists the assistant
// message: full text with citations on completion, partial text on
// cancellation, nothing on failure or empty output.
func (a *Answer) Finalize(ctx context.Context) (*docqa.Message, session.Outcome, error) {
	outcome, text, genErr := a.Session.Wait()
	a.handle.Close()

	switch outcome {
	case session.OutcomeFailed:
		return nil, outcome, genErr
	case session.OutcomeEmpty:
		return nil, outcome, nil
	}
	if strings.TrimSpace(text) == "" {
		return nil, outcome, nil
	}

	msg := &docqa.Message{
		ConversationID: a.Conversation.ID,
		Role:           docqa.RoleAssistant,
		Content:        text,
		Citations:      docqa.ExtractCitations(text, a.Chunks),
	}
	if err := a.msgs.CreateMessage(ctx, msg); err != nil {
		return nil, outcome, err
	}
	return msg, outcome, nil
}

// Cancel stops the in-flight generation.
func (a *Answer) Cancel() {
	a.Session.Cancel()
}

// AskSync asks and blocks until the answer is persisted. Convenience for
// callers that do not render the stream.
func (o *Orchestrator) AskSync(ctx context.Context, conversationID int64, question string) (*docqa.Message, error) {
	answer, err := o.Ask(ctx, conversationID, question)
	if err != nil {
		return nil, err
	}
	for range answer.Session.Tokens() {
	}

	msg, outcome, err := answer.Finalize(ctx)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, docqa.Errorf(docqa.EINTERNAL, "generation ended without text (%s)", outcome)
	}
	return msg, nil
}

// Cancel stops the live generation session, if any.
func (o *Orchestrator) Cancel() {
	o.sessions.Cancel()
}

// resolveConversation loads an existing conversation or starts a new one
// titled from the question.
func (o *Orchestrator) resolveConversation(ctx context.Context, id int64, question string) (*docqa.Conversation, error) {
	if id != 0 {
		return o.convs.FindConversationByID(ctx, id)
	}
	conv := &docqa.Conversation{Title: docqa.AutoTitle(question)}
	if err := o.convs.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// retrieve embeds the question and hydrates the top matches. An empty
// index means chat without document grounding.
func (o *Orchestrator) retrieve(ctx context.Context, question string) ([]docqa.RetrievedChunk, error) {
	if o.index.Len() == 0 {
		return nil, nil
	}

	embedding, err := o.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	matches := o.index.Query(embedding, topK)
	retrieved := make([]docqa.RetrievedChunk, 0, len(matches))
	fileNames := make(map[int64]string)

	for _, match := range matches {
		chunk, err := o.chunks.FindChunkByID(ctx, match.ChunkID)
		if err != nil {
			// The index can briefly lead storage after a delete; skip.
			if docqa.ErrorCode(err) == docqa.ENOTFOUND {
				continue
			}
			return nil, err
		}

		name, ok := fileNames[chunk.DocumentID]
		if !ok {
			doc, err := o.docs.FindDocumentByID(ctx, chunk.DocumentID)
			if err != nil {
				if docqa.ErrorCode(err) == docqa.ENOTFOUND {
					continue
				}
				return nil, err
			}
			name = doc.FileName
			fileNames[chunk.DocumentID] = name
		}

		retrieved = append(retrieved, docqa.RetrievedChunk{
			ChunkID:    chunk.ID,
			DocumentID: chunk.DocumentID,
			FileName:   name,
			Ordinal:    len(retrieved) + 1,
			Text:       chunk.Text,
			Score:      match.Score,
		})
	}

	return retrieved, nil
}
