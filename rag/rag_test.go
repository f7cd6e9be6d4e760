package rag_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tverano/docqa"
	"github.com/tverano/docqa/memory"
	"github.com/tverano/docqa/mock"
	"github.com/tverano/docqa/rag"
	"github.com/tverano/docqa/session"
)

// harness wires an Orchestrator over in-memory collaborators.
type harness struct {
	convs    []*docqa.Conversation
	msgs     []*docqa.Message
	settings map[string]string
	index    *memory.VectorIndex
	chunks   map[int64]*docqa.Chunk
	prompts  []string

	deps rag.Deps
	orch *rag.Orchestrator
}

// newHarness builds an orchestrator whose engine echoes answer for every
// prompt.
func newHarness(t *testing.T, answer string) *harness {
	t.Helper()
	h := &harness{
		settings: map[string]string{},
		index:    memory.NewVectorIndex(),
		chunks:   map[int64]*docqa.Chunk{},
	}

	profiler := &mock.Profiler{
		DetectFn: func(ctx context.Context) *docqa.HardwareProfile {
			return &docqa.HardwareProfile{CoreCount: 4, ThreadCount: 8, TotalRAMBytes: 8 << 30}
		},
	}
	cache := &mock.ModelCache{
		ListFn: func() ([]docqa.ModelDescriptor, error) { return docqa.Catalog(), nil },
	}
	engine := &mock.Engine{
		LoadFn: func(ctx context.Context, model docqa.ModelDescriptor, params docqa.ExecutionParams) (docqa.EngineHandle, error) {
			return &mock.EngineHandle{
				GenerateFn: func(ctx context.Context, prompt string) (<-chan docqa.Token, error) {
					h.prompts = append(h.prompts, prompt)
					ch := make(chan docqa.Token, len(answer)+1)
					for _, r := range answer {
						ch <- docqa.Token{Text: string(r)}
					}
					ch <- docqa.Token{Done: true}
					close(ch)
					return ch, nil
				},
			}, nil
		},
	}
	embedder := &mock.Embedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0, 0}, nil
		},
		DimensionFn: func() int { return 3 },
	}

	var nextID int64
	convs := &mock.ConversationService{
		CreateConversationFn: func(ctx context.Context, conv *docqa.Conversation) error {
			nextID++
			conv.ID = nextID
			h.convs = append(h.convs, conv)
			return nil
		},
		FindConversationByIDFn: func(ctx context.Context, id int64) (*docqa.Conversation, error) {
			for _, conv := range h.convs {
				if conv.ID == id {
					return conv, nil
				}
			}
			return nil, docqa.Errorf(docqa.ENOTFOUND, "conversation not found")
		},
	}
	msgs := &mock.MessageService{
		CreateMessageFn: func(ctx context.Context, msg *docqa.Message) error {
			nextID++
			msg.ID = nextID
			h.msgs = append(h.msgs, msg)
			return nil
		},
		FindMessagesFn: func(ctx context.Context, conversationID int64) ([]*docqa.Message, error) {
			var out []*docqa.Message
			for _, msg := range h.msgs {
				if msg.ConversationID == conversationID {
					out = append(out, msg)
				}
			}
			return out, nil
		},
	}
	chunkSvc := &mock.ChunkService{
		FindChunkByIDFn: func(ctx context.Context, id int64) (*docqa.Chunk, error) {
			chunk, ok := h.chunks[id]
			if !ok {
				return nil, docqa.Errorf(docqa.ENOTFOUND, "chunk not found")
			}
			return chunk, nil
		},
	}
	docs := &mock.DocumentService{
		FindDocumentByIDFn: func(ctx context.Context, id int64) (*docqa.Document, error) {
			return &docqa.Document{ID: id, FileName: "manual.txt", FileType: "txt"}, nil
		},
	}
	settings := &mock.SettingService{
		GetSettingFn: func(ctx context.Context, key string) (string, error) { return h.settings[key], nil },
		SetSettingFn: func(ctx context.Context, key, value string) error {
			h.settings[key] = value
			return nil
		},
	}

	h.deps = rag.Deps{
		Profiler:      profiler,
		ModelCache:    cache,
		Engine:        engine,
		Embedder:      embedder,
		Index:         h.index,
		Chunks:        chunkSvc,
		Documents:     docs,
		Conversations: convs,
		Messages:      msgs,
		Settings:      settings,
	}
	h.orch = rag.NewOrchestrator(h.deps)
	return h
}

// seedChunk puts a chunk in storage and the index.
func (h *harness) seedChunk(t *testing.T, id int64, text string, embedding []float32) {
	t.Helper()
	h.chunks[id] = &docqa.Chunk{ID: id, DocumentID: 1, Text: text, Embedding: embedding}
	require.NoError(t, h.index.Insert(id, embedding))
}

func TestOrchestrator_AskSync(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("grounded answer with citations", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, "Returns are allowed within 30 days [1].")
		h.seedChunk(t, 10, "Returns are allowed within 30 days.", []float32{1, 0, 0})
		h.seedChunk(t, 11, "Unrelated shipping info.", []float32{0, 1, 0})

		msg, err := h.orch.AskSync(ctx, 0, "What is the return policy?")
		require.NoError(t, err)

		assert.Equal(t, docqa.RoleAssistant, msg.Role)
		require.Len(t, msg.Citations, 1)
		assert.Equal(t, int64(10), msg.Citations[0].ChunkID)
		assert.Equal(t, "manual.txt", msg.Citations[0].FileName)

		// New conversation titled from the question, two messages stored.
		require.Len(t, h.convs, 1)
		assert.Equal(t, "What is the return policy?", h.convs[0].Title)
		require.Len(t, h.msgs, 2)
		assert.Equal(t, docqa.RoleUser, h.msgs[0].Role)

		// The prompt carried the retrieved chunk.
		require.Len(t, h.prompts, 1)
		assert.Contains(t, h.prompts[0], "[1] Returns are allowed within 30 days.")
	})

	t.Run("empty index degrades to chat", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, "Hello! How can I help?")
		msg, err := h.orch.AskSync(ctx, 0, "Hi there")
		require.NoError(t, err)

		assert.Empty(t, msg.Citations)
		require.Len(t, h.prompts, 1)
		assert.NotContains(t, h.prompts[0], "Context:")
	})

	t.Run("follow-up includes history", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, "It depends on the item.")
		first, err := h.orch.AskSync(ctx, 0, "What about refunds?")
		require.NoError(t, err)

		_, err = h.orch.AskSync(ctx, first.ConversationID, "And exchanges?")
		require.NoError(t, err)

		require.Len(t, h.prompts, 2)
		assert.Contains(t, h.prompts[1], "User: What about refunds?")
		assert.Len(t, h.msgs, 4)
	})

	t.Run("blank question invalid", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, "unused")
		_, err := h.orch.AskSync(ctx, 0, "   ")
		assert.Equal(t, docqa.EINVALID, docqa.ErrorCode(err))
	})

	t.Run("unknown conversation", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, "unused")
		_, err := h.orch.AskSync(ctx, 999, "question")
		assert.Equal(t, docqa.ENOTFOUND, docqa.ErrorCode(err))
	})
}

func TestOrchestrator_Ask_Outcomes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("failure persists no assistant message", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, "unused")
		failEngine := &mock.Engine{
			LoadFn: func(ctx context.Context, model docqa.ModelDescriptor, params docqa.ExecutionParams) (docqa.EngineHandle, error) {
				return &mock.EngineHandle{
					GenerateFn: func(ctx context.Context, prompt string) (<-chan docqa.Token, error) {
						ch := make(chan docqa.Token, 1)
						ch <- docqa.Token{Err: docqa.Errorf(docqa.EINTERNAL, "engine crashed")}
						close(ch)
						return ch, nil
					},
				}, nil
			},
		}
		deps := h.deps
		deps.Engine = failEngine
		orch := rag.NewOrchestrator(deps)

		answer, err := orch.Ask(ctx, 0, "question")
		require.NoError(t, err)
		for range answer.Session.Tokens() {
		}

		msg, outcome, err := answer.Finalize(ctx)
		assert.Nil(t, msg)
		assert.Equal(t, session.OutcomeFailed, outcome)
		require.Error(t, err)

		// Only the user message was stored.
		require.Len(t, h.msgs, 1)
		assert.Equal(t, docqa.RoleUser, h.msgs[0].Role)
	})

	t.Run("empty generation persists no assistant message", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, "")
		answer, err := h.orch.Ask(ctx, 0, "question")
		require.NoError(t, err)
		for range answer.Session.Tokens() {
		}

		msg, outcome, err := answer.Finalize(ctx)
		require.NoError(t, err)
		assert.Nil(t, msg)
		assert.Equal(t, session.OutcomeEmpty, outcome)
		assert.Len(t, h.msgs, 1)
	})
}

func TestOrchestrator_ResolveModel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("recommends for hardware when unset", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, "unused")
		model, params, err := h.orch.ResolveModel(ctx)
		require.NoError(t, err)

		// 8 GiB of RAM minus the safety margin fits the 4 GiB tier.
		assert.Equal(t, uint64(4<<30), model.MinRAMBytes)
		assert.Equal(t, 8192, params.ContextWindow)
		assert.Equal(t, 4, params.ThreadCount)
	})

	t.Run("setting overrides recommendation", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, "unused")
		want := docqa.Catalog()[0]
		h.settings[docqa.SettingModel] = want.Name

		model, _, err := h.orch.ResolveModel(ctx)
		require.NoError(t, err)
		assert.Equal(t, want.Name, model.Name)
	})

	t.Run("unknown configured model", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, "unused")
		h.settings[docqa.SettingModel] = "gpt-17"
		_, _, err := h.orch.ResolveModel(ctx)
		assert.Equal(t, docqa.ENOTFOUND, docqa.ErrorCode(err))
	})
}

func TestExportConversation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	h := newHarness(t, "The answer [1].")
	h.seedChunk(t, 10, "source text", []float32{1, 0, 0})
	msg, err := h.orch.AskSync(ctx, 0, "A question")
	require.NoError(t, err)

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()
		out, err := rag.ExportConversation(ctx, h.deps.Conversations, h.deps.Messages, msg.ConversationID, rag.FormatMarkdown)
		require.NoError(t, err)
		assert.Contains(t, out, "# A question")
		assert.Contains(t, out, "## You")
		assert.Contains(t, out, "- [1] manual.txt")
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		out, err := rag.ExportConversation(ctx, h.deps.Conversations, h.deps.Messages, msg.ConversationID, rag.FormatJSON)
		require.NoError(t, err)
		assert.True(t, strings.Contains(out, `"messages"`))
	})

	t.Run("txt", func(t *testing.T) {
		t.Parallel()
		out, err := rag.ExportConversation(ctx, h.deps.Conversations, h.deps.Messages, msg.ConversationID, rag.FormatText)
		require.NoError(t, err)
		assert.Contains(t, out, "The answer [1].")
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		_, err := rag.ExportConversation(ctx, h.deps.Conversations, h.deps.Messages, msg.ConversationID, "pdf")
		assert.Equal(t, docqa.EINVALID, docqa.ErrorCode(err))
	})
}
