package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iga-community/internal/vectorstore"
)

func decodeMessages(t *testing.T, raw string) []IncomingMessage {
	t.Helper()
	var msgs []IncomingMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &msgs))
	return msgs
}

func TestNormalizeMessages(t *testing.T) {
	msgs := decodeMessages(t, `[
		{"role":"system","content":"  be helpful  "},
		{"role":"user","content":[{"type":"text","text":"What is "},"Kumbathon",{"value":"?"}]},
		{"role":"assistant","content":""},
		{"role":"assistant","parts":[{"type":"text","content":"It is a hackathon."}]},
		{"role":"user","content":[{"type":"image"}]},
		{"role":"user"}
	]`)

	got := NormalizeMessages(msgs)
	require.Len(t, got, 3)
	assert.Equal(t, "be helpful", got[0].Content)
	assert.Equal(t, "What is Kumbathon?", got[1].Content)
	assert.Equal(t, "assistant", got[2].Role)
	assert.Equal(t, "It is a hackathon.", got[2].Content)
}

func TestReplyBuildsPromptFromContext(t *testing.T) {
	store := &fakeVectorStore{docs: []vectorstore.Document{
		{Text: "Kumbathon is our annual hackathon"},
		{Text: "Donate <today> & help"},
	}}
	embedder := &fakeEmbedder{}
	completer := &fakeCompleter{answer: "  It's a **hackathon**.  "}
	svc := NewChatService(embedder, completer, store, 10, discardLogger())

	reply, err := svc.Reply(context.Background(), decodeMessages(t, `[
		{"role":"system","content":"ignored"},
		{"role":"user","content":"Hi"},
		{"role":"assistant","content":"Hello!"},
		{"role":"user","content":"What is Kumbathon?"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, "assistant", reply.Role)
	assert.Equal(t, "It's a **hackathon**.", reply.Content)

	assert.Equal(t, []string{"What is Kumbathon?"}, embedder.calls)

	require.Len(t, completer.got, 4)
	system := completer.got[0]
	assert.Equal(t, "system", system.Role)
	assert.True(t, strings.HasPrefix(system.Content, "You are an AI assistant who knows everything about International Girls Academy."))
	assert.Contains(t, system.Content, "START CONTEXT\n[\"Kumbathon is our annual hackathon\",\"Donate <today> & help\"]\nEND CONTEXT")
	assert.Contains(t, system.Content, "QUESTION: What is Kumbathon?\n---------------------\n")
	assert.Equal(t, "Hi", completer.got[1].Content)
	assert.Equal(t, "What is Kumbathon?", completer.got[3].Content)
}

func TestReplyMissingUserMessage(t *testing.T) {
	svc := NewChatService(&fakeEmbedder{}, &fakeCompleter{}, &fakeVectorStore{}, 10, discardLogger())
	_, err := svc.Reply(context.Background(), decodeMessages(t, `[{"role":"assistant","content":"Hi"},{"role":"user","content":"   "}]`))
	assert.ErrorIs(t, err, ErrMissingUserMessage)

	_, err = svc.Reply(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMissingUserMessage)
}

func TestReplyContinuesWhenSearchFails(t *testing.T) {
	completer := &fakeCompleter{answer: "General answer"}
	store := &fakeVectorStore{searchErr: errors.New("collection missing")}
	svc := NewChatService(&fakeEmbedder{}, completer, store, 10, discardLogger())

	reply, err := svc.Reply(context.Background(), decodeMessages(t, `[{"role":"user","content":"Hello"}]`))
	require.NoError(t, err)
	assert.Equal(t, "General answer", reply.Content)
	assert.Contains(t, completer.got[0].Content, "START CONTEXT\n\nEND CONTEXT")
}

func TestReplyFailures(t *testing.T) {
	msgs := decodeMessages(t, `[{"role":"user","content":"Hello"}]`)

	svc := NewChatService(&fakeEmbedder{err: errors.New("quota")}, &fakeCompleter{answer: "x"}, &fakeVectorStore{}, 10, discardLogger())
	_, err := svc.Reply(context.Background(), msgs)
	assert.Error(t, err)

	svc = NewChatService(&fakeEmbedder{}, &fakeCompleter{answer: "   "}, &fakeVectorStore{}, 10, discardLogger())
	_, err = svc.Reply(context.Background(), msgs)
	assert.ErrorIs(t, err, ErrEmptyCompletion)

	svc = NewChatService(&fakeEmbedder{}, &fakeCompleter{err: errors.New("timeout")}, &fakeVectorStore{}, 10, discardLogger())
	_, err = svc.Reply(context.Background(), msgs)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingUserMessage)
}
