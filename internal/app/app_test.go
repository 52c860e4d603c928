package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/resumidor/internal/domain"
	"github.com/set-night/resumidor/internal/session"
	"github.com/set-night/resumidor/internal/store"
)

type stubFetcher struct {
	reply  domain.Message
	during func()
	calls  int
	got    domain.Conversation
}

func (f *stubFetcher) Fetch(_ context.Context, _ string, conv domain.Conversation) domain.Message {
	f.calls++
	f.got = conv
	if f.during != nil {
		f.during()
	}
	return f.reply
}

func aiReply(text string) domain.Message {
	return domain.Message{Sender: domain.SenderAI, Text: text, IsHTML: true, Timestamp: 1}
}

func newTestApp(t *testing.T, f Fetcher) (*App, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return New(session.New(st, session.DefaultConfig()), f), st
}

func TestInit_CreatesFirstConversation(t *testing.T) {
	a, _ := newTestApp(t, &stubFetcher{})
	a.Init(context.Background())

	state := a.Sessions().State()
	require.Len(t, state.Conversations, 1)
	assert.Equal(t, state.Conversations[0].ID, state.ActiveID)
}

func TestInit_KeepsStoredConversations(t *testing.T) {
	ctx := context.Background()
	a, st := newTestApp(t, &stubFetcher{})
	a.Init(ctx)
	first := a.Sessions().State().ActiveID

	again := New(session.New(st, session.DefaultConfig()), &stubFetcher{})
	again.Init(ctx)

	state := again.Sessions().State()
	require.Len(t, state.Conversations, 1)
	assert.Equal(t, first, state.ActiveID)
}

func TestSend_StoresUserAndReply(t *testing.T) {
	ctx := context.Background()
	f := &stubFetcher{reply: aiReply("<p>resumen</p>")}
	a, _ := newTestApp(t, f)
	a.Init(ctx)

	reply, err := a.Send(ctx, "  una oferta  ")
	require.NoError(t, err)
	assert.True(t, reply.Stored)
	assert.True(t, reply.Visible)
	assert.Equal(t, "una oferta", reply.User.Text)

	// The fetcher sees the history as it was before the user's message.
	assert.Len(t, f.got.Messages, 1)

	conv, _ := a.Sessions().ActiveConversation()
	require.Len(t, conv.Messages, 3)
	assert.Equal(t, domain.SenderUser, conv.Messages[1].Sender)
	assert.Equal(t, domain.SenderAI, conv.Messages[2].Sender)
	assert.Equal(t, "<p>resumen</p>", conv.Messages[2].Text)
}

func TestSend_ErrorReplyNotStored(t *testing.T) {
	ctx := context.Background()
	f := &stubFetcher{reply: domain.Message{Sender: domain.SenderError, Text: "<p>fallo</p>", IsHTML: true}}
	a, _ := newTestApp(t, f)
	a.Init(ctx)

	reply, err := a.Send(ctx, "hola")
	require.NoError(t, err)
	assert.False(t, reply.Stored)
	assert.Equal(t, domain.SenderError, reply.Message.Sender)

	conv, _ := a.Sessions().ActiveConversation()
	require.Len(t, conv.Messages, 2, "greeting and user message only")
}

func TestSend_Guards(t *testing.T) {
	ctx := context.Background()
	f := &stubFetcher{reply: aiReply("x")}
	a, _ := newTestApp(t, f)

	_, err := a.Send(ctx, "hola")
	require.ErrorIs(t, err, domain.ErrNoActiveConversation)

	a.Init(ctx)
	_, err = a.Send(ctx, " \n ")
	require.ErrorIs(t, err, domain.ErrEmptyMessage)
	assert.Zero(t, f.calls)
}

func TestSend_ReplyBoundToIssuingConversation(t *testing.T) {
	ctx := context.Background()
	f := &stubFetcher{reply: aiReply("<p>tarde</p>")}
	a, _ := newTestApp(t, f)
	a.Init(ctx)
	origin, _ := a.Sessions().ActiveConversation()

	var other domain.Conversation
	f.during = func() { other = a.NewConversation(ctx) }

	reply, err := a.Send(ctx, "hola")
	require.NoError(t, err)
	assert.True(t, reply.Stored)
	assert.False(t, reply.Visible)
	assert.Equal(t, origin.ID, reply.ConversationID)

	gotOrigin, _ := a.Sessions().Conversation(origin.ID)
	gotOther, _ := a.Sessions().Conversation(other.ID)
	assert.Len(t, gotOrigin.Messages, 3)
	assert.Len(t, gotOther.Messages, 1)
}

func TestSend_ReplyDiscardedWhenConversationDeleted(t *testing.T) {
	ctx := context.Background()
	f := &stubFetcher{reply: aiReply("<p>tarde</p>")}
	a, _ := newTestApp(t, f)
	a.Init(ctx)
	origin, _ := a.Sessions().ActiveConversation()

	f.during = func() { a.Delete(ctx, origin.ID) }

	reply, err := a.Send(ctx, "hola")
	require.NoError(t, err)
	assert.False(t, reply.Stored)
	assert.False(t, reply.Visible)

	for _, c := range a.Sessions().State().Conversations {
		assert.NotEqual(t, origin.ID, c.ID)
		assert.Len(t, c.Messages, 1)
	}
}

func TestDelete_ReassignsActive(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t, &stubFetcher{})
	a.Init(ctx)
	first, _ := a.Sessions().ActiveConversation()
	second := a.NewConversation(ctx)
	third := a.NewConversation(ctx)

	assert.True(t, a.Delete(ctx, third.ID))
	assert.Equal(t, second.ID, a.Sessions().State().ActiveID)

	assert.True(t, a.Delete(ctx, first.ID))
	assert.Equal(t, second.ID, a.Sessions().State().ActiveID, "deleting an inactive conversation keeps the active one")

	assert.True(t, a.Delete(ctx, second.ID))
	state := a.Sessions().State()
	require.Len(t, state.Conversations, 1, "a fresh conversation replaces the last one")
	assert.Equal(t, state.Conversations[0].ID, state.ActiveID)

	assert.False(t, a.Delete(ctx, "missing"))
}

func TestDelete_RestoresActiveAfterConcurrentDelete(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t, &stubFetcher{})
	a.Init(ctx)
	first, _ := a.Sessions().ActiveConversation()
	second := a.NewConversation(ctx)
	third := a.NewConversation(ctx)

	// Another writer removes the active conversation behind the App's back.
	require.True(t, a.Sessions().DeleteConversation(ctx, third.ID))
	require.Empty(t, a.Sessions().State().ActiveID)

	assert.True(t, a.Delete(ctx, first.ID))
	state := a.Sessions().State()
	require.Len(t, state.Conversations, 1)
	assert.Equal(t, second.ID, state.ActiveID)
}

func TestSwitch(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t, &stubFetcher{})
	a.Init(ctx)
	first, _ := a.Sessions().ActiveConversation()
	a.NewConversation(ctx)

	assert.Equal(t, session.SwitchChanged, a.Switch(ctx, first.ID))
	assert.Equal(t, session.SwitchUnchanged, a.Switch(ctx, first.ID))
	assert.Equal(t, session.SwitchNotFound, a.Switch(ctx, "nope"))
}
