package telegram

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/resumidor/internal/domain"
	"github.com/set-night/resumidor/internal/session"
	"github.com/set-night/resumidor/internal/store"
)

func TestSplitMessage_Short(t *testing.T) {
	assert.Equal(t, []string{"hola"}, SplitMessage("hola", 10))
}

func TestSplitMessage_PrefersNewline(t *testing.T) {
	text := strings.Repeat("a", 8) + "\n" + strings.Repeat("b", 8)
	parts := SplitMessage(text, 10)
	require.Len(t, parts, 2)
	assert.Equal(t, strings.Repeat("a", 8)+"\n", parts[0])
	assert.Equal(t, strings.Repeat("b", 8), parts[1])
}

func TestSplitMessage_HardSplitCountsRunes(t *testing.T) {
	text := strings.Repeat("ñ", 25)
	parts := SplitMessage(text, 10)
	require.Len(t, parts, 3)
	for _, p := range parts {
		assert.LessOrEqual(t, utf8.RuneCountInString(p), 10)
	}
	assert.Equal(t, text, strings.Join(parts, ""))
}

func TestMessageText(t *testing.T) {
	assert.Equal(t, "<b>tal cual</b>", MessageText(domain.Message{Text: "<b>tal cual</b>"}))
	assert.Equal(t, "Hola mundo", MessageText(domain.Message{Text: "<p>Hola <b>mundo</b></p>", IsHTML: true}))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "uno dos", Snippet("  uno\n dos ", 20))
	assert.Equal(t, "abc…", Snippet("abcdef", 3))
}

func TestPaginationRow(t *testing.T) {
	assert.Nil(t, PaginationRow(0, 1, "p_"))

	row := PaginationRow(0, 3, "p_")
	require.Len(t, row, 2)
	assert.Equal(t, NoopData, row[0].CallbackData)
	assert.Equal(t, "p_1", row[1].CallbackData)

	row = PaginationRow(2, 3, "p_")
	require.Len(t, row, 2)
	assert.Equal(t, "p_1", row[0].CallbackData)
	assert.Equal(t, "3/3", row[1].Text)
}

func TestChats_SeparateNamespaces(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	chats := NewChats(st, nil, session.DefaultConfig())

	a := chats.ForChat(ctx, 1)
	b := chats.ForChat(ctx, 2)
	assert.Same(t, a, chats.ForChat(ctx, 1))

	a.NewConversation(ctx)
	assert.Len(t, a.Sessions().State().Conversations, 2)
	assert.Len(t, b.Sessions().State().Conversations, 1)

	raw, err := st.Get(ctx, ChatNamespace(1)+"iaResumidorConversations")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	// A fresh registry over the same store sees the persisted chat.
	again := NewChats(st, nil, session.DefaultConfig()).ForChat(ctx, 1)
	assert.Len(t, again.Sessions().State().Conversations, 2)
}

// gatedStore blocks reads under one prefix until the gate is closed.
type gatedStore struct {
	*store.MemoryStore
	prefix string
	gate   chan struct{}
}

func (s *gatedStore) Get(ctx context.Context, key string) (string, error) {
	if strings.HasPrefix(key, s.prefix) {
		<-s.gate
	}
	return s.MemoryStore.Get(ctx, key)
}

func TestChats_SlowLoadDoesNotBlockOtherChats(t *testing.T) {
	ctx := context.Background()
	st := &gatedStore{MemoryStore: store.NewMemoryStore(), prefix: ChatNamespace(1), gate: make(chan struct{})}
	chats := NewChats(st, nil, session.DefaultConfig())

	loaded := make(chan struct{})
	go func() {
		chats.ForChat(ctx, 1)
		close(loaded)
	}()

	done := make(chan struct{})
	go func() {
		chats.ForChat(ctx, 2)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("chat 2 waited for chat 1 to load")
	}

	close(st.gate)
	<-loaded
}

func TestChats_ConcurrentFirstUseLoadsOnce(t *testing.T) {
	ctx := context.Background()
	chats := NewChats(store.NewMemoryStore(), nil, session.DefaultConfig())

	const workers = 16
	got := make([]any, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = chats.ForChat(ctx, 42)
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, got[0], got[i])
	}
	assert.Len(t, chats.ForChat(ctx, 42).Sessions().State().Conversations, 1)
}

func TestChats_EvictsIdleChatsPastLimit(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	chats := NewChats(st, nil, session.DefaultConfig(), WithChatLimit(2, time.Minute), WithChatClock(clock))

	first := chats.ForChat(ctx, 1)
	first.NewConversation(ctx)
	chats.ForChat(ctx, 2)

	// Nothing is idle yet, so the registry grows past the limit.
	chats.ForChat(ctx, 3)
	assert.Len(t, chats.chats, 3)

	now = now.Add(2 * time.Minute)
	chats.ForChat(ctx, 2)
	chats.ForChat(ctx, 4)
	assert.Len(t, chats.chats, 2)
	assert.Contains(t, chats.chats, int64(2))
	assert.Contains(t, chats.chats, int64(4))

	// An unloaded chat comes back from the store.
	again := chats.ForChat(ctx, 1)
	assert.NotSame(t, first, again)
	assert.Len(t, again.Sessions().State().Conversations, 2)
}
