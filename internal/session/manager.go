// Package session owns the conversation list and the active-conversation
// pointer and persists both through a store.Store after every mutation.
//
// Limits:
//   - at most Config.MaxConversations conversations; creating one more evicts
//     the conversation with the smallest CreatedAt.
//   - at most Config.MaxMessagesPerConversation messages per conversation;
//     older messages are trimmed from the front.
//
// Store failures are logged and never returned from mutating operations: the
// in-memory state stays authoritative for the rest of the process.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/resumidor/internal/config"
	"github.com/set-night/resumidor/internal/domain"
	"github.com/set-night/resumidor/internal/store"
)

type Config struct {
	MaxConversations           int
	MaxMessagesPerConversation int
	SystemPrompt               string
	Greeting                   string
	NamePrefix                 string
}

func DefaultConfig() Config {
	return Config{
		MaxConversations:           config.MaxConversations,
		MaxMessagesPerConversation: config.MaxMessagesPerConversation,
		SystemPrompt:               config.SystemPrompt,
		Greeting:                   config.InitialGreeting,
		NamePrefix:                 config.ConversationNamePrefix,
	}
}

type SwitchResult int

const (
	SwitchChanged SwitchResult = iota
	SwitchUnchanged
	SwitchNotFound
)

func (r SwitchResult) String() string {
	switch r {
	case SwitchChanged:
		return "changed"
	case SwitchUnchanged:
		return "unchanged"
	case SwitchNotFound:
		return "not_found"
	}
	return fmt.Sprintf("SwitchResult(%d)", int(r))
}

// State is a snapshot of the manager; it shares no memory with it.
type State struct {
	Conversations []domain.Conversation
	ActiveID      string
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithIDFunc(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

func WithKeys(conversationsKey, lastActiveKey string) Option {
	return func(m *Manager) {
		m.conversationsKey = conversationsKey
		m.lastActiveKey = lastActiveKey
	}
}

type Manager struct {
	store store.Store
	cfg   Config

	now              func() time.Time
	newID            func() string
	conversationsKey string
	lastActiveKey    string

	mu            sync.Mutex
	conversations []*domain.Conversation // descending CreatedAt
	activeID      string
}

func New(st store.Store, cfg Config, opts ...Option) *Manager {
	if cfg.MaxConversations <= 0 {
		cfg.MaxConversations = config.MaxConversations
	}
	if cfg.MaxMessagesPerConversation <= 0 {
		cfg.MaxMessagesPerConversation = config.MaxMessagesPerConversation
	}
	m := &Manager{
		store:            st,
		cfg:              cfg,
		now:              time.Now,
		newID:            uuid.NewString,
		conversationsKey: config.ConversationsKey,
		lastActiveKey:    config.LastActiveIDKey,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load replaces the in-memory state with what the store holds. It reports
// whether at least one conversation exists afterwards; missing or corrupt
// data yields an empty list and false.
func (m *Manager) Load(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.conversations = nil
	m.activeID = ""

	raw, err := m.store.Get(ctx, m.conversationsKey)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			slog.Error("load conversations", "error", err)
		}
		return false
	}

	var records []storedConversation
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		slog.Error("decode conversations", "error", err)
		return false
	}

	convs := make([]*domain.Conversation, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i := range records {
		conv := upgrade(&records[i], m.defaults())
		if conv.ID == "" || seen[conv.ID] {
			slog.Warn("skip stored conversation with missing or duplicate id", "id", conv.ID)
			continue
		}
		seen[conv.ID] = true
		if over := len(conv.Messages) - m.cfg.MaxMessagesPerConversation; over > 0 {
			conv.Messages = conv.Messages[over:]
		}
		convs = append(convs, conv)
	}
	sortByCreatedDesc(convs)
	if len(convs) > m.cfg.MaxConversations {
		for _, c := range convs[m.cfg.MaxConversations:] {
			slog.Info("conversation limit reached, evicted oldest",
				"conversation_id", c.ID, "created_at", c.CreatedAt)
		}
		convs = convs[:m.cfg.MaxConversations]
	}
	m.conversations = convs

	lastActive, err := m.store.Get(ctx, m.lastActiveKey)
	if err != nil && !errors.Is(err, domain.ErrKeyNotFound) {
		slog.Error("load last active id", "error", err)
	}
	if m.find(lastActive) != nil {
		m.activeID = lastActive
	} else if len(m.conversations) > 0 {
		m.activeID = m.conversations[0].ID
	}

	slog.Debug("conversations loaded", "count", len(m.conversations), "active_id", m.activeID)
	return len(m.conversations) > 0
}

// CreateNewConversation adds a conversation seeded with the greeting,
// evicting the oldest one when the cap is reached.
func (m *Manager) CreateNewConversation(ctx context.Context, makeActive bool) domain.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.conversations) >= m.cfg.MaxConversations {
		m.evictOldest()
	}

	created := m.now()
	now := created.UnixMilli()
	conv := &domain.Conversation{
		ID:   m.newID(),
		Name: fmt.Sprintf("%s %s", m.cfg.NamePrefix, created.Local().Format(config.ConversationNameLayout)),
		Messages: []domain.Message{{
			Sender:    domain.SenderAI,
			Text:      m.cfg.Greeting,
			IsHTML:    true,
			Timestamp: now,
		}},
		CreatedAt:    now,
		SystemPrompt: m.cfg.SystemPrompt,
	}
	m.conversations = append([]*domain.Conversation{conv}, m.conversations...)

	if makeActive {
		m.activeID = conv.ID
	}
	m.persist(ctx)
	return conv.Clone()
}

func (m *Manager) SwitchConversation(ctx context.Context, id string) SwitchResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == m.activeID {
		return SwitchUnchanged
	}
	if m.find(id) == nil {
		return SwitchNotFound
	}
	m.activeID = id
	m.persist(ctx)
	return SwitchChanged
}

// DeleteConversation removes the conversation with id. Deleting the active
// conversation leaves no active conversation; choosing a replacement is up
// to the caller.
func (m *Manager) DeleteConversation(ctx context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return false
	}
	m.conversations = append(m.conversations[:idx], m.conversations[idx+1:]...)
	if m.activeID == id {
		m.activeID = ""
	}
	m.persist(ctx)
	return true
}

// AppendMessage appends to the active conversation.
func (m *Manager) AppendMessage(ctx context.Context, sender domain.Sender, text string, isHTML bool) (domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.activeID == "" {
		slog.Error("append message without active conversation", "sender", sender)
		return domain.Message{}, domain.ErrNoActiveConversation
	}
	return m.appendTo(ctx, m.activeID, sender, text, isHTML)
}

// AppendMessageTo appends to a specific conversation whether or not it is active.
func (m *Manager) AppendMessageTo(ctx context.Context, id string, sender domain.Sender, text string, isHTML bool) (domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendTo(ctx, id, sender, text, isHTML)
}

func (m *Manager) appendTo(ctx context.Context, id string, sender domain.Sender, text string, isHTML bool) (domain.Message, error) {
	if !sender.Valid() {
		return domain.Message{}, fmt.Errorf("%w: %q", domain.ErrInvalidSender, sender)
	}
	conv := m.find(id)
	if conv == nil {
		slog.Error("append message to unknown conversation", "conversation_id", id)
		return domain.Message{}, domain.ErrConversationNotFound
	}

	msg := domain.Message{
		Sender:    sender,
		Text:      text,
		IsHTML:    isHTML,
		Timestamp: m.now().UnixMilli(),
	}
	conv.Messages = append(conv.Messages, msg)
	if over := len(conv.Messages) - m.cfg.MaxMessagesPerConversation; over > 0 {
		kept := make([]domain.Message, m.cfg.MaxMessagesPerConversation)
		copy(kept, conv.Messages[over:])
		conv.Messages = kept
	}

	m.persist(ctx)
	return msg, nil
}

func (m *Manager) ActiveConversation() (domain.Conversation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv := m.find(m.activeID)
	if conv == nil {
		return domain.Conversation{}, false
	}
	return conv.Clone(), true
}

func (m *Manager) Conversation(id string) (domain.Conversation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv := m.find(id)
	if conv == nil {
		return domain.Conversation{}, false
	}
	return conv.Clone(), true
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	convs := make([]domain.Conversation, len(m.conversations))
	for i, c := range m.conversations {
		convs[i] = c.Clone()
	}
	return State{Conversations: convs, ActiveID: m.activeID}
}

// Save writes the current state to the store.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(ctx)
}

func (m *Manager) persist(ctx context.Context) {
	if err := m.save(ctx); err != nil {
		slog.Error("save conversations", "error", err)
	}
}

func (m *Manager) save(ctx context.Context) error {
	records := make([]storedConversation, len(m.conversations))
	for i, c := range m.conversations {
		records[i] = toStored(c)
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal conversations: %w", err)
	}
	if err := m.store.Set(ctx, m.conversationsKey, string(data)); err != nil {
		return fmt.Errorf("store conversations: %w", err)
	}
	if err := m.store.Set(ctx, m.lastActiveKey, m.activeID); err != nil {
		return fmt.Errorf("store last active id: %w", err)
	}
	return nil
}

// evictOldest drops the conversation with the smallest CreatedAt; on ties
// the first one in list order goes.
func (m *Manager) evictOldest() {
	if len(m.conversations) == 0 {
		return
	}
	oldest := 0
	for i, c := range m.conversations {
		if c.CreatedAt < m.conversations[oldest].CreatedAt {
			oldest = i
		}
	}
	evicted := m.conversations[oldest]
	m.conversations = append(m.conversations[:oldest], m.conversations[oldest+1:]...)
	if m.activeID == evicted.ID {
		m.activeID = ""
	}
	slog.Info("conversation limit reached, evicted oldest", "conversation_id", evicted.ID, "created_at", evicted.CreatedAt)
}

func (m *Manager) find(id string) *domain.Conversation {
	if idx := m.indexOf(id); idx >= 0 {
		return m.conversations[idx]
	}
	return nil
}

func (m *Manager) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, c := range m.conversations {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) defaults() defaults {
	return defaults{
		now:          m.now().UnixMilli(),
		systemPrompt: m.cfg.SystemPrompt,
		greeting:     m.cfg.Greeting,
	}
}

func sortByCreatedDesc(convs []*domain.Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].CreatedAt > convs[j].CreatedAt
	})
}
