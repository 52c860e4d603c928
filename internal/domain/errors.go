package domain

import "errors"

var (
	ErrNoActiveConversation = errors.New("no active conversation")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidSender        = errors.New("invalid sender")
	ErrEmptyMessage         = errors.New("empty message")
	ErrKeyNotFound          = errors.New("key not found")
	ErrUpstream             = errors.New("upstream model error")
	ErrRateLimited          = errors.New("rate limited by upstream")
	ErrUpstreamUnavailable  = errors.New("upstream service unavailable")
	ErrEmptyCompletion      = errors.New("model returned no content")
	ErrUnknownProvider      = errors.New("unknown llm provider")
	ErrUnknownStoreDriver   = errors.New("unknown store driver")
)
