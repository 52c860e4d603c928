package domain

// AIModel describes the upstream model a proxy forwards to.
type AIModel struct {
	ID              string
	Provider        string
	PromptPrice     float64 // per 1M tokens
	CompletionPrice float64 // per 1M tokens
}

func (m *AIModel) IsFree() bool {
	return m.PromptPrice == 0 && m.CompletionPrice == 0
}
