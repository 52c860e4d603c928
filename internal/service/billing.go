package service

import (
	"sync"

	"github.com/set-night/resumidor/internal/domain"
	"github.com/shopspring/decimal"
)

// BillingService accounts upstream spend for the proxy. Nothing is charged
// to the client; the figures are logged and exposed on /healthz.
type BillingService struct {
	model         domain.AIModel
	markupPercent float64

	mu       sync.Mutex
	total    decimal.Decimal
	requests int64
}

func NewBillingService(model domain.AIModel, markupPercent float64) *BillingService {
	return &BillingService{model: model, markupPercent: markupPercent}
}

// Record adds the cost of one completion to the running total and returns it.
func (s *BillingService) Record(c *Completion) decimal.Decimal {
	cost := decimal.Zero
	switch {
	case c.TotalCost > 0:
		// Provider-reported cost wins over the configured price list
		markup := decimal.NewFromFloat(1 + s.markupPercent/100)
		cost = decimal.NewFromFloat(c.TotalCost).Mul(markup)
	case !s.model.IsFree():
		cost = CalculateCost(c.PromptTokens, c.CompletionTokens, s.model.PromptPrice, s.model.CompletionPrice, s.markupPercent)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = s.total.Add(cost)
	s.requests++
	return cost
}

func (s *BillingService) Totals() (decimal.Decimal, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total, s.requests
}

// CalculateCost returns the cost in USD given token counts and per-1M-token prices.
func CalculateCost(promptTokens, completionTokens int, promptPrice, completionPrice float64, markupPercent float64) decimal.Decimal {
	promptCost := decimal.NewFromFloat(float64(promptTokens) * promptPrice / 1_000_000)
	completionCost := decimal.NewFromFloat(float64(completionTokens) * completionPrice / 1_000_000)
	baseCost := promptCost.Add(completionCost)
	markup := decimal.NewFromFloat(1 + markupPercent/100)
	return baseCost.Mul(markup)
}
