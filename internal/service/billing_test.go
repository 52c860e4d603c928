package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/set-night/resumidor/internal/domain"
)

func TestCalculateCost(t *testing.T) {
	// 1M prompt tokens at $2 plus 500k completion tokens at $4, with 50% markup.
	got := CalculateCost(1_000_000, 500_000, 2, 4, 50)
	assert.True(t, got.Equal(decimal.NewFromInt(6)), "got %s", got)
}

func TestBillingService_Record(t *testing.T) {
	b := NewBillingService(domain.AIModel{ID: "m", PromptPrice: 1, CompletionPrice: 1}, 0)

	c1 := b.Record(&Completion{PromptTokens: 1_000_000})
	assert.True(t, c1.Equal(decimal.NewFromInt(1)), "got %s", c1)

	c2 := b.Record(&Completion{TotalCost: 0.5})
	assert.True(t, c2.Equal(decimal.NewFromFloat(0.5)), "got %s", c2)

	total, n := b.Totals()
	assert.Equal(t, int64(2), n)
	assert.True(t, total.Equal(decimal.NewFromFloat(1.5)), "got %s", total)
}

func TestBillingService_FreeModel(t *testing.T) {
	b := NewBillingService(domain.AIModel{ID: "free"}, 30)
	assert.True(t, b.Record(&Completion{PromptTokens: 10_000}).IsZero())
}
