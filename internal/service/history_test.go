package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTurnsFromHistory(t *testing.T) {
	items := []HistoryItem{
		{Sender: "ai", Text: "<p>¡Hola! Soy tu asistente.</p>", IsHTML: true},
		{Sender: "user", Text: "oferta 1", IsHTML: false},
		{Sender: "ai", Text: "<p><b>Empresa</b> selecciona</p>", IsHTML: true},
		{Sender: "error", Text: "<p>fallo</p>", IsHTML: true},
		{Sender: "user", Text: "   ", IsHTML: false},
		{Sender: "user", Text: "oferta 2", IsHTML: false},
	}

	got := TurnsFromHistory(items, 0)
	assert.Equal(t, []Turn{
		{Role: RoleUser, Text: "oferta 1"},
		{Role: RoleAssistant, Text: "Empresa selecciona"},
		{Role: RoleUser, Text: "oferta 2"},
	}, got)
}

func TestTurnsFromHistory_MaxTurnsStartsWithUser(t *testing.T) {
	items := []HistoryItem{
		{Sender: "user", Text: "u1"},
		{Sender: "ai", Text: "a1"},
		{Sender: "user", Text: "u2"},
		{Sender: "ai", Text: "a2"},
	}

	got := TurnsFromHistory(items, 3)
	assert.Equal(t, []Turn{
		{Role: RoleUser, Text: "u2"},
		{Role: RoleAssistant, Text: "a2"},
	}, got)
}
