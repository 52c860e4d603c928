package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/set-night/resumidor/internal/domain"
)

func sample() []domain.Conversation {
	return []domain.Conversation{
		{
			ID:           "c1",
			Name:         "Conversación 10:00",
			CreatedAt:    1700000000000,
			SystemPrompt: "prompt",
			Messages: []domain.Message{
				{Sender: domain.SenderAI, Text: "<p>¡Hola! Soy <b>Sussi</b></p>", IsHTML: true, Timestamp: 1700000000000},
				{Sender: domain.SenderUser, Text: "Resume esta oferta", Timestamp: 1700000001000},
			},
		},
		{ID: "c2", Name: "Conversación 11:00", CreatedAt: 1700000100000},
	}
}

func TestNewExporter(t *testing.T) {
	for format, ext := range map[string]string{"json": "json", "yaml": "yaml", "YML": "yaml", "md": "md", "markdown": "md"} {
		e, err := NewExporter(format)
		require.NoError(t, err, format)
		assert.Equal(t, ext, e.Extension())
	}

	_, err := NewExporter("csv")
	assert.Error(t, err)
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONExporter{}).Export(sample(), &buf))

	var got []domain.Conversation
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample(), got)
	assert.Contains(t, buf.String(), `"isHtml": true`)

	buf.Reset()
	require.NoError(t, (&JSONExporter{}).Export(nil, &buf))
	assert.Equal(t, "[]\n", buf.String())
}

func TestYAMLExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLExporter{}).Export(sample(), &buf))

	var got []domain.Conversation
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "Resume esta oferta", got[0].Messages[1].Text)
	assert.Contains(t, buf.String(), "createdAt: 1700000000000")
}

func TestMarkdownExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownExporter{}).Export(sample(), &buf))
	out := buf.String()

	assert.Contains(t, out, "# Conversación 10:00\n")
	assert.Contains(t, out, "**Mensajes:** 2")
	assert.Contains(t, out, "¡Hola! Soy Sussi", "html is flattened")
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "**Tú**")
	assert.Equal(t, 1, strings.Count(out, "\n---\n"), "one separator between two conversations")
}
