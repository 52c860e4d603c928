// Package export writes conversations to files for archiving or sharing.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/set-night/resumidor/internal/domain"
	"github.com/set-night/resumidor/internal/render"
)

// Exporter writes a set of conversations in one format.
type Exporter interface {
	Export(convs []domain.Conversation, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format.
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return &JSONExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	}
	return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml, md)", format)
}

// JSONExporter writes the same array the session store persists, pretty-printed.
type JSONExporter struct{}

func (e *JSONExporter) Export(convs []domain.Conversation, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(nonNil(convs))
}

func (e *JSONExporter) Extension() string {
	return "json"
}

type YAMLExporter struct{}

func (e *YAMLExporter) Export(convs []domain.Conversation, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(nonNil(convs))
}

func (e *YAMLExporter) Extension() string {
	return "yaml"
}

// MarkdownExporter writes a readable transcript. HTML messages are flattened to text.
type MarkdownExporter struct{}

const timeLayout = "2006-01-02 15:04"

func (e *MarkdownExporter) Export(convs []domain.Conversation, w io.Writer) error {
	var sb strings.Builder
	for i, c := range convs {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&sb, "# %s\n\n", c.Name)
		fmt.Fprintf(&sb, "**ID:** %s  \n", c.ID)
		fmt.Fprintf(&sb, "**Creada:** %s  \n", c.CreatedTime().Format(timeLayout))
		fmt.Fprintf(&sb, "**Mensajes:** %d\n\n", len(c.Messages))

		for _, m := range c.Messages {
			text := m.Text
			if m.IsHTML {
				text = render.PlainText(text)
			}
			fmt.Fprintf(&sb, "**%s** (%s)\n\n%s\n\n", senderLabel(m.Sender), m.Time().Format(timeLayout), text)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (e *MarkdownExporter) Extension() string {
	return "md"
}

func senderLabel(s domain.Sender) string {
	switch s {
	case domain.SenderUser:
		return "Tú"
	case domain.SenderAI:
		return "Sussi"
	case domain.SenderError:
		return "Error"
	}
	return string(s)
}

func nonNil(convs []domain.Conversation) []domain.Conversation {
	if convs == nil {
		return []domain.Conversation{}
	}
	return convs
}
