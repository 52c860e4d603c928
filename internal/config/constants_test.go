package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemPrompt_CarriesFormattingAndExample(t *testing.T) {
	for _, want := range []string{
		"Formatea el texto en HTML usando sólo las etiquetas <b> , <i> , <a> de HTML. No uses la etiqueta  <pre>.",
		"Usa la frase [empresa] selecciona",
		"Ejemplo:",
		"Manpower **selecciona** un/a RESPONSABLE DE MANTENIMIENTO",
		"**Funciones:**",
		"**Requisitos:**",
		"**Se ofrece:**",
		"- Salario en función de experiencia y valía",
		"\"Para solicitar:",
		"debe estar inscrito en el portal de empleo que publica la oferta\".",
	} {
		assert.Contains(t, SystemPrompt, want)
	}
}

func TestSystemPrompt_ExampleBeforeClosingText(t *testing.T) {
	example := strings.Index(SystemPrompt, "Ejemplo:")
	closing := strings.Index(SystemPrompt, "Para solicitar:")
	assert.Positive(t, example)
	assert.Greater(t, closing, example)
}
