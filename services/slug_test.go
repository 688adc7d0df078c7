package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Abertura de inscrições", "abertura-de-inscricoes"},
		{"  Edital nº 12/2024 — Resultado Final  ", "edital-n-12-2024-resultado-final"},
		{"Ação Social: Vacinação!!!", "acao-social-vacinacao"},
		{"already-a-slug", "already-a-slug"},
		{"---Trim---me---", "trim-me"},
		{"MiXeD CaSe 42", "mixed-case-42"},
		{"Über uns", "uber-uns"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
