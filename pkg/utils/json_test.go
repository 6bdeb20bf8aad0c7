package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrettyJson(t *testing.T) {
	t.Run("Indenta structs serializáveis", func(t *testing.T) {
		in := struct {
			Name string `json:"name"`
		}{Name: "seo"}

		out := PrettyJson(in)
		assert.Equal(t, "{\n\t\"name\": \"seo\"\n}", out)
	})

	t.Run("Indenta bytes JSON diretamente", func(t *testing.T) {
		out := PrettyJson([]byte(`{"a":1}`))
		assert.Equal(t, "{\n\t\"a\": 1\n}", out)
	})

	t.Run("Bytes que não são JSON voltam como estão", func(t *testing.T) {
		out := PrettyJson([]byte("não é json"))
		assert.Equal(t, "não é json", out)
	})
}
