package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRequest(t *testing.T) {
	t.Run("Retorna o corpo da resposta em caso de sucesso", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"rates":{"BRL":5.4}}`))
		}))
		defer server.Close()

		data, err := MakeRequest(server.Client(), server.URL)
		require.NoError(t, err)
		assert.JSONEq(t, `{"rates":{"BRL":5.4}}`, string(data))
	})

	t.Run("Status diferente de 200 é erro", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := MakeRequest(server.Client(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status")
	})
}
