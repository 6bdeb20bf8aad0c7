package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListLedgerEntriesQuery(t *testing.T) {
	date := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	t.Run("Canal informado entra no filtro", func(t *testing.T) {
		query, args, err := listLedgerEntriesQuery("site-1", date, "seo")
		require.NoError(t, err)

		assert.Contains(t, query, "channel = $")
		assert.Len(t, args, 3)
		assert.Contains(t, args, "seo")
	})

	t.Run("Canal vazio lista todos os canais do dia", func(t *testing.T) {
		query, args, err := listLedgerEntriesQuery("site-1", date, "")
		require.NoError(t, err)

		assert.NotContains(t, query, "channel = $")
		assert.Len(t, args, 2)
	})
}
