package engine

import (
	"testing"
	"time"

	"liftlog/workout-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKeyLegacy(t *testing.T) {
	key, err := SessionKey(domain.KeyModeLegacy, 2, 3, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "W2D3", key)

	_, err = SessionKey(domain.KeyModeLegacy, 0, 3, nil, "")
	var ctxErr *MissingContextError
	require.ErrorAs(t, err, &ctxErr)
	assert.Equal(t, "week", ctxErr.Field)

	_, err = SessionKey(domain.KeyModeLegacy, 2, 0, nil, "")
	require.ErrorAs(t, err, &ctxErr)
	assert.Equal(t, "day", ctxErr.Field)
}

func TestSessionKeyDate(t *testing.T) {
	// 23:30 UTC on March 14 is already March 15 in Kyiv.
	date := time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC)

	t.Run("renders in the requested timezone", func(t *testing.T) {
		key, err := SessionKey(domain.KeyModeDate, 0, 0, &date, "Europe/Kyiv")
		require.NoError(t, err)
		assert.Equal(t, "2026-03-15", key)
	})

	t.Run("unknown timezone falls back to UTC", func(t *testing.T) {
		key, err := SessionKey(domain.KeyModeDate, 0, 0, &date, "Atlantis/Nowhere")
		require.NoError(t, err)
		assert.Equal(t, "2026-03-14", key)
	})

	t.Run("missing session date is a context error", func(t *testing.T) {
		_, err := SessionKey(domain.KeyModeDate, 2, 3, nil, "UTC")
		var ctxErr *MissingContextError
		require.ErrorAs(t, err, &ctxErr)
		assert.Equal(t, "sessionDate", ctxErr.Field)
	})
}
