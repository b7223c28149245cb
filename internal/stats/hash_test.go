package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashParamsKeyOrderIndependence(t *testing.T) {
	a, err := HashParams(map[string]any{"exercise": "squat", "rangeDays": 90})
	require.NoError(t, err)
	b, err := HashParams(map[string]any{"rangeDays": 90, "exercise": "squat"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // hex sha256
}

func TestHashParamsValueSensitivity(t *testing.T) {
	a, err := HashParams(map[string]any{"rangeDays": 90})
	require.NoError(t, err)
	b, err := HashParams(map[string]any{"rangeDays": 30})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashParamsNested(t *testing.T) {
	a, err := HashParams(map[string]any{
		"filters": map[string]any{"bucket": "week", "exercise": "bench"},
		"tags":    []string{"x", "y"},
	})
	require.NoError(t, err)
	b, err := HashParams(map[string]any{
		"tags":    []string{"x", "y"},
		"filters": map[string]any{"exercise": "bench", "bucket": "week"},
	})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// Array order is meaningful, unlike map key order.
	c, err := HashParams(map[string]any{
		"filters": map[string]any{"bucket": "week", "exercise": "bench"},
		"tags":    []string{"y", "x"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestHashParamsStructsAndMapsAgree(t *testing.T) {
	type query struct {
		Exercise  string `json:"exercise"`
		RangeDays int    `json:"rangeDays"`
	}
	a, err := HashParams(query{Exercise: "squat", RangeDays: 90})
	require.NoError(t, err)
	b, err := HashParams(map[string]any{"exercise": "squat", "rangeDays": 90})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
