package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_UnmarshalJSON(t *testing.T) {
	var q Quantity
	require.NoError(t, json.Unmarshal([]byte(`12`), &q))
	assert.Equal(t, KnownQuantity(12), q)

	require.NoError(t, json.Unmarshal([]byte(`"UNKNOWN"`), &q))
	assert.False(t, q.Known)

	assert.Error(t, json.Unmarshal([]byte(`"twelve"`), &q))
	assert.Error(t, json.Unmarshal([]byte(`true`), &q))
}

func TestParseAction(t *testing.T) {
	a, ok := ParseAction("MOVE")
	assert.True(t, ok)
	assert.Equal(t, ActionMove, a)

	_, ok = ParseAction("move")
	assert.False(t, ok)
}
