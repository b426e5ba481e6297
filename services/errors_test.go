package services

import (
	"testing"

	"github.com/abroadwise/abroad-api/utils/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestParseIDRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "abc", "-1", "1.5", "0", "18446744073709551616"} {
		_, err := ParseID(raw)
		require.Error(t, err, "raw %q", raw)
		assert.True(t, query.IsBadRequest(err), "a malformed id is a client error")
	}
}
