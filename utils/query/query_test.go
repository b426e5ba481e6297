package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		DefaultLimit: 10,
		MaxLimit:     100,
		DefaultSort:  SortKey{Field: "created_at", Desc: true},
		FilterFields: map[string]bool{
			"name":        true,
			"established": true,
			"continent":   true,
		},
		SortFields: map[string]bool{
			"name":        true,
			"established": true,
			"created_at":  true,
		},
		SelectFields: map[string]bool{
			"id":   true,
			"name": true,
		},
		SearchFields: []string{"name"},
		Reserved:     []string{"country", "program"},
	}
}

func TestParseDefaults(t *testing.T) {
	opts, err := Parse(map[string]string{}, testConfig())
	require.NoError(t, err)

	assert.Equal(t, 1, opts.Page)
	assert.Equal(t, 10, opts.Limit)
	assert.Equal(t, []SortKey{{Field: "created_at", Desc: true}}, opts.Sort)
	assert.Empty(t, opts.Fields)
	assert.Empty(t, opts.Filters)
	assert.Equal(t, 0, opts.Offset())
}

func TestParsePagination(t *testing.T) {
	opts, err := Parse(map[string]string{"page": "3", "limit": "20"}, testConfig())
	require.NoError(t, err)

	assert.Equal(t, 3, opts.Page)
	assert.Equal(t, 20, opts.Limit)
	assert.Equal(t, 40, opts.Offset())
}

func TestParsePaginationErrors(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]string
		message string
	}{
		{"zero page", map[string]string{"page": "0"}, "Page number must be greater than 0"},
		{"negative page", map[string]string{"page": "-2"}, "Page number must be greater than 0"},
		{"zero limit", map[string]string{"limit": "0"}, "Limit must be greater than 0"},
		{"negative limit", map[string]string{"limit": "-5"}, "Limit must be greater than 0"},
		{"limit above cap", map[string]string{"limit": "101"}, "Limit cannot exceed 100"},
		{"non-numeric page", map[string]string{"page": "abc"}, "Page must be a number"},
		{"non-numeric limit", map[string]string{"limit": "ten"}, "Limit must be a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := Parse(tt.values, testConfig())
			require.Error(t, err)
			assert.Nil(t, opts, "a failed parse must not return options")
			assert.True(t, IsBadRequest(err))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestParseSortPrefixConvention(t *testing.T) {
	opts, err := Parse(map[string]string{"sort": "-established,name"}, testConfig())
	require.NoError(t, err)

	assert.Equal(t, []SortKey{
		{Field: "established", Desc: true},
		{Field: "name"},
	}, opts.Sort)
}

func TestParseSortColonConvention(t *testing.T) {
	opts, err := Parse(map[string]string{"sort": "established:desc"}, testConfig())
	require.NoError(t, err)
	assert.Equal(t, []SortKey{{Field: "established", Desc: true}}, opts.Sort)

	opts, err = Parse(map[string]string{"sort": "name:asc"}, testConfig())
	require.NoError(t, err)
	assert.Equal(t, []SortKey{{Field: "name"}}, opts.Sort)
}

func TestParseSortRejectsUnknownField(t *testing.T) {
	_, err := Parse(map[string]string{"sort": "password_hash"}, testConfig())
	require.Error(t, err)
	assert.True(t, IsBadRequest(err))
}

func TestParseSortRejectsBadDirection(t *testing.T) {
	_, err := Parse(map[string]string{"sort": "name:sideways"}, testConfig())
	require.Error(t, err)
	assert.True(t, IsBadRequest(err))
}

func TestParseFields(t *testing.T) {
	opts, err := Parse(map[string]string{"fields": "id,name"}, testConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, opts.Fields)
}

func TestParseFieldsRejectsUnknown(t *testing.T) {
	_, err := Parse(map[string]string{"fields": "password_hash"}, testConfig())
	require.Error(t, err)
	assert.True(t, IsBadRequest(err))
}

func TestParseFieldsUnsupportedResource(t *testing.T) {
	cfg := testConfig()
	cfg.SelectFields = nil

	_, err := Parse(map[string]string{"fields": "id"}, cfg)
	require.Error(t, err)
	assert.Equal(t, "Field selection is not supported for this resource", err.Error())
}

func TestParseFilterOperators(t *testing.T) {
	opts, err := Parse(map[string]string{
		"established[gte]": "1900",
		"continent":        "Europe",
	}, testConfig())
	require.NoError(t, err)
	require.Len(t, opts.Filters, 2)

	byField := map[string]Filter{}
	for _, f := range opts.Filters {
		byField[f.Field] = f
	}
	assert.Equal(t, Filter{Field: "established", Op: OpGte, Value: "1900"}, byField["established"])
	assert.Equal(t, Filter{Field: "continent", Op: OpEq, Value: "Europe"}, byField["continent"])
}

func TestParseFilterInOperator(t *testing.T) {
	opts, err := Parse(map[string]string{"continent[in]": "Europe,Asia"}, testConfig())
	require.NoError(t, err)
	require.Len(t, opts.Filters, 1)
	assert.Equal(t, OpIn, opts.Filters[0].Op)
	assert.Equal(t, "Europe,Asia", opts.Filters[0].Value)
}

func TestParseFilterValueIsPlainData(t *testing.T) {
	// Operator-looking tokens inside values must pass through untouched
	opts, err := Parse(map[string]string{"name": "gte"}, testConfig())
	require.NoError(t, err)
	require.Len(t, opts.Filters, 1)
	assert.Equal(t, Filter{Field: "name", Op: OpEq, Value: "gte"}, opts.Filters[0])
}

func TestParseFilterRejectsUnknownField(t *testing.T) {
	_, err := Parse(map[string]string{"role": "admin"}, testConfig())
	require.Error(t, err)
	assert.True(t, IsBadRequest(err))
}

func TestParseFilterRejectsUnknownOperator(t *testing.T) {
	_, err := Parse(map[string]string{"established[regex]": ".*"}, testConfig())
	require.Error(t, err)
	assert.True(t, IsBadRequest(err))
}

func TestParseFilterRejectsMalformedKey(t *testing.T) {
	for _, key := range []string{"established[gte", "[gte]"} {
		_, err := Parse(map[string]string{key: "1900"}, testConfig())
		require.Error(t, err, "key %q", key)
		assert.True(t, IsBadRequest(err))
	}
}

func TestParseSkipsReservedKeys(t *testing.T) {
	opts, err := Parse(map[string]string{
		"country": "12",
		"program": "MBBS",
		"search":  "berlin",
	}, testConfig())
	require.NoError(t, err)

	// Reserved keys never become filters; the caller handles them
	assert.Empty(t, opts.Filters)
	assert.Equal(t, "berlin", opts.Search)
}

func TestOffset(t *testing.T) {
	opts := Options{Page: 5, Limit: 25}
	assert.Equal(t, 100, opts.Offset())
}

func TestIsBadRequest(t *testing.T) {
	assert.True(t, IsBadRequest(&BadRequestError{Message: "nope"}))
	assert.False(t, IsBadRequest(assert.AnError))
}
