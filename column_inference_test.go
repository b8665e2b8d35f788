package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		values   []string
		expected Kind
	}{
		{"all integers", []string{"123", "456", "789"}, KindInteger},
		{"mixed integers and floats", []string{"123", "45.6", "789"}, KindReal},
		{"all floats", []string{"12.3", "45.6", "78.9"}, KindReal},
		{"all text", []string{"hello", "world"}, KindText},
		{"one stray text value forces text", []string{"1", "2", "abc", "3"}, KindText},
		{"iso dates", []string{"2024-01-01", "2024-06-15", "2024-12-31"}, KindDatetime},
		{"datetime with time", []string{"2024-01-01 10:00:00", "2024-01-02 11:30:00"}, KindDatetime},
		{"empty values default to text", []string{"", "", ""}, KindText},
		{"empty input", nil, KindText},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, inferKind(tt.values))
		})
	}
}

func TestIsDatetime(t *testing.T) {
	t.Parallel()

	assert.True(t, isDatetime("2024-01-01"))
	assert.True(t, isDatetime("2024-01-01T10:00:00Z"))
	assert.True(t, isDatetime("2024-01-01 10:00:00"))
	assert.True(t, isDatetime("01/15/2024"))
	assert.False(t, isDatetime("not a date"))
	assert.False(t, isDatetime("123"))
	assert.False(t, isDatetime(""))
}

func TestInferSchema(t *testing.T) {
	t.Parallel()

	header := newHeader([]string{"id", "name", "score"})
	records := []Record{
		newRecord([]string{"1", "alice", "9.5"}),
		newRecord([]string{"2", "bob", "8.1"}),
		newRecord([]string{"3", "carol", "7.25"}),
	}

	schema := inferSchema(header, records)

	require := assert.New(t)
	require.Len(schema, 3)
	require.Equal("id", schema[0].Name)
	require.Equal(KindInteger, schema[0].Kind)
	require.Equal("name", schema[1].Name)
	require.Equal(KindText, schema[1].Kind)
	require.Equal("score", schema[2].Name)
	require.Equal(KindReal, schema[2].Kind)
}

func TestInferSchemaEmptyHeader(t *testing.T) {
	t.Parallel()
	assert.Nil(t, inferSchema(nil, nil))
}

func TestInferSchemaNoRecords(t *testing.T) {
	t.Parallel()

	header := newHeader([]string{"a", "b"})
	schema := inferSchema(header, nil)

	assert.Len(t, schema, 2)
	for _, c := range schema {
		assert.Equal(t, KindText, c.Kind)
	}
}
