package frame

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVNullNormalization(t *testing.T) {
	in := "id,name,max\n1,JANE DOE,1500\n2,\u00a0,\n3,BOB ROE\n"

	tab, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "max"}, tab.Columns())
	require.Equal(t, 3, tab.NumRows())

	assert.Equal(t, "JANE DOE", tab.Get(0, "name").Str)
	assert.False(t, tab.Get(1, "name").Valid, "non-breaking space reads as null")
	assert.False(t, tab.Get(1, "max").Valid, "empty string reads as null")
	assert.False(t, tab.Get(2, "max").Valid, "short rows pad with nulls")
}

func TestWriteCSVRoundTrip(t *testing.T) {
	tab := New([]string{"id", "max"})
	require.NoError(t, tab.AppendRow([]Cell{String("1"), Float(1500)}))
	require.NoError(t, tab.AppendRow([]Cell{String("2"), Null()}))

	var buf bytes.Buffer
	require.NoError(t, tab.WriteCSV(&buf))
	assert.Equal(t, "id,max\n1,1500\n2,\n", buf.String())

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Equal(t, 2, back.NumRows())
	assert.False(t, back.Get(1, "max").Valid)
}

func TestFromRows(t *testing.T) {
	tab := FromRows([]string{"a", "b"}, [][]string{
		{"1", "\u00a0"},
		{"2"},
	})
	require.Equal(t, 2, tab.NumRows())
	assert.Equal(t, "1", tab.Get(0, "a").Str)
	assert.False(t, tab.Get(0, "b").Valid)
	assert.False(t, tab.Get(1, "b").Valid)
}
