package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func collect[T any](t *testing.T, ch <-chan T, errCh <-chan error) ([]T, error) {
	t.Helper()
	var out []T
	for item := range ch {
		out = append(out, item)
	}
	return out, <-errCh
}

func TestDecodeJSONLines(t *testing.T) {
	in := `{"id":1,"name":"a"}

{"id":2,"name":"b"}
`
	ch, errCh := DecodeJSONLines[record](context.Background(), strings.NewReader(in))
	got, err := collect(t, ch, errCh)
	require.NoError(t, err)
	assert.Equal(t, []record{{1, "a"}, {2, "b"}}, got, "blank lines are skipped")
}

func TestDecodeJSONLinesBadLine(t *testing.T) {
	in := "{\"id\":1}\nnot json\n"
	ch, errCh := DecodeJSONLines[record](context.Background(), strings.NewReader(in))
	got, err := collect(t, ch, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Len(t, got, 1, "records before the bad line are still delivered")
}

func TestDecodeJSONLinesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch, errCh := DecodeJSONLines[record](ctx, strings.NewReader("{\"id\":1}\n"))
	_, err := collect(t, ch, errCh)
	assert.Error(t, err)
}

func TestDecodeJSONArray(t *testing.T) {
	in := `[{"id":1,"name":"a"},{"id":2,"name":"b"}]`
	ch, errCh := DecodeJSONArray[record](context.Background(), strings.NewReader(in))
	got, err := collect(t, ch, errCh)
	require.NoError(t, err)
	assert.Equal(t, []record{{1, "a"}, {2, "b"}}, got)
}

func TestDecodeJSONArrayEmpty(t *testing.T) {
	ch, errCh := DecodeJSONArray[record](context.Background(), strings.NewReader("[]"))
	got, err := collect(t, ch, errCh)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeJSONArrayNotAnArray(t *testing.T) {
	ch, errCh := DecodeJSONArray[record](context.Background(), strings.NewReader(`{"id":1}`))
	_, err := collect(t, ch, errCh)
	assert.Error(t, err)
}
