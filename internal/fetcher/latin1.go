package fetcher

import (
	"io"

	"golang.org/x/text/encoding/charmap"
)

// Latin1Reader wraps r with an ISO-8859-1 to UTF-8 transcoder. The internal
// SQL extract is exported in ISO-8859-1 and carries accented patient names
// that would otherwise come through as invalid UTF-8.
func Latin1Reader(r io.Reader) io.Reader {
	return charmap.ISO8859_1.NewDecoder().Reader(r)
}
