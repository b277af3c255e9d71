package snowplot

import (
	"fmt"

	"golang.org/x/net/html/charset"
)

// Decode converts a raw page to UTF-8. The encoding is taken from a byte
// order mark, the charset parameter of contentType, or a <meta> declaration,
// in that order. Undeclared pages that are not valid UTF-8 are read as
// windows-1252.
func Decode(raw []byte, contentType string) (string, error) {
	enc, name, _ := charset.DetermineEncoding(raw, contentType)
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode page as %s: %w", name, err)
	}
	return string(out), nil
}
