package extract

import "golang.org/x/net/html"

// DecodeEntities converts HTML character references (named, decimal and
// hexadecimal) to the characters they stand for. Text without entities is
// returned unchanged.
func DecodeEntities(s string) string {
	return html.UnescapeString(s)
}
