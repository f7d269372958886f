package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readSource loads one workflow document. "-" reads stdin. A UTF-8 BOM
// is stripped so byte spans line up with what the rules see; CRLF is
// the scanner's business and passes through untouched.
func readSource(path string) (string, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", errIO, err)
	}
	decoder := unicode.UTF8BOM.NewDecoder()
	content, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", fmt.Errorf("%w: decode %s: %v", errIO, path, err)
	}
	return string(content), nil
}

// countLines reports the metadata line count of a document: terminated
// lines plus a trailing fragment.
func countLines(source string) int {
	if source == "" {
		return 0
	}
	n := 0
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			n++
		}
	}
	if source[len(source)-1] != '\n' {
		n++
	}
	return n
}
