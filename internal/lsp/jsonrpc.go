package lsp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

var errNoContentLength = errors.New("frame has no Content-Length header")

// stream frames JSON-RPC payloads with the Content-Length headers LSP
// clients speak over stdio. Writes are serialized internally so publish
// notifications never interleave with responses.
type stream struct {
	r   *bufio.Reader
	wmu sync.Mutex
	w   io.Writer
}

func newStream(r io.Reader, w io.Writer) *stream {
	return &stream{r: bufio.NewReader(r), w: w}
}

// read consumes one framed payload. Header names are case-insensitive;
// headers other than Content-Length are skipped.
func (s *stream) read() ([]byte, error) {
	size := -1
	for {
		line, err := s.r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		size, err = strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid Content-Length: %w", err)
		}
	}
	if size < 0 {
		return nil, errNoContentLength
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(s.r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// write frames and sends one payload.
func (s *stream) write(payload []byte) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if _, err := fmt.Fprintf(s.w, "Content-Length: %d\r\n\r\n", len(payload)); err != nil {
		return err
	}
	_, err := s.w.Write(payload)
	return err
}
