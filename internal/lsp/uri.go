package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
)

// fileURIPath resolves a file:// URI from the client to an absolute
// local path. Non-file schemes yield "". Bare paths pass through since
// some clients put rootPath-style values in URI fields.
func fileURIPath(uri string) string {
	path, ok := strings.CutPrefix(uri, "file://")
	if !ok {
		if strings.Contains(uri, "://") {
			return ""
		}
		path = uri
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	if path == "" {
		return ""
	}
	path = filepath.FromSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
