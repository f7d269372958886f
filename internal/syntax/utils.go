package syntax

import (
	"strings"
)

// CleanKey normalizes a key scalar's raw text: surrounding whitespace is
// trimmed, then one layer of matching single or double quotes.
func CleanKey(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return s
}

// CleanScalar normalizes a scalar value's raw text the same way keys are
// normalized. Block scalar bodies are returned as-is.
func CleanScalar(raw string) string {
	return CleanKey(raw)
}

// FindPair looks up a direct pair of a mapping node by cleaned key text.
// It returns nil when n is not a mapping or carries no such key.
func FindPair(n *Node, source, key string) *Node {
	if n == nil || n.Kind != KindMapping {
		return nil
	}
	for _, p := range n.Children {
		if p.Kind != KindPair {
			continue
		}
		if CleanKey(p.Key().Text(source)) == key {
			return p
		}
	}
	return nil
}

// FindValue returns the value node for a direct key of a mapping. The
// result may be KindMissing when the key is present without a value; it
// is nil only when the key does not exist.
func FindValue(n *Node, source, key string) *Node {
	p := FindPair(n, source, key)
	if p == nil {
		return nil
	}
	return p.Value()
}

// HasKeyDeep reports whether any mapping anywhere under n carries the
// given key.
func HasKeyDeep(n *Node, source, key string) bool {
	found := false
	Walk(n, func(c *Node) bool {
		if found {
			return false
		}
		if c.Kind == KindPair && CleanKey(c.Key().Text(source)) == key {
			found = true
			return false
		}
		return true
	})
	return found
}

// LooksLikeWorkflow is the single shared likelihood gate for
// workflow-shaped documents. A document qualifies when its top-level
// mapping has an `on` key, or has both `name` and `jobs` keys. Arbitrary
// YAML that fails the gate is left alone by workflow-specific rules.
func LooksLikeWorkflow(t *Tree, source string) bool {
	m := t.TopLevelMapping()
	if m == nil {
		return false
	}
	if FindPair(m, source, "on") != nil {
		return true
	}
	return FindPair(m, source, "name") != nil && FindPair(m, source, "jobs") != nil
}
