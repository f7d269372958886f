package rules

import (
	"strings"

	"gantry/diag"
	"gantry/internal/syntax"
)

// secretKeyHints mark env/with keys that usually hold credentials.
var secretKeyHints = []string{"_TOKEN", "_KEY", "_SECRET", "PASSWORD", "PASSPHRASE", "CREDENTIAL"}

// minSecretLiteralLen filters out obvious placeholders: real leaked
// credentials are long.
const minSecretLiteralLen = 16

// Secrets flags likely hardcoded credentials: a long literal value
// assigned under a secret-looking env/with key, where an expression
// (secrets.*) was expected. It also catches the common `secret.`
// misspelling of the secrets context.
type Secrets struct{}

func (Secrets) Name() string           { return "secrets" }
func (Secrets) RequiresWorkflow() bool { return true }

func (Secrets) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	eachStep(tree, source, func(_ jobEntry, step *syntax.Node) {
		if step.Kind != syntax.KindMapping {
			return
		}
		for _, section := range []string{"env", "with"} {
			block := syntax.FindValue(step, source, section)
			if block == nil || block.Kind != syntax.KindMapping {
				continue
			}
			for _, pair := range block.Children {
				if pair.Kind != syntax.KindPair {
					continue
				}
				key := clean(pair.Key().Text(source))
				value := pair.Value()
				if value == nil || value.Kind != syntax.KindScalar {
					continue
				}
				text := clean(value.Text(source))
				if looksLikeSecretKey(key) && len(text) >= minSecretLiteralLen && !isExpr(text) {
					out = append(out, diag.Warningf("secrets", value.Span,
						"Possible hardcoded credential in '%s'. Store the value in repository secrets and reference it as ${{ secrets.%s }}.", key, key))
				}
			}
		}
	})

	// `secret.NAME` silently resolves to nothing; the author meant the
	// plural context.
	for i := 0; ; {
		idx := strings.Index(source[i:], "secret.")
		if idx < 0 {
			break
		}
		at := i + idx
		i = at + len("secret.")
		if at > 0 && (isWordByte(source[at-1]) || source[at-1] == '.') {
			continue
		}
		name := identifierAfter(source, at+len("secret."))
		if name == "" {
			continue
		}
		end := at + len("secret.") + len(name)
		out = append(out, diag.Errorf("secrets",
			diag.Span{Start: uint32(at), End: uint32(end)},
			"Invalid secret reference: 'secret.%s' should be 'secrets.%s' (use plural 'secrets')", name, name))
	}
	return out
}

func looksLikeSecretKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, hint := range secretKeyHints {
		if strings.Contains(upper, hint) {
			return true
		}
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func identifierAfter(s string, at int) string {
	end := at
	for end < len(s) && isWordByte(s[end]) {
		end++
	}
	if end == at {
		return ""
	}
	return s[at:end]
}
