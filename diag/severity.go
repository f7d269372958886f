package diag

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic. The numeric order is
// the sort order: errors come first.
type Severity uint8

const (
	// SevError marks findings that make a document invalid.
	SevError Severity = iota
	// SevWarning marks suspicious but non-fatal findings.
	SevWarning
	// SevInfo is for informational diagnostics.
	SevInfo
)

func (s Severity) String() string {
	switch s {
	case SevError:
		return "Error"
	case SevWarning:
		return "Warning"
	case SevInfo:
		return "Info"
	}
	return "Unknown"
}

// ParseSeverity accepts the case-insensitive names used by config files
// and CLI flags.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "error":
		return SevError, nil
	case "warning", "warn":
		return SevWarning, nil
	case "info":
		return SevInfo, nil
	}
	return SevError, fmt.Errorf("unknown severity %q", name)
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	sev, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}
