package choicescript

import (
	"fmt"
	"strings"
)

// Severity ranks a diagnostic. The values match the Language Server Protocol.
type Severity int

const (
	Error       Severity = 1
	Warning     Severity = 2
	Information Severity = 3
	Hint        Severity = 4
)

var severityNames = map[Severity]string{
	Error:       "error",
	Warning:     "warning",
	Information: "information",
	Hint:        "hint",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// ParseSeverity returns the severity named by s, ignoring case.
// "info" is accepted for "information".
func ParseSeverity(s string) (Severity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "info" {
		return Information, nil
	}
	for sev, name := range severityNames {
		if name == s {
			return sev, nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

// Source is the value of Diagnostic.Source for diagnostics made here.
const Source = "choicescript"

// Diagnostic is a problem found in a document.
// Message text is stable and safe to match on.
type Diagnostic struct {
	Range    Range    `json:"range"`
	Severity Severity `json:"severity"`
	Source   string   `json:"source,omitempty"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Range.Start.Line+1, d.Range.Start.Character+1, d.Severity, d.Message)
}

// newDiagnostic builds a diagnostic spanning two byte offsets of doc.
func newDiagnostic(sev Severity, doc *Document, start, end int, message string) Diagnostic {
	return Diagnostic{
		Range:    doc.Range(start, end),
		Severity: sev,
		Source:   Source,
		Message:  message,
	}
}

func diagnosticAt(sev Severity, loc Location, message string) Diagnostic {
	return Diagnostic{
		Range:    loc.Range,
		Severity: sev,
		Source:   Source,
		Message:  message,
	}
}
