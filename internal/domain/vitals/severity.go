// Package vitals classifies physiological readings against clinical
// thresholds. It maps single metrics onto an ordered severity ladder,
// aggregates the four tracked metrics into one overall verdict per reading,
// and scans reading windows for recurring breach patterns worth flagging.
// Everything in this package is a pure function of its arguments: no I/O,
// no shared mutable state, safe for concurrent use.
package vitals

import "fmt"

// Severity ranks how concerning a metric or reading is. SeverityUnknown is
// a sentinel for absent data, never the result of classifying a value. The
// remaining levels form a total order and aggregation always takes the
// maximum: Danger dominates Warning dominates Caution dominates Normal.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityNormal
	SeverityCaution
	SeverityWarning
	SeverityDanger
)

var severityNames = [...]string{"Unknown", "Normal", "Caution", "Warning", "Danger"}

func (s Severity) String() string {
	if s < SeverityUnknown || s > SeverityDanger {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

// MarshalText renders the severity as its display string, so JSON payloads
// carry "Danger" rather than an ordinal.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a display string produced by MarshalText.
func (s *Severity) UnmarshalText(text []byte) error {
	for i, name := range severityNames {
		if string(text) == name {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", text)
}

// MaxSeverity reduces severities to the worst one. With no arguments it
// returns SeverityUnknown.
func MaxSeverity(severities ...Severity) Severity {
	worst := SeverityUnknown
	for _, s := range severities {
		if s > worst {
			worst = s
		}
	}
	return worst
}
