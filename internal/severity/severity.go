// Package severity maps ZAP risk codes onto the four-level severity scale used for issues and scoring.
package severity

import (
	"fmt"
)

// Severity is the normalized classification of a finding.
// The zero value is Info.
type Severity int

const (
	// Info is an informational finding; it does not contribute to the risk score.
	Info Severity = iota
	// Minor corresponds to ZAP risk code 1 (low).
	Minor
	// Major corresponds to ZAP risk code 2 (medium).
	Major
	// Critical corresponds to ZAP risk code 3 (high).
	Critical

	numSeverities
)

// Risk codes emitted by ZAP in <riskcode>.
const (
	RiskCodeInfo   = 0
	RiskCodeLow    = 1
	RiskCodeMedium = 2
	RiskCodeHigh   = 3
)

// FallbackSeverity is assigned to risk codes outside RiskCodeInfo..RiskCodeHigh.
const FallbackSeverity = Info

var severityNames = [...]string{
	Info:     "INFO",
	Minor:    "MINOR",
	Major:    "MAJOR",
	Critical: "CRITICAL",
}

// Adding a severity without a name breaks the build here.
var _ [numSeverities]struct{} = [len(severityNames)]struct{}{}

// ClassificationError reports a risk code outside the range ZAP is known to emit.
type ClassificationError struct {
	RiskCode int
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("risk code %d is outside the known range %d..%d, falling back to %s",
		e.RiskCode, RiskCodeInfo, RiskCodeHigh, FallbackSeverity)
}

// Classify converts a ZAP risk code to a Severity.
// Unknown codes are mapped to FallbackSeverity.
func Classify(riskCode int) Severity {
	switch riskCode {
	case RiskCodeInfo:
		return Info
	case RiskCodeLow:
		return Minor
	case RiskCodeMedium:
		return Major
	case RiskCodeHigh:
		return Critical
	default:
		return FallbackSeverity
	}
}

// Validate returns a *ClassificationError when riskCode would be classified through the fallback.
func Validate(riskCode int) error {
	if riskCode < RiskCodeInfo || riskCode > RiskCodeHigh {
		return &ClassificationError{RiskCode: riskCode}
	}
	return nil
}

// All returns every severity in ascending order.
func All() []Severity {
	all := make([]Severity, 0, numSeverities)
	for s := Info; s < numSeverities; s++ {
		all = append(all, s)
	}
	return all
}

// Valid reports whether s is one of the declared severities.
func (s Severity) Valid() bool {
	return s >= Info && s < numSeverities
}

// String returns the upper-case name of the severity.
func (s Severity) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

// MarshalText renders the severity by name so JSON and YAML output stay readable.
func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// SarifLevel maps the severity to a SARIF result level.
func (s Severity) SarifLevel() string {
	switch s {
	case Critical, Major:
		return "error"
	case Minor:
		return "warning"
	case Info:
		return "note"
	default:
		panic(fmt.Sprintf("severity: unhandled %v", s))
	}
}
