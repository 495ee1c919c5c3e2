package findings

import (
	"github.com/scan-io-git/zap-sensor/internal/severity"
)

// Property is a simple name/value pair used for references or custom metadata.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Issue is the per-finding output handed to an issue sink.
type Issue struct {
	RuleKey  string            `json:"rule_key"` // ZAP plugin id, verbatim
	Severity severity.Severity `json:"severity"`
	Message  string            `json:"message"`
	Target   string            `json:"target"` // project or module the issue is raised on

	Title      string     `json:"title,omitempty"`
	Solution   string     `json:"solution,omitempty"`
	Properties []Property `json:"properties,omitempty"`
}
