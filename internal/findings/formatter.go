// Package findings turns parsed ZAP alert items into issues.
package findings

import (
	"strings"

	"github.com/scan-io-git/zap-sensor/internal/severity"
	"github.com/scan-io-git/zap-sensor/internal/zap"
)

// DescriptionSeparator joins the labelled fields of an issue message.
const DescriptionSeparator = " | "

type field struct {
	label string
	value string
}

// FormatDescription renders the finding as "URI: .. | Confidence: .. | Description: .. | Param: .. | Attack: .. | Evidence: ..".
// Blank fields are left out together with their label and separator.
func FormatDescription(f *zap.Finding) string {
	if f == nil {
		return ""
	}

	fields := []field{
		{label: "URI", value: f.URI},
		{label: "Confidence", value: f.Confidence},
		{label: "Description", value: f.Description},
		{label: "Param", value: f.Param},
		{label: "Attack", value: f.Attack},
		{label: "Evidence", value: f.Evidence},
	}

	parts := make([]string, 0, len(fields))
	for _, fd := range fields {
		if strings.TrimSpace(fd.value) == "" {
			continue
		}
		parts = append(parts, fd.label+": "+fd.value)
	}
	return strings.Join(parts, DescriptionSeparator)
}

// NewIssue builds the issue raised on target for a classified finding.
func NewIssue(f *zap.Finding, sev severity.Severity, target string) Issue {
	issue := Issue{
		RuleKey:  f.PluginID,
		Severity: sev,
		Message:  FormatDescription(f),
		Target:   target,
		Title:    f.Title,
		Solution: f.Solution,
	}

	for _, p := range []Property{
		{Name: "riskdesc", Value: f.RiskDesc},
		{Name: "cweid", Value: f.CWEID},
		{Name: "wascid", Value: f.WASCID},
		{Name: "sourceid", Value: f.SourceID},
		{Name: "reference", Value: f.Reference},
	} {
		if strings.TrimSpace(p.Value) != "" {
			issue.Properties = append(issue.Properties, p)
		}
	}
	return issue
}
