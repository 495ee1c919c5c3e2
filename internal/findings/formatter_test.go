package findings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scan-io-git/zap-sensor/internal/severity"
	"github.com/scan-io-git/zap-sensor/internal/zap"
)

func TestFormatDescription(t *testing.T) {
	testCases := []struct {
		name    string
		finding zap.Finding
		want    string
	}{
		{
			name: "BlankFieldsOmitted",
			finding: zap.Finding{
				URI:         "http://x",
				Description: "d",
				Evidence:    "e",
			},
			want: "URI: http://x | Description: d | Evidence: e",
		},
		{
			name: "AllFields",
			finding: zap.Finding{
				URI:         "http://x/a",
				Confidence:  "2",
				Description: "desc",
				Param:       "q",
				Attack:      "<script>",
				Evidence:    "<script>",
			},
			want: "URI: http://x/a | Confidence: 2 | Description: desc | Param: q | Attack: <script> | Evidence: <script>",
		},
		{
			name: "LastFieldBlank",
			finding: zap.Finding{
				URI:    "http://x",
				Attack: "a",
			},
			want: "URI: http://x | Attack: a",
		},
		{
			name: "FirstFieldBlank",
			finding: zap.Finding{
				Confidence: "3",
				Evidence:   "e",
			},
			want: "Confidence: 3 | Evidence: e",
		},
		{
			name: "WhitespaceIsBlank",
			finding: zap.Finding{
				URI:        "  ",
				Confidence: "\t",
				Param:      "id",
				Evidence:   "\n",
			},
			want: "Param: id",
		},
		{
			name:    "NothingSet",
			finding: zap.Finding{PluginID: "1", Title: "ignored"},
			want:    "",
		},
		{
			name: "ValuesNotTrimmed",
			finding: zap.Finding{
				Description: " padded ",
			},
			want: "Description:  padded ",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FormatDescription(&tc.finding)
			assert.Equal(t, tc.want, got)
			assert.False(t, strings.HasPrefix(got, DescriptionSeparator))
			assert.False(t, strings.HasSuffix(got, DescriptionSeparator))
		})
	}
}

func TestFormatDescriptionNil(t *testing.T) {
	assert.Equal(t, "", FormatDescription(nil))
}

func TestNewIssue(t *testing.T) {
	f := &zap.Finding{
		PluginID:    "40012",
		Title:       "Cross Site Scripting (Reflected)",
		RiskCode:    3,
		RiskDesc:    "High (Medium)",
		URI:         "http://localhost/",
		Description: "xss",
		Solution:    "Validate all input.",
		CWEID:       "79",
		WASCID:      " ",
	}

	issue := NewIssue(f, severity.Critical, "my-project")

	assert.Equal(t, "40012", issue.RuleKey)
	assert.Equal(t, severity.Critical, issue.Severity)
	assert.Equal(t, "URI: http://localhost/ | Description: xss", issue.Message)
	assert.Equal(t, "my-project", issue.Target)
	assert.Equal(t, "Cross Site Scripting (Reflected)", issue.Title)
	assert.Equal(t, "Validate all input.", issue.Solution)
	assert.Equal(t, []Property{
		{Name: "riskdesc", Value: "High (Medium)"},
		{Name: "cweid", Value: "79"},
	}, issue.Properties)
}
