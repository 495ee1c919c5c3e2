package sensor

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/zap-sensor/internal/findings"
	"github.com/scan-io-git/zap-sensor/internal/locator"
	"github.com/scan-io-git/zap-sensor/internal/risk"
	"github.com/scan-io-git/zap-sensor/internal/severity"
	"github.com/scan-io-git/zap-sensor/internal/zap"
)

type trackingReader struct {
	io.Reader
	closed bool
}

func (r *trackingReader) Close() error {
	r.closed = true
	return nil
}

type stubLocator struct {
	reader *trackingReader
	err    error
}

func (l *stubLocator) Locate() (io.ReadCloser, error) {
	if l.err != nil {
		return nil, l.err
	}
	if l.reader == nil {
		return nil, nil
	}
	return l.reader, nil
}

func reportLocator(doc string) *stubLocator {
	return &stubLocator{reader: &trackingReader{Reader: strings.NewReader(doc)}}
}

type memoryIssues struct {
	issues []findings.Issue
	failOn string
}

func (m *memoryIssues) Save(issue findings.Issue) error {
	if m.failOn != "" && issue.RuleKey == m.failOn {
		return errors.New("sink unavailable")
	}
	m.issues = append(m.issues, issue)
	return nil
}

type memoryMetrics struct {
	saved []risk.Measures
	err   error
}

func (m *memoryMetrics) SaveMeasures(measures risk.Measures) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, measures)
	return nil
}

const twoFindings = `<?xml version="1.0"?>
<OWASPZAPReport version="2.5.0">
<site name="http://localhost:8080" host="localhost" port="8080" ssl="false"><alerts>
<alertitem>
	<pluginid>10020</pluginid>
	<riskcode>2</riskcode>
	<confidence>2</confidence>
	<desc>X-Frame-Options header is not included</desc>
	<uri>http://localhost:8080/</uri>
	<param>X-Frame-Options</param>
</alertitem>
<alertitem>
	<pluginid>40012</pluginid>
	<riskcode>3</riskcode>
	<uri>http://localhost:8080/search</uri>
	<attack>&lt;script&gt;</attack>
</alertitem>
</alerts></site></OWASPZAPReport>`

func TestExecuteProcessesFindingsInOrder(t *testing.T) {
	loc := reportLocator(twoFindings)
	issues := &memoryIssues{}
	metrics := &memoryMetrics{}

	result, err := New(loc, issues, metrics, "shop").Execute(context.Background())
	require.NoError(t, err)

	assert.True(t, loc.reader.closed)
	assert.Equal(t, OutcomeProcessed, result.Outcome)
	assert.Equal(t, 2, result.IssuesSaved)
	assert.Zero(t, result.Anomalies)
	require.NotNil(t, result.Report)
	assert.Len(t, result.Report.Findings(), 2)

	require.Len(t, issues.issues, 2)
	assert.Equal(t, findings.Issue{
		RuleKey:  "10020",
		Severity: severity.Major,
		Message:  "URI: http://localhost:8080/ | Confidence: 2 | Description: X-Frame-Options header is not included | Param: X-Frame-Options",
		Target:   "shop",
	}, issues.issues[0])
	assert.Equal(t, "40012", issues.issues[1].RuleKey)
	assert.Equal(t, severity.Critical, issues.issues[1].Severity)
	assert.Equal(t, "URI: http://localhost:8080/search | Attack: <script>", issues.issues[1].Message)

	want := risk.Measures{
		Counters:  risk.Counters{Critical: 1, Major: 1, Total: 2},
		RiskScore: 8,
	}
	assert.Equal(t, want, result.Measures)
	assert.Equal(t, []risk.Measures{want}, metrics.saved)
}

func TestExecuteSkipOutcomes(t *testing.T) {
	testCases := []struct {
		name    string
		locator *stubLocator
		want    Outcome
	}{
		{
			name:    "NoReader",
			locator: &stubLocator{},
			want:    OutcomeReportMissing,
		},
		{
			name:    "ResourceUnavailable",
			locator: &stubLocator{err: &locator.ResourceUnavailableError{Path: "zap.xml", Err: os.ErrNotExist}},
			want:    OutcomeReportMissing,
		},
		{
			name:    "EmptyReport",
			locator: reportLocator(""),
			want:    OutcomeReportEmpty,
		},
		{
			name:    "EmptySite",
			locator: reportLocator(`<OWASPZAPReport><site name="s"><alerts/></site></OWASPZAPReport>`),
			want:    OutcomeNoFindings,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			issues := &memoryIssues{}
			metrics := &memoryMetrics{}

			result, err := New(tc.locator, issues, metrics, "shop").Execute(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tc.want, result.Outcome)
			assert.Empty(t, issues.issues)
			require.Len(t, metrics.saved, 1, "zero measures are still saved")
			assert.Equal(t, risk.Measures{}, metrics.saved[0])
			if tc.locator.reader != nil {
				assert.True(t, tc.locator.reader.closed)
			}
		})
	}
}

func TestOutcomesAreDistinct(t *testing.T) {
	assert.True(t, OutcomeReportMissing.Skipped())
	assert.True(t, OutcomeReportEmpty.Skipped())
	assert.False(t, OutcomeNoFindings.Skipped())
	assert.False(t, OutcomeProcessed.Skipped())

	seen := map[string]bool{}
	for _, o := range []Outcome{OutcomeReportMissing, OutcomeReportEmpty, OutcomeNoFindings, OutcomeProcessed} {
		assert.False(t, seen[o.String()], "duplicate outcome name %q", o)
		seen[o.String()] = true
	}
	assert.Equal(t, "Outcome(9)", Outcome(9).String())
}

func TestExecuteMalformedReportFailsAtomically(t *testing.T) {
	testCases := []struct {
		name      string
		doc       string
		wantCause error
	}{
		{name: "MissingSite", doc: `<OWASPZAPReport/>`, wantCause: zap.ErrNoSite},
		{
			name: "LaterFindingInvalid",
			doc: `<r><site><alerts>
				<alertitem><pluginid>1</pluginid><riskcode>3</riskcode></alertitem>
				<alertitem><pluginid>2</pluginid></alertitem>
			</alerts></site></r>`,
			wantCause: zap.ErrMissingRiskCode,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			loc := reportLocator(tc.doc)
			issues := &memoryIssues{}
			metrics := &memoryMetrics{}

			result, err := New(loc, issues, metrics, "shop").Execute(context.Background())
			assert.Nil(t, result)
			require.Error(t, err)

			var processErr *ProcessError
			require.True(t, errors.As(err, &processErr))
			var malformedErr *zap.MalformedReportError
			assert.True(t, errors.As(err, &malformedErr))
			assert.True(t, errors.Is(err, tc.wantCause))
			assert.True(t, strings.HasPrefix(err.Error(), RemediationHint))

			assert.Empty(t, issues.issues, "no issue is raised from a malformed report")
			assert.Empty(t, metrics.saved)
			assert.True(t, loc.reader.closed)
		})
	}
}

func TestExecuteLocatorConfigurationError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "zap.xml"), 0o755))

	loc := locator.NewFileLocator(dir, "zap.xml", nil)
	metrics := &memoryMetrics{}

	_, err := New(loc, &memoryIssues{}, metrics, "shop").Execute(context.Background())
	var processErr *ProcessError
	require.True(t, errors.As(err, &processErr))
	assert.Contains(t, err.Error(), "is a directory")
	assert.Empty(t, metrics.saved)
}

func TestExecuteWithFileLocator(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zap.xml"), []byte(twoFindings), 0o644))

	result, err := New(locator.NewFileLocator(dir, "zap.xml", nil), &memoryIssues{}, &memoryMetrics{}, "shop").
		Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, result.Outcome)

	result, err = New(locator.NewFileLocator(dir, "missing.xml", nil), &memoryIssues{}, &memoryMetrics{}, "shop").
		Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeReportMissing, result.Outcome)
}

func TestExecuteUnknownRiskCodeDoesNotAbort(t *testing.T) {
	doc := `<r><site><alerts>
		<alertitem><pluginid>1</pluginid><riskcode>7</riskcode></alertitem>
		<alertitem><pluginid>2</pluginid><riskcode>1</riskcode></alertitem>
	</alerts></site></r>`
	issues := &memoryIssues{}

	result, err := New(reportLocator(doc), issues, &memoryMetrics{}, "shop").Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Anomalies)
	require.Len(t, issues.issues, 2)
	assert.Equal(t, severity.FallbackSeverity, issues.issues[0].Severity)
	assert.Equal(t, severity.Minor, issues.issues[1].Severity)
	assert.Equal(t, risk.Counters{Minor: 1, Info: 1, Total: 2}, result.Measures.Counters)
	assert.Equal(t, 1.0, result.Measures.RiskScore)
}

func TestExecuteIssueSinkFailure(t *testing.T) {
	issues := &memoryIssues{failOn: "40012"}
	metrics := &memoryMetrics{}

	_, err := New(reportLocator(twoFindings), issues, metrics, "shop").Execute(context.Background())
	require.Error(t, err)
	assert.EqualError(t, err, "failed to save issue for plugin 40012: sink unavailable")
	assert.Empty(t, metrics.saved)
}

func TestExecuteMetricsSinkFailure(t *testing.T) {
	metrics := &memoryMetrics{err: errors.New("read-only")}
	_, err := New(reportLocator(twoFindings), &memoryIssues{}, metrics, "shop").Execute(context.Background())
	assert.EqualError(t, err, "failed to save measures: read-only")
}

func TestExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loc := reportLocator(twoFindings)
	issues := &memoryIssues{}
	_, err := New(loc, issues, &memoryMetrics{}, "shop").Execute(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, issues.issues)
	assert.True(t, loc.reader.closed)
}

func TestExecuteCustomScore(t *testing.T) {
	double := func(critical, major, minor int) float64 {
		return 2 * risk.InheritedRiskScore(critical, major, minor)
	}
	result, err := New(reportLocator(twoFindings), &memoryIssues{}, &memoryMetrics{}, "shop", WithScoreFunc(double)).
		Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 16.0, result.Measures.RiskScore)
}

func TestHigherSeverityScoresHigher(t *testing.T) {
	minors := `<r><site><alerts>
		<alertitem><pluginid>1</pluginid><riskcode>1</riskcode></alertitem>
		<alertitem><pluginid>2</pluginid><riskcode>1</riskcode></alertitem>
	</alerts></site></r>`

	high, err := New(reportLocator(twoFindings), &memoryIssues{}, &memoryMetrics{}, "shop").Execute(context.Background())
	require.NoError(t, err)
	low, err := New(reportLocator(minors), &memoryIssues{}, &memoryMetrics{}, "shop").Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, high.Measures.Total, low.Measures.Total)
	assert.Greater(t, high.Measures.RiskScore, low.Measures.RiskScore)
}
