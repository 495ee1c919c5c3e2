// Package risk reduces classified findings to per-severity counters and a weighted risk score.
package risk

import (
	"fmt"

	"github.com/scan-io-git/zap-sensor/internal/severity"
)

// Measure keys reported for every run.
const (
	MetricHighRiskAlerts      = "high_risk_alerts"
	MetricMediumRiskAlerts    = "medium_risk_alerts"
	MetricLowRiskAlerts       = "low_risk_alerts"
	MetricInfoRiskAlerts      = "info_risk_alerts"
	MetricTotalAlerts         = "total_alerts"
	MetricIdentifiedRiskScore = "identified_risk_score"
)

// Weights of InheritedRiskScore. Informational findings carry no weight.
const (
	CriticalWeight = 5
	MajorWeight    = 3
	MinorWeight    = 1
)

// ScoreFunc turns the weighted counters into a single score.
// Implementations must be pure, non-negative and return 0 for all-zero input.
type ScoreFunc func(critical, major, minor int) float64

// InheritedRiskScore is the default ScoreFunc: 5*critical + 3*major + 1*minor.
func InheritedRiskScore(critical, major, minor int) float64 {
	return float64(critical*CriticalWeight + major*MajorWeight + minor*MinorWeight)
}

// Counters holds the number of findings per severity.
type Counters struct {
	Critical int `json:"critical"`
	Major    int `json:"major"`
	Minor    int `json:"minor"`
	Info     int `json:"info"`
	Total    int `json:"total"`
}

// Add counts one finding of severity s.
func (c *Counters) Add(s severity.Severity) {
	switch s {
	case severity.Critical:
		c.Critical++
	case severity.Major:
		c.Major++
	case severity.Minor:
		c.Minor++
	case severity.Info:
		c.Info++
	default:
		panic(fmt.Sprintf("risk: unhandled severity %v", s))
	}
	c.Total++
}

// Score applies score (InheritedRiskScore when nil) to the counters.
func (c Counters) Score(score ScoreFunc) float64 {
	if score == nil {
		score = InheritedRiskScore
	}
	return score(c.Critical, c.Major, c.Minor)
}

// Aggregate counts every severity in order and scores the result.
func Aggregate(severities []severity.Severity, score ScoreFunc) (Counters, float64) {
	var c Counters
	for _, s := range severities {
		c.Add(s)
	}
	return c, c.Score(score)
}

// Measures is the aggregate output of a run.
type Measures struct {
	Counters
	RiskScore float64 `json:"identified_risk_score"`
}

// NewMeasures builds measures from counters.
func NewMeasures(c Counters, score ScoreFunc) Measures {
	return Measures{Counters: c, RiskScore: c.Score(score)}
}

// Values returns the measures keyed by metric name.
func (m Measures) Values() map[string]float64 {
	return map[string]float64{
		MetricHighRiskAlerts:      float64(m.Critical),
		MetricMediumRiskAlerts:    float64(m.Major),
		MetricLowRiskAlerts:       float64(m.Minor),
		MetricInfoRiskAlerts:      float64(m.Info),
		MetricTotalAlerts:         float64(m.Total),
		MetricIdentifiedRiskScore: m.RiskScore,
	}
}

// MetricKeys lists the metric names in reporting order.
func MetricKeys() []string {
	return []string{
		MetricHighRiskAlerts,
		MetricMediumRiskAlerts,
		MetricLowRiskAlerts,
		MetricInfoRiskAlerts,
		MetricTotalAlerts,
		MetricIdentifiedRiskScore,
	}
}
