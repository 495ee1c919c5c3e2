// Package zap reads OWASP ZAP XML reports into a typed model.
package zap

// Report is the root of a parsed ZAP XML report.
type Report struct {
	Version   string // Version is the ZAP version that produced the report, when present.
	Generated string // Generated is the report timestamp as written by ZAP.
	Site      *Site  // Site is never nil for a successfully parsed report.
}

// Site is the scanned target. Findings keep document order.
type Site struct {
	Name     string
	Host     string
	Port     int
	SSL      bool
	Findings []Finding
}

// Finding is a single ZAP alert item.
type Finding struct {
	PluginID    string // PluginID is kept verbatim; it is the rule key of the issue.
	Title       string
	RiskCode    int
	Confidence  string
	RiskDesc    string
	Description string
	URI         string
	Param       string
	Attack      string
	Evidence    string
	OtherInfo   string
	Solution    string
	Reference   string
	CWEID       string
	WASCID      string
	SourceID    string
	Count       int
	Instances   []Instance
}

// Instance is one occurrence of an alert, as listed under <instances> by newer ZAP versions.
type Instance struct {
	URI      string
	Method   string
	Param    string
	Attack   string
	Evidence string
}

// Findings returns the site findings, or nil when the report is absent.
func (r *Report) Findings() []Finding {
	if r == nil || r.Site == nil {
		return nil
	}
	return r.Site.Findings
}
