package zap

import (
	"bufio"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

const (
	siteElement      = "site"
	alertsElement    = "alerts"
	alertItemElement = "alertitem"
)

// alertItemXML is the decoding target of one <alertitem>. Elements that are not listed here are ignored,
// which keeps older and newer ZAP report layouts readable.
type alertItemXML struct {
	PluginID   *string       `xml:"pluginid"`
	Alert      string        `xml:"alert"`
	Name       string        `xml:"name"`
	RiskCode   *string       `xml:"riskcode"`
	Confidence string        `xml:"confidence"`
	RiskDesc   string        `xml:"riskdesc"`
	Desc       string        `xml:"desc"`
	URI        string        `xml:"uri"`
	Param      string        `xml:"param"`
	Attack     string        `xml:"attack"`
	Evidence   string        `xml:"evidence"`
	OtherInfo  string        `xml:"otherinfo"`
	Solution   string        `xml:"solution"`
	Reference  string        `xml:"reference"`
	CWEID      string        `xml:"cweid"`
	WASCID     string        `xml:"wascid"`
	SourceID   string        `xml:"sourceid"`
	Count      string        `xml:"count"`
	Instances  []instanceXML `xml:"instances>instance"`
}

type instanceXML struct {
	URI      string `xml:"uri"`
	Method   string `xml:"method"`
	Param    string `xml:"param"`
	Attack   string `xml:"attack"`
	Evidence string `xml:"evidence"`
}

// Parse reads a ZAP XML report from rc and closes rc before returning.
//
// A nil or zero-byte stream yields a nil Report and a nil error: the report has not been
// generated yet. Every structural problem, and every read failure of the stream wherever it
// happens, is returned as *MalformedReportError and no partial report is returned with it.
//
// DOCTYPE declarations are skipped without being interpreted, so external entities are never
// fetched; a reference to such an entity makes the document malformed.
func Parse(rc io.ReadCloser) (*Report, error) {
	if rc == nil {
		return nil, nil
	}
	defer rc.Close()

	br := bufio.NewReader(rc)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &MalformedReportError{Cause: err}
	}

	p := &parser{decoder: newDecoder(br)}
	return p.parse()
}

func newDecoder(r io.Reader) *xml.Decoder {
	d := xml.NewDecoder(r)
	d.Strict = true
	// Entity stays nil: only the predefined XML entities are known.
	d.CharsetReader = charset.NewReaderLabel
	return d
}

type parser struct {
	decoder *xml.Decoder
}

func (p *parser) parse() (*Report, error) {
	root, err := p.root()
	if err != nil {
		return nil, err
	}

	report := &Report{
		Version:   attr(root, "version"),
		Generated: attr(root, "generated"),
	}

	for {
		tok, err := p.token(root.Name.Local)
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != siteElement {
				if err := p.skip(); err != nil {
					return nil, err
				}
				continue
			}
			if report.Site != nil {
				return nil, &MalformedReportError{Cause: ErrMultipleSites}
			}
			site, err := p.site(t)
			if err != nil {
				return nil, err
			}
			report.Site = site
		case xml.EndElement:
			if report.Site == nil {
				return nil, &MalformedReportError{Cause: ErrNoSite}
			}
			if err := p.trailer(); err != nil {
				return nil, err
			}
			return report, nil
		}
	}
}

// root consumes the prolog and returns the document element.
func (p *parser) root() (xml.StartElement, error) {
	for {
		tok, err := p.decoder.Token()
		if errors.Is(err, io.EOF) {
			return xml.StartElement{}, &MalformedReportError{Cause: ErrNoRootElement}
		}
		if err != nil {
			return xml.StartElement{}, &MalformedReportError{Cause: err}
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

// trailer checks that nothing but comments and whitespace follows the document element.
func (p *parser) trailer() error {
	for {
		tok, err := p.decoder.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &MalformedReportError{Cause: err}
		}
		if start, ok := tok.(xml.StartElement); ok {
			return malformed("unexpected element <%s> after the document element", start.Name.Local)
		}
	}
}

// token returns the next token inside the element named parent.
func (p *parser) token(parent string) (xml.Token, error) {
	tok, err := p.decoder.Token()
	if errors.Is(err, io.EOF) {
		return nil, malformed("document ended inside <%s>", parent)
	}
	if err != nil {
		return nil, &MalformedReportError{Cause: err}
	}
	return tok, nil
}

func (p *parser) skip() error {
	if err := p.decoder.Skip(); err != nil {
		return &MalformedReportError{Cause: err}
	}
	return nil
}

func (p *parser) site(start xml.StartElement) (*Site, error) {
	site := &Site{
		Name:     attr(start, "name"),
		Host:     attr(start, "host"),
		Findings: []Finding{},
	}

	if raw := strings.TrimSpace(attr(start, "port")); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return nil, malformed("site port %q is not numeric: %w", raw, err)
		}
		site.Port = port
	}
	if raw := strings.TrimSpace(attr(start, "ssl")); raw != "" {
		ssl, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, malformed("site ssl flag %q is not a boolean: %w", raw, err)
		}
		site.SSL = ssl
	}

	for {
		tok, err := p.token(siteElement)
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == alertsElement {
				if err := p.alerts(site); err != nil {
					return nil, err
				}
				continue
			}
			if err := p.skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return site, nil
		}
	}
}

func (p *parser) alerts(site *Site) error {
	for {
		tok, err := p.token(alertsElement)
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != alertItemElement {
				if err := p.skip(); err != nil {
					return err
				}
				continue
			}
			finding, err := p.alertItem(t, len(site.Findings))
			if err != nil {
				return err
			}
			site.Findings = append(site.Findings, finding)
		case xml.EndElement:
			return nil
		}
	}
}

func (p *parser) alertItem(start xml.StartElement, index int) (Finding, error) {
	var raw alertItemXML
	if err := p.decoder.DecodeElement(&raw, &start); err != nil {
		return Finding{}, &MalformedReportError{Cause: err}
	}
	return raw.finding(index)
}

func (raw *alertItemXML) finding(index int) (Finding, error) {
	if raw.PluginID == nil || strings.TrimSpace(*raw.PluginID) == "" {
		return Finding{}, malformed("alert item #%d: %w", index, ErrMissingPluginID)
	}
	pluginID := *raw.PluginID

	if raw.RiskCode == nil || strings.TrimSpace(*raw.RiskCode) == "" {
		return Finding{}, malformed("alert item #%d (pluginid %s): %w", index, pluginID, ErrMissingRiskCode)
	}
	riskCode, err := strconv.Atoi(strings.TrimSpace(*raw.RiskCode))
	if err != nil {
		return Finding{}, malformed("alert item #%d (pluginid %s): riskcode %q is not an integer: %w", index, pluginID, *raw.RiskCode, err)
	}

	var count int
	if c := strings.TrimSpace(raw.Count); c != "" {
		count, err = strconv.Atoi(c)
		if err != nil {
			return Finding{}, malformed("alert item #%d (pluginid %s): count %q is not an integer: %w", index, pluginID, raw.Count, err)
		}
	}

	finding := Finding{
		PluginID:    pluginID,
		Title:       firstNonBlank(raw.Alert, raw.Name),
		RiskCode:    riskCode,
		Confidence:  raw.Confidence,
		RiskDesc:    raw.RiskDesc,
		Description: raw.Desc,
		URI:         raw.URI,
		Param:       raw.Param,
		Attack:      raw.Attack,
		Evidence:    raw.Evidence,
		OtherInfo:   raw.OtherInfo,
		Solution:    raw.Solution,
		Reference:   raw.Reference,
		CWEID:       raw.CWEID,
		WASCID:      raw.WASCID,
		SourceID:    raw.SourceID,
		Count:       count,
	}

	for _, in := range raw.Instances {
		finding.Instances = append(finding.Instances, Instance(in))
	}

	// ZAP 2.6+ only writes the location fields on instances.
	if len(finding.Instances) > 0 && isBlank(finding.URI, finding.Param, finding.Attack, finding.Evidence) {
		first := finding.Instances[0]
		finding.URI = first.URI
		finding.Param = first.Param
		finding.Attack = first.Attack
		finding.Evidence = first.Evidence
	}

	return finding, nil
}

func attr(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func isBlank(values ...string) bool {
	return firstNonBlank(values...) == ""
}
