package zap

import (
	"errors"
	"fmt"
)

var (
	ErrNoRootElement   = errors.New("document has no root element")
	ErrNoSite          = errors.New("report has no site element")
	ErrMultipleSites   = errors.New("report has more than one site element")
	ErrMissingPluginID = errors.New("alert item has no pluginid")
	ErrMissingRiskCode = errors.New("alert item has no riskcode")
)

// MalformedReportError is returned when the report cannot be turned into a valid model.
// Cause carries the underlying syntax, encoding or structural failure.
type MalformedReportError struct {
	Cause error
}

func (e *MalformedReportError) Error() string {
	return fmt.Sprintf("malformed ZAP report: %v", e.Cause)
}

func (e *MalformedReportError) Unwrap() error {
	return e.Cause
}

func malformed(format string, args ...interface{}) error {
	return &MalformedReportError{Cause: fmt.Errorf(format, args...)}
}
