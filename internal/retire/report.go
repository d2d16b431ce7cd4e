// Package retire runs the retire.js CLI and reads its jsonsimple report.
package retire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	errs "github.com/scan-io-git/retirescan/pkg/shared/errors"
)

// Severity is the severity retire.js assigns to a vulnerability.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Severities lists the known severities, most severe first.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Finding is every component detected in one scanned file.
type Finding struct {
	File    string      `json:"file"`
	Results []Component `json:"results"`
}

// Component is one detected library.
type Component struct {
	Component       string          `json:"component"`
	NpmName         string          `json:"npmname,omitempty"`
	Version         string          `json:"version"`
	Detection       string          `json:"detection,omitempty"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities,omitempty"`
}

// Vulnerability is one known vulnerability of a component version.
type Vulnerability struct {
	AtOrAbove   string      `json:"atOrAbove,omitempty"`
	Below       string      `json:"below,omitempty"`
	Identifiers Identifiers `json:"identifiers"`
	Info        []string    `json:"info,omitempty"`
	Severity    Severity    `json:"severity"`
	CWE         []string    `json:"cwe,omitempty"`
}

// Identifiers names a vulnerability in the various advisory databases.
type Identifiers struct {
	Summary  string   `json:"summary,omitempty"`
	CVE      []string `json:"CVE,omitempty"`
	GithubID string   `json:"githubID,omitempty"`
	Issue    string   `json:"issue,omitempty"`
	PR       string   `json:"PR,omitempty"`
	Bug      string   `json:"bug,omitempty"`
	Retid    string   `json:"retid,omitempty"`
}

// ParseReport reads a jsonsimple report. A document that is not a JSON array
// of file objects wraps errors.ErrMalformedReport.
func ParseReport(path string) ([]Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scanner output %q: %w", path, err)
	}
	return DecodeReport(data)
}

// DecodeReport parses the content of a jsonsimple report.
func DecodeReport(data []byte) ([]Finding, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", errs.ErrMalformedReport)
	}

	var findings []Finding
	if err := json.Unmarshal(trimmed, &findings); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformedReport, err)
	}
	for i, f := range findings {
		if f.File == "" {
			return nil, fmt.Errorf("%w: entry %d has no file", errs.ErrMalformedReport, i)
		}
	}
	return findings, nil
}
