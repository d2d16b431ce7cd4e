// Package report turns remapped retire findings into violations and writes them out.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scan-io-git/retirescan/internal/identity"
	"github.com/scan-io-git/retirescan/internal/retire"
)

// RetireResourceURL documents every rule.
const RetireResourceURL = "https://retirejs.github.io/retire.js/"

// Level is the severity shown to users.
type Level string

const (
	LevelCritical Level = "Critical"
	LevelHigh     Level = "High"
	LevelModerate Level = "Moderate"
	LevelLow      Level = "Low"
)

// Rule describes one of the severity rules.
type Rule struct {
	Name         string   `json:"name"`
	Severity     Level    `json:"severity"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	ResourceURLs []string `json:"resource_urls"`
}

// Location points at the start of the affected file.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Violation is one vulnerability of one component in one file.
type Violation struct {
	RuleName     string   `json:"rule"`
	Severity     Level    `json:"severity"`
	Message      string   `json:"message"`
	Location     Location `json:"location"`
	Member       string   `json:"member,omitempty"`
	Component    string   `json:"component"`
	Version      string   `json:"version"`
	ResourceURLs []string `json:"resource_urls,omitempty"`
}

// SeverityLevel maps a retire severity to its display level.
func SeverityLevel(s retire.Severity) (Level, error) {
	switch s {
	case retire.SeverityCritical:
		return LevelCritical, nil
	case retire.SeverityHigh:
		return LevelHigh, nil
	case retire.SeverityMedium:
		return LevelModerate, nil
	case retire.SeverityLow:
		return LevelLow, nil
	}
	return "", fmt.Errorf("unsupported retire severity %q", s)
}

// RuleName returns the rule covering vulnerabilities of severity s.
func RuleName(s retire.Severity) string {
	name := string(s)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return "LibraryWithKnown" + name + "SeverityVulnerability"
}

// Rules returns the rule catalog, most severe first.
func Rules() []Rule {
	var rules []Rule
	for _, s := range retire.Severities() {
		level, _ := SeverityLevel(s)
		rules = append(rules, Rule{
			Name:         RuleName(s),
			Severity:     level,
			Description:  fmt.Sprintf("Identifies JavaScript libraries with known vulnerabilities of %s severity.", s),
			Tags:         []string{"Recommended"},
			ResourceURLs: []string{RetireResourceURL},
		})
	}
	return rules
}

// ToViolations expands every vulnerability of every component into a Violation.
// Findings inside archives are attributed to the archive file.
func ToViolations(findings []retire.Finding) ([]Violation, error) {
	violations := []Violation{}
	for _, finding := range findings {
		id := identity.Parse(finding.File)
		for _, c := range finding.Results {
			library := fmt.Sprintf("%s v%s", c.Component, c.Version)
			for _, v := range c.Vulnerabilities {
				violation, err := toViolation(v, library, id)
				if err != nil {
					return nil, fmt.Errorf("finding in %q: %w", finding.File, err)
				}
				violation.Component = c.Component
				violation.Version = c.Version
				violations = append(violations, violation)
			}
		}
	}
	return violations, nil
}

func toViolation(v retire.Vulnerability, library string, id identity.Identity) (Violation, error) {
	level, err := SeverityLevel(v.Severity)
	if err != nil {
		return Violation{}, err
	}
	details, err := json.MarshalIndent(v.Identifiers, "", "  ")
	if err != nil {
		return Violation{}, fmt.Errorf("failed to encode identifiers: %w", err)
	}

	var message string
	if id.InArchive() {
		message = fmt.Sprintf("'%s' was found inside of the zipped archive in '%s' which contains a known vulnerability.", library, id.Member)
	} else {
		message = fmt.Sprintf("'%s' contains a known vulnerability.", library)
	}
	message = fmt.Sprintf("%s Please upgrade to latest version.\nVulnerability details: %s", message, details)

	return Violation{
		RuleName:     RuleName(v.Severity),
		Severity:     level,
		Message:      message,
		Location:     Location{File: id.Path, Line: 1, Column: 1},
		Member:       id.Member,
		ResourceURLs: v.Info,
	}, nil
}

// FilterRules keeps the violations whose rule is in names. No names keeps everything.
func FilterRules(violations []Violation, names []string) []Violation {
	if len(names) == 0 {
		return violations
	}
	keep := make(map[string]struct{}, len(names))
	for _, n := range names {
		keep[n] = struct{}{}
	}
	filtered := []Violation{}
	for _, v := range violations {
		if _, ok := keep[v.RuleName]; ok {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// IsKnownRule reports whether name is in the rule catalog.
func IsKnownRule(name string) bool {
	for _, r := range Rules() {
		if r.Name == name {
			return true
		}
	}
	return false
}
