package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/retirescan/internal/identity"
	"github.com/scan-io-git/retirescan/internal/pipeline"
	"github.com/scan-io-git/retirescan/internal/retire"
)

func vuln(sev retire.Severity, summary string, info ...string) retire.Vulnerability {
	return retire.Vulnerability{
		Below:       "3.5.0",
		Severity:    sev,
		Identifiers: retire.Identifiers{Summary: summary, CVE: []string{"CVE-2020-11022"}},
		Info:        info,
	}
}

func sampleFindings() []retire.Finding {
	return []retire.Finding{
		{
			File: "/work/static/jquery.js",
			Results: []retire.Component{{
				Component: "jquery",
				Version:   "3.1.0",
				Vulnerabilities: []retire.Vulnerability{
					vuln(retire.SeverityMedium, "XSS", "https://example.test/advisory"),
					vuln(retire.SeverityHigh, "prototype pollution"),
				},
			}},
		},
		{
			File: identity.Join("/work/static/bundle.zip", "lib/angular"),
			Results: []retire.Component{
				{Component: "angularjs", Version: "1.5.0", Vulnerabilities: []retire.Vulnerability{vuln(retire.SeverityLow, "DoS")}},
				{Component: "clean", Version: "1.0.0"},
			},
		},
	}
}

func TestRules(t *testing.T) {
	rules := Rules()
	require.Len(t, rules, 4)

	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Name)
		assert.Equal(t, []string{RetireResourceURL}, r.ResourceURLs)
		assert.Equal(t, []string{"Recommended"}, r.Tags)
	}
	assert.Equal(t, []string{
		"LibraryWithKnownCriticalSeverityVulnerability",
		"LibraryWithKnownHighSeverityVulnerability",
		"LibraryWithKnownMediumSeverityVulnerability",
		"LibraryWithKnownLowSeverityVulnerability",
	}, names)
	assert.Equal(t, LevelModerate, rules[2].Severity)
	assert.Equal(t, "Identifies JavaScript libraries with known vulnerabilities of medium severity.", rules[2].Description)
}

func TestToViolations(t *testing.T) {
	violations, err := ToViolations(sampleFindings())
	require.NoError(t, err)
	require.Len(t, violations, 3)

	first := violations[0]
	assert.Equal(t, "LibraryWithKnownMediumSeverityVulnerability", first.RuleName)
	assert.Equal(t, LevelModerate, first.Severity)
	assert.Equal(t, Location{File: "/work/static/jquery.js", Line: 1, Column: 1}, first.Location)
	assert.Empty(t, first.Member)
	assert.Equal(t, []string{"https://example.test/advisory"}, first.ResourceURLs)
	assert.True(t, strings.HasPrefix(first.Message,
		"'jquery v3.1.0' contains a known vulnerability. Please upgrade to latest version.\nVulnerability details: {\n"))
	assert.Contains(t, first.Message, `"summary": "XSS"`)

	assert.Equal(t, "LibraryWithKnownHighSeverityVulnerability", violations[1].RuleName)

	zipped := violations[2]
	assert.Equal(t, "LibraryWithKnownLowSeverityVulnerability", zipped.RuleName)
	assert.Equal(t, "/work/static/bundle.zip", zipped.Location.File)
	assert.Equal(t, "lib/angular", zipped.Member)
	assert.True(t, strings.HasPrefix(zipped.Message,
		"'angularjs v1.5.0' was found inside of the zipped archive in 'lib/angular' which contains a known vulnerability. Please upgrade to latest version."))
}

func TestToViolationsUnknownSeverity(t *testing.T) {
	findings := []retire.Finding{{
		File:    "/a.js",
		Results: []retire.Component{{Component: "x", Version: "1", Vulnerabilities: []retire.Vulnerability{vuln("moderate", "s")}}},
	}}
	_, err := ToViolations(findings)
	assert.ErrorContains(t, err, `unsupported retire severity "moderate"`)
}

func TestToViolationsEmpty(t *testing.T) {
	violations, err := ToViolations(nil)
	require.NoError(t, err)
	assert.NotNil(t, violations)
	assert.Empty(t, violations)
}

func TestFilterRules(t *testing.T) {
	violations, err := ToViolations(sampleFindings())
	require.NoError(t, err)

	assert.Len(t, FilterRules(violations, nil), 3)
	low := FilterRules(violations, []string{"LibraryWithKnownLowSeverityVulnerability"})
	require.Len(t, low, 1)
	assert.Equal(t, "lib/angular", low[0].Member)
	assert.Empty(t, FilterRules(violations, []string{"LibraryWithKnownCriticalSeverityVulnerability"}))
}

func TestIsKnownRule(t *testing.T) {
	assert.True(t, IsKnownRule("LibraryWithKnownHighSeverityVulnerability"))
	assert.False(t, IsKnownRule("LibraryWithKnownModerateSeverityVulnerability"))
}

func TestWriteJSON(t *testing.T) {
	violations, err := ToViolations(sampleFindings())
	require.NoError(t, err)
	res := &pipeline.Result{
		RunID:       "run-1",
		Staged:      2,
		Diagnostics: []pipeline.Diagnostic{{Path: "/work/broken.zip", Stage: pipeline.StageExpansion, Message: "bad"}},
	}
	out := filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, Write(FormatJSON, out, res, violations))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "run-1", doc.RunID)
	assert.Len(t, doc.Violations, 3)
	assert.Equal(t, res.Diagnostics, doc.Diagnostics)
}

func TestWriteSarif(t *testing.T) {
	violations, err := ToViolations(sampleFindings())
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "report.sarif")

	require.NoError(t, Write(FormatSarif, out, &pipeline.Result{}, violations))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name  string `json:"name"`
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID string `json:"ruleId"`
				Level  string `json:"level"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)
	assert.Equal(t, ToolName, doc.Runs[0].Tool.Driver.Name)
	assert.Len(t, doc.Runs[0].Tool.Driver.Rules, 4)
	require.Len(t, doc.Runs[0].Results, 3)
	assert.Equal(t, "warning", doc.Runs[0].Results[0].Level)
	assert.Equal(t, "error", doc.Runs[0].Results[1].Level)
	assert.Equal(t, "note", doc.Runs[0].Results[2].Level)
}

func TestWriteUnsupportedFormat(t *testing.T) {
	err := Write("html", filepath.Join(t.TempDir(), "x"), &pipeline.Result{}, nil)
	assert.ErrorContains(t, err, "unsupported output format")
}
