package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scan-io-git/retirescan/internal/pipeline"
	"github.com/scan-io-git/retirescan/pkg/shared/files"
)

// Output formats accepted by Write.
const (
	FormatJSON  = "json"
	FormatSarif = "sarif"
)

// ToolName is reported as the SARIF driver.
const ToolName = "retire.js"

// Document is the JSON output of one run.
type Document struct {
	RunID       string                `json:"run_id"`
	Staged      int                   `json:"staged"`
	Violations  []Violation           `json:"violations"`
	Diagnostics []pipeline.Diagnostic `json:"diagnostics,omitempty"`
}

// Write renders violations in format and saves them to path.
func Write(format, path string, res *pipeline.Result, violations []Violation) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = EncodeJSON(res, violations)
	case FormatSarif:
		data, err = EncodeSarif(violations)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return err
	}
	if err := files.WriteJsonFile(path, data); err != nil {
		return fmt.Errorf("failed to write report %q: %w", path, err)
	}
	return nil
}

// EncodeJSON renders the JSON document of a run.
func EncodeJSON(res *pipeline.Result, violations []Violation) ([]byte, error) {
	doc := Document{
		RunID:       res.RunID,
		Staged:      res.Staged,
		Violations:  violations,
		Diagnostics: res.Diagnostics,
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return data, nil
}

// EncodeSarif renders violations as a SARIF 2.1.0 log with the full rule catalog.
func EncodeSarif(violations []Violation) ([]byte, error) {
	reportSarif, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(ToolName, RetireResourceURL)
	for _, r := range Rules() {
		run.AddRule(r.Name).
			WithDescription(r.Description).
			WithHelpURI(RetireResourceURL).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: toSarifLevel(r.Severity),
			})
	}

	for _, v := range violations {
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(v.Location.File)).
				WithRegion(sarif.NewRegion().WithStartLine(v.Location.Line).WithStartColumn(v.Location.Column)),
		)

		result := sarif.NewRuleResult(v.RuleName).
			WithMessage(sarif.NewTextMessage(v.Message)).
			WithLevel(toSarifLevel(v.Severity)).
			WithLocations([]*sarif.Location{location})
		result.PropertyBag = *sarif.NewPropertyBag()
		result.Add("component", v.Component)
		result.Add("version", v.Version)
		if v.Member != "" {
			result.Add("archiveMember", v.Member)
		}
		if len(v.ResourceURLs) != 0 {
			result.Add("resourceUrls", v.ResourceURLs)
		}
		run.AddResult(result)
	}
	reportSarif.AddRun(run)

	var buf bytes.Buffer
	if err := reportSarif.PrettyWrite(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode SARIF report: %w", err)
	}
	return buf.Bytes(), nil
}

func toSarifLevel(level Level) string {
	switch level {
	case LevelCritical, LevelHigh:
		return "error"
	case LevelModerate:
		return "warning"
	case LevelLow:
		return "note"
	default:
		return "none"
	}
}
