package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scan-io-git/retirescan/pkg/shared"
)

func TestValidateScanArgs(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "files")
	assert.NoError(t, os.Mkdir(target, 0700))
	file := filepath.Join(dir, "plain.js")
	assert.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	valid := func() shared.ScannerScanRequest {
		return shared.ScannerScanRequest{
			TargetPath:       target,
			ResultsPath:      filepath.Join(dir, "output.json"),
			Extensions:       []string{"js", "mjs"},
			FindingsExitCode: 13,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*shared.ScannerScanRequest)
		wantErr string
	}{
		{name: "valid", mutate: func(*shared.ScannerScanRequest) {}},
		{name: "no target", mutate: func(r *shared.ScannerScanRequest) { r.TargetPath = "" }, wantErr: "target path is required"},
		{name: "no results", mutate: func(r *shared.ScannerScanRequest) { r.ResultsPath = "" }, wantErr: "results path is required"},
		{name: "missing target", mutate: func(r *shared.ScannerScanRequest) { r.TargetPath = filepath.Join(dir, "nope") }, wantErr: "target path does not exist"},
		{name: "target is a file", mutate: func(r *shared.ScannerScanRequest) { r.TargetPath = file }, wantErr: "target path is not a folder"},
		{name: "missing results folder", mutate: func(r *shared.ScannerScanRequest) { r.ResultsPath = filepath.Join(dir, "a", "b.json") }, wantErr: "results folder does not exist"},
		{name: "exit code zero", mutate: func(r *shared.ScannerScanRequest) { r.FindingsExitCode = 0 }, wantErr: "findings exit code must be between 1 and 255"},
		{name: "bad extension", mutate: func(r *shared.ScannerScanRequest) { r.Extensions = []string{"js,cjs"} }, wantErr: `invalid extension "js,cjs"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			err := ValidateScanArgs(&req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
