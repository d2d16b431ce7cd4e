// Package repository downloads the retire.js vulnerability repository.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/retirescan/pkg/shared/files"
)

// Updater fetches the repository over HTTP.
type Updater struct {
	client *resty.Client
	logger hclog.Logger
}

// NewUpdater creates an Updater using client.
func NewUpdater(client *resty.Client, logger hclog.Logger) *Updater {
	return &Updater{client: client, logger: logger}
}

// Update downloads url to dst. The body must be a JSON object; dst is replaced
// only once the whole download checked out.
func (u *Updater) Update(ctx context.Context, url, dst string) (int, error) {
	u.logger.Info("downloading vulnerability repository", "url", url)
	resp, err := u.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return 0, fmt.Errorf("failed to download repository from %q: %w", url, err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("failed to download repository from %q: unexpected status %s", url, resp.Status())
	}

	body := resp.Body()
	if err := Validate(body); err != nil {
		return 0, fmt.Errorf("repository from %q is invalid: %w", url, err)
	}

	if err := files.CreateFolderIfNotExists(filepath.Dir(dst)); err != nil {
		return 0, err
	}
	tmp := dst + ".download"
	if err := files.WriteJsonFile(tmp, body); err != nil {
		os.Remove(tmp)
		return 0, err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to replace %q: %w", dst, err)
	}
	u.logger.Info("vulnerability repository saved", "path", dst, "bytes", len(body))
	return len(body), nil
}

// Validate checks that data is a JSON object keyed by component name.
func Validate(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("expected a JSON object")
	}
	var components map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &components); err != nil {
		return err
	}
	if len(components) == 0 {
		return fmt.Errorf("repository lists no components")
	}
	return nil
}
