package shared

import (
	"net/rpc"

	"github.com/hashicorp/go-plugin"

	"github.com/scan-io-git/retirescan/pkg/shared/config"
)

// Scanner runs the vulnerability scanner once against a prepared folder.
type Scanner interface {
	Setup(configData config.Config) (bool, error)
	Scan(args ScannerScanRequest) (ScannerScanResponse, error)
}

// ScannerScanRequest represents a single scan request.
type ScannerScanRequest struct {
	TargetPath       string   // Folder to scan
	ResultsPath      string   // Path to write the jsonsimple report to
	JsRepo           string   // Optional local vulnerability repository (--jsrepo)
	Extensions       []string // File extensions the scanner looks at, without dots
	FindingsExitCode int      // Exit code meaning "ran fine, findings present"
	AdditionalArgs   []string // Additional arguments for the scanner
}

type ScannerScanResponse struct {
	ResultsPath string
	ExitCode    int
}

type ScannerRPCClient struct{ client *rpc.Client }

func (g *ScannerRPCClient) Setup(configData config.Config) (bool, error) {
	var resp bool
	err := g.client.Call("Plugin.Setup", configData, &resp)
	if err != nil {
		return false, err
	}
	return resp, nil
}

func (g *ScannerRPCClient) Scan(req ScannerScanRequest) (ScannerScanResponse, error) {
	var resp ScannerScanResponse
	if err := g.client.Call("Plugin.Scan", req, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

type ScannerRPCServer struct {
	Impl Scanner
}

func (s *ScannerRPCServer) Setup(configData config.Config, resp *bool) error {
	var err error
	*resp, err = s.Impl.Setup(configData)
	return err
}

func (s *ScannerRPCServer) Scan(args ScannerScanRequest, resp *ScannerScanResponse) error {
	var err error
	*resp, err = s.Impl.Scan(args)
	return err
}

type ScannerPlugin struct {
	Impl Scanner
}

func (p *ScannerPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &ScannerRPCServer{Impl: p.Impl}, nil
}

func (ScannerPlugin) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &ScannerRPCClient{client: c}, nil
}
