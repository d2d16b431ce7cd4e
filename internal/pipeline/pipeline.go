// Package pipeline stages inputs for the retire scanner, runs it once and maps
// its findings back to the files the caller passed in.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/scan-io-git/retirescan/internal/archive"
	"github.com/scan-io-git/retirescan/internal/classify"
	"github.com/scan-io-git/retirescan/internal/identity"
	"github.com/scan-io-git/retirescan/internal/retire"
	"github.com/scan-io-git/retirescan/internal/staging"
	"github.com/scan-io-git/retirescan/pkg/shared"
	"github.com/scan-io-git/retirescan/pkg/shared/config"
	errs "github.com/scan-io-git/retirescan/pkg/shared/errors"
	"github.com/scan-io-git/retirescan/pkg/shared/files"
)

// Invoker runs the scanner once over a prepared folder.
type Invoker interface {
	Invoke(ctx context.Context, req shared.ScannerScanRequest) error
}

// Options tune one Orchestrator.
type Options struct {
	Extensions       []string
	FindingsExitCode int
	JsRepo           string
	AdditionalArgs   []string
	TempFolder       string
	Workers          int
	// Strict makes any placement or expansion failure fail the run.
	Strict bool

	// Opener and Strategies replace the ZIP reader and the placement chain.
	Opener     archive.Opener
	Strategies []files.Strategy
}

// OptionsFromConfig builds Options from a validated configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Extensions:       cfg.Retire.Extensions,
		FindingsExitCode: cfg.Retire.FindingsExitCode,
		JsRepo:           cfg.Retire.JsRepo,
		AdditionalArgs:   cfg.Retire.AdditionalArgs,
		TempFolder:       cfg.Staging.TempFolder,
		Workers:          cfg.Staging.Workers,
		Strict:           config.IsStrict(cfg),
	}
}

// Stages a Diagnostic can come from.
const (
	StagePlacement = "placement"
	StageExpansion = "expansion"
)

// Diagnostic is a failure confined to one input.
type Diagnostic struct {
	Path    string `json:"path"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Result is the outcome of one run.
type Result struct {
	RunID       string           `json:"run_id"`
	State       State            `json:"-"`
	Findings    []retire.Finding `json:"findings"`
	Diagnostics []Diagnostic     `json:"diagnostics,omitempty"`
	Staged      int              `json:"staged"`
}

// Orchestrator drives classification, staging, the scan and remapping.
type Orchestrator struct {
	invoker Invoker
	opts    Options
	logger  hclog.Logger
}

// New creates an Orchestrator.
func New(invoker Invoker, opts Options, logger hclog.Logger) *Orchestrator {
	if len(opts.Extensions) == 0 {
		opts.Extensions = config.DefaultExtensions()
	}
	if opts.FindingsExitCode == 0 {
		opts.FindingsExitCode = config.DefaultFindingsExitCode
	}
	if opts.Workers <= 0 {
		opts.Workers = config.DefaultWorkers
	}
	return &Orchestrator{
		invoker: invoker,
		opts:    opts,
		logger:  logger,
	}
}

type run struct {
	result *Result
	logger hclog.Logger

	mu          sync.Mutex
	stagingErrs error
}

func (r *run) transition(to State) {
	from := r.result.State
	if !from.CanTransition(to) {
		panic(fmt.Sprintf("illegal run state transition %s -> %s", from, to))
	}
	r.result.State = to
	r.logger.Debug("run state changed", "from", from.String(), "to", to.String())
}

func (r *run) fail(err error) (*Result, error) {
	r.transition(StateFailed)
	r.result.Findings = nil
	return r.result, err
}

func (r *run) report(path, stage string, err error) {
	r.logger.Error("failed to stage input", "path", path, "stage", stage, "error", err)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.result.Diagnostics = append(r.result.Diagnostics, Diagnostic{Path: path, Stage: stage, Message: err.Error()})
	r.stagingErrs = multierr.Append(r.stagingErrs, err)
}

// Scan stages inputs, invokes the scanner once and returns findings whose File
// is the original identity of the scanned file. The staging root is removed on
// every path out of Scan. The returned Result is never nil.
func (o *Orchestrator) Scan(ctx context.Context, inputs []string) (*Result, error) {
	runID := uuid.New().String()
	r := &run{
		result: &Result{RunID: runID, State: StateCreated},
		logger: o.logger.With("run", runID),
	}
	r.transition(StateStaging)

	root, err := staging.NewRoot(o.opts.TempFolder, r.logger.Named("staging"))
	if err != nil {
		return r.fail(err)
	}
	defer root.Cleanup()

	ids := identity.NewMap()
	if err := o.stage(ctx, r, root, ids, inputs); err != nil {
		return r.fail(err)
	}
	r.result.Staged = ids.Len()

	r.transition(StateScanning)
	if ids.Len() == 0 {
		r.logger.Info("nothing to scan, skipping scanner")
		r.transition(StateRemapping)
		r.transition(StateDone)
		r.result.Findings = []retire.Finding{}
		return r.result, nil
	}

	req := shared.ScannerScanRequest{
		TargetPath:       root.Target(),
		ResultsPath:      root.ResultsPath(),
		JsRepo:           o.opts.JsRepo,
		Extensions:       o.opts.Extensions,
		FindingsExitCode: o.opts.FindingsExitCode,
		AdditionalArgs:   o.opts.AdditionalArgs,
	}
	r.logger.Info("scan is starting", "target", req.TargetPath, "staged", ids.Len())
	if err := o.invoker.Invoke(ctx, req); err != nil {
		return r.fail(err)
	}
	findings, err := retire.ParseReport(req.ResultsPath)
	if err != nil {
		return r.fail(err)
	}

	r.transition(StateRemapping)
	if err := remap(findings, root.Target(), ids); err != nil {
		return r.fail(err)
	}
	r.result.Findings = findings
	r.transition(StateDone)
	r.logger.Info("scan finished", "findings", len(findings), "diagnostics", len(r.result.Diagnostics))
	return r.result, nil
}

// stage classifies and stages every input on a bounded pool. Per-input
// failures are recorded on r; in strict mode they fail the run once all
// tasks have settled.
func (o *Orchestrator) stage(ctx context.Context, r *run, root *staging.Root, ids *identity.Map, inputs []string) error {
	classifier := classify.New(o.opts.Extensions, r.logger.Named("classify"))
	placer := files.NewPlacer(r.logger.Named("placement"), o.opts.Strategies...)
	expander := archive.NewExpander(root, ids, o.opts.Extensions, o.opts.Opener, r.logger.Named("archive"))

	var g errgroup.Group
	g.SetLimit(o.opts.Workers)

	var text, archives, ignored int
	for _, input := range inputs {
		input := input
		if ctx.Err() != nil {
			break
		}
		switch classifier.Classify(input) {
		case classify.TextCandidate:
			text++
			g.Go(func() error {
				if err := placeFile(placer, root, ids, input, o.opts.Extensions); err != nil {
					r.report(input, StagePlacement, err)
				}
				return nil
			})
		case classify.Archive:
			archives++
			g.Go(func() error {
				ns, err := root.Subdir("")
				if err == nil {
					_, err = expander.Expand(ctx, input, ns)
				}
				if err != nil {
					r.report(input, StageExpansion, err)
				}
				return nil
			})
		default:
			ignored++
			r.logger.Trace("ignoring input", "path", input)
		}
	}
	g.Wait()
	r.logger.Debug("inputs classified", "text", text, "archives", archives, "ignored", ignored)

	sort.Slice(r.result.Diagnostics, func(i, j int) bool {
		return r.result.Diagnostics[i].Path < r.result.Diagnostics[j].Path
	})

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("staging interrupted: %w", err)
	}
	if r.stagingErrs != nil && o.opts.Strict {
		return fmt.Errorf("failed to stage inputs: %w", r.stagingErrs)
	}
	return nil
}

func placeFile(placer *files.Placer, root *staging.Root, ids *identity.Map, input string, exts []string) error {
	abs, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", input, err)
	}
	dir, err := root.Subdir("")
	if err != nil {
		return err
	}
	dst := filepath.Join(dir, files.ScannerFileName(filepath.Base(abs), exts))
	if _, err := placer.Place(abs, dst); err != nil {
		return err
	}
	if !ids.Put(dst, identity.File(abs)) {
		return fmt.Errorf("staged path %q already recorded", dst)
	}
	return nil
}

// remap rewrites each finding's staged path to its original identity.
func remap(findings []retire.Finding, target string, ids *identity.Map) error {
	for i := range findings {
		staged := findings[i].File
		if !filepath.IsAbs(staged) {
			staged = filepath.Join(target, staged)
		}
		id, ok := ids.Lookup(staged)
		if !ok {
			return &errs.ContractViolationError{StagedPath: findings[i].File}
		}
		findings[i].File = id.String()
	}
	return nil
}
