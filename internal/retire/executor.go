package retire

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/retirescan/pkg/shared"
	errs "github.com/scan-io-git/retirescan/pkg/shared/errors"
)

// Executor runs the retire CLI as a child process.
type Executor struct {
	command string
	timeout time.Duration
	logger  hclog.Logger
}

// NewExecutor creates an Executor for the given retire binary. A zero timeout
// leaves the deadline to the caller's context.
func NewExecutor(command string, timeout time.Duration, logger hclog.Logger) *Executor {
	return &Executor{
		command: command,
		timeout: timeout,
		logger:  logger,
	}
}

// BuildArgs constructs the command-line arguments for one retire run.
func BuildArgs(req shared.ScannerScanRequest) []string {
	var commandArgs []string

	appendArg := func(arg ...string) {
		commandArgs = append(commandArgs, arg...)
	}

	appendArg("--path", req.TargetPath)
	appendArg("--exitwith", fmt.Sprint(req.FindingsExitCode))
	appendArg("--outputformat", "jsonsimple")
	appendArg("--outputpath", req.ResultsPath)

	if req.JsRepo != "" {
		appendArg("--jsrepo", req.JsRepo)
	}

	if len(req.Extensions) != 0 {
		appendArg("--ext", strings.Join(req.Extensions, ","))
	}

	if len(req.AdditionalArgs) != 0 {
		appendArg(req.AdditionalArgs...)
	}

	return commandArgs
}

// Invoke runs retire against req.TargetPath. Exit code 0 and
// req.FindingsExitCode are both a successful run; anything else is an
// *errors.InvocationError carrying the command line and combined output.
func (e *Executor) Invoke(ctx context.Context, req shared.ScannerScanRequest) error {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.command, BuildArgs(req)...)
	commandLine := strings.Join(cmd.Args, " ")
	e.logger.Debug("executing command", "cmd", commandLine)

	var stdBuffer bytes.Buffer
	mw := io.MultiWriter(e.logger.StandardWriter(&hclog.StandardLoggerOptions{
		InferLevels: true,
	}), &stdBuffer)

	cmd.Stdout = mw
	cmd.Stderr = mw

	err := cmd.Run()
	if err == nil {
		e.logger.Info("scan finished", "target", req.TargetPath, "findings", false)
		return nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	if exitCode == req.FindingsExitCode && ctx.Err() == nil {
		e.logger.Info("scan finished", "target", req.TargetPath, "findings", true)
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w: %v", ctxErr, err)
	}

	e.logger.Error("retire execution error", "error", err, "exitCode", exitCode)
	return &errs.InvocationError{
		Command:  commandLine,
		ExitCode: exitCode,
		Output:   stdBuffer.String(),
		Err:      err,
	}
}
