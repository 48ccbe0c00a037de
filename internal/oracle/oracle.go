// Package oracle launches the reference implementation as a subprocess
// and exchanges the batch protocol with it.
package oracle

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"epqref/internal/request"
	"epqref/internal/wire"
)

// Command describes how to start the oracle process. The adapter appends
// either "batch" or "<module> k=v..." to Args depending on the mode.
type Command struct {
	Path string
	Args []string
	Dir  string
	Env  []string
}

// BatchRunner is the surface the harness depends on; tests substitute a
// spy to observe invocation counts without spawning a process.
type BatchRunner interface {
	RunBatch(ctx context.Context, reqs []request.Request) (map[string]wire.Table, error)
}

// Runner drives the real subprocess. One Runner invocation spawns exactly
// one process, whatever the batch size; that amortization is the point of
// the batch protocol.
type Runner struct {
	cmd Command
}

// New returns a Runner for the given oracle command.
func New(cmd Command) *Runner {
	return &Runner{cmd: cmd}
}

// BatchResult carries the decoded tables of one batch invocation plus the
// raw process streams for session reporting.
type BatchResult struct {
	Tables   map[string]wire.Table
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// RunBatch feeds every request to one oracle process over stdin and
// decodes the framed output into tables keyed by canonical wire line.
// Results are all-or-nothing: any process or protocol failure drops the
// whole batch. A request missing from the returned map is not an error
// here; it surfaces as a cache miss at lookup time.
func (r *Runner) RunBatch(ctx context.Context, reqs []request.Request) (map[string]wire.Table, error) {
	res, err := r.RunBatchResult(ctx, reqs)
	if err != nil {
		return nil, err
	}
	return res.Tables, nil
}

// RunBatchResult is RunBatch with the raw streams and timing retained.
func (r *Runner) RunBatchResult(ctx context.Context, reqs []request.Request) (BatchResult, error) {
	start := time.Now()
	stdout, stderr, err := r.exec(ctx, []string{"batch"}, wire.EncodeBatch(reqs))
	res := BatchResult{
		Stdout:   string(stdout),
		Stderr:   string(stderr),
		Duration: time.Since(start),
	}
	if err != nil {
		return res, err
	}
	frames, err := wire.DecodeBatch(bytes.NewReader(stdout))
	if err != nil {
		return res, err
	}
	res.Tables = make(map[string]wire.Table, len(frames))
	for _, frame := range frames {
		key := frame.Request.Key()
		if _, dup := res.Tables[key]; dup {
			return res, &wire.ProtocolError{Reason: "duplicate frame for request " + key}
		}
		res.Tables[key] = frame.Table
	}
	return res, nil
}

// RunSingle invokes the oracle's unframed single-request mode. It is a
// debugging convenience and carries no caching or dedup semantics.
func (r *Runner) RunSingle(ctx context.Context, req request.Request) (wire.Table, error) {
	args := []string{req.Module()}
	for _, arg := range req.Args() {
		args = append(args, arg.Key+"="+arg.Value)
	}
	stdout, _, err := r.exec(ctx, args, "")
	if err != nil {
		return wire.Table{}, err
	}
	return wire.DecodeSingle(bytes.NewReader(stdout))
}

func (r *Runner) exec(ctx context.Context, extraArgs []string, stdin string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, r.cmd.Path, append(append([]string{}, r.cmd.Args...), extraArgs...)...)
	cmd.Dir = r.cmd.Dir
	if len(r.cmd.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.cmd.Env...)
	}
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), nil
	}
	if ctx.Err() != nil {
		return nil, stderr.Bytes(), &ProcessError{
			Command: r.cmd.Path,
			Stderr:  stderr.String(),
			Err:     pkgerrors.Wrap(ctx.Err(), "oracle timed out"),
		}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, stderr.Bytes(), &ProcessError{
			Command:  r.cmd.Path,
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderr.String(),
			Err:      err,
		}
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return nil, stderr.Bytes(), &UnavailableError{Command: r.cmd.Path, Err: err}
	}
	return nil, stderr.Bytes(), &ProcessError{Command: r.cmd.Path, ExitCode: -1, Stderr: stderr.String(), Err: err}
}
