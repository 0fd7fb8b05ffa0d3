// Package exiftool runs an exiftool-compatible tag reader as a short-lived
// external process and decodes its JSON output.
package exiftool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultBinary is the tag reader looked up on PATH when none is configured.
const DefaultBinary = "exiftool"

const (
	defaultSingleTimeout = 10 * time.Second
	defaultBatchTimeout  = 30 * time.Second
)

// Runner invokes the tag reader. Every call spawns a fresh process bounded
// by a timeout; there is no pooling and no retry.
type Runner struct {
	binary string

	// Overridable for tests.
	singleTimeout time.Duration
	batchTimeout  time.Duration
}

// New creates a runner for the given binary. An empty binary selects
// DefaultBinary from PATH.
func New(binary string) *Runner {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Runner{
		binary:        binary,
		singleTimeout: defaultSingleTimeout,
		batchTimeout:  defaultBatchTimeout,
	}
}

// ExtractFile reads the tags of a single file. The call is bounded by the
// single-file timeout.
func (r *Runner) ExtractFile(ctx context.Context, path string) (Record, error) {
	records, err := r.run(ctx, r.singleTimeout, path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no tag record returned for %s", path)
	}
	return records[0], nil
}

// ExtractBatch reads the tags of all given files in one process call,
// bounded by the batch timeout. Output order follows the tool's output,
// one record per readable file.
func (r *Runner) ExtractBatch(ctx context.Context, paths []string) ([]Record, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	return r.run(ctx, r.batchTimeout, paths...)
}

// Version probes the tool with -ver, for diagnosing whether the binary is
// usable at all.
func (r *Runner) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, "-ver")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running %s -ver: %w (%s)", r.binary, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (r *Runner) run(ctx context.Context, timeout time.Duration, paths ...string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append([]string{"-j"}, paths...)
	cmd := exec.CommandContext(ctx, r.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Don't hang on pipe readers if the tool leaves children behind on kill.
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("tag reader timed out after %s", timeout)
		}
		return nil, fmt.Errorf("running %s: %w (%s)", r.binary, err, strings.TrimSpace(stderr.String()))
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		return nil, fmt.Errorf("tag reader produced no output")
	}

	var records []Record
	if err := json.Unmarshal(out, &records); err != nil {
		return nil, fmt.Errorf("decoding tag reader output: %w", err)
	}
	return records, nil
}
