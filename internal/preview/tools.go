package preview

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/mediavault/mediavault-server/internal/logger"
)

// Tools runs the external conversion programs the engine depends on. Every
// tool is optional; handlers probe for availability and fall through to the
// next alternative when a program is not installed.
type Tools struct {
	timeout time.Duration
	log     *logger.Logger
}

// NewTools creates a tool runner with the given per-invocation timeout.
func NewTools(timeout time.Duration, log *logger.Logger) *Tools {
	return &Tools{timeout: timeout, log: log}
}

// Has reports whether the named program is on PATH.
func (t *Tools) Has(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// First returns the first of the named programs found on PATH, or "".
func (t *Tools) First(names ...string) string {
	for _, name := range names {
		if t.Has(name) {
			return name
		}
	}
	return ""
}

// Run executes a program with the tool timeout. Stderr is captured and
// included in the error because conversion tools put everything useful there.
func (t *Tools) Run(ctx context.Context, name string, args ...string) error {
	return t.RunFor(ctx, t.timeout, name, args...)
}

// RunFor is Run with an explicit timeout, for slow converters like
// LibreOffice and Inkscape.
func (t *Tools) RunFor(ctx context.Context, timeout time.Duration, name string, args ...string) error {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	t.log.Debug("tool invocation",
		"tool", name,
		"duration", time.Since(start).Round(time.Millisecond),
		"ok", err == nil)

	if err != nil {
		msg := stderr.String()
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return nil
}
