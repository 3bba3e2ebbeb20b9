// Package inference launches the external synthetic-voice-detection routine.
package inference

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"sevoc/internal/config"
	"sevoc/internal/domain"
	"sevoc/internal/port"
)

// maxDiagnostics caps the captured text attached to a failed outcome.
const maxDiagnostics = 4096

// ProcessInvoker runs the inference routine as a child process per call.
type ProcessInvoker struct {
	cfg *config.InferenceConfig
	sem *semaphore.Weighted
	log *zap.Logger
}

// NewProcessInvoker creates a ProcessInvoker. A MaxConcurrent of zero leaves launches unbounded.
func NewProcessInvoker(cfg *config.InferenceConfig, log *zap.Logger) *ProcessInvoker {
	inv := &ProcessInvoker{cfg: cfg, log: log}
	if cfg.MaxConcurrent > 0 {
		inv.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrent))
	}
	return inv
}

var _ port.InferenceInvoker = (*ProcessInvoker)(nil)

// Command returns the argv used to evaluate inputPath against modelPath.
func (p *ProcessInvoker) Command(inputPath, modelPath string) []string {
	argv := append([]string{p.cfg.Command}, p.cfg.Args...)
	if p.cfg.InputFlag != "" {
		argv = append(argv, p.cfg.InputFlag)
	}
	argv = append(argv, inputPath)
	if p.cfg.ModelFlag != "" {
		argv = append(argv, p.cfg.ModelFlag)
	}
	return append(argv, modelPath)
}

func (p *ProcessInvoker) Run(ctx context.Context, staged *domain.StagedAudioFile, modelPath string, timeout time.Duration) domain.InferenceOutcome {
	if _, err := os.Stat(modelPath); err != nil {
		p.log.Error("model file not found", zap.String("model_path", modelPath), zap.Error(err))
		return domain.InferenceOutcome{Kind: domain.OutcomeNotFound, Diagnostics: fmt.Sprintf("model file not found: %s", modelPath)}
	}

	if p.sem != nil {
		if outcome, ok := p.acquire(ctx); !ok {
			return outcome
		}
		defer p.sem.Release(1)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	argv := p.Command(staged.Path, modelPath)
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = p.cfg.WorkDir
	isolate(cmd)
	// Bounds Wait when a killed routine left grandchildren holding the output pipe.
	cmd.WaitDelay = 2 * time.Second

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	p.log.Info("running inference",
		zap.String("command", strings.Join(argv, " ")),
		zap.String("work_dir", p.cfg.WorkDir),
		zap.Duration("timeout", timeout))

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		p.log.Error("inference timed out", zap.Duration("timeout", timeout), zap.Duration("elapsed", elapsed))
		return domain.InferenceOutcome{Kind: domain.OutcomeTimedOut, Duration: elapsed, ExitCode: -1}
	case ctx.Err() != nil:
		p.log.Warn("inference canceled", zap.Error(ctx.Err()), zap.Duration("elapsed", elapsed))
		return domain.InferenceOutcome{Kind: domain.OutcomeProcessFailed, Duration: elapsed, ExitCode: -1,
			Diagnostics: fmt.Sprintf("inference canceled: %v", ctx.Err())}
	case err != nil:
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		diag := tail(output.String(), maxDiagnostics)
		if diag == "" {
			diag = err.Error()
		}
		p.log.Error("inference failed",
			zap.Int("exit_code", exitCode),
			zap.Error(err),
			zap.String("output", diag))
		return domain.InferenceOutcome{Kind: domain.OutcomeProcessFailed, Duration: elapsed, ExitCode: exitCode, Diagnostics: diag}
	}

	p.log.Info("inference completed", zap.Duration("elapsed", elapsed), zap.Int("output_bytes", output.Len()))
	return domain.InferenceOutcome{Kind: domain.OutcomeSuccess, RawText: output.String(), Duration: elapsed}
}

// acquire waits up to QueueTimeout for a slot. A zero QueueTimeout never waits.
func (p *ProcessInvoker) acquire(ctx context.Context) (domain.InferenceOutcome, bool) {
	busy := domain.InferenceOutcome{Kind: domain.OutcomeBusy, ExitCode: -1,
		Diagnostics: fmt.Sprintf("all %d inference slots busy", p.cfg.MaxConcurrent)}

	if p.cfg.QueueTimeout <= 0 {
		if p.sem.TryAcquire(1) {
			return domain.InferenceOutcome{}, true
		}
		p.log.Warn("inference slots exhausted", zap.Int("max_concurrent", p.cfg.MaxConcurrent))
		return busy, false
	}

	waitCtx, cancel := context.WithTimeout(ctx, p.cfg.QueueTimeout)
	defer cancel()
	if err := p.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return domain.InferenceOutcome{Kind: domain.OutcomeProcessFailed, ExitCode: -1,
				Diagnostics: fmt.Sprintf("canceled while waiting for an inference slot: %v", ctx.Err())}, false
		}
		p.log.Warn("timed out waiting for an inference slot",
			zap.Int("max_concurrent", p.cfg.MaxConcurrent),
			zap.Duration("queue_timeout", p.cfg.QueueTimeout))
		return busy, false
	}
	return domain.InferenceOutcome{}, true
}

// tail keeps the last n bytes of s, cut on a rune boundary.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	cut := len(s) - n
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}
	return "..." + s[cut:]
}
