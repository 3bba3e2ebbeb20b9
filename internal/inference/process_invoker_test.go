//go:build unix

package inference_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sevoc/internal/config"
	"sevoc/internal/domain"
	"sevoc/internal/inference"
)

type fixture struct {
	dir   string
	model string
	audio *domain.StagedAudioFile
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	model := filepath.Join(dir, "model.pth")
	require.NoError(t, os.WriteFile(model, []byte("weights"), 0o644))
	audio := filepath.Join(dir, "clip.wav")
	require.NoError(t, os.WriteFile(audio, []byte("audio"), 0o644))
	return fixture{dir: dir, model: model, audio: &domain.StagedAudioFile{Path: audio, Extension: "wav"}}
}

// writeScript creates a shell script standing in for the inference routine.
// It is invoked as: sh script --input_path <audio> --model_path <model>.
func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "eval.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func newInvoker(script string, maxConcurrent int) *inference.ProcessInvoker {
	cfg := &config.InferenceConfig{
		Command:       "/bin/sh",
		Args:          []string{script},
		InputFlag:     "--input_path",
		ModelFlag:     "--model_path",
		Timeout:       5 * time.Second,
		MaxConcurrent: maxConcurrent,
		QueueTimeout:  5 * time.Second,
	}
	return inference.NewProcessInvoker(cfg, zap.NewNop())
}

func TestProcessInvoker_Command(t *testing.T) {
	inv := newInvoker("eval.py", 0)
	assert.Equal(t,
		[]string{"/bin/sh", "eval.py", "--input_path", "in.wav", "--model_path", "model.pth"},
		inv.Command("in.wav", "model.pth"))

	positional := inference.NewProcessInvoker(&config.InferenceConfig{Command: "detect"}, zap.NewNop())
	assert.Equal(t, []string{"detect", "in.wav", "model.pth"}, positional.Command("in.wav", "model.pth"))
}

func TestProcessInvoker_Run_Success(t *testing.T) {
	fx := newFixture(t)
	script := writeScript(t, fx.dir, `
echo "loading model from $4"
echo "Multi classification result: gt:0.1, wavegrad:0.2"
echo "some warning" 1>&2
echo "Binary classification result: fake:0.3, real:0.7"`)

	out := newInvoker(script, 0).Run(context.Background(), fx.audio, fx.model, 5*time.Second)

	require.Equal(t, domain.OutcomeSuccess, out.Kind)
	assert.Contains(t, out.RawText, "loading model from "+fx.model)
	assert.Contains(t, out.RawText, "Multi classification result: gt:0.1, wavegrad:0.2")
	assert.Contains(t, out.RawText, "some warning")
	assert.Contains(t, out.RawText, "Binary classification result: fake:0.3, real:0.7")
	assert.Greater(t, out.Duration, time.Duration(0))
}

func TestProcessInvoker_Run_PassesPaths(t *testing.T) {
	fx := newFixture(t)
	script := writeScript(t, fx.dir, `echo "$1=$2"; echo "$3=$4"`)

	out := newInvoker(script, 0).Run(context.Background(), fx.audio, fx.model, 5*time.Second)

	require.Equal(t, domain.OutcomeSuccess, out.Kind)
	assert.Equal(t, "--input_path="+fx.audio.Path+"\n--model_path="+fx.model+"\n", out.RawText)
}

func TestProcessInvoker_Run_ModelMissingDoesNotLaunch(t *testing.T) {
	fx := newFixture(t)
	marker := filepath.Join(fx.dir, "launched")
	script := writeScript(t, fx.dir, "touch "+marker)

	out := newInvoker(script, 0).Run(context.Background(), fx.audio, filepath.Join(fx.dir, "absent.pth"), 5*time.Second)

	assert.Equal(t, domain.OutcomeNotFound, out.Kind)
	assert.NoFileExists(t, marker)
}

func TestProcessInvoker_Run_NonZeroExit(t *testing.T) {
	fx := newFixture(t)
	script := writeScript(t, fx.dir, `echo "Traceback: CUDA out of memory" 1>&2; exit 3`)

	out := newInvoker(script, 0).Run(context.Background(), fx.audio, fx.model, 5*time.Second)

	assert.Equal(t, domain.OutcomeProcessFailed, out.Kind)
	assert.Equal(t, 3, out.ExitCode)
	assert.Contains(t, out.Diagnostics, "CUDA out of memory")
	assert.Empty(t, out.RawText)
}

func TestProcessInvoker_Run_CommandNotFound(t *testing.T) {
	fx := newFixture(t)
	inv := inference.NewProcessInvoker(&config.InferenceConfig{
		Command: filepath.Join(fx.dir, "no-such-binary"),
	}, zap.NewNop())

	out := inv.Run(context.Background(), fx.audio, fx.model, 5*time.Second)

	assert.Equal(t, domain.OutcomeProcessFailed, out.Kind)
	assert.NotEmpty(t, out.Diagnostics)
}

func TestProcessInvoker_Run_TimeoutKillsChild(t *testing.T) {
	fx := newFixture(t)
	pidFile := filepath.Join(fx.dir, "pid")
	script := writeScript(t, fx.dir, `echo $$ > `+pidFile+`
echo "Multi classification result: partial"
exec sleep 30`)

	start := time.Now()
	out := newInvoker(script, 0).Run(context.Background(), fx.audio, fx.model, 300*time.Millisecond)

	assert.Equal(t, domain.OutcomeTimedOut, out.Kind)
	assert.Empty(t, out.RawText)
	assert.Less(t, time.Since(start), 10*time.Second)

	raw, err := os.ReadFile(pidFile)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	require.NoError(t, err)
	err = syscall.Kill(pid, 0)
	assert.True(t, errors.Is(err, syscall.ESRCH), "child process %d still running", pid)
}

func TestProcessInvoker_Run_ContextCanceled(t *testing.T) {
	fx := newFixture(t)
	script := writeScript(t, fx.dir, "exec sleep 30")

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	out := newInvoker(script, 0).Run(ctx, fx.audio, fx.model, 10*time.Second)

	assert.Equal(t, domain.OutcomeProcessFailed, out.Kind)
	assert.Contains(t, out.Diagnostics, "canceled")
}

func TestProcessInvoker_Run_ConcurrentInvocations(t *testing.T) {
	fx := newFixture(t)
	script := writeScript(t, fx.dir, `sleep 0.2; echo "input=$2"`)
	inv := newInvoker(script, 2)

	var wg sync.WaitGroup
	outcomes := make([]domain.InferenceOutcome, 4)
	for i := range outcomes {
		staged := &domain.StagedAudioFile{Path: filepath.Join(fx.dir, "clip"+strconv.Itoa(i)+".wav")}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = inv.Run(context.Background(), staged, fx.model, 5*time.Second)
		}(i)
	}
	wg.Wait()

	for i, out := range outcomes {
		require.Equal(t, domain.OutcomeSuccess, out.Kind)
		assert.Contains(t, out.RawText, "clip"+strconv.Itoa(i)+".wav")
	}
}

func TestProcessInvoker_Run_WaitingForSlotHonoursContext(t *testing.T) {
	fx := newFixture(t)
	script := writeScript(t, fx.dir, "sleep 1")
	inv := newInvoker(script, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		inv.Run(context.Background(), fx.audio, fx.model, 5*time.Second)
	}()
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	out := inv.Run(ctx, fx.audio, fx.model, 5*time.Second)

	assert.Equal(t, domain.OutcomeProcessFailed, out.Kind)
	assert.Contains(t, out.Diagnostics, "inference slot")
	<-done
}

func TestProcessInvoker_Run_QueueTimeoutReportsBusy(t *testing.T) {
	fx := newFixture(t)
	script := writeScript(t, fx.dir, "sleep 1")
	inv := inference.NewProcessInvoker(&config.InferenceConfig{
		Command:       "/bin/sh",
		Args:          []string{script},
		MaxConcurrent: 1,
		QueueTimeout:  100 * time.Millisecond,
	}, zap.NewNop())

	done := make(chan domain.InferenceOutcome, 1)
	go func() { done <- inv.Run(context.Background(), fx.audio, fx.model, 5*time.Second) }()
	time.Sleep(100 * time.Millisecond)

	start := time.Now()
	out := inv.Run(context.Background(), fx.audio, fx.model, 5*time.Second)

	assert.Equal(t, domain.OutcomeBusy, out.Kind)
	assert.Contains(t, out.Diagnostics, "slots busy")
	assert.Less(t, time.Since(start), 800*time.Millisecond)
	assert.Equal(t, domain.OutcomeSuccess, (<-done).Kind)
}

func TestProcessInvoker_Run_ZeroQueueTimeoutFailsFast(t *testing.T) {
	fx := newFixture(t)
	script := writeScript(t, fx.dir, "sleep 1")
	inv := inference.NewProcessInvoker(&config.InferenceConfig{
		Command:       "/bin/sh",
		Args:          []string{script},
		MaxConcurrent: 1,
	}, zap.NewNop())

	done := make(chan domain.InferenceOutcome, 1)
	go func() { done <- inv.Run(context.Background(), fx.audio, fx.model, 5*time.Second) }()
	time.Sleep(100 * time.Millisecond)

	start := time.Now()
	out := inv.Run(context.Background(), fx.audio, fx.model, 5*time.Second)

	assert.Equal(t, domain.OutcomeBusy, out.Kind)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	<-done
}

func TestProcessInvoker_Run_DiagnosticsStayValidUTF8(t *testing.T) {
	fx := newFixture(t)
	// 3000 three-byte runes: a cut 4096 bytes from the end lands mid-rune.
	script := writeScript(t, fx.dir, `i=0
while [ $i -lt 3000 ]; do printf '\342\202\254'; i=$((i+1)); done
exit 1`)

	out := newInvoker(script, 0).Run(context.Background(), fx.audio, fx.model, 5*time.Second)

	require.Equal(t, domain.OutcomeProcessFailed, out.Kind)
	assert.True(t, utf8.ValidString(out.Diagnostics))
	assert.True(t, strings.HasPrefix(out.Diagnostics, "...€"))
	assert.True(t, strings.HasSuffix(out.Diagnostics, "€"))
}
