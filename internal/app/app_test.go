package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	apperrors "github.com/agbru/basketmc/internal/errors"
	"github.com/agbru/basketmc/internal/logging"
	"github.com/agbru/basketmc/internal/montecarlo"
	"github.com/agbru/basketmc/internal/orchestration"
	"github.com/agbru/basketmc/internal/platform"
)

func newTestApp(t *testing.T, args []string, opts ...AppOption) (*Application, *bytes.Buffer) {
	t.Helper()
	var errBuf bytes.Buffer
	opts = append([]AppOption{WithLogger(logging.Nop())}, opts...)
	app, err := New(append([]string{"basketmc"}, args...), &errBuf, opts...)
	if err != nil {
		t.Fatalf("New(%v): %v (stderr: %s)", args, err, errBuf.String())
	}
	return app, &errBuf
}

func parseQuietValues(t *testing.T, out string) []float64 {
	t.Helper()
	var values []float64
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil {
			t.Fatalf("quiet output line %q is not a number: %v", line, err)
		}
		values = append(values, v)
	}
	return values
}

func TestRun_QuietMeanJoin(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t, []string{"-paths", "8000", "-subtasks", "4", "-seed", "7", "-q", "-no-color"})

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, want %d (output: %s)", code, apperrors.ExitSuccess, out.String())
	}
	values := parseQuietValues(t, out.String())
	if len(values) != 1 {
		t.Fatalf("got %d values, want 1", len(values))
	}
	ref := montecarlo.DefaultBasket().ReferenceValue()
	if math.Abs(values[0]-ref)/ref > 0.05 {
		t.Errorf("basket value = %v, want within 5%% of %v", values[0], ref)
	}
}

func TestRun_SeededRunsMatch(t *testing.T) {
	t.Parallel()
	args := []string{"-paths", "2000", "-subtasks", "3", "-seed", "99", "-q"}
	var first, second bytes.Buffer
	a1, _ := newTestApp(t, args)
	a2, _ := newTestApp(t, args)
	a1.Run(context.Background(), &first)
	a2.Run(context.Background(), &second)
	if first.String() != second.String() {
		t.Errorf("seeded runs differ: %q vs %q", first.String(), second.String())
	}
}

func TestRun_VectorJoin(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t, []string{"-paths", "300", "-subtasks", "3", "-join", "vector", "-seed", "5", "-q"})

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d (output: %s)", code, out.String())
	}
	if values := parseQuietValues(t, out.String()); len(values) != 3 {
		t.Errorf("vector join printed %d values, want 3", len(values))
	}
}

func TestRun_SingleWorker(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t, []string{"-paths", "1000", "-subtasks", "0", "-seed", "3", "-q"})

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d (output: %s)", code, out.String())
	}
	if values := parseQuietValues(t, out.String()); len(values) != 1 || values[0] <= 0 {
		t.Errorf("single worker output = %v", values)
	}
}

func TestRun_SummaryAndOutputFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "result.json")
	app, _ := newTestApp(t, []string{"-paths", "1000", "-subtasks", "2", "-seed", "11", "-no-color", "-o", path})

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d (output: %s)", code, out.String())
	}
	for _, want := range []string{"Basket value", "2 workers, mean join", "Result saved to"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read result file: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("result file is not JSON: %v", err)
	}
	if _, ok := doc["sessionId"]; !ok {
		t.Errorf("result file lacks sessionId: %s", data)
	}
}

func TestRun_UnitFailure(t *testing.T) {
	t.Parallel()
	failing := platform.ProcessorFunc(func(context.Context, orchestration.TaskHandler) orchestration.Output {
		return orchestration.Fail(errors.New("market data unavailable"))
	})
	app, _ := newTestApp(t, []string{"-paths", "100", "-q"}, WithProcessor(failing))

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitErrorUnit {
		t.Fatalf("exit code = %d, want %d", code, apperrors.ExitErrorUnit)
	}
	if !strings.Contains(out.String(), "market data unavailable") {
		t.Errorf("output should carry the unit failure, got %q", out.String())
	}
}

func TestRun_UnitFailureStopsSiblingWorkers(t *testing.T) {
	t.Parallel()
	var failed atomic.Bool
	var started, returned atomic.Int32
	dispatcher := orchestration.NewDispatcher(nil)
	proc := platform.ProcessorFunc(func(ctx context.Context, h orchestration.TaskHandler) orchestration.Output {
		if h.Options()[orchestration.OptionUseCase] != orchestration.UseCaseWorker.String() {
			return dispatcher.Process(ctx, h)
		}
		if failed.CompareAndSwap(false, true) {
			return orchestration.Fail(errors.New("worker node lost"))
		}
		started.Add(1)
		defer returned.Add(1)
		<-ctx.Done()
		return orchestration.Fail(ctx.Err())
	})
	app, _ := newTestApp(t, []string{"-paths", "400", "-subtasks", "4", "-parallelism", "5", "-q"}, WithProcessor(proc))

	if code := app.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitErrorUnit {
		t.Fatalf("exit code = %d, want %d", code, apperrors.ExitErrorUnit)
	}
	if s, r := started.Load(), returned.Load(); s != r {
		t.Errorf("%d sibling workers started but only %d returned before Run did", s, r)
	}
}

func TestRun_Timeout(t *testing.T) {
	t.Parallel()
	blocking := platform.ProcessorFunc(func(ctx context.Context, _ orchestration.TaskHandler) orchestration.Output {
		<-ctx.Done()
		return orchestration.Fail(ctx.Err())
	})
	app, _ := newTestApp(t, []string{"-paths", "100", "-q", "-timeout", "50ms"}, WithProcessor(blocking))

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitErrorTimeout {
		t.Fatalf("exit code = %d, want %d (output: %s)", code, apperrors.ExitErrorTimeout, out.String())
	}
}

func TestRun_Canceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	blocking := platform.ProcessorFunc(func(ctx context.Context, _ orchestration.TaskHandler) orchestration.Output {
		cancel()
		<-ctx.Done()
		return orchestration.Fail(ctx.Err())
	})
	app, _ := newTestApp(t, []string{"-paths", "100", "-q"}, WithProcessor(blocking))

	if code := app.Run(ctx, &bytes.Buffer{}); code != apperrors.ExitErrorCanceled {
		t.Fatalf("exit code = %d, want %d", code, apperrors.ExitErrorCanceled)
	}
}

func TestRun_RequestFileErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	badKeys := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badKeys, []byte("paths: 10\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		file string
	}{
		{"unknown key", badKeys},
		{"missing file", filepath.Join(dir, "absent.yaml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app, errBuf := newTestApp(t, []string{"-request", tt.file, "-q"})
			if code := app.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitErrorConfig {
				t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorConfig)
			}
			if !strings.Contains(errBuf.String(), "Configuration error") {
				t.Errorf("stderr = %q, want a configuration error", errBuf.String())
			}
		})
	}
}

func TestRun_MetricsServer(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t, []string{"-paths", "500", "-subtasks", "2", "-q", "-metrics-addr", "127.0.0.1:0"})
	if code := app.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d, want %d", code, apperrors.ExitSuccess)
	}
}

func TestRun_Version(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t, []string{"-version"})
	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.HasPrefix(out.String(), "basketmc ") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestNew_InvalidFlags(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantHelp bool
	}{
		{"negative paths", []string{"-paths", "-5"}, apperrors.ExitErrorConfig, false},
		{"unknown join", []string{"-join", "median"}, apperrors.ExitErrorConfig, false},
		{"unknown flag", []string{"-frobnicate"}, apperrors.ExitErrorGeneric, false},
		{"help", []string{"-h"}, apperrors.ExitErrorGeneric, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(append([]string{"basketmc"}, tt.args...), &bytes.Buffer{})
			if err == nil {
				t.Fatal("New should fail")
			}
			if got := IsHelpError(err); got != tt.wantHelp {
				t.Errorf("IsHelpError = %v, want %v", got, tt.wantHelp)
			}
			if !tt.wantHelp {
				if got := apperrors.ExitCodeFor(err); got != tt.wantCode {
					t.Errorf("ExitCodeFor = %d, want %d", got, tt.wantCode)
				}
			}
		})
	}
}

func TestHasVersionFlag(t *testing.T) {
	t.Parallel()
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"--version"}, true},
		{[]string{"-paths", "10", "-V"}, true},
		{[]string{"-paths", "10"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := HasVersionFlag(tt.args); got != tt.want {
			t.Errorf("HasVersionFlag(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestDecodeResult(t *testing.T) {
	t.Parallel()
	partial, err := orchestration.EncodePartial(orchestration.PartialResult{Value: 12.5, StdError: 0.1, Paths: 40})
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeResult(partial)
	if err != nil {
		t.Fatalf("DecodeResult(partial): %v", err)
	}
	if got.Kind != orchestration.KindMean || got.Units != 1 || got.Value != 12.5 || got.Paths != 40 {
		t.Errorf("partial decoded as %+v", got)
	}

	if _, err := DecodeResult([]byte(`{"kind":"median"}`)); err == nil {
		t.Error("unknown result kind should fail")
	}
}
