package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/agbru/basketmc/internal/cli"
	apperrors "github.com/agbru/basketmc/internal/errors"
	"github.com/agbru/basketmc/internal/logging"
	"github.com/agbru/basketmc/internal/metrics"
	"github.com/agbru/basketmc/internal/montecarlo"
	"github.com/agbru/basketmc/internal/orchestration"
	"github.com/agbru/basketmc/internal/platform"
	"github.com/agbru/basketmc/internal/server"
	"github.com/agbru/basketmc/internal/sysmon"
	"github.com/agbru/basketmc/internal/tui"
)

// rootResultName labels the result slot of the submitted root unit.
const rootResultName = "basket-value"

// Submit encodes req and submits its root unit to s: a Launch unit when the
// request is decomposed, a single Worker unit when SubtaskCount is 0. It
// returns the ID of the result that will hold the final value.
func Submit(s *platform.Session, req montecarlo.Request) (string, error) {
	payload, err := montecarlo.EncodeRequest(req)
	if err != nil {
		return "", err
	}
	useCase := orchestration.UseCaseLaunch
	if req.SubtaskCount == 0 {
		useCase = orchestration.UseCaseWorker
	}
	id := s.CreateResultIDs([]string{rootResultName})[0]
	err = s.Submit([]orchestration.TaskSpec{{
		Payload:         payload,
		Options:         useCase.Options(),
		ExpectedOutputs: []string{id},
	}})
	if err != nil {
		return "", err
	}
	return id, nil
}

// DecodeResult reads the root result: an aggregate document from a joiner,
// or a single partial when the run was not decomposed.
func DecodeResult(data []byte) (orchestration.AggregateResult, error) {
	if p, err := orchestration.DecodePartial(data); err == nil {
		return orchestration.AggregateResult{
			Kind:     orchestration.KindMean,
			Value:    p.Value,
			StdError: p.StdError,
			Units:    1,
			Paths:    p.Paths,
		}, nil
	}
	return orchestration.DecodeAggregate(data)
}

// runSimulation orchestrates one basket valuation end to end.
func (a *Application) runSimulation(ctx context.Context, out io.Writer) int {
	start := time.Now()
	summary := cli.Summary{}

	req, err := a.Config.BuildRequest()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Configuration error: %v\n", err)
		return apperrors.ExitCodeFor(err)
	}
	if req.Seed == 0 {
		if req.Seed, err = montecarlo.NewSeed(); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
	}

	// Setup lifecycle (timeout + signals)
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	var stats *metrics.Collectors
	var srv *server.Server
	if a.Config.MetricsAddr != "" {
		srv, stats, err = a.startMetricsServer()
		if err != nil {
			fmt.Fprintf(a.ErrWriter, "Error: metrics server: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		serveCtx, stopServer := context.WithCancel(context.Background())
		var serving sync.WaitGroup
		serving.Add(1)
		go func() {
			defer serving.Done()
			if err := srv.Serve(serveCtx); err != nil {
				a.Logger.Error("metrics server stopped", err)
			}
		}()
		defer func() {
			stopServer()
			serving.Wait()
		}()
	}

	session := platform.NewSession(ctx, a.Processor, platform.Options{
		Parallelism: a.Config.Parallelism,
		Logger:      a.Logger,
		Metrics:     stats,
	})
	defer session.Cancel()
	if srv != nil {
		srv.SetProgress(session.Progress)
	}
	summary.SessionID = session.ID()
	summary.Mode = cli.DescribeMode(req)
	summary.Seed = req.Seed
	a.Logger.Info("session started",
		logging.String("session_id", session.ID()),
		logging.String("mode", summary.Mode),
		logging.Int("paths", req.PathCount),
		logging.Uint64("seed", req.Seed))

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, req, out)
		cli.PrintExecutionMode(req, out)
	}

	memory := metrics.NewMemoryCollector()
	memBefore := memory.Snapshot()

	resultID, err := Submit(session, req)
	if err != nil {
		session.Cancel()
		_ = session.Close()
		summary.Duration = time.Since(start)
		return cli.HandleError(err, summary, out)
	}
	summary.ResultID = resultID

	var agg orchestration.AggregateResult
	if a.Config.TUI {
		agg, err = tui.Run(ctx, tui.Session{
			ID:       session.ID(),
			Mode:     summary.Mode,
			Paths:    req.PathCount,
			Progress: session.Progress,
			Await: func(ctx context.Context) (orchestration.AggregateResult, error) {
				return a.await(ctx, session, resultID)
			},
		})
	} else {
		agg, err = a.awaitWithProgress(ctx, session, resultID, out)
	}
	summary.Duration = time.Since(start)
	if err != nil {
		if apperrors.IsContextError(err) {
			a.Logger.Info("session stopped", logging.String("session_id", session.ID()), logging.Err(err),
				logging.Int("failed_units", session.Progress().Failed))
		} else {
			a.Logger.Error("session failed", err, logging.String("session_id", session.ID()))
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = apperrors.TimeoutError{Operation: "basket valuation", Limit: a.Config.Timeout}
		}
		return cli.HandleError(err, summary, out)
	}
	stats.AddPaths(agg.Paths)
	summary.Result = agg
	summary.Reference = req.Basket.ReferenceValue()

	outputCfg := cli.OutputConfig{OutputFile: a.Config.OutputFile, Quiet: a.Config.Quiet}
	if err := cli.DisplayResultWithConfig(out, summary, outputCfg); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return apperrors.ExitErrorGeneric
	}

	if a.Config.Verbose {
		memAfter := memory.Snapshot()
		cli.DisplayMemoryStats(memAfter.Since(memBefore), memAfter, out)
		cli.DisplaySystemStats(sysmon.Sample(ctx), out)
	}
	return apperrors.ExitSuccess
}

// awaitWithProgress waits for the root result while the spinner reports unit
// progress, unless the run is quiet.
func (a *Application) awaitWithProgress(ctx context.Context, session *platform.Session, resultID string, out io.Writer) (orchestration.AggregateResult, error) {
	if a.Config.Quiet {
		return a.await(ctx, session, resultID)
	}
	progressCtx, cancelProgress := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		cli.DisplayProgress(progressCtx, session.Progress, out)
	}()
	agg, err := a.await(ctx, session, resultID)
	cancelProgress()
	<-done
	return agg, err
}

// await blocks until the root result is available and decodes it. The
// session is closed on every path and canceled first unless it succeeded. A
// done context takes precedence over unit failures it may have caused.
func (a *Application) await(ctx context.Context, session *platform.Session, resultID string) (orchestration.AggregateResult, error) {
	results, err := session.WaitForResults(ctx, []string{resultID})
	if err != nil || ctx.Err() != nil {
		session.Cancel()
	}
	closeErr := session.Close()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return orchestration.AggregateResult{}, ctxErr
	}
	if err != nil {
		return orchestration.AggregateResult{}, err
	}
	if closeErr != nil {
		return orchestration.AggregateResult{}, closeErr
	}
	return DecodeResult(results[resultID])
}

// startMetricsServer binds the metrics endpoint and registers the unit
// collectors on its registry.
func (a *Application) startMetricsServer() (*server.Server, *metrics.Collectors, error) {
	srv := server.New(server.Config{Addr: a.Config.MetricsAddr, Logger: a.Logger})
	stats, err := metrics.NewCollectors(srv.Metrics().Registry())
	if err != nil {
		return nil, nil, err
	}
	if err := srv.Listen(); err != nil {
		return nil, nil, err
	}
	if !a.Config.Quiet {
		fmt.Fprintf(a.ErrWriter, "Serving metrics on http://%s/metrics\n", srv.Addr())
	}
	return srv, stats, nil
}
