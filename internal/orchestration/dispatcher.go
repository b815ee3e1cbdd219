package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/agbru/basketmc/internal/logging"
)

// UnitFunc executes one kind of unit.
type UnitFunc func(ctx context.Context, h TaskHandler) error

// Dispatcher is the single entry point for every unit of work: it decodes the
// use-case tag once and routes to Launch, Work or Join.
type Dispatcher struct {
	logger logging.Logger
	launch UnitFunc
	work   UnitFunc
	join   UnitFunc
}

// NewDispatcher returns a dispatcher routing to the package's Launch, Work and
// Join. A nil logger disables logging.
func NewDispatcher(logger logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Dispatcher{logger: logger, launch: Launch, work: Work, join: Join}
}

func (d *Dispatcher) route(u UseCase) UnitFunc {
	switch u {
	case UseCaseLaunch:
		return d.launch
	case UseCaseWorker:
		return d.work
	case UseCaseJoiner:
		return d.join
	default:
		return nil
	}
}

// Process runs the unit described by h and returns its terminal state. Any
// error, including an unknown use case or a panic inside the unit, becomes
// an Error outcome carrying the failure's message.
func (d *Dispatcher) Process(ctx context.Context, h TaskHandler) (out Output) {
	tag := h.Options()[OptionUseCase]
	fields := []logging.Field{
		logging.String("session_id", h.SessionID()),
		logging.String("task_id", h.TaskID()),
		logging.String("use_case", tag),
	}

	useCase, err := ParseUseCase(tag)
	if err != nil {
		d.logger.Error("dispatch rejected", err, fields...)
		return Fail(err)
	}
	run := d.route(useCase)

	start := time.Now()
	d.logger.Debug("unit started", fields...)
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%s unit panicked: %v", useCase, r)
			d.logger.Error("unit failed", err, fields...)
			out = Fail(err)
		}
	}()

	if err := run(ctx, h); err != nil {
		d.logger.Error("unit failed", err, append(fields, logging.Duration("duration", time.Since(start)))...)
		return Fail(err)
	}
	d.logger.Info("unit completed", append(fields, logging.Duration("duration", time.Since(start)))...)
	return Ok()
}
