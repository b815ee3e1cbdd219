package orchestration

import (
	"context"

	apperrors "github.com/agbru/basketmc/internal/errors"
	"github.com/agbru/basketmc/internal/montecarlo"
)

// Simulate runs one worker's share of a request on its own normal source.
// A zero seed draws a fresh one from the OS entropy pool; the seed actually
// used is recorded in the result.
func Simulate(req montecarlo.Request) (PartialResult, error) {
	seed := req.Seed
	if seed == 0 {
		var err error
		if seed, err = montecarlo.NewSeed(); err != nil {
			return PartialResult{}, apperrors.WrapError(err, "draw worker seed")
		}
	}
	engine := montecarlo.NewEngine(montecarlo.NewNormalSource(seed))
	est := engine.SimulateWithStats(req.Basket, req.RiskFreeRate, req.TimeHorizon, req.PathCount)
	return PartialResult{
		Kind:     KindPartial,
		Value:    est.Value,
		StdError: est.StdError,
		Paths:    est.Paths,
		Seed:     seed,
	}, nil
}

// Work decodes the unit's request, simulates it and writes the partial
// result to the unit's single output slot. With a seeded request the written
// bytes are identical on every run.
func Work(ctx context.Context, h TaskHandler) error {
	outputs := h.ExpectedResults()
	if len(outputs) != 1 {
		return apperrors.NewConfigError("worker unit must declare exactly one output, got %d", len(outputs))
	}
	req, err := montecarlo.DecodeRequest(h.Payload())
	if err != nil {
		return err
	}
	partial, err := Simulate(req)
	if err != nil {
		return err
	}
	data, err := EncodePartial(partial)
	if err != nil {
		return err
	}
	return h.SendResult(ctx, outputs[0], data)
}
