package orchestration

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	apperrors "github.com/agbru/basketmc/internal/errors"
	"github.com/agbru/basketmc/internal/montecarlo"
)

// OrderDependencies returns the delivered payloads in declaration order.
// Any difference between the declared IDs and the delivered ones is an
// AggregationError; nothing is padded or dropped.
func OrderDependencies(declared []string, delivered map[string][]byte) ([][]byte, error) {
	aggErr := apperrors.AggregationError{Declared: len(declared), Observed: len(delivered)}
	seen := make(map[string]struct{}, len(declared))
	ordered := make([][]byte, 0, len(declared))
	for _, id := range declared {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("dependency %q declared twice", id)
		}
		seen[id] = struct{}{}
		data, ok := delivered[id]
		if !ok {
			aggErr.Missing = append(aggErr.Missing, id)
			continue
		}
		ordered = append(ordered, data)
	}
	for id := range delivered {
		if _, ok := seen[id]; !ok {
			aggErr.Unexpected = append(aggErr.Unexpected, id)
		}
	}
	if len(aggErr.Missing) > 0 || len(aggErr.Unexpected) > 0 {
		sort.Strings(aggErr.Unexpected)
		return nil, aggErr
	}
	return ordered, nil
}

// MeanOf combines partial results into a path-weighted mean. The standard
// error is the spread of the unit values over √K.
func MeanOf(partials []PartialResult) AggregateResult {
	values := make([]float64, len(partials))
	weights := make([]float64, len(partials))
	result := AggregateResult{Kind: KindMean, Units: len(partials)}
	for i, p := range partials {
		values[i] = p.Value
		weights[i] = float64(p.Paths)
		result.Paths += p.Paths
	}
	if len(partials) == 0 {
		result.Value = math.NaN()
		return result
	}
	result.Value = stat.Mean(values, weights)
	if len(partials) > 1 {
		result.StdError = stat.StdDev(values, nil) / math.Sqrt(float64(len(partials)))
	}
	return result
}

// Aggregate combines ordered dependency payloads according to mode. ids must
// be parallel to payloads; they label vector items.
func Aggregate(mode JoinMode, ids []string, payloads [][]byte) (AggregateResult, error) {
	if len(ids) != len(payloads) {
		return AggregateResult{}, apperrors.AggregationError{Declared: len(ids), Observed: len(payloads)}
	}
	switch mode {
	case JoinMean:
		if len(payloads) == 0 {
			return AggregateResult{}, apperrors.AggregationError{}
		}
		partials := make([]PartialResult, len(payloads))
		for i, data := range payloads {
			p, err := DecodePartial(data)
			if err != nil {
				return AggregateResult{}, apperrors.WrapError(err, "dependency %s", ids[i])
			}
			partials[i] = p
		}
		return MeanOf(partials), nil
	case JoinVector:
		items := make([]VectorItem, len(payloads))
		for i, data := range payloads {
			items[i] = NewVectorItem(ids[i], data)
		}
		return AggregateResult{Kind: KindVector, Items: items}, nil
	default:
		return AggregateResult{}, apperrors.NewConfigErrorKind(apperrors.ErrInvalidConfig, "unknown join mode %q", mode)
	}
}

// Join aggregates the unit's dependencies and writes the aggregate to the
// unit's single output slot.
func Join(ctx context.Context, h TaskHandler) error {
	outputs := h.ExpectedResults()
	if len(outputs) != 1 {
		return apperrors.NewConfigError("joiner unit must declare exactly one output, got %d", len(outputs))
	}
	var p JoinPayload
	if err := montecarlo.DecodeStrict(h.Payload(), &p); err != nil {
		return err
	}
	if p.Dependencies == nil {
		return apperrors.NewConfigErrorKind(apperrors.ErrMalformedPayload, "missing required field %q", "dependencies")
	}
	modeTag := string(p.Mode)
	if modeTag == "" {
		modeTag = h.Options()[OptionJoinMode]
	}
	mode, err := ParseJoinMode(modeTag)
	if err != nil {
		return err
	}

	ordered, err := OrderDependencies(p.Dependencies, h.DataDependencies())
	if err != nil {
		return err
	}
	result, err := Aggregate(mode, p.Dependencies, ordered)
	if err != nil {
		return err
	}
	if mode == JoinMean && p.PathCount > 0 && result.Paths != p.PathCount {
		return fmt.Errorf("partials cover %d paths, expected %d", result.Paths, p.PathCount)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return apperrors.WrapError(err, "encode aggregate result")
	}
	return h.SendResult(ctx, outputs[0], data)
}
