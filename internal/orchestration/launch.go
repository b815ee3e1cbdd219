package orchestration

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/agbru/basketmc/internal/errors"
	"github.com/agbru/basketmc/internal/montecarlo"
)

// JoinPayload is the input of a Joiner unit. Dependencies records the order
// the worker outputs were declared in; the joiner aggregates in that order.
type JoinPayload struct {
	Mode         JoinMode `json:"mode"`
	Dependencies []string `json:"dependencies"`
	PathCount    int      `json:"pathCount"`
}

// Plan is the outcome of decomposing one request.
type Plan struct {
	Workers []TaskSpec
	Joiner  TaskSpec
}

// Specs returns the worker specs followed by the joiner spec, the order in
// which they are submitted.
func (p Plan) Specs() []TaskSpec {
	specs := make([]TaskSpec, 0, len(p.Workers)+1)
	specs = append(specs, p.Workers...)
	return append(specs, p.Joiner)
}

// Apportion splits pathCount across k workers as evenly as possible: the
// first pathCount mod k workers run one extra path.
func Apportion(pathCount, k int) []int {
	if k <= 0 {
		return nil
	}
	shares := make([]int, k)
	base, rem := pathCount/k, pathCount%k
	for i := range shares {
		shares[i] = base
		if i < rem {
			shares[i]++
		}
	}
	return shares
}

func checkSubtaskCount(req montecarlo.Request) error {
	if req.SubtaskCount <= 0 {
		return apperrors.NewConfigErrorKind(apperrors.ErrInvalidSubtaskCount, "must be positive, got %d", req.SubtaskCount)
	}
	if req.PathCount < req.SubtaskCount {
		return apperrors.NewConfigErrorKind(apperrors.ErrInvalidSubtaskCount,
			"%d subtasks cannot share %d paths", req.SubtaskCount, req.PathCount)
	}
	return nil
}

// Decompose turns req into req.SubtaskCount Worker specs, one per ID in
// workerIDs, and one Joiner spec that depends on all of them and fills
// output. Worker i receives its share of the path budget and the seed
// DeriveSeed(req.Seed, i).
func Decompose(req montecarlo.Request, output string, workerIDs []string) (Plan, error) {
	if err := req.Validate(); err != nil {
		return Plan{}, err
	}
	if err := checkSubtaskCount(req); err != nil {
		return Plan{}, err
	}
	mode, err := ParseJoinMode(req.Join)
	if err != nil {
		return Plan{}, err
	}
	if output == "" {
		return Plan{}, apperrors.NewConfigError("launch output slot is empty")
	}
	if len(workerIDs) != req.SubtaskCount {
		return Plan{}, fmt.Errorf("decompose: got %d worker result IDs for %d subtasks", len(workerIDs), req.SubtaskCount)
	}
	seen := make(map[string]struct{}, len(workerIDs)+1)
	seen[output] = struct{}{}
	for _, id := range workerIDs {
		if _, dup := seen[id]; dup || id == "" {
			return Plan{}, fmt.Errorf("decompose: result ID %q is empty or not unique", id)
		}
		seen[id] = struct{}{}
	}

	plan := Plan{Workers: make([]TaskSpec, 0, req.SubtaskCount)}
	for i, paths := range Apportion(req.PathCount, req.SubtaskCount) {
		sub := req
		sub.Basket = append(montecarlo.Basket(nil), req.Basket...)
		sub.PathCount = paths
		sub.SubtaskCount = 0
		sub.Join = ""
		sub.Seed = montecarlo.DeriveSeed(req.Seed, i)

		payload, err := montecarlo.EncodeRequest(sub)
		if err != nil {
			return Plan{}, err
		}
		plan.Workers = append(plan.Workers, TaskSpec{
			Payload:         payload,
			Options:         UseCaseWorker.Options(),
			ExpectedOutputs: []string{workerIDs[i]},
		})
	}

	deps := append([]string(nil), workerIDs...)
	joinPayload, err := json.Marshal(JoinPayload{Mode: mode, Dependencies: deps, PathCount: req.PathCount})
	if err != nil {
		return Plan{}, apperrors.WrapError(err, "encode join payload")
	}
	joinOptions := UseCaseJoiner.Options()
	joinOptions[OptionJoinMode] = string(mode)
	plan.Joiner = TaskSpec{
		Payload:          joinPayload,
		Options:          joinOptions,
		ExpectedOutputs:  []string{output},
		DataDependencies: deps,
	}
	return plan, nil
}

// Launch decomposes the unit's request and submits the workers and the joiner
// in a single call. Launch writes nothing itself: its output slot is handed
// to the joiner.
func Launch(ctx context.Context, h TaskHandler) error {
	outputs := h.ExpectedResults()
	if len(outputs) != 1 {
		return apperrors.NewConfigError("launch unit must declare exactly one output, got %d", len(outputs))
	}
	req, err := montecarlo.DecodeRequest(h.Payload())
	if err != nil {
		return err
	}
	if err := checkSubtaskCount(req); err != nil {
		return err
	}
	if _, err := ParseJoinMode(req.Join); err != nil {
		return err
	}
	if req.Seed == 0 {
		if req.Seed, err = montecarlo.NewSeed(); err != nil {
			return apperrors.WrapError(err, "draw base seed")
		}
	}

	names := make([]string, req.SubtaskCount)
	for i := range names {
		names[i] = fmt.Sprintf("%s/worker-%d", h.TaskID(), i)
	}
	ids, err := h.CreateResultIDs(ctx, names)
	if err != nil {
		return apperrors.WrapError(err, "create worker result IDs")
	}

	plan, err := Decompose(req, outputs[0], ids)
	if err != nil {
		return err
	}
	if err := h.SubmitTasks(ctx, plan.Specs()); err != nil {
		return apperrors.WrapError(err, "submit %d tasks", len(plan.Workers)+1)
	}
	return nil
}
