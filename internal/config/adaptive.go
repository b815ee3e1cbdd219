package config

import "runtime"

// MinPathsPerWorker is the smallest path share worth a dedicated worker unit
// when the subtask count is chosen automatically.
const MinPathsPerWorker = 2_500

// Subtask resolution chain (highest priority first):
//   1. CLI flag (-subtasks)
//   2. Environment variable (BASKETMC_SUBTASKS)
//   3. Request file (subtaskCount)
//   4. Hardware estimation (this file)

// EstimateParallelism returns the unit concurrency used when -parallelism is
// left at zero.
func EstimateParallelism() int {
	return runtime.GOMAXPROCS(0)
}

// EstimateSubtaskCount sizes the fan-out for a path budget: one worker per
// available core, but never so many that a worker gets fewer than
// MinPathsPerWorker paths. Small budgets return 1.
func EstimateSubtaskCount(paths, parallelism int) int {
	if parallelism <= 0 {
		parallelism = EstimateParallelism()
	}
	k := parallelism
	if byPaths := paths / MinPathsPerWorker; byPaths < k {
		k = byPaths
	}
	if k < 1 {
		return 1
	}
	return k
}

// ApplyAdaptiveDefaults resolves the parallelism of cfg against the current
// machine. Explicit values are kept. The subtask count is resolved by
// BuildRequest once the path budget is final.
func ApplyAdaptiveDefaults(cfg AppConfig) AppConfig {
	if cfg.Parallelism == 0 {
		cfg.Parallelism = EstimateParallelism()
	}
	return cfg
}
