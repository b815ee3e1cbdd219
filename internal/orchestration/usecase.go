package orchestration

import (
	"strings"

	apperrors "github.com/agbru/basketmc/internal/errors"
)

// Option keys understood by the dispatcher.
const (
	OptionUseCase  = "UseCase"
	OptionJoinMode = "JoinMode"
)

// UseCase is the closed set of unit kinds.
type UseCase int

const (
	UseCaseUnknown UseCase = iota
	UseCaseLaunch
	UseCaseWorker
	UseCaseJoiner
)

func (u UseCase) String() string {
	switch u {
	case UseCaseLaunch:
		return "Launch"
	case UseCaseWorker:
		return "Worker"
	case UseCaseJoiner:
		return "Joiner"
	default:
		return "Unknown"
	}
}

// workerAlias is the tag older clients put on worker units.
const workerAlias = "MonteCarloWorker"

// ParseUseCase decodes a use-case tag. Matching ignores case and surrounding
// whitespace; anything else is an ErrUnknownUseCase configuration error.
func ParseUseCase(tag string) (UseCase, error) {
	t := strings.TrimSpace(tag)
	if strings.EqualFold(t, workerAlias) {
		return UseCaseWorker, nil
	}
	for _, u := range []UseCase{UseCaseLaunch, UseCaseWorker, UseCaseJoiner} {
		if strings.EqualFold(t, u.String()) {
			return u, nil
		}
	}
	return UseCaseUnknown, apperrors.NewConfigErrorKind(apperrors.ErrUnknownUseCase, "%q", tag)
}

// Options returns task options tagged with u.
func (u UseCase) Options() TaskOptions {
	return TaskOptions{OptionUseCase: u.String()}
}

// JoinMode selects how the joiner combines worker outputs.
type JoinMode string

const (
	// JoinMean combines partial values into one path-weighted mean.
	JoinMean JoinMode = "mean"
	// JoinVector passes the raw worker outputs through in declaration order.
	JoinVector JoinMode = "vector"
)

// ParseJoinMode decodes a join mode. The empty string selects JoinMean.
func ParseJoinMode(s string) (JoinMode, error) {
	switch JoinMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", JoinMean:
		return JoinMean, nil
	case JoinVector:
		return JoinVector, nil
	default:
		return "", apperrors.NewConfigErrorKind(apperrors.ErrInvalidConfig, "unknown join mode %q (expected %q or %q)", s, JoinMean, JoinVector)
	}
}
