package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/basketmc/internal/errors"
	"github.com/agbru/basketmc/internal/montecarlo"
)

// requestFile is the on-disk request document. Every field is optional;
// absent ones fall back to flags and defaults. JSON documents are valid YAML
// and decode through the same path.
type requestFile struct {
	Basket        []fileAsset `yaml:"basket"`
	RiskFreeRate  *float64    `yaml:"riskFreeRate"`
	TimeHorizon   *float64    `yaml:"timeHorizon"`
	PathCount     *int        `yaml:"pathCount"`
	SubtaskCount  *int        `yaml:"subtaskCount"`
	Join          *string     `yaml:"join"`
	Seed          *uint64     `yaml:"seed"`
	StrictWeights *bool       `yaml:"strictWeights"`

	basket montecarlo.Basket
}

// fileAsset mirrors montecarlo.Asset with pointer fields so that an omitted
// field is told apart from an explicit zero.
type fileAsset struct {
	Name       *string  `yaml:"name"`
	Spot       *float64 `yaml:"spot"`
	Volatility *float64 `yaml:"volatility"`
	Weight     *float64 `yaml:"weight"`
}

func (a fileAsset) asset(i int) (montecarlo.Asset, error) {
	missing := func(field string) error {
		return apperrors.NewConfigErrorKind(apperrors.ErrMalformedPayload,
			"request file: basket[%d]: missing required field %q", i, field)
	}
	switch {
	case a.Name == nil:
		return montecarlo.Asset{}, missing("name")
	case a.Spot == nil:
		return montecarlo.Asset{}, missing("spot")
	case a.Volatility == nil:
		return montecarlo.Asset{}, missing("volatility")
	case a.Weight == nil:
		return montecarlo.Asset{}, missing("weight")
	}
	return montecarlo.Asset{Name: *a.Name, Spot: *a.Spot, Volatility: *a.Volatility, Weight: *a.Weight}, nil
}

// loadRequestFile reads a YAML or JSON request document. Unknown keys are
// rejected.
func loadRequestFile(path string) (requestFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return requestFile{}, fmt.Errorf("%w: %w", apperrors.NewConfigError("read request file"), err)
	}
	return parseRequestFile(data)
}

func parseRequestFile(data []byte) (requestFile, error) {
	var rf requestFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rf); err != nil {
		if errors.Is(err, io.EOF) {
			return requestFile{}, apperrors.NewConfigErrorKind(apperrors.ErrMalformedPayload, "request file is empty")
		}
		return requestFile{}, apperrors.NewConfigErrorKind(apperrors.ErrMalformedPayload, "request file: %v", err)
	}
	if rf.Basket != nil {
		rf.basket = make(montecarlo.Basket, 0, len(rf.Basket))
		for i, fa := range rf.Basket {
			a, err := fa.asset(i)
			if err != nil {
				return requestFile{}, err
			}
			rf.basket = append(rf.basket, a)
		}
	}
	return rf, nil
}

// BuildRequest assembles the simulation request described by c: defaults,
// then the request file, then flags and environment variables. An automatic
// subtask count is resolved last, against the final path budget.
func (c AppConfig) BuildRequest() (montecarlo.Request, error) {
	req := montecarlo.Request{
		Basket:        montecarlo.DefaultBasket(),
		RiskFreeRate:  c.RiskFreeRate,
		TimeHorizon:   c.TimeHorizon,
		PathCount:     c.Paths,
		SubtaskCount:  c.Subtasks,
		Join:          c.Join,
		Seed:          c.Seed,
		StrictWeights: c.StrictWeights,
	}

	if c.RequestFile != "" {
		rf, err := loadRequestFile(c.RequestFile)
		if err != nil {
			return montecarlo.Request{}, err
		}
		c.overlay(&req, rf)
	}
	if req.SubtaskCount == AutoSubtasks {
		req.SubtaskCount = EstimateSubtaskCount(req.PathCount, c.Parallelism)
	}

	if err := req.Validate(); err != nil {
		return montecarlo.Request{}, err
	}
	return req, nil
}

// overlay copies the file's values into req for every setting not given
// explicitly on the command line or in the environment.
func (c AppConfig) overlay(req *montecarlo.Request, rf requestFile) {
	if rf.basket != nil {
		req.Basket = rf.basket
	}
	if rf.RiskFreeRate != nil && !c.IsSet("rate") {
		req.RiskFreeRate = *rf.RiskFreeRate
	}
	if rf.TimeHorizon != nil && !c.IsSet("horizon") {
		req.TimeHorizon = *rf.TimeHorizon
	}
	if rf.PathCount != nil && !c.IsSet("paths") {
		req.PathCount = *rf.PathCount
	}
	if rf.SubtaskCount != nil && !c.IsSet("subtasks") {
		req.SubtaskCount = *rf.SubtaskCount
	}
	if rf.Join != nil && !c.IsSet("join") {
		req.Join = *rf.Join
	}
	if rf.Seed != nil && !c.IsSet("seed") {
		req.Seed = *rf.Seed
	}
	if rf.StrictWeights != nil && !c.IsSet("strict-weights") {
		req.StrictWeights = *rf.StrictWeights
	}
}
