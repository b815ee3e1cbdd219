package montecarlo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	apperrors "github.com/agbru/basketmc/internal/errors"
)

// WeightTolerance bounds |Σw − 1| when strict weight checking is enabled.
const WeightTolerance = 1e-6

// Asset is one risky asset in a basket.
type Asset struct {
	Name       string  `json:"name" yaml:"name"`
	Spot       float64 `json:"spot" yaml:"spot"`
	Volatility float64 `json:"volatility" yaml:"volatility"`
	Weight     float64 `json:"weight" yaml:"weight"`
}

// Basket is an ordered collection of assets valued jointly.
type Basket []Asset

// ReferenceValue returns Σ wᵢ·Sᵢ, the closed-form risk-neutral present value of
// the basket: the GBM drift exp(rT) cancels the discount factor exactly.
func (b Basket) ReferenceValue() float64 {
	var v float64
	for _, a := range b {
		v += a.Weight * a.Spot
	}
	return v
}

// DefaultBasket returns the three-stock basket used when no request file is
// supplied.
func DefaultBasket() Basket {
	return Basket{
		{Name: "AAPL", Spot: 180.0, Volatility: 0.25, Weight: 0.4},
		{Name: "MSFT", Spot: 350.0, Volatility: 0.20, Weight: 0.3},
		{Name: "GOOGL", Spot: 140.0, Volatility: 0.28, Weight: 0.3},
	}
}

// Request describes one logical simulation. For decomposed runs SubtaskCount
// is the number of worker units the path budget is split across; Join selects
// how the joiner combines their outputs.
type Request struct {
	Basket        Basket  `json:"basket" yaml:"basket"`
	RiskFreeRate  float64 `json:"riskFreeRate" yaml:"riskFreeRate"`
	TimeHorizon   float64 `json:"timeHorizon" yaml:"timeHorizon"`
	PathCount     int     `json:"pathCount" yaml:"pathCount"`
	SubtaskCount  int     `json:"subtaskCount,omitempty" yaml:"subtaskCount,omitempty"`
	Join          string  `json:"join,omitempty" yaml:"join,omitempty"`
	Seed          uint64  `json:"seed,omitempty" yaml:"seed,omitempty"`
	StrictWeights bool    `json:"strictWeights,omitempty" yaml:"strictWeights,omitempty"`
}

// Validate checks the structural constraints of a request. It does not check
// SubtaskCount, which only matters to decomposition.
func (r Request) Validate() error {
	if len(r.Basket) == 0 {
		return invalid("basket", "must contain at least one asset")
	}
	if r.PathCount <= 0 {
		return invalid("pathCount", fmt.Sprintf("must be positive, got %d", r.PathCount))
	}
	if !isFinite(r.TimeHorizon) || r.TimeHorizon <= 0 {
		return invalid("timeHorizon", fmt.Sprintf("must be a positive number of years, got %v", r.TimeHorizon))
	}
	if !isFinite(r.RiskFreeRate) {
		return invalid("riskFreeRate", "must be finite")
	}

	var weightSum float64
	for i, a := range r.Basket {
		field := fmt.Sprintf("basket[%d]", i)
		switch {
		case a.Name == "":
			return invalid(field+".name", "must not be empty")
		case !isFinite(a.Spot) || a.Spot <= 0:
			return invalid(field+".spot", fmt.Sprintf("must be positive, got %v", a.Spot))
		case !isFinite(a.Volatility) || a.Volatility < 0:
			return invalid(field+".volatility", fmt.Sprintf("must be non-negative, got %v", a.Volatility))
		case !isFinite(a.Weight):
			return invalid(field+".weight", "must be finite")
		case r.StrictWeights && a.Weight < 0:
			return invalid(field+".weight", fmt.Sprintf("must be non-negative, got %v", a.Weight))
		}
		weightSum += a.Weight
	}
	if r.StrictWeights && math.Abs(weightSum-1.0) > WeightTolerance {
		return invalid("basket", fmt.Sprintf("weights must sum to 1, got %v", weightSum))
	}
	return nil
}

func invalid(field, msg string) error {
	v := apperrors.ValidationError{Field: field, Message: msg}
	return apperrors.NewConfigErrorKind(apperrors.ErrInvalidRequest, "%s", v.Error())
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// wireAsset and wireRequest mirror Asset and Request with pointer fields so
// that a missing field is distinguishable from a zero value.
type wireAsset struct {
	Name       *string  `json:"name"`
	Spot       *float64 `json:"spot"`
	Volatility *float64 `json:"volatility"`
	Weight     *float64 `json:"weight"`
}

type wireRequest struct {
	Basket        []wireAsset `json:"basket"`
	RiskFreeRate  *float64    `json:"riskFreeRate"`
	TimeHorizon   *float64    `json:"timeHorizon"`
	PathCount     *int        `json:"pathCount"`
	SubtaskCount  int         `json:"subtaskCount"`
	Join          string      `json:"join"`
	Seed          uint64      `json:"seed"`
	StrictWeights bool        `json:"strictWeights"`
}

// DecodeRequest parses a JSON request payload. Unknown fields, trailing data
// and missing required fields are rejected with ErrMalformedPayload; the
// decoded request is then validated. On error the returned Request is zero.
func DecodeRequest(data []byte) (Request, error) {
	var w wireRequest
	if err := DecodeStrict(data, &w); err != nil {
		return Request{}, err
	}

	missing := func(field string) error {
		return apperrors.NewConfigErrorKind(apperrors.ErrMalformedPayload, "missing required field %q", field)
	}
	if w.Basket == nil {
		return Request{}, missing("basket")
	}
	if w.RiskFreeRate == nil {
		return Request{}, missing("riskFreeRate")
	}
	if w.TimeHorizon == nil {
		return Request{}, missing("timeHorizon")
	}
	if w.PathCount == nil {
		return Request{}, missing("pathCount")
	}

	req := Request{
		Basket:        make(Basket, 0, len(w.Basket)),
		RiskFreeRate:  *w.RiskFreeRate,
		TimeHorizon:   *w.TimeHorizon,
		PathCount:     *w.PathCount,
		SubtaskCount:  w.SubtaskCount,
		Join:          w.Join,
		Seed:          w.Seed,
		StrictWeights: w.StrictWeights,
	}
	for i, a := range w.Basket {
		if a.Name == nil || a.Spot == nil || a.Volatility == nil || a.Weight == nil {
			return Request{}, missing(fmt.Sprintf("basket[%d]: name, spot, volatility and weight", i))
		}
		req.Basket = append(req.Basket, Asset{Name: *a.Name, Spot: *a.Spot, Volatility: *a.Volatility, Weight: *a.Weight})
	}

	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// EncodeRequest serializes a request to its JSON wire form.
func EncodeRequest(req Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.WrapError(err, "encode request")
	}
	return data, nil
}

// DecodeStrict decodes exactly one JSON value from data into v, rejecting
// unknown fields and trailing content.
func DecodeStrict(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return apperrors.NewConfigErrorKind(apperrors.ErrMalformedPayload, "empty payload")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.NewConfigErrorKind(apperrors.ErrMalformedPayload, "%v", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apperrors.NewConfigErrorKind(apperrors.ErrMalformedPayload, "trailing data after JSON document")
	}
	return nil
}
