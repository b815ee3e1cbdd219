package orchestration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	apperrors "github.com/agbru/basketmc/internal/errors"
	"github.com/agbru/basketmc/internal/montecarlo"
)

// Kinds written in the "kind" field of result documents.
const (
	KindPartial = "partial"
	KindMean    = "mean"
	KindVector  = "vector"
)

// PartialResult is the output of one Worker unit.
type PartialResult struct {
	Kind     string
	Value    float64
	StdError float64
	Paths    int
	Seed     uint64
}

// partialDocument is the wire form of PartialResult.
type partialDocument struct {
	Kind     string `json:"kind"`
	Value    Number `json:"value"`
	StdError Number `json:"stdError"`
	Paths    int    `json:"paths"`
	Seed     uint64 `json:"seed"`
}

// EncodePartial serializes a partial result. NaN and infinite estimates are
// carried as strings (see Number).
func EncodePartial(p PartialResult) ([]byte, error) {
	data, err := json.Marshal(partialDocument{
		Kind:     KindPartial,
		Value:    Number(p.Value),
		StdError: Number(p.StdError),
		Paths:    p.Paths,
		Seed:     p.Seed,
	})
	if err != nil {
		return nil, apperrors.WrapError(err, "encode partial result")
	}
	return data, nil
}

// DecodePartial parses a partial result written by a Worker.
func DecodePartial(data []byte) (PartialResult, error) {
	var doc partialDocument
	if err := montecarlo.DecodeStrict(data, &doc); err != nil {
		return PartialResult{}, err
	}
	if doc.Kind != KindPartial {
		return PartialResult{}, apperrors.NewConfigErrorKind(apperrors.ErrMalformedPayload, "expected kind %q, got %q", KindPartial, doc.Kind)
	}
	if doc.Paths <= 0 {
		return PartialResult{}, apperrors.NewConfigErrorKind(apperrors.ErrMalformedPayload, "partial result covers %d paths", doc.Paths)
	}
	return PartialResult{
		Kind:     doc.Kind,
		Value:    float64(doc.Value),
		StdError: float64(doc.StdError),
		Paths:    doc.Paths,
		Seed:     doc.Seed,
	}, nil
}

// VectorItem is one dependency payload embedded in a vector aggregate. Exactly
// one of JSON, Text or Base64 is set, recording how the bytes were embedded.
type VectorItem struct {
	ID     string          `json:"id"`
	JSON   json.RawMessage `json:"json,omitempty"`
	Text   *string         `json:"text,omitempty"`
	Base64 []byte          `json:"base64,omitempty"`
}

// NewVectorItem embeds data under id. Compact JSON is embedded as-is, other
// valid UTF-8 as text, anything else as base64. Bytes returns data verbatim
// in every case.
func NewVectorItem(id string, data []byte) VectorItem {
	item := VectorItem{ID: id}
	switch {
	case isCompactJSON(data):
		item.JSON = append(json.RawMessage(nil), data...)
	case utf8.Valid(data):
		s := string(data)
		item.Text = &s
	default:
		item.Base64 = append([]byte{}, data...)
	}
	return item
}

// Bytes returns the original dependency payload.
func (v VectorItem) Bytes() []byte {
	switch {
	case v.JSON != nil:
		return []byte(v.JSON)
	case v.Text != nil:
		return []byte(*v.Text)
	default:
		return v.Base64
	}
}

// isCompactJSON reports whether data survives json.Marshal unchanged as a
// RawMessage: valid, compact, and free of the characters Marshal escapes.
func isCompactJSON(data []byte) bool {
	if len(data) == 0 || !json.Valid(data) {
		return false
	}
	if bytes.ContainsAny(data, "<>&\u2028\u2029") {
		return false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return false
	}
	return bytes.Equal(buf.Bytes(), data)
}

// AggregateResult is the output of the Joiner. Kind selects which fields are
// meaningful: Value, StdError, Units and Paths for KindMean; Items for
// KindVector.
type AggregateResult struct {
	Kind     string
	Value    float64
	StdError float64
	Units    int
	Paths    int
	Items    []VectorItem
}

type meanDocument struct {
	Kind     string `json:"kind"`
	Value    Number `json:"value"`
	StdError Number `json:"stdError"`
	Units    int    `json:"units"`
	Paths    int    `json:"paths"`
}

type vectorDocument struct {
	Kind  string       `json:"kind"`
	Items []VectorItem `json:"items"`
}

// MarshalJSON writes the document shape matching Kind.
func (a AggregateResult) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case KindMean:
		return json.Marshal(meanDocument{Kind: KindMean, Value: Number(a.Value), StdError: Number(a.StdError), Units: a.Units, Paths: a.Paths})
	case KindVector:
		items := a.Items
		if items == nil {
			items = []VectorItem{}
		}
		return json.Marshal(vectorDocument{Kind: KindVector, Items: items})
	default:
		return nil, fmt.Errorf("unknown aggregate kind %q", a.Kind)
	}
}

// DecodeAggregate parses a document written by the Joiner.
func DecodeAggregate(data []byte) (AggregateResult, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return AggregateResult{}, apperrors.NewConfigErrorKind(apperrors.ErrMalformedPayload, "%v", err)
	}
	switch head.Kind {
	case KindMean:
		var doc meanDocument
		if err := montecarlo.DecodeStrict(data, &doc); err != nil {
			return AggregateResult{}, err
		}
		return AggregateResult{Kind: KindMean, Value: float64(doc.Value), StdError: float64(doc.StdError), Units: doc.Units, Paths: doc.Paths}, nil
	case KindVector:
		var doc vectorDocument
		if err := montecarlo.DecodeStrict(data, &doc); err != nil {
			return AggregateResult{}, err
		}
		return AggregateResult{Kind: KindVector, Items: doc.Items}, nil
	default:
		return AggregateResult{}, apperrors.NewConfigErrorKind(apperrors.ErrMalformedPayload, "unknown aggregate kind %q", head.Kind)
	}
}
