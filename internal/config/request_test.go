package config

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	apperrors "github.com/agbru/basketmc/internal/errors"
	"github.com/agbru/basketmc/internal/montecarlo"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func parse(t *testing.T, args ...string) AppConfig {
	t.Helper()
	cfg, err := ParseConfig("basketmc", args, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("ParseConfig(%v): %v", args, err)
	}
	return cfg
}

func TestBuildRequest_DefaultBasket(t *testing.T) {
	t.Parallel()
	cfg := parse(t, "-subtasks", "4", "-seed", "7")
	req, err := cfg.BuildRequest()
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if len(req.Basket) != 3 || math.Abs(req.Basket.ReferenceValue()-219.0) > 1e-9 {
		t.Errorf("basket = %+v", req.Basket)
	}
	if req.RiskFreeRate != 0.05 || req.TimeHorizon != 1.0 || req.PathCount != DefaultPathCount {
		t.Errorf("request = %+v", req)
	}
	if req.SubtaskCount != 4 || req.Seed != 7 || req.Join != "mean" {
		t.Errorf("request = %+v", req)
	}
}

func TestBuildRequest_AutoSubtasksUsesFinalPathCount(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "small.yaml", "pathCount: 100\n")
	cfg := parse(t, "-request", path, "-parallelism", "8")
	req, err := cfg.BuildRequest()
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if req.PathCount != 100 || req.SubtaskCount != 1 {
		t.Errorf("paths %d, subtasks %d; want 100 and 1", req.PathCount, req.SubtaskCount)
	}
}

func TestBuildRequest_FileFormats(t *testing.T) {
	t.Parallel()
	yamlDoc := `
basket:
  - {name: A, spot: 100, volatility: 0.2, weight: 0.5}
  - {name: B, spot: 50, volatility: 0.1, weight: 0.5}
riskFreeRate: 0.02
timeHorizon: 0.5
pathCount: 4000
subtaskCount: 2
join: vector
seed: 3
strictWeights: true
`
	jsonDoc := `{"basket":[{"name":"A","spot":100,"volatility":0.2,"weight":0.5},
{"name":"B","spot":50,"volatility":0.1,"weight":0.5}],
"riskFreeRate":0.02,"timeHorizon":0.5,"pathCount":4000,"subtaskCount":2,
"join":"vector","seed":3,"strictWeights":true}`

	want := montecarlo.Request{
		Basket: montecarlo.Basket{
			{Name: "A", Spot: 100, Volatility: 0.2, Weight: 0.5},
			{Name: "B", Spot: 50, Volatility: 0.1, Weight: 0.5},
		},
		RiskFreeRate: 0.02, TimeHorizon: 0.5, PathCount: 4000, SubtaskCount: 2,
		Join: "vector", Seed: 3, StrictWeights: true,
	}

	for name, doc := range map[string]string{"request.yaml": yamlDoc, "request.json": jsonDoc} {
		t.Run(name, func(t *testing.T) {
			cfg := parse(t, "-request", writeFile(t, name, doc))
			req, err := cfg.BuildRequest()
			if err != nil {
				t.Fatalf("BuildRequest: %v", err)
			}
			if !reflect.DeepEqual(req, want) {
				t.Errorf("request = %+v\nwant      %+v", req, want)
			}
		})
	}
}

func TestBuildRequest_FlagsOverrideFile(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "r.yaml", "pathCount: 4000\nseed: 3\nriskFreeRate: 0.02\n")
	cfg := parse(t, "-request", path, "-paths", "8000", "-seed", "11", "-subtasks", "2")
	req, err := cfg.BuildRequest()
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if req.PathCount != 8000 || req.Seed != 11 {
		t.Errorf("flags should win: paths %d, seed %d", req.PathCount, req.Seed)
	}
	if req.RiskFreeRate != 0.02 {
		t.Errorf("file should beat defaults: rate %v", req.RiskFreeRate)
	}
}

func TestBuildRequest_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		kind    error
	}{
		{"empty file", "", apperrors.ErrMalformedPayload},
		{"unknown key", "paths: 10\n", apperrors.ErrMalformedPayload},
		{"unknown asset key", "basket:\n  - {name: A, spot: 1, volatility: 0, weight: 1, beta: 2}\n", apperrors.ErrMalformedPayload},
		{"not yaml", "basket: [\n", apperrors.ErrMalformedPayload},
		{"asset without volatility", "basket:\n  - {name: X, spot: 100, weight: 1}\n", apperrors.ErrMalformedPayload},
		{"asset without weight", "basket:\n  - {name: X, spot: 100, volatility: 0.2}\n", apperrors.ErrMalformedPayload},
		{"asset without name", "basket:\n  - {spot: 100, volatility: 0.2, weight: 1}\n", apperrors.ErrMalformedPayload},
		{"zero paths", "pathCount: 0\n", apperrors.ErrInvalidRequest},
		{"negative spot", "basket:\n  - {name: A, spot: -1, volatility: 0.1, weight: 1}\n", apperrors.ErrInvalidRequest},
		{"strict weights", "strictWeights: true\nbasket:\n  - {name: A, spot: 1, volatility: 0.1, weight: 0.7}\n", apperrors.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := parse(t, "-request", writeFile(t, "r.yaml", tt.content), "-subtasks", "1")
			_, err := cfg.BuildRequest()
			if !errors.Is(err, tt.kind) {
				t.Errorf("error = %v, want kind %v", err, tt.kind)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		cfg := parse(t, "-request", filepath.Join(t.TempDir(), "absent.yaml"))
		if _, err := cfg.BuildRequest(); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want os.ErrNotExist", err)
		}
	})
}

func TestParseRequestFile_MissingAssetField(t *testing.T) {
	t.Parallel()
	_, err := parseRequestFile([]byte("basket:\n  - {name: X, spot: 100}\n"))
	if !errors.Is(err, apperrors.ErrMalformedPayload) {
		t.Fatalf("error = %v, want ErrMalformedPayload", err)
	}
	if !strings.Contains(err.Error(), `"volatility"`) {
		t.Errorf("error = %q, want the missing field named", err)
	}
}

func TestParseRequestFile_ExplicitZeroVolatility(t *testing.T) {
	t.Parallel()
	rf, err := parseRequestFile([]byte("basket:\n  - {name: X, spot: 100, volatility: 0, weight: 1}\n"))
	if err != nil {
		t.Fatalf("parseRequestFile: %v", err)
	}
	want := montecarlo.Basket{{Name: "X", Spot: 100, Volatility: 0, Weight: 1}}
	if !reflect.DeepEqual(rf.basket, want) {
		t.Errorf("basket = %+v, want %+v", rf.basket, want)
	}
}
