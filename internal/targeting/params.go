package targeting

import (
	"errors"
	"fmt"
)

// Kind names a hunt strategy.
type Kind string

const (
	KindDensity    Kind = "density"
	KindMonteCarlo Kind = "montecarlo"
	KindExpectimax Kind = "expectimax"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindDensity, KindMonteCarlo, KindExpectimax:
		return k, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

const (
	DefaultDepth       = 3
	DefaultTopK        = 8
	DefaultGamma       = 0.9
	DefaultSamples     = 20
	DefaultMaxAttempts = 20

	// samplerPlacementTries bounds the random tries for one ship inside one
	// sampled configuration.
	samplerPlacementTries = 20
	// missPenalty weighs misses in the search heuristic.
	missPenalty = 0.2
)

// Params are the static knobs bounding the work of one decision.
type Params struct {
	Kind        Kind    `json:"strategy"`
	Depth       int     `json:"depth"`
	TopK        int     `json:"topK"`
	Gamma       float64 `json:"gamma"`
	Samples     int     `json:"samples"`
	MaxAttempts int     `json:"maxAttempts"` // configuration attempts per sample
	Parity      bool    `json:"parity"`      // density argmax hunts checkerboard cells first
}

func DefaultParams() Params {
	return Params{
		Kind:        KindExpectimax,
		Depth:       DefaultDepth,
		TopK:        DefaultTopK,
		Gamma:       DefaultGamma,
		Samples:     DefaultSamples,
		MaxAttempts: DefaultMaxAttempts,
	}
}

var errParams = errors.New("invalid targeting params")

func (p Params) Validate() error {
	if _, err := ParseKind(string(p.Kind)); err != nil {
		return fmt.Errorf("%w: %v", errParams, err)
	}
	switch {
	case p.Depth < 0:
		return fmt.Errorf("%w: depth %d", errParams, p.Depth)
	case p.TopK < 1:
		return fmt.Errorf("%w: topK %d", errParams, p.TopK)
	case p.Gamma < 0 || p.Gamma > 1:
		return fmt.Errorf("%w: gamma %v not in [0,1]", errParams, p.Gamma)
	case p.Samples < 1:
		return fmt.Errorf("%w: samples %d", errParams, p.Samples)
	case p.MaxAttempts < 1:
		return fmt.Errorf("%w: maxAttempts %d", errParams, p.MaxAttempts)
	}
	return nil
}
