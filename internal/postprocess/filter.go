package postprocess

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
)

// FilterKind selects one of the built-in filters.
type FilterKind int

const (
	Crystallize FilterKind = iota
	Pixellate
	Sepia
	Monochrome
	Bloom
)

var kindNames = [...]string{"crystallize", "pixellate", "sepia", "monochrome", "bloom"}

func (k FilterKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("FilterKind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a filter name to its kind. "noir" is accepted for
// monochrome.
func ParseKind(s string) (FilterKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "noir" {
		return Monochrome, nil
	}
	for i, name := range kindNames {
		if s == name {
			return FilterKind(i), nil
		}
	}
	return 0, fmt.Errorf("postprocess: unknown filter %q", s)
}

// FilterConfig is the active filter and its parameters. Which fields are
// read depends on Kind:
//
//	crystallize  Radius > 0 (cell size in pixels)
//	pixellate    Scale > 0 (block size in pixels)
//	sepia        Intensity in [0,1]
//	monochrome   none
//	bloom        Intensity >= 0, Radius > 0 (blur radius in pixels)
type FilterConfig struct {
	Kind      FilterKind
	Radius    float64
	Scale     float64
	Intensity float64
}

// DefaultFilter is active until SetFilter is called.
func DefaultFilter() FilterConfig {
	return FilterConfig{Kind: Crystallize, Radius: 40}
}

func (c FilterConfig) String() string {
	switch c.Kind {
	case Crystallize:
		return fmt.Sprintf("crystallize{radius: %g}", c.Radius)
	case Pixellate:
		return fmt.Sprintf("pixellate{scale: %g}", c.Scale)
	case Sepia:
		return fmt.Sprintf("sepia{intensity: %g}", c.Intensity)
	case Bloom:
		return fmt.Sprintf("bloom{intensity: %g, radius: %g}", c.Intensity, c.Radius)
	}
	return c.Kind.String()
}

// FilterError reports a filter that produced no usable output.
type FilterError struct {
	Kind FilterKind
	Err  error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("postprocess: %v: %v", e.Kind, e.Err)
}

func (e *FilterError) Unwrap() error { return e.Err }

// Errors wrapped by FilterError.
var (
	ErrBadParam   = errors.New("invalid parameter")
	ErrNoOutput   = errors.New("filter produced no output")
	ErrSizeChange = errors.New("filter changed the frame size")
)

// Validate checks the parameters Kind reads.
func (c FilterConfig) Validate() error {
	bad := func(format string, args ...any) error {
		return &FilterError{Kind: c.Kind, Err: fmt.Errorf("%w: "+format, append([]any{ErrBadParam}, args...)...)}
	}
	switch c.Kind {
	case Crystallize:
		if !positive(c.Radius) {
			return bad("radius %g", c.Radius)
		}
	case Pixellate:
		if !positive(c.Scale) {
			return bad("scale %g", c.Scale)
		}
	case Sepia:
		if !(c.Intensity >= 0 && c.Intensity <= 1) {
			return bad("intensity %g", c.Intensity)
		}
	case Monochrome:
	case Bloom:
		if !(c.Intensity >= 0) || math.IsInf(c.Intensity, 0) {
			return bad("intensity %g", c.Intensity)
		}
		if !positive(c.Radius) {
			return bad("radius %g", c.Radius)
		}
	default:
		return &FilterError{Kind: c.Kind, Err: errors.New("unknown kind")}
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// applyFunc filters src into a new image of the same size. It must not
// modify src and must not keep state between calls.
type applyFunc func(ctx context.Context, c FilterConfig, src *image.RGBA) (*image.RGBA, error)

var filters = map[FilterKind]applyFunc{
	Crystallize: crystallize,
	Pixellate:   pixellate,
	Sepia:       sepia,
	Monochrome:  monochrome,
	Bloom:       bloom,
}

// Apply validates c and runs its filter on src.
func Apply(ctx context.Context, c FilterConfig, src *image.RGBA) (*image.RGBA, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	out, err := filters[c.Kind](ctx, c, src)
	if err != nil {
		return nil, &FilterError{Kind: c.Kind, Err: err}
	}
	if out == nil {
		return nil, &FilterError{Kind: c.Kind, Err: ErrNoOutput}
	}
	if out.Bounds().Size() != src.Bounds().Size() {
		return nil, &FilterError{Kind: c.Kind, Err: fmt.Errorf("%w: %v -> %v", ErrSizeChange, src.Bounds().Size(), out.Bounds().Size())}
	}
	return out, nil
}
