package layout

import (
	"strings"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/layout/ordering"
)

// Direction selects the rank axis.
type Direction string

const (
	// TopToBottom stacks ranks downwards; edges enter at the top of a box.
	TopToBottom Direction = "TB"
	// LeftToRight stacks ranks rightwards; edges enter at the left of a box.
	LeftToRight Direction = "LR"
)

// ParseDirection accepts "TB", "LR" and the long forms "top-to-bottom" and
// "left-to-right", case-insensitively. The empty string is TopToBottom.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tb", "top-to-bottom":
		return TopToBottom, nil
	case "lr", "left-to-right":
		return LeftToRight, nil
	}
	return "", errors.New(errors.ErrCodeInvalidOption, "unknown direction %q (want TB or LR)", s)
}

func (d Direction) String() string { return string(d) }

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) { return []byte(d), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Default geometry in layout units.
const (
	DefaultNodeWidth  = 600
	DefaultNodeHeight = 50
	DefaultRankGap    = 50
	DefaultNodeGap    = 50
)

// Options configures [Compute].
type Options struct {
	Direction  Direction `json:"direction" toml:"direction"`
	NodeWidth  float64   `json:"node_width" toml:"node_width"`
	NodeHeight float64   `json:"node_height" toml:"node_height"`
	RankGap    float64   `json:"rank_gap" toml:"rank_gap"`
	NodeGap    float64   `json:"node_gap" toml:"node_gap"`
	Passes     int       `json:"passes" toml:"passes"`

	// Orderer overrides crossing reduction. Nil uses ordering.Barycentric
	// with Passes.
	Orderer ordering.Orderer `json:"-" toml:"-"`
}

// DefaultOptions returns 600x50 boxes, 50 unit gaps, top-to-bottom and the
// default number of ordering passes.
func DefaultOptions() Options {
	return Options{
		Direction:  TopToBottom,
		NodeWidth:  DefaultNodeWidth,
		NodeHeight: DefaultNodeHeight,
		RankGap:    DefaultRankGap,
		NodeGap:    DefaultNodeGap,
		Passes:     ordering.DefaultPasses,
	}
}

// Validate rejects options that cannot describe a layout. Zero values are
// allowed and mean "use the default".
func (o Options) Validate() error {
	switch o.Direction {
	case "", TopToBottom, LeftToRight:
	default:
		return errors.New(errors.ErrCodeInvalidOption, "unknown direction %q (want TB or LR)", o.Direction)
	}
	if o.NodeWidth < 0 || o.NodeHeight < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "node size must not be negative")
	}
	if o.RankGap < 0 || o.NodeGap < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "gaps must not be negative")
	}
	if o.Passes < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "passes must not be negative")
	}
	return nil
}

// WithDefaults fills zero or invalid fields from [DefaultOptions].
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.Direction != LeftToRight {
		o.Direction = TopToBottom
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = d.NodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = d.NodeHeight
	}
	if o.RankGap <= 0 {
		o.RankGap = d.RankGap
	}
	if o.NodeGap <= 0 {
		o.NodeGap = d.NodeGap
	}
	if o.Passes <= 0 {
		o.Passes = d.Passes
	}
	return o
}

func (o Options) orderer() ordering.Orderer {
	if o.Orderer != nil {
		return o.Orderer
	}
	return ordering.Barycentric{Passes: o.Passes}
}
