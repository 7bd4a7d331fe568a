package job

import (
	"math"

	"svgcam/internal/gcode"
	"svgcam/internal/tabs"
)

// Properties are the machining settings of one operation. Lengths are in
// drawing units, feed rates in units per minute.
type Properties struct {
	TargetDepth       float64 `yaml:"target_depth"`
	CutFeedrate       float64 `yaml:"cut_feedrate"`
	PlungeFeedrate    float64 `yaml:"plunge_feedrate"`
	DrillType         string  `yaml:"drill_type"`
	DrillRadius       float64 `yaml:"drill_radius"`
	DepthIncrement    float64 `yaml:"depth_increment"`
	StockSurface      float64 `yaml:"stock_surface"`
	ClearancePlane    float64 `yaml:"clearance_plane"`
	HoldingTabsWidth  float64 `yaml:"holding_tabs_width"`
	HoldingTabsHeight float64 `yaml:"holding_tabs_height"`
	HoldingTabsNumber int     `yaml:"holding_tabs_number"`
	// ToolCompensation offsets the contour by DrillRadius before cutting.
	ToolCompensation bool `yaml:"tool_compensation"`
}

const defaultDepthIncrement = -0.1

func DefaultProperties() Properties {
	return Properties{
		DrillType:         "straight",
		DrillRadius:       8,
		DepthIncrement:    defaultDepthIncrement,
		ClearancePlane:    20,
		HoldingTabsWidth:  10,
		HoldingTabsHeight: 10,
		HoldingTabsNumber: 3,
	}
}

// PropertyOption sets one machining property.
type PropertyOption func(*Properties)

// NewProperties applies opts over DefaultProperties, so every property not
// set explicitly keeps its default. Explicit zeros are kept.
func NewProperties(opts ...PropertyOption) Properties {
	p := DefaultProperties()
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithProperties replaces every property with p, zeros included.
func WithProperties(p Properties) PropertyOption {
	return func(dst *Properties) { *dst = p }
}

func WithTargetDepth(d float64) PropertyOption {
	return func(p *Properties) { p.TargetDepth = d }
}

func WithDepthIncrement(d float64) PropertyOption {
	return func(p *Properties) { p.DepthIncrement = d }
}

// WithFeedrates sets the cutting and plunging feed rates.
func WithFeedrates(cut, plunge float64) PropertyOption {
	return func(p *Properties) {
		p.CutFeedrate = cut
		p.PlungeFeedrate = plunge
	}
}

// WithDrill sets the tool type and radius.
func WithDrill(kind string, radius float64) PropertyOption {
	return func(p *Properties) {
		p.DrillType = kind
		p.DrillRadius = radius
	}
}

func WithStockSurface(z float64) PropertyOption {
	return func(p *Properties) { p.StockSurface = z }
}

func WithClearancePlane(z float64) PropertyOption {
	return func(p *Properties) { p.ClearancePlane = z }
}

// WithHoldingTabs sets the tab count and size. A count of 0 disables tabs.
func WithHoldingTabs(number int, width, height float64) PropertyOption {
	return func(p *Properties) {
		p.HoldingTabsNumber = number
		p.HoldingTabsWidth = width
		p.HoldingTabsHeight = height
	}
}

func WithToolCompensation(on bool) PropertyOption {
	return func(p *Properties) { p.ToolCompensation = on }
}

// Normalize returns p with the depth and increment forced below the
// surface. A zero increment falls back to the default.
func (p Properties) Normalize() Properties {
	p.TargetDepth = -math.Abs(p.TargetDepth)
	if p.DepthIncrement == 0 {
		p.DepthIncrement = defaultDepthIncrement
	}
	p.DepthIncrement = -math.Abs(p.DepthIncrement)
	return p
}

func (p Properties) gcodeParams() gcode.Params {
	return gcode.Params{
		TargetDepth:    p.TargetDepth,
		DepthIncrement: p.DepthIncrement,
		StockSurface:   p.StockSurface,
		ClearancePlane: p.ClearancePlane,
		CutFeedrate:    p.CutFeedrate,
		PlungeFeedrate: p.PlungeFeedrate,
		TabHeight:      p.HoldingTabsHeight,
	}
}

func (p Properties) tabOptions() tabs.Options {
	return tabs.Options{
		Count:  p.HoldingTabsNumber,
		Width:  p.HoldingTabsWidth,
		Height: p.HoldingTabsHeight,
	}
}
