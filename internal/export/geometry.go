package export

import (
	"errors"
	"fmt"
	"math"
)

type PageSize string

const (
	PageSizeA4     PageSize = "a4"
	PageSizeLetter PageSize = "letter"
	PageSizeLegal  PageSize = "legal"
)

type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

const (
	DefaultMarginMM = 25.4
	MaxMarginMM     = 100.0
)

// ErrInvalidSettings is returned by PageSettings.Validate.
var ErrInvalidSettings = errors.New("invalid page settings")

// Margins are in millimeters.
type Margins struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

type PageSettings struct {
	PageSize    PageSize    `json:"pageSize"`
	Orientation Orientation `json:"orientation"`
	Margins     Margins     `json:"margins"`
}

// Dimensions of a page in millimeters, already oriented.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// portrait base sizes, mm
var pageSizes = map[PageSize]Dimensions{
	PageSizeA4:     {Width: 210, Height: 297},
	PageSizeLetter: {Width: 216, Height: 279},
	PageSizeLegal:  {Width: 216, Height: 356},
}

func DefaultPageSettings() PageSettings {
	return PageSettings{
		PageSize:    PageSizeA4,
		Orientation: OrientationPortrait,
		Margins: Margins{
			Top:    DefaultMarginMM,
			Bottom: DefaultMarginMM,
			Left:   DefaultMarginMM,
			Right:  DefaultMarginMM,
		},
	}
}

// ResolveDimensions returns the page size for an orientation. Landscape
// swaps the portrait width and height. Unknown sizes resolve as A4.
func ResolveDimensions(size PageSize, orientation Orientation) Dimensions {
	base, ok := pageSizes[size]
	if !ok {
		base = pageSizes[PageSizeA4]
	}
	if orientation == OrientationLandscape {
		return Dimensions{Width: base.Height, Height: base.Width}
	}
	return base
}

func (p PageSettings) Dimensions() Dimensions {
	return ResolveDimensions(p.PageSize, p.Orientation)
}

// ContentWidth is the page width left between the side margins, in mm.
func (p PageSettings) ContentWidth() float64 {
	return p.Dimensions().Width - p.Margins.Left - p.Margins.Right
}

// Validate checks values that arrive from clients. Renderers assume
// settings were either validated or built by DefaultPageSettings.
func (p PageSettings) Validate() error {
	if _, ok := pageSizes[p.PageSize]; !ok {
		return fmt.Errorf("%w: unknown page size %q", ErrInvalidSettings, p.PageSize)
	}
	if p.Orientation != OrientationPortrait && p.Orientation != OrientationLandscape {
		return fmt.Errorf("%w: unknown orientation %q", ErrInvalidSettings, p.Orientation)
	}

	margins := []struct {
		name  string
		value float64
	}{
		{"top", p.Margins.Top},
		{"bottom", p.Margins.Bottom},
		{"left", p.Margins.Left},
		{"right", p.Margins.Right},
	}
	for _, m := range margins {
		if math.IsNaN(m.value) || m.value < 0 || m.value > MaxMarginMM {
			return fmt.Errorf("%w: margins.%s must be between 0 and %.0f mm", ErrInvalidSettings, m.name, MaxMarginMM)
		}
	}

	dims := p.Dimensions()
	if dims.Width-p.Margins.Left-p.Margins.Right <= 0 || dims.Height-p.Margins.Top-p.Margins.Bottom <= 0 {
		return fmt.Errorf("%w: margins leave no room for content", ErrInvalidSettings)
	}
	return nil
}

// withDefaults fills enum fields left empty by a partial request.
func (p PageSettings) withDefaults() PageSettings {
	if p.PageSize == "" {
		p.PageSize = PageSizeA4
	}
	if p.Orientation == "" {
		p.Orientation = OrientationPortrait
	}
	return p
}

func MMToPoints(mm float64) float64 {
	return mm * 2.83465
}

// MMToDXA converts to twentieths of a point, rounding half away from zero.
func MMToDXA(mm float64) int {
	return int(math.Round(mm / 25.4 * 1440))
}

func MMToInches(mm float64) float64 {
	return mm / 25.4
}
