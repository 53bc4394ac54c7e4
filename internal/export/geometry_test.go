package export

import (
	"errors"
	"math"
	"testing"
)

func TestResolveDimensions(t *testing.T) {
	sizes := []PageSize{PageSizeA4, PageSizeLetter, PageSizeLegal}
	for _, size := range sizes {
		t.Run(string(size), func(t *testing.T) {
			portrait := ResolveDimensions(size, OrientationPortrait)
			landscape := ResolveDimensions(size, OrientationLandscape)

			if portrait.Width >= portrait.Height {
				t.Errorf("portrait %v should be taller than wide", portrait)
			}
			if landscape.Width != portrait.Height || landscape.Height != portrait.Width {
				t.Errorf("landscape %v is not portrait %v swapped", landscape, portrait)
			}
			if again := ResolveDimensions(size, OrientationLandscape); again != landscape {
				t.Errorf("not idempotent: %v then %v", landscape, again)
			}
		})
	}

	if got := ResolveDimensions(PageSizeLegal, OrientationPortrait); got != (Dimensions{Width: 216, Height: 356}) {
		t.Errorf("legal = %v", got)
	}
	if got := ResolveDimensions("tabloid", OrientationPortrait); got != (Dimensions{Width: 210, Height: 297}) {
		t.Errorf("unknown size should resolve as A4, got %v", got)
	}
}

func TestMMToDXA(t *testing.T) {
	tests := []struct {
		mm   float64
		want int
	}{
		{0, 0},
		{25.4, 1440},
		{12.7, 720},
		{5, 283},
		{10, 567},
		{210, 11906},
		{297, 16838},
	}
	for _, tt := range tests {
		if got := MMToDXA(tt.mm); got != tt.want {
			t.Errorf("MMToDXA(%v) = %d, want %d", tt.mm, got, tt.want)
		}
	}

	prev := MMToDXA(0)
	for mm := 0.1; mm <= 400; mm += 0.1 {
		got := MMToDXA(mm)
		if got < prev {
			t.Fatalf("MMToDXA not monotonic at %v: %d < %d", mm, got, prev)
		}
		prev = got
	}
}

func TestMMToPoints(t *testing.T) {
	if got := MMToPoints(10); math.Abs(got-28.3465) > 1e-9 {
		t.Errorf("MMToPoints(10) = %v", got)
	}
	if got := MMToInches(25.4); got != 1 {
		t.Errorf("MMToInches(25.4) = %v", got)
	}
}

func TestPageSettingsValidate(t *testing.T) {
	valid := DefaultPageSettings()
	if err := valid.Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*PageSettings)
	}{
		{"unknown size", func(p *PageSettings) { p.PageSize = "a3" }},
		{"unknown orientation", func(p *PageSettings) { p.Orientation = "diagonal" }},
		{"negative margin", func(p *PageSettings) { p.Margins.Top = -1 }},
		{"margin too large", func(p *PageSettings) { p.Margins.Left = 100.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultPageSettings()
			tt.modify(&settings)
			if err := settings.Validate(); !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("expected ErrInvalidSettings, got %v", err)
			}
		})
	}

	edge := DefaultPageSettings()
	edge.Margins = Margins{Top: 0, Bottom: 100, Left: 100, Right: 0}
	if err := edge.Validate(); err != nil {
		t.Errorf("boundary margins rejected: %v", err)
	}
}
