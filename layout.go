package main

// =============================================================================
// Overlay Geometry
// =============================================================================

// Proportions of the overlay, relative to the image or to the primary font.
const (
	primaryFontRatio      = 0.08 // of the shorter image side
	secondaryFontRatio    = 0.6  // of the primary font size
	primarySpacingRatio   = 0.3  // of the primary font size
	secondarySpacingRatio = 0.5  // of the secondary font size
	iconRatio             = 0.8  // of the block's font size
	primaryTextGapRatio   = 0.5  // icon-to-text gap, of the primary font size
	secondaryTextGapRatio = 0.7  // icon-to-text gap, of the secondary font size
	separatorRatio        = 0.02 // thickness, of the primary font size
	separatorPadRatio     = 1.5  // padding, of the primary line spacing
	marginRatio           = 0.05 // horizontal margin, of the image width
	baseBlurRatio         = 0.01
	shadowBlurRatio       = 0.005
)

// Layout is the pixel geometry of one overlay. StartY is not clamped: very
// wide or short images can push the block past the frame.
type Layout struct {
	Width, Height int

	FontSize    int
	LineSpacing int
	IconSize    int
	TextX       int

	SecondaryFontSize    int
	SecondaryLineSpacing int
	SecondaryIconSize    int
	SecondaryTextX       int

	MarginX            int
	SeparatorThickness int
	SeparatorPadding   int

	TotalHeight int
	StartY      int // top of the technical block
	SeparatorY  int
	ContextY    int // top of the context block
}

// ComputeLayout derives the overlay geometry for a width x height image with
// the given number of lines in each block.
func ComputeLayout(width, height, technicalLines, contextLines int) Layout {
	l := Layout{Width: width, Height: height}

	short := min(width, height)
	l.FontSize = int(float64(short) * primaryFontRatio)
	l.LineSpacing = int(float64(l.FontSize) * primarySpacingRatio)
	l.IconSize = int(float64(l.FontSize) * iconRatio)

	l.SecondaryFontSize = int(float64(l.FontSize) * secondaryFontRatio)
	l.SecondaryLineSpacing = int(float64(l.SecondaryFontSize) * secondarySpacingRatio)
	l.SecondaryIconSize = int(float64(l.SecondaryFontSize) * iconRatio)

	l.MarginX = int(float64(width) * marginRatio)
	l.TextX = l.MarginX + l.IconSize + int(float64(l.FontSize)*primaryTextGapRatio)
	l.SecondaryTextX = l.MarginX + l.SecondaryIconSize + int(float64(l.SecondaryFontSize)*secondaryTextGapRatio)

	l.SeparatorThickness = int(float64(l.FontSize) * separatorRatio)
	l.SeparatorPadding = int(float64(l.LineSpacing) * separatorPadRatio)

	technicalHeight := l.PrimaryRowHeight() * technicalLines
	contextHeight := l.SecondaryRowHeight() * contextLines
	l.TotalHeight = technicalHeight + contextHeight + l.SeparatorThickness + 2*l.SeparatorPadding

	l.StartY = floorDiv(height-l.TotalHeight, 2)
	l.SeparatorY = l.StartY + technicalHeight + l.SeparatorPadding
	l.ContextY = l.SeparatorY + l.SeparatorThickness + l.SeparatorPadding
	return l
}

// PrimaryRowHeight is the vertical advance of one technical line.
func (l Layout) PrimaryRowHeight() int {
	return l.FontSize + l.LineSpacing
}

// SecondaryRowHeight is the vertical advance of one context line.
func (l Layout) SecondaryRowHeight() int {
	return l.SecondaryFontSize + l.SecondaryLineSpacing
}

// BaseBlur is the blur sigma applied to the dimmed photo.
func (l Layout) BaseBlur() float64 {
	return float64(min(l.Width, l.Height)) * baseBlurRatio
}

// ShadowBlur is the blur sigma applied to the overlay's shadow.
func (l Layout) ShadowBlur() float64 {
	return float64(min(l.Width, l.Height)) * shadowBlurRatio
}

// floorDiv divides rounding toward negative infinity, so overflowing
// overlays start above the frame by the same amount they end below it.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
