package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// =============================================================================
// Overlay Renderer
// =============================================================================

// brightness is the factor the photo is dimmed by before the overlay is drawn.
const brightness = 0.7

// separatorColor is white at 96/255 opacity.
var separatorColor = color.NRGBA{R: 255, G: 255, B: 255, A: 96}

// Renderer draws overlays using a font and icon set loaded once per run.
type Renderer struct {
	font  *opentype.Font
	icons map[IconKey]image.Image
}

// NewRenderer loads the assets. Any missing or unreadable asset is an error;
// the caller should treat it as fatal for the run.
func NewRenderer(assets Assets) (*Renderer, error) {
	f, err := loadFont(assets.FontPath)
	if err != nil {
		return nil, err
	}
	icons, err := loadIcons(assets)
	if err != nil {
		return nil, err
	}
	return &Renderer{font: f, icons: icons}, nil
}

// Render returns a copy of img, dimmed and blurred, with the two blocks drawn
// on top. img should already be upright; the output has the same size.
func (r *Renderer) Render(img image.Image, technical, context Block) (*image.RGBA, error) {
	bounds := img.Bounds()
	rect := image.Rect(0, 0, bounds.Dx(), bounds.Dy())
	l := ComputeLayout(rect.Dx(), rect.Dy(), technical.Len(), context.Len())

	base := imaging.AdjustFunc(img, dim)
	base = imaging.Blur(base, l.BaseBlur())

	primary, err := r.face(l.FontSize)
	if err != nil {
		return nil, err
	}
	defer primary.Close()

	secondary, err := r.face(l.SecondaryFontSize)
	if err != nil {
		return nil, err
	}
	defer secondary.Close()

	overlay := image.NewRGBA(rect)

	y := l.StartY
	for _, line := range technical.Lines {
		r.drawLine(overlay, primary, line, l.MarginX, y, l.TextX, l.IconSize, l.PrimaryRowHeight())
		y += l.PrimaryRowHeight()
	}

	drawSeparator(overlay, l)

	y = l.ContextY
	for _, line := range context.Lines {
		r.drawLine(overlay, secondary, line, l.MarginX, y, l.SecondaryTextX, l.SecondaryIconSize, l.SecondaryRowHeight())
		y += l.SecondaryRowHeight()
	}

	shadow := imaging.AdjustFunc(overlay, blacken)
	shadow = imaging.Blur(shadow, l.ShadowBlur())

	out := image.NewRGBA(rect)
	draw.Draw(out, rect, image.Black, image.Point{}, draw.Src)
	draw.Draw(out, rect, base, image.Point{}, draw.Over)
	draw.Draw(out, rect, shadow, image.Point{}, draw.Over)
	draw.Draw(out, rect, overlay, image.Point{}, draw.Over)
	return out, nil
}

// face returns a face whose em size is size pixels.
func (r *Renderer) face(size int) (font.Face, error) {
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    float64(max(size, 1)),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// drawLine draws one row: the icon at marginX, vertically centred in the row,
// then the text at textX with its top at y.
func (r *Renderer) drawLine(dst *image.RGBA, face font.Face, line Line, marginX, y, textX, iconSize, rowHeight int) {
	if icon := r.whiteIcon(line.Icon, iconSize); icon != nil {
		iconY := y + floorDiv(rowHeight-iconSize, 2)
		at := image.Rect(marginX, iconY, marginX+iconSize, iconY+iconSize)
		draw.Draw(dst, at, icon, image.Point{}, draw.Over)
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(textX, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(line.Text)
}

// whiteIcon scales the icon to size and replaces its colour with white,
// keeping only its alpha channel.
func (r *Renderer) whiteIcon(key IconKey, size int) *image.NRGBA {
	src, ok := r.icons[key]
	if !ok || size <= 0 {
		return nil
	}
	scaled := imaging.Resize(src, size, size, imaging.Lanczos)
	return imaging.AdjustFunc(scaled, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: 255, G: 255, B: 255, A: c.A}
	})
}

// drawSeparator draws the rule centred on SeparatorY.
func drawSeparator(dst *image.RGBA, l Layout) {
	thickness := max(l.SeparatorThickness, 1)
	top := l.SeparatorY - thickness/2
	at := image.Rect(l.MarginX, top, l.Width-l.MarginX, top+thickness)
	draw.Draw(dst, at, image.NewUniform(separatorColor), image.Point{}, draw.Src)
}

func dim(c color.NRGBA) color.NRGBA {
	scale := func(v uint8) uint8 {
		return uint8(float64(v)*brightness + 0.5)
	}
	return color.NRGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
}

func blacken(c color.NRGBA) color.NRGBA {
	return color.NRGBA{A: c.A}
}
