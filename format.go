package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// Display Fields
// =============================================================================

// FieldID names one line of the overlay. The declaration order is the order
// lines appear in their block.
type FieldID int

const (
	FieldFStop FieldID = iota
	FieldShutterSpeed
	FieldISO
	FieldFocalLength
	FieldFlash
	FieldDateTime
	FieldCamera
	FieldLens
	FieldAuthor
)

// technicalFields make up the upper, large-type block.
var technicalFields = []FieldID{FieldFStop, FieldShutterSpeed, FieldISO, FieldFocalLength, FieldFlash}

// contextFields make up the lower, small-type block.
var contextFields = []FieldID{FieldDateTime, FieldCamera, FieldLens, FieldAuthor}

var fieldNames = map[FieldID]string{
	FieldFStop:        "f-stop",
	FieldShutterSpeed: "shutter-speed",
	FieldISO:          "iso",
	FieldFocalLength:  "focal-length",
	FieldFlash:        "flash",
	FieldDateTime:     "date-time",
	FieldCamera:       "camera",
	FieldLens:         "lens",
	FieldAuthor:       "author",
}

func (id FieldID) String() string {
	if name, ok := fieldNames[id]; ok {
		return name
	}
	return "field(" + strconv.Itoa(int(id)) + ")"
}

// IconKey names an icon asset.
type IconKey string

const (
	IconAperture     IconKey = "aperture"
	IconShutterSpeed IconKey = "shutter_speed"
	IconISO          IconKey = "iso"
	IconFocalLength  IconKey = "focal_length"
	IconFlashOff     IconKey = "flash_off"
	IconFlashOn      IconKey = "flash_on"
	IconFlashAuto    IconKey = "flash_auto"
	IconDateTime     IconKey = "date_time"
	IconCamera       IconKey = "camera"
	IconLens         IconKey = "lens"
	IconCopyright    IconKey = "copyright"
)

// allIcons lists every icon the renderer needs.
var allIcons = []IconKey{
	IconAperture, IconShutterSpeed, IconISO, IconFocalLength,
	IconFlashOff, IconFlashOn, IconFlashAuto,
	IconDateTime, IconCamera, IconLens, IconCopyright,
}

// iconFor picks the icon for a rendered line. The flash icon follows the
// text, so an overridden flash line gets a matching icon.
func iconFor(id FieldID, text string) IconKey {
	switch id {
	case FieldFStop:
		return IconAperture
	case FieldShutterSpeed:
		return IconShutterSpeed
	case FieldISO:
		return IconISO
	case FieldFocalLength:
		return IconFocalLength
	case FieldFlash:
		switch {
		case strings.HasPrefix(text, "Flash auto"):
			return IconFlashAuto
		case strings.HasPrefix(text, "Flash off"):
			return IconFlashOff
		default:
			return IconFlashOn
		}
	case FieldDateTime:
		return IconDateTime
	case FieldCamera:
		return IconCamera
	case FieldLens:
		return IconLens
	default:
		return IconCopyright
	}
}

// Line is one rendered overlay row.
type Line struct {
	Field FieldID
	Text  string
	Icon  IconKey
}

// Block is an ordered section of the overlay.
type Block struct {
	Lines []Line
}

// Len returns the number of lines in the block.
func (b Block) Len() int {
	return len(b.Lines)
}

// Text returns the block's lines joined by newlines.
func (b Block) Text() string {
	texts := make([]string, len(b.Lines))
	for i, l := range b.Lines {
		texts[i] = l.Text
	}
	return strings.Join(texts, "\n")
}

// =============================================================================
// Formatter
// =============================================================================

// ErrInvalidDate is returned when a capture time is not in EXIF layout.
var ErrInvalidDate = errors.New("invalid capture date")

// exifTimeLayout is the EXIF DateTimeOriginal layout.
const exifTimeLayout = "2006:01:02 15:04:05"

// displayTimeLayout renders "4 July 2023, 2:05 PM".
const displayTimeLayout = "2 January 2006, 3:04 PM"

// Options carries per-run caller choices.
type Options struct {
	// Overrides replace the computed text of a field. Presence of a key is
	// what matters; an empty string is a valid override.
	Overrides map[FieldID]string
	// Suppress drops a field's line and icon.
	Suppress map[FieldID]bool
}

// Formatter turns raw metadata into the two overlay blocks.
type Formatter struct {
	Users CurrentUserResolver
}

// Format builds the technical and context blocks for md.
func (f Formatter) Format(md Metadata, opts Options) (technical, context Block, err error) {
	technical, err = f.block(md, opts, technicalFields)
	if err != nil {
		return Block{}, Block{}, err
	}
	context, err = f.block(md, opts, contextFields)
	if err != nil {
		return Block{}, Block{}, err
	}
	return technical, context, nil
}

func (f Formatter) block(md Metadata, opts Options, ids []FieldID) (Block, error) {
	var b Block
	for _, id := range ids {
		if opts.Suppress[id] {
			continue
		}
		text, ok := opts.Overrides[id]
		if !ok {
			var err error
			text, err = f.fieldText(md, id)
			if err != nil {
				return Block{}, fmt.Errorf("%s: %w", id, err)
			}
		}
		b.Lines = append(b.Lines, Line{Field: id, Text: text, Icon: iconFor(id, text)})
	}
	return b, nil
}

func (f Formatter) fieldText(md Metadata, id FieldID) (string, error) {
	switch id {
	case FieldFStop:
		return formatAperture(md.FNumber), nil
	case FieldShutterSpeed:
		return formatShutterSpeed(md.ExposureTime), nil
	case FieldISO:
		return formatISO(md.ISO), nil
	case FieldFocalLength:
		return formatFocalLength(md.FocalLength, md.FocalLength35mm), nil
	case FieldFlash:
		return formatFlash(md.Flash), nil
	case FieldDateTime:
		return formatDateTime(md.DateTime)
	case FieldCamera:
		return joinMakeModel(md.CameraMake, md.CameraModel), nil
	case FieldLens:
		return joinMakeModel(md.LensMake, md.LensModel), nil
	case FieldAuthor:
		if f.Users == nil {
			return "-", nil
		}
		return ResolveAuthor(f.Users), nil
	}
	return "", fmt.Errorf("unknown field %d", int(id))
}

// formatDecimal prints v with at most two decimals and no trailing zeros.
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func formatAperture(f Field) string {
	switch f.Kind {
	case Rational, Integer:
		return "ƒ/" + formatDecimal(f.Float())
	case Text:
		if strings.ContainsAny(f.Str, "fFƒ") {
			return f.Str
		}
		return "ƒ/" + f.Str
	}
	return "-"
}

// formatShutterSpeed renders exposure time. Fractions not already in 1/N
// form are normalised to 1/N; exposures of a second or longer print as
// decimal seconds.
func formatShutterSpeed(f Field) string {
	switch f.Kind {
	case Rational:
		if f.Den == 1 || f.Num == 1 || f.Num <= 0 {
			return f.String() + " sec"
		}
		if f.Num > f.Den {
			return formatDecimal(f.Float()) + " sec"
		}
		return fmt.Sprintf("1/%d sec", int64(math.RoundToEven(float64(f.Den)/float64(f.Num))))
	case Integer:
		return f.String() + " sec"
	case Text:
		if num, den, ok := parseFraction(f.Str); ok && !strings.HasPrefix(f.Str, "1/") {
			return formatShutterSpeed(RationalField(num, den))
		}
		return f.Str + " sec"
	}
	return "-"
}

func parseFraction(s string) (num, den int64, ok bool) {
	a, b, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found {
		return 0, 0, false
	}
	num, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	den, err = strconv.ParseInt(strings.TrimSpace(b), 10, 64)
	if err != nil || den == 0 {
		return 0, 0, false
	}
	return num, den, true
}

func formatISO(f Field) string {
	if !f.Present() {
		return "-"
	}
	return "ISO " + f.String()
}

func formatFocalLength(f, ff Field) string {
	switch f.Kind {
	case Rational, Integer:
		text := formatDecimal(f.Float()) + "mm"
		if ff.Present() {
			text += fmt.Sprintf(" (%smm FF)", ff.String())
		}
		return text
	case Text:
		if strings.Contains(f.Str, "mm") {
			return f.Str
		}
		return f.Str + "mm"
	}
	return "-"
}

func formatFlash(f Field) string {
	switch f.Kind {
	case Integer:
		return interpretFlash(f.Int)
	case Rational, Text:
		return f.String()
	}
	return "-"
}

// interpretFlash decodes the EXIF Flash bit field: bits 3-4 hold the mode and
// bit 0 records whether the flash fired.
func interpretFlash(code int64) string {
	var mode string
	switch (code & 0b00011000) >> 3 {
	case 0b00, 0b10:
		return "Flash off"
	case 0b01:
		mode = "on"
	case 0b11:
		mode = "auto"
	default:
		return "Flash unknown"
	}

	if code&0b00000001 == 1 {
		return fmt.Sprintf("Flash %s, fired", mode)
	}
	return fmt.Sprintf("Flash %s, did not fire", mode)
}

func formatDateTime(f Field) (string, error) {
	if !f.Present() {
		return "-", nil
	}
	t, err := time.Parse(exifTimeLayout, f.String())
	if err != nil {
		return "", fmt.Errorf("%w %q", ErrInvalidDate, f.String())
	}
	return t.Format(displayTimeLayout), nil
}

// joinMakeModel prefixes the model with the brand unless the model already
// names it.
func joinMakeModel(brand, model Field) string {
	switch {
	case !model.Present() && !brand.Present():
		return "-"
	case !model.Present():
		return brand.String()
	case !brand.Present():
		return model.String()
	}
	if strings.Contains(strings.ToLower(model.String()), strings.ToLower(brand.String())) {
		return model.String()
	}
	return brand.String() + " " + model.String()
}
