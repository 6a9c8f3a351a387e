package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// =============================================================================
// Raw Metadata Fields
// =============================================================================

// FieldKind tags which variant a Field holds.
type FieldKind int

const (
	Absent FieldKind = iota
	Rational
	Integer
	Text
)

// Field is a single raw metadata value as it was found in the file.
// Exactly one of the value members is meaningful, selected by Kind.
type Field struct {
	Kind FieldKind
	Num  int64 // Rational numerator
	Den  int64 // Rational denominator, never zero
	Int  int64
	Str  string
}

// AbsentField is the zero Field. It renders as "-".
var AbsentField = Field{}

// RationalField returns a rational field reduced to lowest terms.
// A zero denominator yields an absent field.
func RationalField(num, den int64) Field {
	if den == 0 {
		return AbsentField
	}
	if den < 0 {
		num, den = -num, -den
	}
	if g := gcd(abs64(num), den); g > 1 {
		num, den = num/g, den/g
	}
	return Field{Kind: Rational, Num: num, Den: den}
}

// IntegerField returns an integer field.
func IntegerField(n int64) Field {
	return Field{Kind: Integer, Int: n}
}

// TextField returns a text field. Empty strings are treated as absent.
func TextField(s string) Field {
	s = strings.TrimSpace(s)
	if s == "" {
		return AbsentField
	}
	return Field{Kind: Text, Str: s}
}

// Present reports whether the field carries a value.
func (f Field) Present() bool {
	return f.Kind != Absent
}

// Float returns the numeric value of a rational or integer field.
func (f Field) Float() float64 {
	switch f.Kind {
	case Rational:
		return float64(f.Num) / float64(f.Den)
	case Integer:
		return float64(f.Int)
	}
	return 0
}

// String returns the raw textual form of the field. Rationals with a
// denominator of one print as a bare integer.
func (f Field) String() string {
	switch f.Kind {
	case Rational:
		if f.Den == 1 {
			return strconv.FormatInt(f.Num, 10)
		}
		return strconv.FormatInt(f.Num, 10) + "/" + strconv.FormatInt(f.Den, 10)
	case Integer:
		return strconv.FormatInt(f.Int, 10)
	case Text:
		return f.Str
	}
	return "-"
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// =============================================================================
// Metadata
// =============================================================================

// Metadata holds the fixed set of fields the overlay is built from.
type Metadata struct {
	FNumber         Field
	ExposureTime    Field
	ISO             Field
	FocalLength     Field
	FocalLength35mm Field
	Flash           Field
	DateTime        Field
	CameraMake      Field
	CameraModel     Field
	LensMake        Field
	LensModel       Field

	// Orientation is informational; rotation is applied by the image loader.
	Orientation Field
}

// tagSource is the lookup surface of a decoded EXIF block.
type tagSource interface {
	Get(exif.FieldName) (*tiff.Tag, error)
}

// ReadMetadata decodes the EXIF block of the file at path.
// A file without any EXIF segment yields all-absent metadata and no error.
// Any other decode failure is returned.
func ReadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read %s: %w", path, err)
	}
	return decodeMetadata(data)
}

func decodeMetadata(data []byte) (Metadata, error) {
	r := bytes.NewReader(data)
	if segment, isJPEG := exifSegment(data); isJPEG {
		if segment == nil {
			return Metadata{}, nil
		}
		r = bytes.NewReader(segment)
	}

	x, err := exif.Decode(r)
	if err != nil {
		if x == nil && (errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)) {
			return Metadata{}, nil
		}
		if x == nil || exif.IsCriticalError(err) {
			return Metadata{}, fmt.Errorf("decode exif: %w", err)
		}
	}

	return metadataFrom(x), nil
}

// =============================================================================
// JPEG Segments
// =============================================================================

const (
	jpegSOI  uint16 = 0xFFD8
	jpegEOI  uint16 = 0xFFD9
	jpegSOS  uint16 = 0xFFDA
	jpegAPP1 uint16 = 0xFFE1
)

var exifIntro = []byte("Exif\x00\x00")

// exifSegment walks the marker segments in front of the JPEG scan data and
// returns the body of the first APP1 segment that holds EXIF, intro
// included. Other APP1 payloads such as XMP are passed over. isJPEG is
// false when data does not start with SOI.
func exifSegment(data []byte) (body []byte, isJPEG bool) {
	if len(data) < 2 || binary.BigEndian.Uint16(data) != jpegSOI {
		return nil, false
	}

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return nil, true
		}
		marker := binary.BigEndian.Uint16(data[pos:])
		switch {
		case marker == 0xFFFF: // fill byte
			pos++
			continue
		case marker == jpegSOS || marker == jpegEOI:
			return nil, true
		case marker == 0xFF01 || (marker >= 0xFFD0 && marker <= 0xFFD7):
			pos += 2
			continue
		}

		length := int(binary.BigEndian.Uint16(data[pos+2:]))
		end := pos + 2 + length
		if length < 2 || end > len(data) {
			return nil, true
		}
		if seg := data[pos+4 : end]; marker == jpegAPP1 && bytes.HasPrefix(seg, exifIntro) {
			return seg, true
		}
		pos = end
	}
	return nil, true
}

func metadataFrom(src tagSource) Metadata {
	return Metadata{
		FNumber:         lookup(src, exif.FNumber),
		ExposureTime:    lookup(src, exif.ExposureTime),
		ISO:             lookup(src, exif.ISOSpeedRatings),
		FocalLength:     lookup(src, exif.FocalLength),
		FocalLength35mm: lookup(src, exif.FocalLengthIn35mmFilm),
		Flash:           lookup(src, exif.Flash),
		DateTime:        lookup(src, exif.DateTimeOriginal),
		CameraMake:      lookup(src, exif.Make),
		CameraModel:     lookup(src, exif.Model),
		LensMake:        lookup(src, exif.LensMake),
		LensModel:       lookup(src, exif.LensModel),
		Orientation:     lookup(src, exif.Orientation),
	}
}

// lookup converts one tag into a Field, choosing the variant from the tag's
// storage format. Missing or unreadable tags are absent.
func lookup(src tagSource, name exif.FieldName) Field {
	tag, err := src.Get(name)
	if err != nil || tag == nil || tag.Count == 0 {
		return AbsentField
	}

	switch tag.Format() {
	case tiff.RatVal:
		num, den, err := tag.Rat2(0)
		if err != nil {
			return AbsentField
		}
		return RationalField(num, den)
	case tiff.IntVal:
		n, err := tag.Int64(0)
		if err != nil {
			return AbsentField
		}
		return IntegerField(n)
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return AbsentField
		}
		return TextField(s)
	default:
		return TextField(strings.Trim(tag.String(), `"`))
	}
}
