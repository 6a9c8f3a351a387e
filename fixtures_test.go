package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

// stubUsers is a CurrentUserResolver with fixed answers.
type stubUsers struct {
	full  string
	err   error
	login string
}

func (s stubUsers) FullName() (string, error) { return s.full, s.err }
func (s stubUsers) LoginName() string         { return s.login }

var errNoUser = errors.New("no such user")

// ifdEntry is one raw TIFF directory entry.
type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func asciiTag(tag uint16, s string) ifdEntry {
	b := append([]byte(s), 0)
	return ifdEntry{tag: tag, typ: 2, count: uint32(len(b)), data: b}
}

func shortTag(tag uint16, v uint16) ifdEntry {
	return ifdEntry{tag: tag, typ: 3, count: 1, data: binary.LittleEndian.AppendUint16(nil, v)}
}

func longTag(tag uint16, v uint32) ifdEntry {
	return ifdEntry{tag: tag, typ: 4, count: 1, data: binary.LittleEndian.AppendUint32(nil, v)}
}

func rationalTag(tag uint16, num, den uint32) ifdEntry {
	b := binary.LittleEndian.AppendUint32(nil, num)
	b = binary.LittleEndian.AppendUint32(b, den)
	return ifdEntry{tag: tag, typ: 5, count: 1, data: b}
}

// encodeIFD lays out a directory at offset, with values that do not fit in
// the entry stored right after it.
func encodeIFD(offset uint32, entries []ifdEntry) []byte {
	le := binary.LittleEndian
	dataOff := offset + uint32(2+12*len(entries)+4)

	var dir, ext []byte
	dir = le.AppendUint16(dir, uint16(len(entries)))
	for _, e := range entries {
		dir = le.AppendUint16(dir, e.tag)
		dir = le.AppendUint16(dir, e.typ)
		dir = le.AppendUint32(dir, e.count)
		if len(e.data) <= 4 {
			v := make([]byte, 4)
			copy(v, e.data)
			dir = append(dir, v...)
			continue
		}
		dir = le.AppendUint32(dir, dataOff+uint32(len(ext)))
		ext = append(ext, e.data...)
		if len(ext)%2 == 1 {
			ext = append(ext, 0)
		}
	}
	dir = le.AppendUint32(dir, 0)
	return append(dir, ext...)
}

// buildTIFF returns a little-endian TIFF stream with IFD0 and an Exif
// sub-IFD linked from it.
func buildTIFF(ifd0, exifIFD []ifdEntry) []byte {
	const headerSize = 8
	entries := append(append([]ifdEntry{}, ifd0...), longTag(0x8769, 0))
	size := len(encodeIFD(headerSize, entries))
	entries[len(entries)-1] = longTag(0x8769, uint32(headerSize+size))

	out := []byte{'I', 'I', 42, 0, headerSize, 0, 0, 0}
	out = append(out, encodeIFD(headerSize, entries)...)
	return append(out, encodeIFD(uint32(headerSize+size), exifIFD)...)
}

// fullTIFF carries every field the overlay reads. extra entries are
// appended to IFD0 and must keep its tags ascending.
func fullTIFF(extra ...ifdEntry) []byte {
	ifd0 := []ifdEntry{
		asciiTag(0x010F, "Sony"),
		asciiTag(0x0110, "Sony ILCE-6000"),
	}
	return buildTIFF(
		append(ifd0, extra...),
		[]ifdEntry{
			rationalTag(0x829A, 1, 125),
			rationalTag(0x829D, 28, 10),
			shortTag(0x8827, 400),
			asciiTag(0x9003, "2023:07:04 14:05:00"),
			shortTag(0x9209, 0x19),
			rationalTag(0x920A, 350, 10),
			shortTag(0xA405, 52),
			asciiTag(0xA433, "Sony"),
			asciiTag(0xA434, "E 35mm F1.8 OSS"),
		},
	)
}

// exifPayload wraps a TIFF stream in the APP1 EXIF intro.
func exifPayload(tiff []byte) []byte {
	return append([]byte("Exif\x00\x00"), tiff...)
}

// xmpPayload is a minimal APP1 XMP packet.
func xmpPayload() []byte {
	return []byte("http://ns.adobe.com/xap/1.0/\x00<x:xmpmeta xmlns:x=\"adobe:ns:meta/\"/>")
}

// solidImage returns a w x h image filled with c.
func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// encodeJPEG encodes img and, when tiff is non-nil, splices an EXIF APP1
// segment in right after the SOI marker.
func encodeJPEG(t *testing.T, img image.Image, tiff []byte) []byte {
	t.Helper()
	if tiff == nil {
		return encodeJPEGWithAPP1(t, img)
	}
	return encodeJPEGWithAPP1(t, img, exifPayload(tiff))
}

// encodeJPEGWithAPP1 encodes img with one APP1 segment per payload, in
// order, right after the SOI marker.
func encodeJPEGWithAPP1(t *testing.T, img image.Image, payloads ...[]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	data := buf.Bytes()

	out := append([]byte{}, data[:2]...)
	for _, payload := range payloads {
		length := len(payload) + 2
		if length > 0xFFFF {
			t.Fatalf("app1 payload too large: %d", length)
		}
		out = append(out, 0xFF, 0xE1, byte(length>>8), byte(length))
		out = append(out, payload...)
	}
	return append(out, data[2:]...)
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// writeAssets creates a font and a full icon set under dir.
func writeAssets(t *testing.T, dir string) Assets {
	t.Helper()

	assets := Assets{
		FontPath: filepath.Join(dir, "font.ttf"),
		IconsDir: filepath.Join(dir, "icons"),
	}
	writeFile(t, assets.FontPath, goregular.TTF)

	if err := os.MkdirAll(assets.IconsDir, 0755); err != nil {
		t.Fatalf("mkdir icons: %v", err)
	}
	for _, key := range allIcons {
		var buf bytes.Buffer
		if err := png.Encode(&buf, solidImage(16, 16, color.NRGBA{R: 10, G: 20, B: 30, A: 255})); err != nil {
			t.Fatalf("encode icon: %v", err)
		}
		writeFile(t, assets.IconPath(key), buf.Bytes())
	}
	return assets
}
