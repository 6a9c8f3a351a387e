package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font/opentype"
)

// =============================================================================
// Assets
// =============================================================================

// Default asset locations, relative to the working directory.
const (
	defaultFontPath = "fonts/NunitoSans-Light.ttf"
	defaultIconsDir = "icons"
)

// Assets locates the font and icon files the renderer draws with.
type Assets struct {
	FontPath string // TrueType or OpenType font file
	IconsDir string // directory holding one <key>.png per IconKey
}

// DefaultAssets returns the asset locations used when no flags are given.
func DefaultAssets() Assets {
	return Assets{FontPath: defaultFontPath, IconsDir: defaultIconsDir}
}

// IconPath returns the file an icon is loaded from.
func (a Assets) IconPath(key IconKey) string {
	return filepath.Join(a.IconsDir, string(key)+".png")
}

// loadFont reads and parses the font file.
func loadFont(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}

// loadIcons decodes every icon in allIcons. A single missing icon fails the
// whole load, since every image needs the full set.
func loadIcons(a Assets) (map[IconKey]image.Image, error) {
	icons := make(map[IconKey]image.Image, len(allIcons))
	for _, key := range allIcons {
		img, err := imaging.Open(a.IconPath(key))
		if err != nil {
			return nil, fmt.Errorf("load icon %s: %w", key, err)
		}
		icons[key] = img
	}
	return icons, nil
}
