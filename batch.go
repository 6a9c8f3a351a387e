package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

// =============================================================================
// Supported File Types
// =============================================================================

// photoExts lists the extensions that can be both decoded and re-encoded
// under the same name.
var photoExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

// isPhotoFile reports whether ext names a supported photo format.
func isPhotoFile(ext string) bool {
	return photoExts[strings.ToLower(ext)]
}

// jpegQuality is the encoder quality for JPEG output.
const jpegQuality = 95

// =============================================================================
// File Discovery
// =============================================================================

// expandPatterns resolves glob patterns into a list of files, in pattern
// order. Patterns matching nothing contribute nothing. Malformed patterns
// are logged and skipped. A file matched twice is listed once.
func expandPatterns(patterns []string, log zerolog.Logger) []string {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			log.Warn().Str("pattern", pattern).Err(err).Msg("skipping malformed pattern")
			continue
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	return files
}

// =============================================================================
// Batch Driver
// =============================================================================

// Summary counts the outcome of a batch.
type Summary struct {
	Processed int // outputs written, or previewed in a dry run
	Failed    int // files that raised an error
	Skipped   int // directories and unsupported formats
}

// Driver runs the read, format, render, write pipeline over a batch of files.
type Driver struct {
	OutputDir string
	Options   Options
	DryRun    bool

	Formatter Formatter
	Renderer  *Renderer // unused in a dry run

	Log zerolog.Logger
	Out io.Writer // receives one confirmation line per file
}

// ErrNoRenderer is returned by Run when images must be drawn but the driver
// has no Renderer.
var ErrNoRenderer = errors.New("renderer required unless dry run")

// Run processes every file matched by patterns. A failure in one file is
// logged and counted and does not stop the batch. The returned error is
// reserved for problems that affect every file.
func (d *Driver) Run(patterns []string) (Summary, error) {
	var sum Summary

	if !d.DryRun {
		if d.Renderer == nil {
			return sum, ErrNoRenderer
		}
		if err := os.MkdirAll(d.OutputDir, 0755); err != nil {
			return sum, fmt.Errorf("create output directory: %w", err)
		}
	}

	files := expandPatterns(patterns, d.Log)
	if len(files) == 0 {
		d.Log.Info().Strs("patterns", patterns).Msg("no files matched")
		return sum, nil
	}
	d.Log.Debug().Int("files", len(files)).Msg("expanded input patterns")

	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			d.Log.Error().Str("path", path).Err(err).Msg("stat failed")
			sum.Failed++
			continue
		}
		if info.IsDir() {
			d.Log.Debug().Str("path", path).Msg("skipping directory")
			sum.Skipped++
			continue
		}
		if !isPhotoFile(filepath.Ext(path)) {
			d.Log.Warn().Str("path", path).Msg("skipping unsupported file type")
			sum.Skipped++
			continue
		}

		dest, err := d.processFile(path)
		if err != nil {
			d.Log.Error().Str("path", path).Err(err).Msg("failed to add overlay")
			sum.Failed++
			continue
		}
		sum.Processed++

		if d.DryRun {
			fmt.Fprintf(d.Out, "Would save image with EXIF overlay to %s\n", dest)
		} else {
			fmt.Fprintf(d.Out, "Image with EXIF overlay saved to %s\n", dest)
		}
	}

	d.Log.Info().
		Int("processed", sum.Processed).
		Int("failed", sum.Failed).
		Int("skipped", sum.Skipped).
		Msg("batch complete")
	return sum, nil
}

// outputPath returns where the overlay for src is written.
func (d *Driver) outputPath(src string) string {
	return filepath.Join(d.OutputDir, filepath.Base(src))
}

// processFile handles a single image and returns the written path.
func (d *Driver) processFile(path string) (string, error) {
	md, err := ReadMetadata(path)
	if err != nil {
		return "", err
	}
	d.Log.Debug().
		Str("path", path).
		Str("camera", joinMakeModel(md.CameraMake, md.CameraModel)).
		Str("orientation", md.Orientation.String()).
		Msg("read metadata")

	technical, context, err := d.Formatter.Format(md, d.Options)
	if err != nil {
		return "", fmt.Errorf("format metadata: %w", err)
	}

	dest := d.outputPath(path)
	if d.DryRun {
		fmt.Fprintf(d.Out, "%s\n%s\n---\n%s\n\n", path, technical.Text(), context.Text())
		return dest, nil
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	out, err := d.Renderer.Render(img, technical, context)
	if err != nil {
		return "", fmt.Errorf("render overlay: %w", err)
	}

	if err := imaging.Save(out, dest, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("save %s: %w", dest, err)
	}
	return dest, nil
}
