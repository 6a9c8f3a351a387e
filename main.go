// EXIF Overlay - Annotate photos with their camera settings
//
// This tool reads the EXIF metadata of one or more photos and draws the
// capture settings onto a darkened, blurred copy of each image. The result
// is written to an output directory under the original file name.
//
// Overlay layout:
//
//	 ◎  ƒ/2.8                 <- technical block (large type)
//	 ◷  1/125 sec
//	 ▣  ISO 100
//	 ⌀  35mm (52mm FF)
//	 ϟ  Flash off
//	────────────────────      <- separator
//	 ▦  4 July 2023, 2:05 PM  <- context block (small type)
//	 ◫  Sony ILCE-6000
//	 ◯  Sony E 35mm F1.8 OSS
//	 ©  Jane Doe
//
// Usage:
//
//	exif-overlay DSC*.jpg                     # Overlay every match
//	exif-overlay -n DSC*.jpg                  # Preview the text only
//	exif-overlay --no-flash --iso "ISO 64" a.jpg
//	exif-overlay --output-dir out photos/*.jpg
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
)

// =============================================================================
// Configuration
// =============================================================================

// defaultOutputDir is where overlays are written when --output-dir is unset.
const defaultOutputDir = "images_with_exif_overlay"

// overrideHelp holds the help text for each override flag.
var overrideHelp = map[FieldID]string{
	FieldFStop:        `Override f-stop value (e.g., "ƒ/2.8")`,
	FieldShutterSpeed: `Override shutter speed (e.g., "1/60 sec")`,
	FieldISO:          `Override ISO value (e.g., "ISO 100")`,
	FieldFocalLength:  `Override focal length (e.g., "50mm")`,
	FieldFlash:        `Override flash status (e.g., "Flash auto, fired")`,
	FieldDateTime:     `Override date and time (e.g., "1 January 2006, 3:04 PM")`,
	FieldCamera:       `Override camera (e.g., "Sony a6000")`,
	FieldLens:         `Override lens (e.g., "Pentax Super-Takumar 50mm f/1.4")`,
	FieldAuthor:       `Override author name (e.g., "John Doe")`,
}

// suppressFlags maps each field to the flag that hides it.
var suppressFlags = map[FieldID]struct {
	name string
	help string
}{
	FieldFStop:        {"no-f-stop", "Hide f-stop value"},
	FieldShutterSpeed: {"no-shutter-speed", "Hide shutter speed"},
	FieldISO:          {"no-iso", "Hide ISO value"},
	FieldFocalLength:  {"no-focal-length", "Hide focal length"},
	FieldFlash:        {"no-flash", "Hide flash status"},
	FieldDateTime:     {"no-date-time", "Hide date and time"},
	FieldCamera:       {"no-camera", "Hide camera"},
	FieldLens:         {"no-lens", "Hide lens"},
	FieldAuthor:       {"no-copyright", "Hide copyright notice"},
}

// allFields lists every display field in overlay order.
func allFields() []FieldID {
	return append(append([]FieldID{}, technicalFields...), contextFields...)
}

// =============================================================================
// Logging
// =============================================================================

// newLogger returns a console logger on w, at debug level when verbose.
func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// =============================================================================
// Main Entry Point
// =============================================================================

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, processes the batch and returns the process exit code:
// 0 on success, 1 on any failure, 2 on a usage error.
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("exif-overlay", flag.ContinueOnError)
	flags.SetOutput(stderr)

	defaults := DefaultAssets()
	outputDir := flags.String("output-dir", defaultOutputDir, "Path to the output directory")
	fontPath := flags.String("font", defaults.FontPath, "Path to the TrueType/OpenType font")
	iconsDir := flags.String("icons-dir", defaults.IconsDir, "Directory holding the overlay icons")
	dryRun := flags.BoolP("dry-run", "n", false, "Print the overlay text without writing images")
	verbose := flags.BoolP("verbose", "v", false, "Enable debug logging")

	overrides := make(map[FieldID]*string)
	suppress := make(map[FieldID]*bool)
	for _, id := range allFields() {
		overrides[id] = flags.String(id.String(), "", overrideHelp[id])
	}
	for _, id := range allFields() {
		s := suppressFlags[id]
		suppress[id] = flags.Bool(s.name, false, s.help)
	}

	flags.Usage = func() {
		fmt.Fprintf(stderr, "EXIF Overlay - Add EXIF data overlay to multiple images\n\n")
		fmt.Fprintf(stderr, "Usage:\n")
		fmt.Fprintf(stderr, "  exif-overlay [options] <image>...\n\n")
		fmt.Fprintf(stderr, "Input images support glob patterns like DSC*.jpg.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() == 0 {
		fmt.Fprintln(stderr, "Error: at least one input image is required")
		flags.Usage()
		return 2
	}

	log := newLogger(stderr, *verbose)

	opts := Options{
		Overrides: make(map[FieldID]string),
		Suppress:  make(map[FieldID]bool),
	}
	for _, id := range allFields() {
		if flags.Changed(id.String()) {
			opts.Overrides[id] = *overrides[id]
		}
		if *suppress[id] {
			opts.Suppress[id] = true
		}
	}

	driver := &Driver{
		OutputDir: *outputDir,
		Options:   opts,
		DryRun:    *dryRun,
		Formatter: Formatter{Users: NewOSUserResolver()},
		Log:       log,
		Out:       stdout,
	}

	// Assets are only needed when images are actually drawn
	if !*dryRun {
		renderer, err := NewRenderer(Assets{FontPath: *fontPath, IconsDir: *iconsDir})
		if err != nil {
			log.Error().Err(err).Msg("loading assets")
			return 1
		}
		driver.Renderer = renderer
	}

	sum, err := driver.Run(flags.Args())
	if err != nil {
		log.Error().Err(err).Msg("batch aborted")
		return 1
	}
	if sum.Failed > 0 {
		return 1
	}
	return 0
}
