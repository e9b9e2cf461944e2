// Command gifwall decodes animated GIFs frame by frame.
//
// Usage:
//
//	gifwall extract [-o dir] <file.gif>   Write every composited frame as PNG
//	gifwall play [options] -o out.png <file.gif>
//	                                      Loop the animation into one PNG, paced by frame delays
//	gifwall info <file.gif>               Display header and per-frame metadata
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/fumiama/imgsz"

	"github.com/illusionman1212/gifwall"
	"github.com/illusionman1212/gifwall/playback"
	"github.com/illusionman1212/gifwall/render"
)

var (
	out = color.Output

	label = color.New(color.FgCyan).SprintFunc()
	warn  = color.New(color.FgYellow).SprintFunc()
	fail  = color.New(color.FgRed, color.Bold).SprintFunc()
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "extract":
		err = runExtract(os.Args[2:])
	case "play":
		err = runPlay(ctx, os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "gifwall: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(color.Error, "%s %v\n", fail("gifwall:"), err)
		stop()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  gifwall extract [-o dir] <file.gif>              Write every frame to <dir>/<name>-N.png
  gifwall play [options] -o out.png <file.gif>     Loop the animation into out.png
  gifwall info <file.gif>                          Display GIF metadata

Run "gifwall <command> -h" for command-specific options.
`)
}

// openDecoder opens path and reads its header.
func openDecoder(path string, opts ...gifwall.Option) (*gifwall.Decoder, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	d, err := gifwall.NewDecoder(f, opts...)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return d, f, nil
}

// --- extract ---

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	dir := fs.String("o", "", "output directory (default: input name without .gif)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("extract: missing input file\nUsage: gifwall extract [-o dir] <file.gif>")
	}
	inputPath := fs.Arg(0)

	d, f, err := openDecoder(inputPath, gifwall.WithLoop(false))
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	if *dir == "" {
		*dir = name
	}
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	fmt.Fprintf(out, "Beginning extraction of gif frames\n\n")
	fmt.Fprintf(out, "%s %s\n", label("GIF version is:"), d.Version())
	fmt.Fprintf(out, "%s %dx%d\n\n", label("GIF canvas is:"), d.Width(), d.Height())

	counter := 1
	for {
		frame, err := d.NextFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			if !gifwall.IsFrameError(err) {
				return fmt.Errorf("extract: %w", err)
			}
			fmt.Fprintf(out, "%s %v\n", warn("WARNING:"), err)
			if frame == nil {
				continue
			}
		}

		fileName := filepath.Join(*dir, fmt.Sprintf("%s-%d.png", name, counter))
		if err := gifwall.WriteToPNG(frame, fileName); err != nil {
			return fmt.Errorf("extract: %w", err)
		}
		counter++
	}

	fmt.Fprintf(out, "Extracted %d frames from gif successfully!\n", counter-1)
	return nil
}

// --- play ---

func runPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	mode := fs.String("mode", "stretch", "display mode: stretch/center/tile")
	filter := fs.String("filter", "bilinear", "stretch filter: bilinear/nearest/lanczos")
	size := fs.String("size", "", "surface size WxH (default: GIF canvas size)")
	workers := fs.Int("workers", render.DefaultWorkers, "concurrent row bands for bilinear stretch")
	maxFrames := fs.Int("n", 0, "stop after this many frames (0=run until interrupted)")
	output := fs.String("o", "", "output PNG, replaced on every frame")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 || *output == "" {
		return fmt.Errorf("play: missing input or -o\nUsage: gifwall play [options] -o out.png <file.gif>")
	}

	m, err := render.ParseMode(*mode)
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}
	flt, err := render.ParseFilter(*filter)
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}

	d, f, err := openDecoder(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}
	defer f.Close()

	w, h := d.Width(), d.Height()
	if *size != "" {
		if w, h, err = parseSize(*size); err != nil {
			return fmt.Errorf("play: %w", err)
		}
	}
	r, err := render.New(render.Options{Width: w, Height: h, Mode: m, Filter: flt, Workers: *workers})
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}

	fmt.Fprintf(out, "%s %s -> %s (%dx%d, %s, %s)\n", label("Playing"), fs.Arg(0), *output, w, h, m, flt)

	var rgba *image.RGBA
	shown := 0
	sink := func(frame *gifwall.Frame) error {
		rgba = frame.ToRGBA(rgba)
		if err := replaceFile(*output, r.Render(rgba)); err != nil {
			return err
		}
		shown++
		if *maxFrames > 0 && shown >= *maxFrames {
			return playback.ErrStop
		}
		return nil
	}

	err = playback.Run(ctx, d, sink, playback.Config{
		OnFrameError: func(err error) {
			fmt.Fprintf(out, "%s %v\n", warn("WARNING:"), err)
		},
	})
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}
	fmt.Fprintf(out, "%s %d frames, %d loops\n", label("Stopped after"), shown, d.Loops())
	return nil
}

// parseSize parses "WxH".
func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q, want WxH", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return w, h, nil
}

// replaceFile writes img to a temporary file next to path and renames it
// over path, so readers never see a half-written PNG.
func replaceFile(path string, img image.Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if err := gifwall.EncodePNG(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// --- info ---

func runInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("info: missing input file\nUsage: gifwall info <file.gif>")
	}
	inputPath := args[0]

	f, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	sz, format, err := imgsz.DecodeSize(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}
	if format != "gif" {
		return fmt.Errorf("info: %w: detected %s", gifwall.ErrNotAGif, format)
	}

	d, f, err := openDecoder(inputPath, gifwall.WithLoop(false))
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}
	defer f.Close()

	hdr := d.Header()
	fmt.Fprintf(out, "%s %s\n", label("File:      "), inputPath)
	fmt.Fprintf(out, "%s GIF%s\n", label("Version:   "), d.Version())
	fmt.Fprintf(out, "%s %d x %d\n", label("Dimensions:"), sz.Width, sz.Height)
	fmt.Fprintf(out, "%s %d\n", label("Background:"), hdr.BackgroundColor)
	fmt.Fprintf(out, "%s %d\n", label("Aspect:    "), hdr.AspectRatio)
	if g := d.Global(); g != nil {
		data, _ := g.MarshalBinary()
		fmt.Fprintf(out, "%s %d entries %s\n", label("Palette:   "), len(g), paletteHex(data))
	} else {
		fmt.Fprintf(out, "%s none\n", label("Palette:   "))
	}

	frames := 0
	for {
		frame, err := d.NextFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			if !gifwall.IsFrameError(err) {
				return fmt.Errorf("info: %w", err)
			}
			fmt.Fprintf(out, "  %s %v\n", warn("WARNING:"), err)
			if frame == nil {
				continue
			}
		}
		desc := frame.Descriptor
		fmt.Fprintf(out, "  %s %d: offset %d,%d size %dx%d interlaced=%v local=%v delay=%v disposal=%s transparent=%v\n",
			label("frame"), frame.Index, desc.Left, desc.Top, desc.Width, desc.Height,
			desc.Interlaced(), frame.LocalPalette, frame.Delay, frame.Disposal, frame.Transparent)
		frames++
	}
	fmt.Fprintf(out, "%s %d\n", label("Frames:    "), frames)
	return nil
}

// paletteHex renders the first few palette entries as hex triplets.
func paletteHex(data []byte) string {
	const show = 8
	var b strings.Builder
	for i := 0; i+3 <= len(data) && i/3 < show; i += 3 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(hex.EncodeToString(data[i : i+3]))
	}
	if len(data)/3 > show {
		b.WriteString(" ...")
	}
	return b.String()
}
