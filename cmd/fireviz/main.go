// Command fireviz renders the diagnostics for one matched-pairs fixture:
// interactive map, map screenshot, histogram and time/distance scatter.
// -compare shows two saved screenshots side by side.
//
// Usage:
//
//	go run ./cmd/fireviz -matches data/mock/matches_modis.json -label "MODIS Comparison"
//	go run ./cmd/fireviz -compare modis.png,goes.png -compare-titles "MODIS,GOES"
//
// Rendering settings come from the environment (see internal/config); -env
// loads .env files first.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	fireviz "github.com/couchcryptid/fire-match-viz"
)

type options struct {
	matches    string
	label      string
	envFiles   string
	mapHTML    string
	screenshot string
	zoom       int
	width      int
	height     int
	noLines    bool
	skip       string
	compare    string
	titles     string
}

func main() {
	var o options
	flag.StringVar(&o.matches, "matches", "", "matched pairs fixture (.json or .arrow)")
	flag.StringVar(&o.label, "label", "MODIS Comparison", "dataset label used in chart titles and file names")
	flag.StringVar(&o.envFiles, "env", "", "comma-separated .env files to load first")
	flag.StringVar(&o.mapHTML, "map-html", "matches_map.html", "interactive map output")
	flag.StringVar(&o.screenshot, "screenshot", "map_screenshot.png", "screenshot output")
	flag.IntVar(&o.zoom, "zoom", 13, "screenshot zoom level")
	flag.IntVar(&o.width, "width", 800, "screenshot width in pixels")
	flag.IntVar(&o.height, "height", 600, "screenshot height in pixels")
	flag.BoolVar(&o.noLines, "no-lines", false, "omit match connector lines")
	flag.StringVar(&o.skip, "skip", "", "comma-separated steps to skip: map,screenshot,histogram,scatter")
	flag.StringVar(&o.compare, "compare", "", "two comma-separated screenshots to show side by side")
	flag.StringVar(&o.titles, "compare-titles", "", "comma-separated titles for -compare (default: file names)")
	flag.Parse()

	if o.matches == "" && o.compare == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o); err != nil {
		slog.Error("fireviz failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) (err error) {
	var v *fireviz.Visualizer
	if o.envFiles != "" {
		v, err = fireviz.NewFromEnv(strings.Split(o.envFiles, ","))
	} else {
		v, err = fireviz.New()
	}
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, v.Close())
	}()

	if o.matches != "" {
		if err := renderMatches(ctx, v, o); err != nil {
			return err
		}
	}
	if o.compare != "" {
		path1, path2, title1, title2, err := comparePair(o.compare, o.titles)
		if err != nil {
			return err
		}
		if _, err := v.ShowScreenshots(ctx, path1, path2, title1, title2); err != nil {
			return err
		}
	}
	return nil
}

func renderMatches(ctx context.Context, v *fireviz.Visualizer, o options) error {
	pairs, err := fireviz.LoadMatches(o.matches)
	if err != nil {
		return err
	}

	skip := map[string]bool{}
	for _, s := range strings.Split(o.skip, ",") {
		skip[strings.TrimSpace(s)] = true
	}
	showLines := !o.noLines

	if !skip["map"] {
		if _, err := v.PlotMatchesInteractiveMap(pairs, showLines, o.mapHTML); err != nil {
			return err
		}
	}
	if !skip["screenshot"] {
		lat, lon, err := fireviz.MapCenter(pairs)
		if err != nil {
			return err
		}
		req := fireviz.NewScreenshotRequest(lat, lon)
		req.Zoom = o.zoom
		req.Width = o.width
		req.Height = o.height
		req.OutputFile = o.screenshot
		req.ShowLines = showLines
		if err := v.CreateMapScreenshot(ctx, pairs, req); err != nil {
			return err
		}
	}
	if !skip["histogram"] {
		if _, err := v.PlotHistogram(ctx, pairs, o.label); err != nil {
			return err
		}
	}
	if !skip["scatter"] {
		if _, err := v.PlotTimeDistance(ctx, pairs, o.label); err != nil {
			return err
		}
	}
	return nil
}

// comparePair splits the -compare and -compare-titles values. Titles default
// to the screenshot file names without extension.
func comparePair(paths, titles string) (path1, path2, title1, title2 string, err error) {
	path1, path2, err = splitPair(paths)
	if err != nil {
		return "", "", "", "", fmt.Errorf("-compare: %w", err)
	}
	if titles == "" {
		return path1, path2, stem(path1), stem(path2), nil
	}
	title1, title2, err = splitPair(titles)
	if err != nil {
		return "", "", "", "", fmt.Errorf("-compare-titles: %w", err)
	}
	return path1, path2, title1, title2, nil
}

func splitPair(s string) (string, string, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("want two comma-separated values, got %q", s)
	}
	a, b := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if a == "" || b == "" {
		return "", "", fmt.Errorf("empty value in %q", s)
	}
	return a, b, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
