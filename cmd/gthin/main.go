package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/planbiir/gthin/internal/edit"
	"github.com/planbiir/gthin/internal/format"
	"github.com/planbiir/gthin/internal/gpx"
	"github.com/planbiir/gthin/internal/thin"
	"github.com/planbiir/gthin/internal/track"
)

type options struct {
	output      string
	format      string
	interpolate bool
	dryRun      bool
}

// summary aggregates one file's before/after statistics.
type summary struct {
	File     string      `json:"file"`
	Segments int         `json:"segments"`
	Before   track.Stats `json:"before"`
	After    track.Stats `json:"after"`
}

func main() {
	var (
		inputFile   = flag.String("i", "", "Input track file (.gpx, .fit, .geojson)")
		outputFile  = flag.String("o", "", "Output file (default: <input>_thinned.<format>)")
		mode        = flag.String("mode", thin.KindNone, "Thinning mode: none, sequence, time, distance")
		every       = flag.Int("every", 2, "Keep every Nth point (sequence mode)")
		interval    = flag.Duration("interval", time.Minute, "Minimum time between kept points (time mode)")
		meters      = flag.Float64("meters", 50, "Minimum distance between kept points in meters (distance mode)")
		outFormat   = flag.String("format", format.KindGPX, "Output format: gpx, geojson, polyline")
		interpolate = flag.Bool("interpolate", false, "Fill missing timestamps between known ones before thinning")
		dryRun      = flag.Bool("dry-run", false, "Show statistics without writing output file")
		showStats   = flag.Bool("stats", false, "Show detailed statistics")
		statsJSON   = flag.Bool("stats-json", false, "Output statistics as JSON")
		version     = flag.Bool("version", false, "Show version information")
	)

	flag.Usage = func() {
		fmt.Printf("gthin - Reduce the number of points in GPS tracks\n\n")
		fmt.Printf("usage: gthin -i /path/to/file.gpx -mode distance -meters 25\n")
		fmt.Printf("       gthin -mode sequence -every 5 a.gpx b.fit c.geojson\n\n")
		fmt.Printf("examples:\n")
		fmt.Printf("  gthin -i track.gpx -mode time -interval 30s\n")
		fmt.Printf("  gthin -i ride.fit -mode distance -meters 10 -format geojson\n")
		fmt.Printf("  gthin -i track.gpx -stats -dry-run\n\n")
		fmt.Printf("options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Println("gthin v1.0.0 - GPS track thinning")
		os.Exit(0)
	}

	inputs := flag.Args()
	if *inputFile != "" {
		inputs = append([]string{*inputFile}, inputs...)
	}
	if len(inputs) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if len(inputs) > 1 && *outputFile != "" {
		fmt.Fprintf(os.Stderr, "Error: -o cannot be used with multiple inputs\n")
		os.Exit(2)
	}

	policy, err := policyFromFlags(*mode, *every, *interval, *meters)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if !format.IsKnown(*outFormat) {
		fmt.Fprintf(os.Stderr, "Error: unknown output format %q\n", *outFormat)
		os.Exit(2)
	}

	opts := options{
		output:      *outputFile,
		format:      *outFormat,
		interpolate: *interpolate,
		dryRun:      *dryRun,
	}

	fmt.Printf("✂️  Thinning policy: %s\n", policy)

	var bar *progressbar.ProgressBar
	if len(inputs) > 1 {
		bar = progressbar.Default(int64(len(inputs)), "Thinning")
	}

	var (
		summaries []summary
		failed    int
	)
	for _, in := range inputs {
		s, err := process(in, policy, opts)
		if bar != nil {
			_ = bar.Add(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", in, err)
			failed++
			continue
		}
		summaries = append(summaries, s)
	}

	if *statsJSON {
		jsonData, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling stats: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
	} else if *showStats || *dryRun {
		for _, s := range summaries {
			printStats(os.Stdout, s)
		}
	}

	if *dryRun {
		fmt.Printf("🔍 Dry run completed - no files written\n")
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func policyFromFlags(mode string, every int, interval time.Duration, meters float64) (thin.Policy, error) {
	var p thin.Policy
	switch mode {
	case thin.KindNone:
		p = thin.None{}
	case thin.KindSequence:
		p = thin.Stride{Every: every}
	case thin.KindTime:
		p = thin.TimeInterval{Interval: interval}
	case thin.KindDistance:
		p = thin.DistanceInterval{Meters: meters}
	default:
		return nil, fmt.Errorf("%q: %w", mode, thin.ErrUnknownKind)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func process(input string, p thin.Policy, opts options) (summary, error) {
	fmt.Printf("📖 Reading track file: %s\n", input)
	doc, segments, err := load(input)
	if err != nil {
		return summary{}, err
	}
	if len(segments) == 0 {
		return summary{}, fmt.Errorf("no GPS points found in file")
	}

	if opts.interpolate {
		for i := range segments {
			filled := edit.InterpolateTimes(segments[i].Points)
			fmt.Printf("🕒 Segment %d: filled %d of %d missing timestamps\n",
				i, edit.Missing(segments[i].Points)-edit.Missing(filled), edit.Missing(segments[i].Points))
			segments[i].Points = filled
		}
		// The GPX document still holds the unfilled points.
		doc = nil
	}

	s := summary{File: input, Segments: len(segments)}
	var before, after []track.Point
	thinned := make([]track.Segment, len(segments))

	if doc != nil && opts.format == format.KindGPX {
		results, err := doc.Thin(p)
		if err != nil {
			return summary{}, err
		}
		for i, r := range results {
			thinned[i] = segments[i]
			thinned[i].Points = r.Points
		}
	} else {
		for i, seg := range segments {
			kept, err := thin.Thin(seg.Points, p)
			if err != nil {
				return summary{}, fmt.Errorf("segment %d: %w", i, err)
			}
			thinned[i] = seg
			thinned[i].Points = kept
		}
	}

	for i := range segments {
		before = append(before, segments[i].Points...)
		after = append(after, thinned[i].Points...)
	}
	s.Before = track.Calculate(before)
	s.After = track.Calculate(after)

	if opts.dryRun {
		return s, nil
	}

	out := opts.output
	if out == "" {
		out = outputName(input, opts.format)
	}

	var data []byte
	if doc != nil && opts.format == format.KindGPX {
		data, err = doc.Bytes()
	} else {
		data, err = format.Render(thinned, filepath.Base(input), opts.format)
	}
	if err != nil {
		return summary{}, err
	}

	fmt.Printf("💾 Writing thinned track: %s\n", out)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return summary{}, fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Printf("✅ %d → %d points\n", s.Before.TotalPoints, s.After.TotalPoints)
	return s, nil
}

// load reads a track file. GPX input also returns its document so the
// original points, extensions included, can be written back.
func load(path string) (*gpx.Document, []track.Segment, error) {
	if strings.EqualFold(filepath.Ext(path), ".gpx") {
		doc, err := gpx.Parse(path)
		if err != nil {
			return nil, nil, err
		}
		return doc, doc.Segments(filepath.Base(path)), nil
	}
	segments, err := format.ReadFile(path)
	return nil, segments, err
}

func outputName(input, kind string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "_thinned" + format.Extension(kind)
}

func printStats(w io.Writer, s summary) {
	fmt.Fprintf(w, "\n📊 %s (%d segments)\n", s.File, s.Segments)
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(w, "📍 Points: %d → %d\n", s.Before.TotalPoints, s.After.TotalPoints)
	fmt.Fprintf(w, "📏 Distance: %s → %s\n", track.FormatDistance(s.Before.TotalDistance), track.FormatDistance(s.After.TotalDistance))
	fmt.Fprintf(w, "⏱️  Interval: %s → %s\n", track.FormatInterval(s.Before.AverageInterval), track.FormatInterval(s.After.AverageInterval))
	fmt.Fprintf(w, "🕒 Time range: %s\n", track.FormatTimeRange(s.Before.StartTime, s.Before.EndTime))
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
}
