// Command raypaths traces radio propagation paths between two points in
// ice and prints the solved path table.
//
// Usage:
//
//	raypaths [flags]
//
// Positions are comma-separated x,y,z coordinates in metres with the ice
// surface at z = 0.
//
// Examples:
//
//	raypaths -from 0,0,-1000 -to 100,0,-200
//	raypaths -from 0,0,-1000 -to 750,0,-200 -freq 150e6
//	raypaths -medium uniform:1.78 -from 0,0,-100 -to 30,40,-50
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/GefestLAB/pyrex/medium"
	"github.com/GefestLAB/pyrex/raytrace"
)

func main() {
	fromFlag := flag.String("from", "0,0,-1000", "source position as x,y,z metres")
	toFlag := flag.String("to", "100,0,-200", "receiver position as x,y,z metres")
	mediumFlag := flag.String("medium", "antarctic", "propagation medium: antarctic or uniform:<index>")
	freq := flag.Float64("freq", 300e6, "frequency in Hz for the attenuation column")
	dz := flag.Float64("dz", 1, "depth step in metres for numeric ray integrals")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: raypaths [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Traces radio propagation paths between two points in ice.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  raypaths -from 0,0,-1000 -to 100,0,-200\n")
		fmt.Fprintf(os.Stderr, "  raypaths -medium uniform:1.78 -from 0,0,-100 -to 30,40,-50\n")
	}
	flag.Parse()

	from, err := parsePosition(*fromFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid -from: %v\n", err)
		os.Exit(1)
	}
	to, err := parsePosition(*toFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid -to: %v\n", err)
		os.Exit(1)
	}
	profile, err := parseMedium(*mediumFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid -medium: %v\n", err)
		os.Exit(1)
	}

	method := raytrace.For(profile)
	rt, err := method.Trace(profile, from, to, raytrace.WithDepthStep(*dz))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: trace failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("method %s, horizontal separation %.2f m\n", method.Name(), rt.Rho())
	if !rt.Exists() {
		fmt.Printf("no paths: receiver is beyond reach (direct %.1f m, indirect %.1f m)\n",
			rt.DirectRMax(), rt.IndirectRMax())
		return
	}

	printPaths(rt, *freq)
}

func parsePosition(s string) (r3.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return r3.Vec{}, fmt.Errorf("want x,y,z, got %q", s)
	}

	coords := make([]float64, 3)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("coordinate %q: %w", part, err)
		}
		coords[i] = v
	}

	return r3.Vec{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}

func parseMedium(s string) (medium.Profile, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "antarctic" {
		return medium.NewAntarcticIce(), nil
	}

	if idx, ok := strings.CutPrefix(s, "uniform:"); ok {
		n, err := strconv.ParseFloat(idx, 64)
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", idx, err)
		}
		if n < 1 || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("index %v out of range", n)
		}
		return medium.Uniform{N: n}, nil
	}

	return nil, fmt.Errorf("unknown medium %q (want antarctic or uniform:<index>)", s)
}

func printPaths(rt *raytrace.RayTrace, freq float64) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Path\tLaunch [deg]\tReceive [deg]\tLength [m]\tTime [ns]\tAttenuation @ %.0f MHz\n", freq/1e6)
	fmt.Fprintf(tw, "----\t------------\t-------------\t----------\t---------\t---------------------\n")

	const degPerRad = 180 / math.Pi
	for _, path := range rt.Solutions() {
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\t%.3f\t%.4g\n",
			path.Kind(),
			path.LaunchAngle()*degPerRad,
			path.ReceiveAngle()*degPerRad,
			path.PathLength(),
			path.TimeOfFlight()*1e9,
			path.AttenuationAt(freq),
		)
	}

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}
