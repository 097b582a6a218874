// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"
	"image/png"
	"os"

	"github.com/pdiddy/roadgraph/pkg/graph"
	"github.com/pdiddy/roadgraph/pkg/types"
)

// Problem describes one integrity violation found during validation.
type Problem struct {
	Region string `json:"region" yaml:"region"`
	Detail string `json:"detail" yaml:"detail"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Region, p.Detail)
}

// ValidateRegion checks a single complete region: both images must
// decode as PNG, be square, and share dimensions; when imageSize > 0
// the images must match it; the graph pickle must load and be
// non-empty.
func ValidateRegion(r types.Region, imageSize int) []Problem {
	var problems []Problem
	add := func(format string, args ...interface{}) {
		problems = append(problems, Problem{Region: r.Name(), Detail: fmt.Sprintf(format, args...)})
	}

	satW, satH, satErr := pngDimensions(r.SatPath)
	if satErr != nil {
		add("sat image: %v", satErr)
	}
	gtW, gtH, gtErr := pngDimensions(r.GTPath)
	if gtErr != nil {
		add("gt image: %v", gtErr)
	}
	if satErr == nil {
		if satW != satH {
			add("sat image is not square: %dx%d", satW, satH)
		}
		if imageSize > 0 && satW != imageSize {
			add("image size %d does not match configured size %d", satW, imageSize)
		}
	}
	if gtErr == nil && gtW != gtH {
		add("gt image is not square: %dx%d", gtW, gtH)
	}
	if satErr == nil && gtErr == nil && (satW != gtW || satH != gtH) {
		add("sat image %dx%d does not match gt image %dx%d", satW, satH, gtW, gtH)
	}

	g, err := graph.LoadPickle(r.GraphPath)
	switch {
	case err != nil:
		add("graph: %v", err)
	case len(g.Nodes) == 0:
		add("graph is empty")
	}

	return problems
}

// ValidateAll checks every complete region in the scan result and folds
// incomplete regions in as problems.
func ValidateAll(scan ScanResult, imageSize int) []Problem {
	var problems []Problem
	for _, r := range scan.Incomplete {
		for _, kind := range r.Missing() {
			problems = append(problems, Problem{
				Region: r.Name(),
				Detail: fmt.Sprintf("missing %s", kind),
			})
		}
	}
	for _, r := range scan.Regions {
		problems = append(problems, ValidateRegion(r, imageSize)...)
	}
	return problems
}

// pngDimensions reads only the PNG header, not the pixel data.
func pngDimensions(path string) (w, h int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decoding %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}
