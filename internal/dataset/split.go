// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"math"
	"math/rand"

	"github.com/pdiddy/roadgraph/pkg/types"
)

// debugTrain and debugVal are the fixed sample counts used for debug
// runs, matching the historical experiment loader.
const (
	debugTrain = 128
	debugVal   = 32
)

// SplitOptions controls the deterministic train/val split.
type SplitOptions struct {
	Seed       int64
	Split      float64 // train fraction in (0, 1]
	MaxSamples int     // truncate train set when > 0
	BatchSize  int     // caps the truncated val set at 10 batches
	Debug      bool    // fixed 128 train / 32 val samples
}

// Split shuffles regions with the seeded generator and divides them
// into train and val sets. The input order must be deterministic (Scan
// guarantees this) for the split to be reproducible.
func Split(regions []types.Region, opts SplitOptions) (train, val []types.Region) {
	shuffled := make([]types.Region, len(regions))
	copy(shuffled, regions)

	rng := rand.New(rand.NewSource(opts.Seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	cut := int(opts.Split * float64(len(shuffled)))
	train = shuffled[:cut]
	val = shuffled[cut:]

	switch {
	case opts.Debug:
		kept := train
		train = head(kept, debugTrain)
		// Top val up to its cap from the shuffled regions the truncated
		// train set no longer uses, keeping the sets disjoint.
		if len(val) < debugVal {
			val = append(append([]types.Region(nil), val...), kept[len(train):]...)
		}
		val = head(val, debugVal)
	case opts.MaxSamples > 0:
		train = head(train, opts.MaxSamples)
		valCap := int(math.Round(float64(opts.MaxSamples) * (1 - opts.Split)))
		if opts.BatchSize > 0 && valCap > opts.BatchSize*10 {
			valCap = opts.BatchSize * 10
		}
		val = head(val, valCap)
	}
	return train, val
}

// Manifest builds a reproducible record of the split.
func Manifest(dataPath string, opts SplitOptions, train, val []types.Region) types.SplitManifest {
	m := types.SplitManifest{
		DataPath:   dataPath,
		Seed:       opts.Seed,
		Split:      opts.Split,
		MaxSamples: opts.MaxSamples,
		Train:      make([]string, len(train)),
		Val:        make([]string, len(val)),
	}
	for i, r := range train {
		m.Train[i] = r.Name()
	}
	for i, r := range val {
		m.Val[i] = r.Name()
	}
	return m
}

func head(regions []types.Region, n int) []types.Region {
	if n < len(regions) {
		return regions[:n]
	}
	return regions
}
