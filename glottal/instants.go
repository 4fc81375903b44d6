package glottal

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/sonido-gci/algorithms/filters"
	"github.com/RyanBlaney/sonido-gci/logging"
)

// Finder locates glottal closure instants region by region
type Finder struct {
	config *Config
	logger logging.Logger
}

// NewFinder creates a finder. A nil config uses DefaultConfig.
func NewFinder(config *Config) *Finder {
	if config == nil {
		config = DefaultConfig()
	}

	return &Finder{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "gci_finder",
		}),
	}
}

// Config returns the finder's settings
func (f *Finder) Config() *Config {
	return f.config
}

// FindInstants runs a finder with default settings and the given region
// margin in seconds.
func FindInstants(signal []int, c Contour, sampleRate int, frameWidth float64) ([]Instant, error) {
	cfg := DefaultConfig()
	cfg.FrameWidth = frameWidth
	return NewFinder(cfg).Find(context.Background(), signal, c, sampleRate)
}

// Find returns the instants of every voiced region of c, in region order.
// Within each region with at least two instants the indices are strictly
// increasing and bracketed by two zero-power sentinels. Regions whose pitch
// cannot form a resonator window are skipped.
func (f *Finder) Find(ctx context.Context, signal []int, c Contour, sampleRate int) ([]Instant, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if err := f.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid finder config: %w", err)
	}

	regions := c.VoicedRegions()
	if err := checkRegions(regions); err != nil {
		return nil, err
	}

	f.logger.Debug("Finding glottal closure instants", logging.Fields{
		"samples":     len(signal),
		"sample_rate": sampleRate,
		"regions":     len(regions),
		"margin":      f.config.FrameWidth,
		"workers":     f.config.Workers,
	})

	perRegion := make([][]Instant, len(regions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, f.config.Workers))

	for i, r := range regions {
		span := expandRegion(i, r, f.config.FrameWidth, sampleRate)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			instants, err := f.processRegion(signal, c, sampleRate, span)
			if err != nil {
				return fmt.Errorf("region %d (%.3fs-%.3fs): %w", span.index, r.Start, r.End, err)
			}
			perRegion[span.index] = instants
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, instants := range perRegion {
		total += len(instants)
	}
	all := make([]Instant, 0, total)
	for _, instants := range perRegion {
		all = append(all, instants...)
	}

	f.logger.Debug("Glottal closure instants found", logging.Fields{
		"instants": len(all),
		"regions":  len(regions),
	})

	return all, nil
}

// processRegion runs the per-region pipeline: resonator, crossing extraction,
// octave correction, refinement, mark selection and sentinel placement.
func (f *Finder) processRegion(signal []int, c Contour, sampleRate int, span regionSpan) ([]Instant, error) {
	logger := f.logger.WithFields(logging.Fields{
		"function": "processRegion",
		"region":   span.index,
	})

	samples := span.slice(signal)
	if len(samples) == 0 {
		logger.Warn("Region starts past the end of the signal, skipping", logging.Fields{
			"start_sample": span.startSample,
			"signal_len":   len(signal),
		})
		return nil, nil
	}

	pitch := c.Pitch(span.midpoint())
	if err := checkLevel("pitch", span.midpoint(), pitch); err != nil {
		return nil, err
	}

	zfr := filters.NewZFRWithParams(sampleRate, f.config.ZFRWindowPeriods, f.config.ZFRPasses)
	filtered, err := zfr.Process(samples, pitch)
	if errors.Is(err, filters.ErrDegenerateWindow) {
		logger.Debug("No usable resonator window, skipping region", logging.Fields{
			"pitch": pitch,
		})
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	candidates, err := ExtractCandidates(filtered, c, span.start, sampleRate)
	if err != nil {
		return nil, err
	}

	if len(candidates) < 2 {
		logger.Debug("Too few crossings, returning them unrefined", logging.Fields{
			"candidates": len(candidates),
		})
		instants := make([]Instant, 0, len(candidates))
		for _, cand := range candidates {
			if cand.Power > 0 {
				instants = append(instants, Instant{Index: cand.Index + span.startSample, Power: cand.Power})
			}
		}
		return instants, nil
	}

	candidates, corrections := CorrectOctaveErrors(candidates, f.config)
	choices := RefineCandidates(signal, candidates, span.startSample, f.config.SearchRadius)

	instants, err := SelectMarks(choices)
	if err != nil {
		return nil, err
	}
	instants = withSentinels(strictlyIncreasing(instants))

	logger.Debug("Region processed", logging.Fields{
		"pitch":      pitch,
		"window":     zfr.WindowSize(pitch),
		"candidates": len(candidates),
		"merged":     corrections.Merged,
		"inserted":   corrections.Inserted,
		"instants":   len(instants),
	})

	return instants, nil
}
