package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-gci/algorithms/common"
	"github.com/RyanBlaney/sonido-gci/contour"
	"github.com/RyanBlaney/sonido-gci/glottal"
	"github.com/RyanBlaney/sonido-gci/logging"
	"github.com/RyanBlaney/sonido-gci/transcode"
)

// defaultMarginSamples is the region margin used when neither --margin nor a
// config file sets one: two 40-sample frames.
const defaultMarginSamples = 2 * 40

type findOptions struct {
	contourPath string
	configPath  string
	margin      float64
	workers     int
	sampleRate  int
	jsonOutput  bool
	summary     bool
}

func findCmd() *cobra.Command {
	opts := &findOptions{}

	cmd := &cobra.Command{
		Use:   "find <audio>",
		Short: "Find glottal closure instants in an audio file",
		Long: `Find decodes the audio file to mono, reads the pitch/power contour and prints
one line per instant: the sample index and the contour power there. Lines with
power 0 are sentinels marking the edges of a voiced region.

The contour file holds one frame per line: "time pitch power [voicing]".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.contourPath, "contour", "c", "", "pitch/power contour file (required)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML finder configuration")
	cmd.Flags().Float64Var(&opts.margin, "margin", 0, "seconds added around each voiced region (default 80 samples)")
	cmd.Flags().IntVar(&opts.workers, "workers", 1, "regions processed concurrently")
	cmd.Flags().IntVar(&opts.sampleRate, "sample-rate", 0, "resample the audio to this rate (default: keep)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of text")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print period statistics to stderr")
	_ = cmd.MarkFlagRequired("contour")

	return cmd
}

// findOutput is the --json document
type findOutput struct {
	Source     string            `json:"source"`
	SampleRate int               `json:"sample_rate"`
	Regions    int               `json:"regions"`
	Instants   []glottal.Instant `json:"instants"`
	Summary    *periodSummary    `json:"summary,omitempty"`
}

func runFind(cmd *cobra.Command, audioPath string, opts *findOptions) error {
	logger := logging.WithFields(logging.Fields{
		"component": "gcis",
		"function":  "runFind",
	})

	cfg := glottal.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := glottal.LoadConfig(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = opts.workers
	}

	decoderConfig := transcode.DefaultDecoderConfig()
	decoderConfig.TargetSampleRate = opts.sampleRate
	decoder := transcode.NewDecoder(decoderConfig)
	if err := decoder.ValidateConfig(); err != nil {
		return err
	}

	audio, err := decoder.DecodeFile(cmd.Context(), audioPath)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", audioPath, err)
	}

	table, err := contour.LoadFile(opts.contourPath)
	if err != nil {
		return err
	}

	switch {
	case cmd.Flags().Changed("margin"):
		if !common.IsFinite(opts.margin) || opts.margin < 0 {
			return fmt.Errorf("invalid --margin %v: must be a non-negative number of seconds", opts.margin)
		}
		cfg.FrameWidth = opts.margin
	case opts.configPath == "":
		cfg.FrameWidth = float64(defaultMarginSamples) / float64(audio.SampleRate)
	}

	logger.Debug("Input loaded", logging.Fields{
		"samples":     len(audio.Samples),
		"sample_rate": audio.SampleRate,
		"frames":      table.Len(),
		"frame_step":  table.FrameStep(),
		"margin":      cfg.FrameWidth,
	})

	instants, err := glottal.NewFinder(cfg).Find(cmd.Context(), audio.Samples, table, audio.SampleRate)
	if err != nil {
		return err
	}

	summary := summarizePeriods(instants, audio.SampleRate)
	if opts.summary {
		writeSummary(cmd.ErrOrStderr(), summary)
	}

	if opts.jsonOutput {
		out := findOutput{
			Source:     audioPath,
			SampleRate: audio.SampleRate,
			Regions:    len(table.VoicedRegions()),
			Instants:   instants,
		}
		if opts.summary {
			out.Summary = summary
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	return writeInstants(cmd.OutOrStdout(), instants)
}

// writeInstants prints "index power" lines
func writeInstants(w io.Writer, instants []glottal.Instant) error {
	for _, in := range instants {
		if _, err := fmt.Fprintf(w, "%d %s\n", in.Index, strconv.FormatFloat(in.Power, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return nil
}

// periodSummary describes the spacing of detected (non-sentinel) instants
type periodSummary struct {
	Instants   int     `json:"instants"`
	Sentinels  int     `json:"sentinels"`
	Periods    int     `json:"periods"`
	MeanPeriod float64 `json:"mean_period"` // samples
	StdDev     float64 `json:"std_dev"`     // samples
	MeanPitch  float64 `json:"mean_pitch"`  // Hz
}

// summarizePeriods measures periods between consecutive detected instants.
// A sentinel ends a run, so no period spans two regions.
func summarizePeriods(instants []glottal.Instant, sampleRate int) *periodSummary {
	summary := &periodSummary{}
	var periods []float64

	prev := -1
	for i, in := range instants {
		if in.IsSentinel() {
			summary.Sentinels++
			prev = -1
			continue
		}
		summary.Instants++
		if prev >= 0 {
			periods = append(periods, float64(in.Index-instants[prev].Index))
		}
		prev = i
	}

	summary.Periods = len(periods)
	if len(periods) == 0 {
		return summary
	}

	summary.MeanPeriod, summary.StdDev = stat.MeanStdDev(periods, nil)
	if len(periods) == 1 {
		summary.StdDev = 0
	}
	if summary.MeanPeriod > 0 {
		summary.MeanPitch = float64(sampleRate) / summary.MeanPeriod
	}
	return summary
}

func writeSummary(w io.Writer, s *periodSummary) {
	fmt.Fprintf(w, "instants: %d (+%d sentinels)\n", s.Instants, s.Sentinels)
	if s.Periods == 0 {
		fmt.Fprintln(w, "periods: none")
		return
	}
	fmt.Fprintf(w, "periods: %d, mean %.2f samples (%.2f Hz), std dev %.2f\n",
		s.Periods, s.MeanPeriod, s.MeanPitch, s.StdDev)
}
