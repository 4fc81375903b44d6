package transcode

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mjibson/go-dsp/wav"

	"github.com/RyanBlaney/sonido-gci/logging"
)

// readBlock is the number of samples requested per WAV read
const readBlock = 1 << 16

// AudioData is decoded mono audio as integer samples
type AudioData struct {
	Samples    []int         `json:"-"`
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`  // channel count of the source before downmix
	BitDepth   int           `json:"bit_depth"` // source bits per sample, 0 when unknown
	Duration   time.Duration `json:"duration"`
	Source     string        `json:"source"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate"` // 0 keeps the source rate
	MaxDuration      time.Duration `json:"max_duration"`       // 0 decodes everything
	FFmpegPath       string        `json:"ffmpeg_path"`
	FFprobePath      string        `json:"ffprobe_path"`
	Timeout          time.Duration `json:"timeout"` // Timeout for ffmpeg operations
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 0,
		MaxDuration:      0,
		FFmpegPath:       "ffmpeg",  // Assume in PATH
		FFprobePath:      "ffprobe", // Assume in PATH
		Timeout:          30 * time.Second,
	}
}

// Decoder turns audio files into integer mono samples. PCM WAV files are read
// natively; anything else, or a WAV that needs resampling, goes through
// ffmpeg.
type Decoder struct {
	config *DecoderConfig
}

// AudioMetadata holds detected audio properties from FFprobe
type AudioMetadata struct {
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Codec      string  `json:"codec"`
	Duration   float64 `json:"duration"`
	Bitrate    int     `json:"bitrate"`
	Format     string  `json:"format"`
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// DecodeFile decodes an audio file to mono integer samples
func (d *Decoder) DecodeFile(ctx context.Context, filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeFile",
		"filename":  filename,
	})

	logger.Debug("Starting audio file decode")

	if strings.EqualFold(filepath.Ext(filename), ".wav") {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read audio file: %w", err)
		}

		audio, err := d.DecodeWAV(bytes.NewReader(data))
		if err == nil && (d.config.TargetSampleRate == 0 || d.config.TargetSampleRate == audio.SampleRate) {
			audio.Source = filename
			return audio, nil
		}
		if err != nil {
			logger.Debug("Native WAV decode failed, falling back to ffmpeg", logging.Fields{
				"error": err.Error(),
			})
		}
	}

	if err := d.CheckFFmpeg(ctx); err != nil {
		return nil, fmt.Errorf("cannot decode %s without ffmpeg: %w", filename, err)
	}

	metadata, err := d.probeAudioFile(ctx, filename)
	if err != nil {
		logger.Error(err, "Failed to probe audio file")
		return nil, err
	}

	logger.Debug("Audio metadata detected", logging.Fields{
		"input_sample_rate": metadata.SampleRate,
		"input_channels":    metadata.Channels,
		"input_codec":       metadata.Codec,
		"input_duration":    metadata.Duration,
		"input_bitrate":     metadata.Bitrate,
	})

	return d.decodeFileWithFFmpeg(ctx, filename, metadata)
}

// DecodeWAV reads a PCM or IEEE-float WAV stream and downmixes it to mono.
// 8-bit samples are re-centred on zero; float samples are scaled to the
// 16-bit range.
func (d *Decoder) DecodeWAV(r io.Reader) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeWAV",
	})

	w, err := wav.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse wav header: %w", err)
	}

	channels := int(w.NumChannels)
	if channels <= 0 || w.BitsPerSample == 0 || w.SampleRate == 0 {
		return nil, fmt.Errorf("unsupported wav format: %d channels, %d bits, %d Hz",
			channels, w.BitsPerSample, w.SampleRate)
	}

	// w.Samples counts interleaved samples in the data chunk only
	total := w.Samples
	if d.config.MaxDuration > 0 {
		total = min(total, int(d.config.MaxDuration.Seconds()*float64(w.SampleRate))*channels)
	}

	interleaved := make([]int, 0, max(total, 0))
	for len(interleaved) < total {
		block, err := w.ReadSamples(min(readBlock, total-len(interleaved)))
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			logger.Warn("WAV data chunk is shorter than its header claims", logging.Fields{
				"expected": total,
				"read":     len(interleaved),
			})
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read wav samples: %w", err)
		}

		interleaved, err = appendSamples(interleaved, block)
		if err != nil {
			return nil, err
		}
	}

	samples := downmix(interleaved, channels)
	if len(samples) == 0 {
		return nil, fmt.Errorf("no audio samples decoded")
	}

	audio := &AudioData{
		Samples:    samples,
		SampleRate: int(w.SampleRate),
		Channels:   channels,
		BitDepth:   int(w.BitsPerSample),
		Duration:   time.Duration(len(samples)) * time.Second / time.Duration(w.SampleRate),
	}

	logger.Debug("WAV decode completed", logging.Fields{
		"sample_rate": audio.SampleRate,
		"channels":    audio.Channels,
		"bit_depth":   audio.BitDepth,
		"samples":     len(samples),
		"duration":    audio.Duration.Seconds(),
	})

	return audio, nil
}

// appendSamples converts a block returned by the wav reader to ints
func appendSamples(dst []int, block any) ([]int, error) {
	switch samples := block.(type) {
	case []int16:
		for _, s := range samples {
			dst = append(dst, int(s))
		}
	case []uint8:
		for _, s := range samples {
			dst = append(dst, int(s)-128)
		}
	case []float32:
		for _, s := range samples {
			dst = append(dst, int(math.Round(float64(max(-1, min(1, s)))*math.MaxInt16)))
		}
	default:
		return nil, fmt.Errorf("unsupported wav sample type %T", block)
	}
	return dst, nil
}

// downmix averages interleaved channels into one, dropping a trailing
// partial frame.
func downmix(interleaved []int, channels int) []int {
	if channels == 1 {
		return interleaved
	}

	frames := len(interleaved) / channels
	mono := make([]int, frames)
	for i := range frames {
		sum := 0
		for _, s := range interleaved[i*channels : (i+1)*channels] {
			sum += s
		}
		mono[i] = int(math.Round(float64(sum) / float64(channels)))
	}
	return mono
}

// probeAudioFile uses ffprobe to get audio information from a file
func (d *Decoder) probeAudioFile(ctx context.Context, filename string) (*AudioMetadata, error) {
	args := []string{
		"-v", "quiet", // Suppress verbose output
		"-print_format", "json", // JSON output
		"-show_streams",          // Show stream info
		"-select_streams", "a:0", // First audio stream only
		filename,
	}

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	output, err := exec.CommandContext(ctx, d.config.FFprobePath, args...).Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("ffprobe failed: %w, stderr: %s", err, string(exitError.Stderr))
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseFFprobeOutput(output)
}

// parseFFprobeOutput parses ffprobe JSON to extract audio metadata
func parseFFprobeOutput(jsonData []byte) (*AudioMetadata, error) {
	var probe struct {
		Streams []struct {
			CodecType     string `json:"codec_type"`
			CodecName     string `json:"codec_name"`
			SampleRate    string `json:"sample_rate"`
			Channels      int    `json:"channels"`
			Duration      string `json:"duration"`
			BitRate       string `json:"bit_rate"`
			CodecLongName string `json:"codec_long_name"`
		} `json:"streams"`
	}

	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("no audio streams found")
	}

	stream := probe.Streams[0]
	if stream.CodecType != "audio" {
		return nil, fmt.Errorf("stream is not audio type: %s", stream.CodecType)
	}

	sampleRate, err := strconv.Atoi(stream.SampleRate)
	if err != nil || sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %q", stream.SampleRate)
	}

	// duration and bitrate are informational only
	duration, _ := strconv.ParseFloat(stream.Duration, 64)
	bitrate, _ := strconv.Atoi(stream.BitRate)

	if stream.Channels <= 0 || stream.Channels > 8 {
		return nil, fmt.Errorf("invalid channel count: %d", stream.Channels)
	}

	return &AudioMetadata{
		SampleRate: sampleRate,
		Channels:   stream.Channels,
		Codec:      stream.CodecName,
		Duration:   duration,
		Bitrate:    bitrate,
		Format:     stream.CodecLongName,
	}, nil
}

// decodeFileWithFFmpeg decodes any ffmpeg-readable file to 16-bit mono
func (d *Decoder) decodeFileWithFFmpeg(ctx context.Context, filename string, metadata *AudioMetadata) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "decodeFileWithFFmpeg",
		"filename":  filename,
	})

	sampleRate := d.outputSampleRate(metadata)
	args := append([]string{"-i", filename}, d.buildFFmpegArgs(sampleRate)...)
	args = append(args, "pipe:1")

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	logger.Debug("Running ffmpeg command", logging.Fields{
		"args": strings.Join(args, " "),
	})

	output, err := exec.CommandContext(ctx, d.config.FFmpegPath, args...).Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			logger.Error(err, "Ffmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
		}
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	samples := bytesToInt16(output)
	if len(samples) == 0 {
		return nil, fmt.Errorf("no audio samples decoded")
	}

	audio := &AudioData{
		Samples:    samples,
		SampleRate: sampleRate,
		Channels:   metadata.Channels,
		BitDepth:   16,
		Duration:   time.Duration(len(samples)) * time.Second / time.Duration(sampleRate),
		Source:     filename,
	}

	logger.Debug("FFmpeg decode completed successfully", logging.Fields{
		"input_sample_rate":  metadata.SampleRate,
		"input_channels":     metadata.Channels,
		"input_codec":        metadata.Codec,
		"output_samples":     len(samples),
		"output_sample_rate": sampleRate,
		"output_duration":    audio.Duration.Seconds(),
	})

	return audio, nil
}

// outputSampleRate is the configured target, or the source rate when unset
func (d *Decoder) outputSampleRate(metadata *AudioMetadata) int {
	if d.config.TargetSampleRate > 0 {
		return d.config.TargetSampleRate
	}
	return metadata.SampleRate
}

// buildFFmpegArgs builds the output arguments for signed 16-bit mono PCM
func (d *Decoder) buildFFmpegArgs(sampleRate int) []string {
	args := []string{
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
	}

	if d.config.MaxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.2f", d.config.MaxDuration.Seconds()))
	}

	// Suppress ffmpeg output
	return append(args, "-v", "error")
}

// bytesToInt16 converts raw little-endian 16-bit PCM to ints
func bytesToInt16(data []byte) []int {
	samples := make([]int, len(data)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(data[i*2:])))
	}
	return samples
}

// ValidateConfig validates the decoder configuration
func (d *Decoder) ValidateConfig() error {
	if d.config.TargetSampleRate < 0 {
		return fmt.Errorf("target sample rate must not be negative: %d", d.config.TargetSampleRate)
	}
	if d.config.MaxDuration < 0 {
		return fmt.Errorf("max duration must not be negative: %v", d.config.MaxDuration)
	}
	if d.config.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %v", d.config.Timeout)
	}
	return nil
}

// CheckFFmpeg checks that ffmpeg and ffprobe can be run
func (d *Decoder) CheckFFmpeg(ctx context.Context) error {
	if err := exec.CommandContext(ctx, d.config.FFmpegPath, "-version").Run(); err != nil {
		return fmt.Errorf("ffmpeg not found at %s: %w", d.config.FFmpegPath, err)
	}
	if err := exec.CommandContext(ctx, d.config.FFprobePath, "-version").Run(); err != nil {
		return fmt.Errorf("ffprobe not found at %s: %w", d.config.FFprobePath, err)
	}
	return nil
}
