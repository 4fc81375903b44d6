package transcode

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWAV writes interleaved 16-bit samples to a temporary WAV file
func writeWAV(t *testing.T, sampleRate, channels int, data []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "input.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	encoder := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	require.NoError(t, encoder.Write(&audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, encoder.Close())

	return path
}

func TestDecodeFileMonoWAV(t *testing.T) {
	data := []int{0, 100, -100, 32767, -32768, 5, -5, 0}
	path := writeWAV(t, 16000, 1, data)

	decoded, err := NewDecoder(nil).DecodeFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, data, decoded.Samples)
	assert.Equal(t, 16000, decoded.SampleRate)
	assert.Equal(t, 1, decoded.Channels)
	assert.Equal(t, 16, decoded.BitDepth)
	assert.Equal(t, path, decoded.Source)
	assert.Equal(t, time.Duration(len(data))*time.Second/16000, decoded.Duration)
}

func TestDecodeFileStereoWAVIsDownmixed(t *testing.T) {
	data := []int{100, 300, -100, -300, 7, 8}
	path := writeWAV(t, 8000, 2, data)

	decoded, err := NewDecoder(nil).DecodeFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []int{200, -200, 8}, decoded.Samples)
	assert.Equal(t, 2, decoded.Channels)
}

func TestDecodeFileLongWAV(t *testing.T) {
	data := make([]int, 3*readBlock+17)
	for i := range data {
		data[i] = i%2000 - 1000
	}
	path := writeWAV(t, 16000, 1, data)

	decoded, err := NewDecoder(nil).DecodeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, data, decoded.Samples)
}

// wavWithTrailingChunk builds a 16-bit mono WAV whose data chunk is
// followed by a LIST/INFO chunk, the layout ffmpeg writes by default.
func wavWithTrailingChunk(sampleRate int, data []int) []byte {
	info := []byte("INFOISFT\x0e\x00\x00\x00Lavf61.7.100\x00\x00")

	var b bytes.Buffer
	le := binary.LittleEndian
	b.WriteString("RIFF")
	binary.Write(&b, le, uint32(4+(8+16)+(8+2*len(data))+(8+len(info))))
	b.WriteString("WAVE")

	b.WriteString("fmt ")
	binary.Write(&b, le, uint32(16))
	binary.Write(&b, le, uint16(1)) // PCM
	binary.Write(&b, le, uint16(1))
	binary.Write(&b, le, uint32(sampleRate))
	binary.Write(&b, le, uint32(2*sampleRate))
	binary.Write(&b, le, uint16(2))
	binary.Write(&b, le, uint16(16))

	b.WriteString("data")
	binary.Write(&b, le, uint32(2*len(data)))
	for _, v := range data {
		binary.Write(&b, le, int16(v))
	}

	b.WriteString("LIST")
	binary.Write(&b, le, uint32(len(info)))
	b.Write(info)

	return b.Bytes()
}

func TestDecodeWAVIgnoresTrailingChunk(t *testing.T) {
	for _, n := range []int{1000, 2*readBlock - 3} {
		data := make([]int, n)
		for i := range data {
			data[i] = i%600 - 300
		}

		decoded, err := NewDecoder(nil).DecodeWAV(bytes.NewReader(wavWithTrailingChunk(16000, data)))
		require.NoError(t, err, "%d samples", n)
		assert.Equal(t, data, decoded.Samples, "%d samples", n)
	}
}

func TestDecodeWAVMaxDurationWithTrailingChunk(t *testing.T) {
	data := make([]int, 1600)
	for i := range data {
		data[i] = i
	}

	decoder := NewDecoder(&DecoderConfig{MaxDuration: 50 * time.Millisecond})
	decoded, err := decoder.DecodeWAV(bytes.NewReader(wavWithTrailingChunk(8000, data)))
	require.NoError(t, err)
	assert.Equal(t, data[:400], decoded.Samples)
}

func TestDecodeFileMaxDuration(t *testing.T) {
	data := make([]int, 1600)
	for i := range data {
		data[i] = i
	}
	path := writeWAV(t, 16000, 1, data)

	config := DefaultDecoderConfig()
	config.MaxDuration = 50 * time.Millisecond
	decoded, err := NewDecoder(config).DecodeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, data[:800], decoded.Samples)
}

func TestDecodeFileUnknownFormatNeedsFFmpeg(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0o644))
	missing := filepath.Join(t.TempDir(), "no-such-tool")

	config := DefaultDecoderConfig()
	config.FFmpegPath = missing
	config.FFprobePath = missing
	_, err := NewDecoder(config).DecodeFile(context.Background(), path)
	assert.ErrorContains(t, err, "without ffmpeg")
	assert.ErrorContains(t, err, "ffmpeg not found")
}

func TestDecodeFileResampleNeedsFFmpeg(t *testing.T) {
	path := writeWAV(t, 8000, 1, []int{1, 2, 3, 4})

	config := DefaultDecoderConfig()
	config.TargetSampleRate = 16000
	config.FFmpegPath = filepath.Join(t.TempDir(), "no-such-ffmpeg")
	_, err := NewDecoder(config).DecodeFile(context.Background(), path)
	assert.ErrorContains(t, err, "ffmpeg not found")
}

func TestCheckFFmpeg(t *testing.T) {
	config := DefaultDecoderConfig()
	config.FFmpegPath = filepath.Join(t.TempDir(), "no-such-ffmpeg")
	assert.ErrorContains(t, NewDecoder(config).CheckFFmpeg(context.Background()), "ffmpeg not found")
}

func TestDecodeFileMissing(t *testing.T) {
	_, err := NewDecoder(nil).DecodeFile(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

func TestAppendSamples(t *testing.T) {
	tests := []struct {
		name     string
		block    any
		expected []int
	}{
		{"int16", []int16{-2, 0, 3}, []int{-2, 0, 3}},
		{"uint8 recentred", []uint8{0, 128, 255}, []int{-128, 0, 127}},
		{"float32 scaled and clipped", []float32{0, 0.5, -1, 2}, []int{0, 16384, -32767, 32767}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := appendSamples(nil, tc.block)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out)
		})
	}

	_, err := appendSamples(nil, []int32{1})
	assert.Error(t, err)
}

func TestDownmix(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, downmix([]int{1, 2, 3}, 1))
	assert.Equal(t, []int{2, -3}, downmix([]int{1, 3, -2, -4, 9}, 2))
	assert.Equal(t, []int{1}, downmix([]int{0, 1, 2}, 3))
}

func TestBytesToInt16(t *testing.T) {
	raw := []byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x80, 0xff, 0x7f, 0x42}
	assert.Equal(t, []int{1, -1, -32768, 32767}, bytesToInt16(raw))
}

func TestParseFFprobeOutput(t *testing.T) {
	output := `{"streams":[{"codec_type":"audio","codec_name":"mp3","sample_rate":"22050",
		"channels":2,"duration":"1.5","bit_rate":"128000","codec_long_name":"MP3"}]}`

	metadata, err := parseFFprobeOutput([]byte(output))
	require.NoError(t, err)
	assert.Equal(t, &AudioMetadata{
		SampleRate: 22050,
		Channels:   2,
		Codec:      "mp3",
		Duration:   1.5,
		Bitrate:    128000,
		Format:     "MP3",
	}, metadata)

	errorCases := map[string]string{
		"no streams":      `{"streams":[]}`,
		"video stream":    `{"streams":[{"codec_type":"video","sample_rate":"22050","channels":1}]}`,
		"bad sample rate": `{"streams":[{"codec_type":"audio","sample_rate":"n/a","channels":1}]}`,
		"bad channels":    `{"streams":[{"codec_type":"audio","sample_rate":"22050","channels":0}]}`,
		"not json":        `streams`,
	}
	for name, input := range errorCases {
		t.Run(name, func(t *testing.T) {
			_, err := parseFFprobeOutput([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestBuildFFmpegArgs(t *testing.T) {
	config := DefaultDecoderConfig()
	config.MaxDuration = 2 * time.Second
	d := NewDecoder(config)

	args := d.buildFFmpegArgs(16000)
	assert.Equal(t, []string{
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		"-t", "2.00",
		"-v", "error",
	}, args)

	assert.Equal(t, 44100, d.outputSampleRate(&AudioMetadata{SampleRate: 44100}))
	config.TargetSampleRate = 8000
	assert.Equal(t, 8000, d.outputSampleRate(&AudioMetadata{SampleRate: 44100}))
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, NewDecoder(nil).ValidateConfig())

	config := DefaultDecoderConfig()
	config.TargetSampleRate = -1
	assert.Error(t, NewDecoder(config).ValidateConfig())

	config = DefaultDecoderConfig()
	config.Timeout = -time.Second
	assert.Error(t, NewDecoder(config).ValidateConfig())
}
