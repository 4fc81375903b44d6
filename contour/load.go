package contour

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Load parses a frame dump with one frame per line:
//
//	time pitch power [voicing]
//
// Fields are whitespace separated; blank lines and lines starting with '#'
// are skipped. Any columns after power are ignored.
func Load(r io.Reader) (*Table, error) {
	var times, pitch, power []float64

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("line %d: expected time, pitch and power, got %d fields", lineNo, len(fields))
		}

		var values [3]float64
		for i := range values {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			values[i] = v
		}

		times = append(times, values[0])
		pitch = append(pitch, values[1])
		power = append(power, values[2])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read contour: %w", err)
	}

	return New(times, pitch, power)
}

// LoadFile reads a frame dump from disk
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open contour: %w", err)
	}
	defer f.Close()

	table, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}
