package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Class buckets a recording by its length.
type Class string

const (
	ClassShort  Class = "Short"
	ClassMedium Class = "Medium"
	ClassLong   Class = "Long"
)

const (
	shortLimit  = 10 * time.Second
	mediumLimit = 30 * time.Second
)

// Classify maps a duration to Short (< 10s), Medium (< 30s) or Long.
func Classify(d time.Duration) Class {
	switch {
	case d < shortLimit:
		return ClassShort
	case d < mediumLimit:
		return ClassMedium
	default:
		return ClassLong
	}
}

// Classification is the result for one file in a directory scan.
type Classification struct {
	Name     string
	Path     string
	Duration time.Duration
	Class    Class
	Err      error
}

// DurationFunc measures a file; Duration is the default.
type DurationFunc func(path string) (time.Duration, error)

// ClassifyDir classifies every .mp3 file directly inside dir, in name
// order. A file that cannot be measured keeps its error and the scan goes
// on.
func ClassifyDir(dir string, measure DurationFunc) ([]Classification, error) {
	if measure == nil {
		measure = Duration
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, dir)
		}
		return nil, err
	}

	var out []Classification
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".mp3") {
			continue
		}
		c := Classification{Name: e.Name(), Path: filepath.Join(dir, e.Name())}
		c.Duration, c.Err = measure(c.Path)
		if c.Err == nil {
			c.Class = Classify(c.Duration)
		}
		out = append(out, c)
	}
	return out, nil
}
