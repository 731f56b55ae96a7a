package audio

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want Class
	}{
		{0, ClassShort},
		{9999 * time.Millisecond, ClassShort},
		{10 * time.Second, ClassMedium},
		{29 * time.Second, ClassMedium},
		{30 * time.Second, ClassLong},
		{2 * time.Hour, ClassLong},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.d), "duration %s", tt.d)
	}
}

func TestClassifyDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp3", "a.MP3", "c.mp3", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.mp3"), 0o755))

	durations := map[string]time.Duration{
		"a.MP3": 5 * time.Second,
		"b.mp3": 45 * time.Second,
	}
	measure := func(path string) (time.Duration, error) {
		d, ok := durations[filepath.Base(path)]
		if !ok {
			return 0, errors.New("corrupt frame")
		}
		return d, nil
	}

	got, err := ClassifyDir(dir, measure)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "a.MP3", got[0].Name)
	assert.Equal(t, ClassShort, got[0].Class)
	assert.Equal(t, "b.mp3", got[1].Name)
	assert.Equal(t, ClassLong, got[1].Class)
	assert.Equal(t, "c.mp3", got[2].Name)
	assert.Error(t, got[2].Err)
	assert.Empty(t, got[2].Class)
}

func TestClassifyDirMissing(t *testing.T) {
	_, err := ClassifyDir(filepath.Join(t.TempDir(), "nope"), nil)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestReadMetadataMissingFile(t *testing.T) {
	_, err := ReadMetadata(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestReadMetadataWithoutTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.mp3")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0x00, 0x11, 0x22}, 200), 0o644))

	_, err := ReadMetadata(path)
	assert.ErrorIs(t, err, ErrNoTag)
}

func TestAnalyzeMissingFile(t *testing.T) {
	_, err := Analyze(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = Duration(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestFrameChannels(t *testing.T) {
	// MPEG-1 Layer III, 128 kbps, 44.1 kHz; last byte carries the channel mode.
	stereo := []byte{0xFF, 0xFB, 0x90, 0x00}
	mono := []byte{0xFF, 0xFB, 0x90, 0xC0}

	n, err := frameChannels(bytes.NewReader(append([]byte{0x00, 0x12}, stereo...)))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// ID3v2 header with a synchsafe size of 4 bytes, then a mono frame.
	withTag := append([]byte{'I', 'D', '3', 4, 0, 0, 0, 0, 0, 4, 0xFF, 0xFF, 0xFF, 0xFF}, mono...)
	n, err = frameChannels(bytes.NewReader(withTag))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = frameChannels(bytes.NewReader([]byte{0x00, 0x01, 0x02}))
	assert.Error(t, err)
}

func TestDBFS(t *testing.T) {
	assert.InDelta(t, 0.0, dbfs(32768), 1e-9)
	assert.InDelta(t, -6.02, dbfs(16384), 0.01)
	assert.True(t, math.IsInf(dbfs(0), -1))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "my_great_episode", Slug("  My Great Episode "))
	assert.Equal(t, "already_slugged", Slug("already_slugged"))
	assert.Equal(t, "", Slug("   "))
	assert.Equal(t, "ac_dc_live", Slug("AC/DC Live"))
	assert.Equal(t, "a_b", Slug(`a\b`))
}

func TestRenderPlotTitleWithSlash(t *testing.T) {
	a := &Analysis{
		Waveform: []Envelope{{Time: 0, Min: -0.5, Max: 0.5}, {Time: 1, Min: -0.2, Max: 0.3}},
		Head:     []float64{0.1, -0.1, 0.2},
	}
	outDir := t.TempDir()

	path, err := RenderPlot(a, "AC/DC Live", outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "ac_dc_live.jpeg"), path)
	assert.FileExists(t, path)
}

func TestSpectrumPeak(t *testing.T) {
	// A pure tone on bin 64 must dominate the spectrum.
	head := make([]float64, spectrumSize)
	for i := range head {
		head[i] = math.Sin(2 * math.Pi * 64 * float64(i) / spectrumSize)
	}

	xys := Spectrum(head)
	require.Len(t, xys, spectrumSize/2+1)

	peak := 0
	for i := range xys {
		if xys[i].Y > xys[peak].Y {
			peak = i
		}
	}
	assert.Equal(t, 64, peak)
}

func TestRenderPlotWritesJPEG(t *testing.T) {
	a := &Analysis{Head: make([]float64, 512)}
	for i := 0; i < 100; i++ {
		v := math.Sin(float64(i) / 5)
		a.Waveform = append(a.Waveform, Envelope{Time: float64(i) / 10, Min: -math.Abs(v), Max: math.Abs(v)})
	}
	for i := range a.Head {
		a.Head[i] = math.Sin(float64(i) / 3)
	}

	wd, err := os.Getwd()
	require.NoError(t, err)
	outDir := filepath.Join(t.TempDir(), "images")

	path, err := RenderPlot(a, "Test Episode One", outDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "test_episode_one.jpeg"), path)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte{0xFF, 0xD8}), "JPEG magic")

	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, after, "working directory must not change")
}

func TestRenderPlotRejectsEmptyTitle(t *testing.T) {
	_, err := RenderPlot(&Analysis{}, "  ", t.TempDir())
	assert.Error(t, err)
}
