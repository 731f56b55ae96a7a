package audio

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	monoFile   = filepath.Join("testdata", "speech_mono.mp3")
	stereoFile = filepath.Join("testdata", "tagged_stereo.mp3")
)

func TestReadMetadataTagged(t *testing.T) {
	m, err := ReadMetadata(stereoFile)
	require.NoError(t, err)

	assert.Equal(t, "Test Title", m.Title)
	assert.Equal(t, "Test Artist", m.Artist)
	assert.Equal(t, "Test Album", m.Album)
	assert.Equal(t, "Jazz", m.Genre)
	assert.Equal(t, 3, m.Track)
	assert.Equal(t, 6, m.TrackTotal)
	assert.Equal(t, 2000, m.Year)
	assert.Equal(t, "ID3v2.4", m.Format)
	assert.Equal(t, "MP3", m.FileType)
}

func TestDuration(t *testing.T) {
	d, err := Duration(stereoFile)
	require.NoError(t, err)
	assert.InDelta(t, 3.45, d.Seconds(), 0.2)

	d, err = Duration(monoFile)
	require.NoError(t, err)
	assert.InDelta(t, 75.0, d.Seconds(), 1.0)
}

func TestAnalyzeStereo(t *testing.T) {
	a, err := Analyze(stereoFile)
	require.NoError(t, err)

	assert.Equal(t, 44100, a.SampleRate)
	assert.Equal(t, 2, a.Channels)
	assert.Equal(t, 2, a.SampleWidth)
	assert.InDelta(t, 3.45, a.Duration.Seconds(), 0.2)
	assert.Greater(t, a.RMS, 0.0)
	assert.Less(t, a.LoudnessDBFS, 0.0)
	assert.Len(t, a.Head, spectrumSize)
	assert.NotEmpty(t, a.Waveform)
	assert.LessOrEqual(t, len(a.Waveform), 2*waveformPoints)
}

func TestAnalyzeMono(t *testing.T) {
	a, err := Analyze(monoFile)
	require.NoError(t, err)

	assert.Equal(t, 22050, a.SampleRate)
	assert.Equal(t, 1, a.Channels)
	assert.InDelta(t, 75.0, a.Duration.Seconds(), 1.0)
	assert.Greater(t, a.RMS, 0.0)
}

func TestClassifyDirDecodesFiles(t *testing.T) {
	got, err := ClassifyDir("testdata", nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "speech_mono.mp3", got[0].Name)
	assert.NoError(t, got[0].Err)
	assert.Equal(t, ClassLong, got[0].Class)

	assert.Equal(t, "tagged_stereo.mp3", got[1].Name)
	assert.NoError(t, got[1].Err)
	assert.Equal(t, ClassShort, got[1].Class)
	assert.Less(t, got[1].Duration, 10*time.Second)
}
