package audio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

const (
	// go-mp3 always emits interleaved signed 16-bit little-endian stereo.
	decodedChannels    = 2
	decodedSampleWidth = 2
	decodedFrameSize   = decodedChannels * decodedSampleWidth

	spectrumSize   = 2048
	waveformPoints = 4000
)

// Quality summarises an MP3 file the way the analysis tool prints it.
type Quality struct {
	Duration    time.Duration
	Channels    int // channels in the source stream
	SampleWidth int // bytes per decoded sample
	SampleRate  int
	// RMS is the root mean square of all decoded sample values.
	RMS          float64
	LoudnessDBFS float64
}

// Envelope is the min/max of the mono signal over one bucket of samples.
type Envelope struct {
	Time     float64 // seconds at bucket start
	Min, Max float64
}

// Analysis is Quality plus the data the plot needs.
type Analysis struct {
	Quality
	Waveform []Envelope
	// Head holds the first spectrumSize mono samples in [-1, 1].
	Head []float64
}

// Duration returns the playing time of an MP3 without decoding it fully.
func Duration(path string) (time.Duration, error) {
	f, err := openFile(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return frameDuration(d.Length()/decodedFrameSize, d.SampleRate()), nil
}

// Analyze decodes path once and computes its quality metrics, waveform
// envelope and spectrum window.
func Analyze(path string) (*Analysis, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	channels, err := frameChannels(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame header of %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	d, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	totalFrames := d.Length() / decodedFrameSize
	bucket := int64(1)
	if totalFrames > waveformPoints {
		bucket = totalFrames / waveformPoints
	}
	rate := d.SampleRate()

	a := &Analysis{Head: make([]float64, 0, spectrumSize)}
	var (
		sumSquares float64
		samples    int64
		frame      int64
		cur        Envelope
		frameBuf   [decodedFrameSize]byte
	)
	r := bufio.NewReaderSize(d, 64<<10)
	for {
		if _, err := io.ReadFull(r, frameBuf[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		left := float64(int16(binary.LittleEndian.Uint16(frameBuf[0:2])))
		right := float64(int16(binary.LittleEndian.Uint16(frameBuf[2:4])))
		sumSquares += left*left + right*right
		samples += 2

		mono := (left + right) / 2 / 32768
		if len(a.Head) < spectrumSize {
			a.Head = append(a.Head, mono)
		}

		if frame%bucket == 0 {
			if frame > 0 {
				a.Waveform = append(a.Waveform, cur)
			}
			cur = Envelope{Time: float64(frame) / float64(rate), Min: mono, Max: mono}
		}
		cur.Min = math.Min(cur.Min, mono)
		cur.Max = math.Max(cur.Max, mono)
		frame++
	}
	if frame > 0 {
		a.Waveform = append(a.Waveform, cur)
	}

	rms := 0.0
	if samples > 0 {
		rms = math.Sqrt(sumSquares / float64(samples))
	}
	a.Quality = Quality{
		Duration:     frameDuration(frame, rate),
		Channels:     channels,
		SampleWidth:  decodedSampleWidth,
		SampleRate:   rate,
		RMS:          rms,
		LoudnessDBFS: dbfs(rms),
	}
	return a, nil
}

func frameDuration(frames int64, rate int) time.Duration {
	if rate <= 0 || frames <= 0 {
		return 0
	}
	return time.Duration(float64(frames) / float64(rate) * float64(time.Second))
}

// dbfs converts an RMS of 16-bit samples to decibels relative to full scale.
func dbfs(rms float64) float64 {
	if rms <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms/32768)
}

// frameChannels reads the channel mode of the first MPEG audio frame,
// skipping a leading ID3v2 tag. Mode 3 is single channel.
func frameChannels(r io.Reader) (int, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(10)
	if err == nil && string(head[:3]) == "ID3" {
		size := int(head[6]&0x7f)<<21 | int(head[7]&0x7f)<<14 | int(head[8]&0x7f)<<7 | int(head[9]&0x7f)
		if head[5]&0x10 != 0 {
			size += 10 // footer
		}
		if _, err := br.Discard(10 + size); err != nil {
			return 0, err
		}
	}

	var prev byte
	first := true
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, errors.New("no MPEG frame sync found")
		}
		if !first && prev == 0xFF && b&0xE0 == 0xE0 {
			hdr, err := br.Peek(2)
			if err != nil {
				return 0, err
			}
			if hdr[1]>>6 == 3 {
				return 1, nil
			}
			return 2, nil
		}
		prev, first = b, false
	}
}
