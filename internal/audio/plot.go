package audio

import (
	"fmt"
	"math/cmplx"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	plotWidth  = 12 * vg.Inch
	plotHeight = 8 * vg.Inch
	plotDPI    = 300
)

var slugReplacer = strings.NewReplacer(" ", "_", "/", "_", `\`, "_")

// Slug turns a title into a file stem: lower case, trimmed, spaces and
// path separators to "_".
func Slug(title string) string {
	return slugReplacer.Replace(strings.ToLower(strings.TrimSpace(title)))
}

// RenderPlot draws the waveform envelope above the magnitude spectrum of
// the first 2048 samples and writes <outDir>/<slug>.jpeg. outDir is created
// when missing.
func RenderPlot(a *Analysis, title, outDir string) (string, error) {
	stem := Slug(title)
	if stem == "" {
		return "", fmt.Errorf("cannot derive a file name from title %q", title)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", outDir, err)
	}

	wave, err := waveformPlot(a, title)
	if err != nil {
		return "", err
	}
	spectrum, err := spectrumPlot(a.Head)
	if err != nil {
		return "", err
	}

	img := vgimg.NewWith(vgimg.UseWH(plotWidth, plotHeight), vgimg.UseDPI(plotDPI))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 2, Cols: 1,
		PadX: vg.Millimeter, PadY: 4 * vg.Millimeter,
		PadTop: vg.Millimeter, PadBottom: vg.Millimeter,
		PadLeft: vg.Millimeter, PadRight: vg.Millimeter,
	}
	plots := [][]*plot.Plot{{wave}, {spectrum}}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		plots[j][0].Draw(canvases[j][0])
	}

	path := filepath.Join(outDir, stem+".jpeg")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	jpg := vgimg.JpegCanvas{Canvas: img}
	if _, err := jpg.WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

func waveformPlot(a *Analysis, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Amplitude"

	upper := make(plotter.XYs, len(a.Waveform))
	lower := make(plotter.XYs, len(a.Waveform))
	for i, e := range a.Waveform {
		upper[i] = plotter.XY{X: e.Time, Y: e.Max}
		lower[i] = plotter.XY{X: e.Time, Y: e.Min}
	}
	for _, xys := range []plotter.XYs{upper, lower} {
		if len(xys) == 0 {
			continue
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		p.Add(l)
	}
	return p, nil
}

func spectrumPlot(head []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Spectrum"
	p.X.Label.Text = "Frequency Bin"
	p.Y.Label.Text = "Amplitude"

	l, err := plotter.NewLine(Spectrum(head))
	if err != nil {
		return nil, err
	}
	p.Add(l)
	return p, nil
}

// Spectrum returns the magnitude of the real FFT of the first 2048 samples,
// zero padded when fewer are available. Point i is frequency bin i.
func Spectrum(head []float64) plotter.XYs {
	seq := make([]float64, spectrumSize)
	copy(seq, head)

	coeffs := fourier.NewFFT(spectrumSize).Coefficients(nil, seq)
	xys := make(plotter.XYs, len(coeffs))
	for i, c := range coeffs {
		xys[i] = plotter.XY{X: float64(i), Y: cmplx.Abs(c)}
	}
	return xys
}
