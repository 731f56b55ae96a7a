// Package report renders pipeline results for a terminal. The core packages
// return typed values and never print; the CLIs hand those values here.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/user/audio-harvester/internal/audio"
	"github.com/user/audio-harvester/internal/domain"
)

var (
	okColor   = color.New(color.FgHiGreen)
	errColor  = color.New(color.FgRed)
	skipColor = color.New(color.FgYellow)
	keyColor  = color.New(color.FgCyan)
)

// Printer writes human readable reports to out.
type Printer struct {
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Harvest prints one line per outcome in task order followed by a summary
// table.
func (p *Printer) Harvest(r *domain.HarvestReport) {
	if r.ExtractErr != nil {
		errColor.Fprintf(p.out, "Error accessing webpage: %v\n", r.ExtractErr)
	}
	for _, o := range r.Outcomes {
		switch o.Status {
		case domain.StatusSucceeded:
			okColor.Fprintf(p.out, "Audio file downloaded successfully: %s\n", o.Task.Destination)
		case domain.StatusSkipped:
			skipColor.Fprintf(p.out, "Skipped %s: %v\n", o.Task.Link, o.Err)
		default:
			errColor.Fprintf(p.out, "Error downloading audio file %s: %v\n", o.Task.Link, o.Err)
		}
	}

	table := tablewriter.NewWriter(p.out)
	table.SetHeader([]string{"Run", "Links", "Succeeded", "Failed", "Skipped", "Bytes", "Took"})
	table.SetBorder(false)
	table.Append([]string{
		r.RunID,
		strconv.Itoa(len(r.Links)),
		strconv.Itoa(r.Succeeded()),
		strconv.Itoa(r.Failed()),
		strconv.Itoa(r.Skipped()),
		strconv.FormatInt(r.BytesWritten(), 10),
		r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
	})
	table.Render()
}

// Classifications prints the bucket of every file and a per-class count.
func (p *Printer) Classifications(cs []audio.Classification) {
	counts := make(map[audio.Class]int)
	for _, c := range cs {
		if c.Err != nil {
			errColor.Fprintf(p.out, "Could not classify '%s': %v\n", c.Name, c.Err)
			continue
		}
		counts[c.Class]++
		fmt.Fprintf(p.out, "Speech file '%s' classified as %s speech.\n", c.Name, c.Class)
	}

	table := tablewriter.NewWriter(p.out)
	table.SetHeader([]string{"Class", "Files"})
	table.SetBorder(false)
	for _, class := range []audio.Class{audio.ClassShort, audio.ClassMedium, audio.ClassLong} {
		table.Append([]string{string(class), strconv.Itoa(counts[class])})
	}
	table.Render()
}

// FileNotFound reports a path the user named that does not exist.
func (p *Printer) FileNotFound(path string) {
	errColor.Fprintf(p.out, "File not found: %s\n", path)
}

// Metadata prints the tag fields of one file.
func (p *Printer) Metadata(m *audio.Metadata) {
	p.field("Title", m.Title)
	p.field("Artist", m.Artist)
	p.field("Album", m.Album)
	p.field("Genre", m.Genre)
	p.field("Track Number", strconv.Itoa(m.Track))
	p.field("Year", strconv.Itoa(m.Year))
	p.field("Format", m.Format)
}

// Quality prints the measured properties of one file.
func (p *Printer) Quality(q audio.Quality) {
	p.field("Duration", fmt.Sprintf("%.2f seconds", q.Duration.Seconds()))
	p.field("Channels", strconv.Itoa(q.Channels))
	p.field("Sample Width", fmt.Sprintf("%d bytes", q.SampleWidth))
	p.field("Frame Rate", fmt.Sprintf("%d Hz", q.SampleRate))
	p.field("RMS", fmt.Sprintf("%.2f", q.RMS))
	p.field("Loudness", fmt.Sprintf("%.2f dB", q.LoudnessDBFS))
}

func (p *Printer) field(key, value string) {
	keyColor.Fprintf(p.out, "%s: ", key)
	fmt.Fprintln(p.out, value)
}
