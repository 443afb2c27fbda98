package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gookit/color"

	"earnings-tracker/internal/earnings"
)

const (
	noDateLine = "No Date Available"
	emptyLine  = "No earnings data found for the requested companies."

	easternLong  = "Eastern Time (ET)"
	easternShort = "Eastern Time"
)

// Renderer prints the console side of a run: the intro, per-ticker
// progress, the grouped summary and the export trailer.
type Renderer struct {
	out   io.Writer
	color bool

	// zone labels used in the headers
	zoneLong  string
	zoneShort string
}

// Option configures a Renderer
type Option func(*Renderer)

// WithColor toggles bold group headers. Bold is dropped anyway when the
// output is not a terminal.
func WithColor(enabled bool) Option {
	return func(r *Renderer) {
		r.color = enabled
	}
}

// WithZone names the display zone in the headers. Eastern Time is the
// default; any other zone is labelled by its IANA name.
func WithZone(loc *time.Location) Option {
	return func(r *Renderer) {
		if loc == nil || loc.String() == earnings.EasternZone {
			r.zoneLong, r.zoneShort = easternLong, easternShort
			return
		}
		r.zoneLong, r.zoneShort = loc.String(), loc.String()
	}
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer, opts ...Option) *Renderer {
	r := &Renderer{out: out, zoneLong: easternLong, zoneShort: easternShort}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

func (r *Renderer) heading(s string) string {
	if !r.color {
		return s
	}
	return color.Bold.Sprint(s)
}

// Intro prints the run header.
func (r *Renderer) Intro(total int) {
	r.println("All times will be displayed in " + r.zoneLong)
	r.println(fmt.Sprintf("Processing %d companies...", total))
}

// Progress prints the line shown before each lookup.
func (r *Renderer) Progress(index, total int, ticker string) {
	r.println(fmt.Sprintf("[%d/%d] Getting data for %s", index, total, ticker))
}

// Result prints the per-ticker diagnostic line.
func (r *Renderer) Result(rec earnings.Record) {
	if rec.HasDate() {
		r.println(fmt.Sprintf("  Found earnings date in '%s' for %s", rec.Source, rec.Ticker))
		return
	}
	r.println(fmt.Sprintf("  Warning: No earnings date found for %s", rec.Ticker))
}

// Summary prints the grouped listing followed by the unavailable section.
func (r *Renderer) Summary(report *earnings.Report) {
	r.println()
	if report.Len() == 0 {
		r.println(emptyLine)
		return
	}

	r.println(fmt.Sprintf("Earnings Dates (%s):", r.zoneShort))
	for _, g := range report.Groups {
		r.println()
		words := g.Date
		if len(g.Records) > 0 && g.Records[0].Earnings != nil {
			words = g.Records[0].Earnings.DateWords()
		}
		r.println(r.heading(fmt.Sprintf("%s (%s)", g.Date, words)))
		for _, rec := range g.Records {
			r.println(Line(rec))
		}
	}

	if len(report.Unavailable) > 0 {
		r.println()
		r.println(r.heading(noDateLine))
		for _, rec := range report.Unavailable {
			r.println(Line(rec))
		}
	}
}

// Saved prints the export trailer.
func (r *Renderer) Saved(path string) {
	r.println(fmt.Sprintf("Results saved to %s", path))
	r.println("Note: All times in the CSV are in " + r.zoneLong)
}

// Line formats one record: "  TICKER (Company) - HH:MM:SS TZ". The company
// part is dropped when unknown and the time part for date-only records.
func Line(rec earnings.Record) string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(rec.Ticker)
	if rec.CompanyName != "" {
		fmt.Fprintf(&b, " (%s)", rec.CompanyName)
	}
	if et := rec.Earnings; et != nil && et.HasTime {
		fmt.Fprintf(&b, " - %s %s", et.Clock(), et.Zone())
	}
	return b.String()
}
