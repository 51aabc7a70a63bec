package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/instrumentdiff/internal/core"
)

// DefaultSameLimit is how many same values a comparison lists.
const DefaultSameLimit = 5

const ruleWidth = 60

// Renderer writes human-readable reports.
type Renderer struct {
	Styles    Styles
	SameLimit int // same values listed before truncating; negative lists all
}

// New returns a renderer with the given styles and same-value limit.
func New(styles Styles, sameLimit int) *Renderer {
	return &Renderer{Styles: styles, SameLimit: sameLimit}
}

// printer accumulates the first write error so callers check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

// Comparison writes the summary and every bucket of c. Same values are
// truncated to SameLimit entries followed by "... and N more fields".
func (r *Renderer) Comparison(w io.Writer, c *core.Comparison) error {
	s := r.Styles
	p := &printer{w: w}
	rule := strings.Repeat("=", ruleWidth)

	p.line("")
	p.line("%s", rule)
	p.line("%s", s.Title.Render(fmt.Sprintf("COMPARISON: %s vs %s", c.First, c.Second)))
	p.line("%s", rule)

	p.line("")
	p.line("%s", s.Section.Render("SUMMARY:"))
	p.line("  Total fields compared: %d", c.Summary.TotalFields)
	p.line("  Different values: %d", c.Summary.DifferentFields)
	p.line("  Only in %s: %d", c.First, c.Summary.FieldsOnlyInFirst)
	p.line("  Only in %s: %d", c.Second, c.Summary.FieldsOnlyInSecond)
	p.line("  Same values: %d", c.Summary.SameFields)

	if len(c.Differences) > 0 {
		p.line("")
		p.line("%s", s.Section.Render("DIFFERENCES:"))
		for _, d := range c.Differences {
			p.line("  %s:", s.Key.Render(d.Column))
			p.line("    %s: %s", c.First, s.First.Render(d.First.Text()))
			p.line("    %s: %s", c.Second, s.Second.Render(d.Second.Text()))
		}
	}

	if len(c.OnlyInFirst) > 0 {
		p.line("")
		p.line("%s", s.Section.Render("ONLY IN "+c.First+":"))
		for _, f := range c.OnlyInFirst {
			p.line("  %s: %s", s.Key.Render(f.Column), s.First.Render(f.Display()))
		}
	}

	if len(c.OnlyInSecond) > 0 {
		p.line("")
		p.line("%s", s.Section.Render("ONLY IN "+c.Second+":"))
		for _, f := range c.OnlyInSecond {
			p.line("  %s: %s", s.Key.Render(f.Column), s.Second.Render(f.Display()))
		}
	}

	if len(c.Same) > 0 {
		p.line("")
		p.line("%s", s.Section.Render("SAME VALUES:"))
		shown := c.Same
		if r.SameLimit >= 0 && len(shown) > r.SameLimit {
			shown = shown[:r.SameLimit]
		}
		for _, f := range shown {
			p.line("  %s: %s", s.Key.Render(f.Column), s.Same.Render(f.Display()))
		}
		if rest := len(c.Same) - len(shown); rest > 0 {
			p.line("  %s", s.Muted.Render(fmt.Sprintf("... and %d more fields", rest)))
		}
	}

	return p.err
}

// Instruments writes the available instruments on one line.
func (r *Renderer) Instruments(w io.Writer, names []string) error {
	p := &printer{w: w}
	p.line("Available instruments: %s", strings.Join(names, ", "))
	return p.err
}

// Preview writes the sampled fields of each entry.
func (r *Renderer) Preview(w io.Writer, entries []core.PreviewEntry) error {
	s := r.Styles
	p := &printer{w: w}

	for _, e := range entries {
		p.line("")
		p.line("%s", s.Section.Render(e.Instrument+":"))
		if e.Err != nil {
			p.line("  %s", s.Warning.Render("error: "+e.Err.Error()))
			continue
		}
		if len(e.Fields) == 0 {
			p.line("  %s", s.Muted.Render("(no fields)"))
			continue
		}
		for _, f := range e.Fields {
			p.line("  %s: %s", s.Key.Render(f.Path), f.Value.Text())
		}
		if e.Remaining > 0 {
			p.line("  %s", s.Muted.Render(fmt.Sprintf("... and %d more fields", e.Remaining)))
		}
	}
	return p.err
}

// BuildSummary writes the outcome of a table build, one line per warning.
func (r *Renderer) BuildSummary(w io.Writer, res *core.BuildResult, path string) error {
	s := r.Styles
	p := &printer{w: w}

	for _, warn := range res.Warnings {
		p.line("%s", s.Warning.Render("skipped "+warn.Instrument+": "+warn.Err.Error()))
	}
	p.line("%s", s.Title.Render(fmt.Sprintf("Wrote %d instruments x %d columns to %s",
		res.Table.Len(), len(res.Table.Columns()), path)))
	p.line("%s", s.Muted.Render(fmt.Sprintf("%d of %d sources used in %s",
		res.Table.Len(), res.SourcesSeen, res.Duration.Round(time.Millisecond))))
	return p.err
}
