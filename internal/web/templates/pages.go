// Package templates renders the HTML pages of the web server as templ
// components.
package templates

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/JonMunkholm/instrumentdiff/internal/core"
	"github.com/a-h/templ"
)

const pageCSS = `body{font-family:system-ui,sans-serif;margin:2rem;color:#101F38}
table{border-collapse:collapse;margin:1rem 0}td,th{border:1px solid #dce0e5;padding:.3rem .6rem;text-align:left}
.first{color:#c62828}.second{color:#00796b}.muted{color:#6c7a89}.error{color:#e53935}`

// writer accumulates the first write error.
type writer struct {
	w   io.Writer
	err error
}

func (p *writer) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *writer) text(s string) { p.raw(templ.EscapeString(s)) }

func (p *writer) rawf(format string, args ...any) { p.raw(fmt.Sprintf(format, args...)) }

func page(title string, body func(p *writer)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &writer{w: w}
		p.raw("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>")
		p.text(title)
		p.raw("</title><style>" + pageCSS + "</style></head><body>")
		body(p)
		p.raw("</body></html>")
		return p.err
	})
}

// CompareURL returns the page URL comparing first and second.
func CompareURL(first, second string) string {
	q := url.Values{}
	q.Set("first", first)
	q.Set("second", second)
	return "/compare?" + q.Encode()
}

// InstrumentList renders the index page: every instrument with a link
// comparing it to the next one.
func InstrumentList(instruments []string, columns int) templ.Component {
	return page("Instruments", func(p *writer) {
		p.raw("<h1>Instruments</h1>")
		p.rawf("<p class=\"muted\">%d instruments, %d columns</p>", len(instruments), columns)
		p.raw("<form action=\"/compare\" method=\"get\">")
		p.raw("<input name=\"first\" placeholder=\"first instrument\"> ")
		p.raw("<input name=\"second\" placeholder=\"second instrument\"> ")
		p.raw("<button type=\"submit\">Compare</button></form>")
		p.raw("<table><tr><th>#</th><th>Instrument</th><th></th></tr>")
		for i, name := range instruments {
			p.rawf("<tr><td>%d</td><td>", i)
			p.text(name)
			p.raw("</td><td>")
			if i+1 < len(instruments) {
				p.raw("<a href=\"")
				p.text(CompareURL(name, instruments[i+1]))
				p.raw("\">compare with ")
				p.text(instruments[i+1])
				p.raw("</a>")
			}
			p.raw("</td></tr>")
		}
		p.raw("</table>")
	})
}

// ComparisonPage renders c. Same values are limited to sameLimit rows;
// a negative limit shows all.
func ComparisonPage(c *core.Comparison, sameLimit int) templ.Component {
	return page(c.First+" vs "+c.Second, func(p *writer) {
		p.raw("<h1>")
		p.text(c.First + " vs " + c.Second)
		p.raw("</h1><p><a href=\"/\">all instruments</a></p>")

		sum := c.Summary
		p.raw("<table>")
		p.rawf("<tr><th>Total fields compared</th><td>%d</td></tr>", sum.TotalFields)
		p.rawf("<tr><th>Different values</th><td>%d</td></tr>", sum.DifferentFields)
		p.raw("<tr><th>Only in ")
		p.text(c.First)
		p.rawf("</th><td>%d</td></tr>", sum.FieldsOnlyInFirst)
		p.raw("<tr><th>Only in ")
		p.text(c.Second)
		p.rawf("</th><td>%d</td></tr>", sum.FieldsOnlyInSecond)
		p.rawf("<tr><th>Same values</th><td>%d</td></tr>", sum.SameFields)
		p.raw("</table>")

		if len(c.Differences) > 0 {
			p.raw("<h2>Differences</h2><table><tr><th>Field</th><th>")
			p.text(c.First)
			p.raw("</th><th>")
			p.text(c.Second)
			p.raw("</th></tr>")
			for _, d := range c.Differences {
				p.raw("<tr><td>")
				p.text(d.Column)
				p.raw("</td><td class=\"first\">")
				p.text(d.First.Text())
				p.raw("</td><td class=\"second\">")
				p.text(d.Second.Text())
				p.raw("</td></tr>")
			}
			p.raw("</table>")
		}

		bucket(p, "Only in "+c.First, "first", c.OnlyInFirst, -1)
		bucket(p, "Only in "+c.Second, "second", c.OnlyInSecond, -1)
		bucket(p, "Same values", "", c.Same, sameLimit)
	})
}

func bucket(p *writer, title, class string, fields []core.FieldValue, limit int) {
	if len(fields) == 0 {
		return
	}
	shown := fields
	if limit >= 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	p.raw("<h2>")
	p.text(title)
	p.raw("</h2><table>")
	for _, f := range shown {
		p.raw("<tr><td>")
		p.text(f.Column)
		p.rawf("</td><td class=%q>", class)
		p.text(f.Display())
		p.raw("</td></tr>")
	}
	p.raw("</table>")
	if rest := len(fields) - len(shown); rest > 0 {
		p.rawf("<p class=\"muted\">... and %d more fields</p>", rest)
	}
}

// ErrorPage renders a user-facing error.
func ErrorPage(msg core.UserMessage) templ.Component {
	return page("Error", func(p *writer) {
		p.raw("<h1 class=\"error\">")
		p.text(msg.Message)
		p.raw("</h1><p>")
		p.text(msg.Action)
		p.raw("</p><p class=\"muted\">Code: ")
		p.text(msg.Code)
		p.raw("</p><p><a href=\"/\">all instruments</a></p>")
	})
}
