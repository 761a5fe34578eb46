// Package link finds video-meeting URLs in calendar event metadata.
package link

import (
	"regexp"
	"strings"

	"github.com/guilherme-santos/zoomlauncher/internal"
)

// Extractor matches meeting links of a single conferencing provider.
type Extractor struct {
	name     string
	patterns []*regexp.Regexp
}

// Zoom matches https://<sub>.zoom.us/j/... and https://zoom.us/j/... links.
var Zoom = NewExtractor("zoom", "zoom.us")

// NewExtractor builds an extractor for a provider whose meeting links look
// like https://[<sub>.]<domain>/j/<id-and-query>. name is the substring
// native links and entry points must contain to be accepted.
func NewExtractor(name, domain string) *Extractor {
	d := regexp.QuoteMeta(domain)
	return &Extractor{
		name: strings.ToLower(name),
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)https://[\w-]+\.` + d + `/j/[\w?=&-]+`),
			regexp.MustCompile(`(?i)https://` + d + `/j/[\w?=&-]+`),
		},
	}
}

func (e *Extractor) Name() string {
	return e.name
}

// Find returns the first meeting link in text. Patterns are tried in order,
// so a subdomain link wins over a bare-domain one anywhere in the text.
func (e *Extractor) Find(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, p := range e.patterns {
		if m := p.FindString(text); m != "" {
			return m, true
		}
	}
	return "", false
}

// Extract looks for a link in location, description, the native
// conferencing link and the video entry points, in that order.
func (e *Extractor) Extract(ev *internal.Event) (string, bool) {
	for _, text := range []string{ev.Location, ev.Description} {
		if url, ok := e.Find(text); ok {
			return url, true
		}
	}
	if e.mentionsProvider(ev.HangoutLink) {
		return ev.HangoutLink, true
	}
	for _, ep := range ev.EntryPoints {
		if ep.Type == internal.EntryPointVideo && e.mentionsProvider(ep.URI) {
			return ep.URI, true
		}
	}
	return "", false
}

func (e *Extractor) mentionsProvider(s string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), e.name)
}
