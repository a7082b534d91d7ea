// Package directive extracts blocking directives from calendar event
// descriptions. A directive lives between two "##blocking" markers and lists
// its targets as "block_apps: a, b; block_websites: x, y;".
package directive

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"focusblock/internal/model"
)

const marker = "##blocking"

const (
	appsKey     = "block_apps:"
	websitesKey = "block_websites:"
)

// ErrNoDirective means the description carries no directive block at all.
// Distinct from ErrMalformed so callers can log the difference; both degrade
// to the empty directive.
var ErrNoDirective = errors.New("no blocking directive in description")

// ErrMalformed means a directive block is present but cannot be parsed.
var ErrMalformed = errors.New("malformed blocking directive")

// Extract parses an event description into a Directive.
//
// The returned error is always ErrNoDirective, or wraps ErrMalformed; the
// returned Directive is the empty directive in both cases. Extraction never
// fails hard: a task without a parseable directive simply blocks nothing.
func Extract(description string) (model.Directive, error) {
	text := Clean(description)

	begin := strings.Index(text, marker)
	if begin < 0 {
		return model.Directive{}, ErrNoDirective
	}
	rest := text[begin+len(marker):]
	end := strings.Index(rest, marker)
	if end < 0 {
		return model.Directive{}, ErrNoDirective
	}

	block := strings.TrimSpace(rest[:end])
	if block == "" {
		return model.Directive{}, ErrNoDirective
	}

	d, err := parseBlock(block)
	if err != nil {
		return model.Directive{}, err
	}
	return d, nil
}

// parseBlock extracts the app and website lists from the text between the
// markers. Keys may appear in any order; each value runs up to the next
// semicolon.
func parseBlock(block string) (model.Directive, error) {
	apps, err := keyValues(block, appsKey)
	if err != nil {
		return model.Directive{}, err
	}
	websites, err := keyValues(block, websitesKey)
	if err != nil {
		return model.Directive{}, err
	}
	if apps == nil && websites == nil {
		return model.Directive{}, fmt.Errorf("%w: no block_apps or block_websites key", ErrMalformed)
	}
	return model.Directive{Apps: apps, Websites: websites}, nil
}

// keyValues returns the comma-separated values following key, or nil if the
// key is absent.
func keyValues(block, key string) ([]string, error) {
	idx := strings.Index(block, key)
	if idx < 0 {
		return nil, nil
	}
	tail := block[idx+len(key):]
	semi := strings.Index(tail, ";")
	if semi < 0 {
		return nil, fmt.Errorf("%w: %q value is not terminated by ';'", ErrMalformed, strings.TrimSuffix(key, ":"))
	}

	var out []string
	for _, tok := range strings.Split(tail[:semi], ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		out = append(out, tok)
	}
	return out, nil
}

// Clean strips markup from a description, collapses newlines, escape
// sequences and backslashes into single spaces, and lowercases the result.
// Calendar feeds deliver descriptions as HTML fragments with ICS-escaped
// newlines, so both layers are removed before parsing.
func Clean(description string) string {
	text := stripTags(description)

	text = strings.NewReplacer(
		"\r", "",
		"\n", " ",
		`\n`, " ",
		`\`, " ",
	).Replace(text)

	// Collapse runs of whitespace to single spaces.
	text = strings.Join(strings.Fields(text), " ")
	return strings.ToLower(text)
}

// stripTags drops HTML tags, keeping text content. Plain-text input passes
// through unchanged.
func stripTags(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}

	var b strings.Builder
	tz := html.NewTokenizer(strings.NewReader(s))
	for {
		switch tz.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(tz.Text())
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			// <br> and friends separate words once stripped.
			b.WriteByte(' ')
		}
	}
}
