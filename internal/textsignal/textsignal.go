// Package textsignal turns free text into ordered keyword and phrase signals.
package textsignal

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

var (
	tokenPattern  = regexp.MustCompile(`[a-z0-9]+(?:[.\-][a-z0-9]+)*[+#]*`)
	markupPattern = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)
)

// block elements that would otherwise glue neighbouring words together.
const blockSelector = "br, p, div, li, ul, ol, tr, td, th, h1, h2, h3, h4, h5, h6, section, article"

// Signals is the ordered output of an extraction. Both lists preserve the order
// in which a signal was first seen and contain no duplicates.
type Signals struct {
	Keywords []string
	Phrases  []string
}

// All returns keywords followed by phrases.
func (s Signals) All() []string {
	out := make([]string, 0, len(s.Keywords)+len(s.Phrases))
	out = append(out, s.Keywords...)
	return append(out, s.Phrases...)
}

// Len returns the total number of signals.
func (s Signals) Len() int { return len(s.Keywords) + len(s.Phrases) }

// Normalize strips markup, replaces non-breaking spaces and collapses whitespace.
func Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if markupPattern.MatchString(text) {
		text = stripMarkup(text)
	}
	text = strings.Map(func(r rune) rune {
		if r == '\u00a0' || r == '\u200b' || r == '\ufeff' {
			return ' '
		}
		return r
	}, text)
	return strings.Join(strings.Fields(text), " ")
}

func stripMarkup(text string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return markupPattern.ReplaceAllString(text, " ")
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return doc.Text()
}

// Tokens returns the filtered token stream of text, duplicates included, in
// reading order.
func (p Policy) Tokens(text string) []string {
	text = strings.ToLower(Normalize(text))
	if text == "" {
		return nil
	}

	raw := tokenPattern.FindAllString(text, -1)
	stream := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = strings.Trim(tok, ".-")
		if len([]rune(tok)) < p.MinTokenLength || isNumeric(tok) || p.IsStopword(tok) {
			continue
		}
		stream = append(stream, tok)
	}
	return stream
}

// Phrases builds adjacent-token n-grams from a filtered stream, ordered by the
// position of their first token.
func (p Policy) Phrases(stream []string) []string {
	lo, hi := p.phraseBounds()
	seen := make(map[string]struct{})
	var phrases []string

	for i := range stream {
		for n := lo; n <= hi; n++ {
			if i+n > len(stream) {
				break
			}
			gram := stream[i : i+n]
			if repeated(gram) {
				continue
			}
			phrase := strings.Join(gram, " ")
			if _, ok := seen[phrase]; ok {
				continue
			}
			seen[phrase] = struct{}{}
			phrases = append(phrases, phrase)
			if p.MaxPhrases > 0 && len(phrases) >= p.MaxPhrases {
				return phrases
			}
		}
	}
	return phrases
}

// Extract returns the ordered keyword and phrase signals of text. Empty input
// yields empty signals.
func (p Policy) Extract(text string) Signals {
	stream := p.Tokens(text)
	if len(stream) == 0 {
		return Signals{}
	}
	return Signals{
		Keywords: Unique(stream),
		Phrases:  p.Phrases(stream),
	}
}

// Extract runs DefaultPolicy over text.
func Extract(text string) Signals {
	return DefaultPolicy().Extract(text)
}

// Unique drops repeated entries while keeping first occurrences in order.
func Unique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func isNumeric(tok string) bool {
	for _, r := range tok {
		if !unicode.IsDigit(r) && r != '.' {
			return false
		}
	}
	return true
}

func repeated(gram []string) bool {
	for _, tok := range gram[1:] {
		if tok != gram[0] {
			return false
		}
	}
	return true
}
