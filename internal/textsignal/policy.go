package textsignal

import "strings"

const (
	defaultMinTokenLength  = 2
	defaultMinPhraseLength = 2
	defaultMaxPhraseLength = 3
	defaultMaxPhrases      = 40
)

// generic English function words plus words that carry no signal in job posts.
var englishStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "been", "but", "by", "can", "do", "for", "from", "has", "have",
	"he", "her", "his", "how", "if", "in", "into", "is", "it", "its", "may", "more", "most", "must", "no", "not",
	"of", "on", "or", "our", "out", "over", "she", "should", "so", "such", "than", "that", "the", "their", "them",
	"then", "there", "these", "they", "this", "those", "to", "up", "us", "very", "was", "we", "were", "what",
	"when", "where", "which", "while", "who", "why", "will", "with", "within", "would", "you", "your", "yours",
	"all", "any", "about", "also", "use", "using", "other", "some", "each", "via", "per", "etc", "eg", "ie",
}

var recruitmentStopwords = []string{
	"apply", "applicant", "applicants", "applying", "candidate", "candidates", "competitive", "compensation",
	"benefits", "job", "jobs", "role", "roles", "position", "positions", "opportunity", "opportunities",
	"team", "company", "join", "hiring", "hire", "looking", "seeking", "ideal", "responsibilities",
	"requirements", "qualifications", "preferred", "plus", "bonus", "salary", "equal", "employer",
	"description", "please", "click", "today", "new", "great", "strong", "excellent", "work", "working",
}

var urlStopwords = []string{
	"http", "https", "www", "com", "org", "net", "io", "html", "linkedin", "twitter", "facebook",
	"instagram", "github.com", "mailto", "email", "remoteok", "utm", "ref", "source",
}

// Policy controls how raw text is turned into signals. The zero value is not
// usable; start from DefaultPolicy.
type Policy struct {
	Stopwords       map[string]struct{}
	MinTokenLength  int
	MinPhraseLength int
	MaxPhraseLength int
	// MaxPhrases caps the number of phrases. Zero means no limit.
	MaxPhrases int
}

// DefaultPolicy returns the stopword set and n-gram bounds used for matching.
func DefaultPolicy() Policy {
	words := make(map[string]struct{}, len(englishStopwords)+len(recruitmentStopwords)+len(urlStopwords))
	for _, list := range [][]string{englishStopwords, recruitmentStopwords, urlStopwords} {
		for _, w := range list {
			words[w] = struct{}{}
		}
	}

	return Policy{
		Stopwords:       words,
		MinTokenLength:  defaultMinTokenLength,
		MinPhraseLength: defaultMinPhraseLength,
		MaxPhraseLength: defaultMaxPhraseLength,
		MaxPhrases:      defaultMaxPhrases,
	}
}

// WithStopwords returns a copy of the policy with extra stopwords added.
func (p Policy) WithStopwords(extra ...string) Policy {
	words := make(map[string]struct{}, len(p.Stopwords)+len(extra))
	for w := range p.Stopwords {
		words[w] = struct{}{}
	}
	for _, w := range extra {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			words[w] = struct{}{}
		}
	}
	p.Stopwords = words
	return p
}

// WithoutStopwords returns a copy of the policy with the given words allowed again.
func (p Policy) WithoutStopwords(allowed ...string) Policy {
	words := make(map[string]struct{}, len(p.Stopwords))
	for w := range p.Stopwords {
		words[w] = struct{}{}
	}
	for _, w := range allowed {
		delete(words, strings.ToLower(strings.TrimSpace(w)))
	}
	p.Stopwords = words
	return p
}

// IsStopword reports whether the lowercased token is filtered out.
func (p Policy) IsStopword(token string) bool {
	_, ok := p.Stopwords[token]
	return ok
}

func (p Policy) phraseBounds() (int, int) {
	lo, hi := p.MinPhraseLength, p.MaxPhraseLength
	if lo < 2 {
		lo = 2
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
