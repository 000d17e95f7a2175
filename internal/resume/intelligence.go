// Package resume builds weighted signal sets from resume text and profile data.
package resume

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
	"github.com/orestes-garcia-martinez/careerclaw/internal/textsignal"
)

const maxImpactSignals = 20

var impactPattern = regexp.MustCompile(`(?i)(\b\d{1,3}(?:\.\d+)?%|\$\s?\d[\d,.]*\s?[kmb]?\b|\b\d+\+?\s?(?:years?|months?|weeks?)\b|\b\d+(?:\.\d+)?\s?x\b)`)

// Source describes which inputs contributed to an Intelligence.
type Source string

const (
	SourceEmpty             Source = "empty"
	SourceProfileOnly       Source = "profile_only"
	SourceResumeOnly        Source = "resume_only"
	SourceResumePlusProfile Source = "resume_plus_profile"
)

// Signal is one resume signal with its effective weight.
type Signal struct {
	Value   string
	Weight  float64
	Phrase  bool
	Section SectionName
}

// Input carries everything the builder reads.
type Input struct {
	ResumeText  string
	Summary     string
	Skills      []string
	TargetRoles []string
}

// InputFromProfile combines a profile with optional resume text.
func InputFromProfile(p *jobs.Profile, resumeText string) Input {
	if p == nil {
		return Input{ResumeText: resumeText}
	}
	return Input{
		ResumeText:  resumeText,
		Summary:     p.ResumeSummary,
		Skills:      p.Skills,
		TargetRoles: p.TargetRoles,
	}
}

// Intelligence is an immutable weighted signal set for one (resume, profile) pair.
type Intelligence struct {
	signals  []Signal
	index    map[string]int
	sections []Section
	impact   []string
	source   Source
}

// Builder turns Input into Intelligence.
type Builder struct {
	policy textsignal.Policy
}

// NewBuilder returns a Builder using policy for every section.
func NewBuilder(policy textsignal.Policy) *Builder {
	return &Builder{policy: policy}
}

// Build runs the default policy. resumeText may be empty.
func Build(resumeText string, skills, targetRoles []string) *Intelligence {
	return NewBuilder(textsignal.DefaultPolicy()).Build(Input{
		ResumeText:  resumeText,
		Skills:      skills,
		TargetRoles: targetRoles,
	})
}

// Build extracts each section independently and merges them in order, keeping
// the highest weight seen for a signal. Profile skills and roles are merged last.
func (b *Builder) Build(in Input) *Intelligence {
	intel := &Intelligence{index: make(map[string]int)}

	if summary := strings.TrimSpace(in.Summary); summary != "" {
		intel.sections = append(intel.sections, Section{
			Name:   SectionSummary,
			Weight: Weight(SectionSummary),
			Text:   summary,
		})
	}
	intel.sections = append(intel.sections, SplitSections(in.ResumeText)...)

	for _, section := range intel.sections {
		sig := b.policy.Extract(section.Text)
		for _, kw := range sig.Keywords {
			intel.add(kw, section.Weight, false, section.Name)
		}
		for _, ph := range sig.Phrases {
			intel.add(ph, section.Weight, true, section.Name)
		}
	}
	resumeSignals := len(intel.signals)

	declared := append(append([]string{}, in.Skills...), in.TargetRoles...)
	profile := b.profileSection(declared)
	if profile != nil {
		intel.sections = append(intel.sections, profile.section)
		for _, s := range profile.signals {
			intel.add(s.Value, profile.section.Weight, s.Phrase, SectionProfile)
		}
	}

	intel.impact = impactSignals(in.Summary + "\n" + in.ResumeText)
	intel.source = sourceOf(resumeSignals > 0, profile != nil)
	return intel
}

type profileSection struct {
	section Section
	signals []Signal
}

// profileSection extracts declared skills one by one so phrases never span two
// different skills. The whole skill is kept as a phrase when it has several tokens.
func (b *Builder) profileSection(declared []string) *profileSection {
	var (
		out   profileSection
		names []string
	)
	for _, item := range declared {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		names = append(names, item)

		sig := b.policy.Extract(item)
		for _, kw := range sig.Keywords {
			out.signals = append(out.signals, Signal{Value: kw})
		}
		for _, ph := range sig.Phrases {
			out.signals = append(out.signals, Signal{Value: ph, Phrase: true})
		}
		if tokens := b.policy.Tokens(item); len(tokens) > 1 {
			out.signals = append(out.signals, Signal{Value: strings.Join(tokens, " "), Phrase: true})
		}
	}
	if len(names) == 0 {
		return nil
	}

	out.section = Section{
		Name:   SectionProfile,
		Weight: Weight(SectionProfile),
		Text:   strings.Join(names, ", "),
	}
	return &out
}

func (in *Intelligence) add(value string, weight float64, phrase bool, section SectionName) {
	if weight < 0 || weight > 1 {
		panic(fmt.Sprintf("resume: section %s has weight %v outside [0,1]", section, weight))
	}
	if i, ok := in.index[value]; ok {
		if weight > in.signals[i].Weight {
			in.signals[i].Weight = weight
			in.signals[i].Section = section
		}
		return
	}
	in.index[value] = len(in.signals)
	in.signals = append(in.signals, Signal{Value: value, Weight: weight, Phrase: phrase, Section: section})
}

// Weight returns the effective weight of value and whether it is present.
func (in *Intelligence) Weight(value string) (float64, bool) {
	if in == nil {
		return 0, false
	}
	i, ok := in.index[value]
	if !ok {
		return 0, false
	}
	return in.signals[i].Weight, true
}

// Has reports whether value is a resume signal.
func (in *Intelligence) Has(value string) bool {
	_, ok := in.Weight(value)
	return ok
}

// Signals returns a copy of the ordered signals.
func (in *Intelligence) Signals() []Signal {
	if in == nil {
		return nil
	}
	return append([]Signal(nil), in.signals...)
}

// Keywords returns single-token signals in order.
func (in *Intelligence) Keywords() []string { return in.values(false) }

// Phrases returns multi-token signals in order.
func (in *Intelligence) Phrases() []string { return in.values(true) }

// Sections returns the sections the signals came from.
func (in *Intelligence) Sections() []Section {
	if in == nil {
		return nil
	}
	return append([]Section(nil), in.sections...)
}

// ImpactSignals returns the quantitative claims found in the resume text.
func (in *Intelligence) ImpactSignals() []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in.impact...)
}

// Source reports which inputs contributed.
func (in *Intelligence) Source() Source {
	if in == nil {
		return SourceEmpty
	}
	return in.source
}

// Len returns the number of signals.
func (in *Intelligence) Len() int {
	if in == nil {
		return 0
	}
	return len(in.signals)
}

func (in *Intelligence) values(phrase bool) []string {
	if in == nil {
		return nil
	}
	var out []string
	for _, s := range in.signals {
		if s.Phrase == phrase {
			out = append(out, s.Value)
		}
	}
	return out
}

func impactSignals(text string) []string {
	matches := impactPattern.FindAllString(text, -1)
	out := make([]string, 0, min(len(matches), maxImpactSignals))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		m = strings.TrimSpace(m)
		key := strings.ToLower(m)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
		if len(out) == maxImpactSignals {
			break
		}
	}
	return out
}

func sourceOf(resume, profile bool) Source {
	switch {
	case resume && profile:
		return SourceResumePlusProfile
	case resume:
		return SourceResumeOnly
	case profile:
		return SourceProfileOnly
	default:
		return SourceEmpty
	}
}

// FromSignals builds an Intelligence from explicit signals, keeping the first
// occurrence order and the highest weight per value.
func FromSignals(signals ...Signal) *Intelligence {
	intel := &Intelligence{index: make(map[string]int), source: SourceResumeOnly}
	for _, s := range signals {
		intel.add(s.Value, s.Weight, s.Phrase || strings.Contains(s.Value, " "), s.Section)
	}
	if len(intel.signals) == 0 {
		intel.source = SourceEmpty
	}
	return intel
}
