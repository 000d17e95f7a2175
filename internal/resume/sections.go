package resume

import (
	"strings"
	"unicode"
)

// SectionName identifies a weighted resume region.
type SectionName string

const (
	SectionSkills     SectionName = "Skills"
	SectionSummary    SectionName = "Summary"
	SectionExperience SectionName = "Experience"
	SectionProjects   SectionName = "Projects"
	SectionEducation  SectionName = "Education"
	SectionInterests  SectionName = "Interests"
	// SectionOther is a heading that was detected but not recognised.
	SectionOther SectionName = "Other"
	// SectionProfile holds skills and target roles declared on the profile.
	SectionProfile SectionName = "Skills-from-profile"
)

const maxHeadingWords = 5

var sectionWeights = map[SectionName]float64{
	SectionSkills:     1.0,
	SectionSummary:    0.8,
	SectionExperience: 0.7,
	SectionProjects:   0.7,
	SectionEducation:  0.4,
	SectionInterests:  0.2,
	SectionOther:      0.8,
	SectionProfile:    1.0,
}

var headingAliases = map[string]SectionName{
	"skills": SectionSkills, "technical skills": SectionSkills, "core skills": SectionSkills, "key skills": SectionSkills,
	"core competencies": SectionSkills, "competencies": SectionSkills, "technologies": SectionSkills,
	"tech stack": SectionSkills, "tools": SectionSkills, "expertise": SectionSkills, "areas of expertise": SectionSkills,
	"skills & tools": SectionSkills, "skills and tools": SectionSkills,

	"summary": SectionSummary, "professional summary": SectionSummary, "profile": SectionSummary,
	"about": SectionSummary, "about me": SectionSummary, "objective": SectionSummary,
	"career objective": SectionSummary, "overview": SectionSummary,

	"experience": SectionExperience, "work experience": SectionExperience, "professional experience": SectionExperience,
	"employment": SectionExperience, "employment history": SectionExperience, "work history": SectionExperience,
	"career history": SectionExperience, "relevant experience": SectionExperience,

	"projects": SectionProjects, "personal projects": SectionProjects, "selected projects": SectionProjects,
	"open source": SectionProjects, "side projects": SectionProjects,

	"education": SectionEducation, "certifications": SectionEducation, "certificates": SectionEducation,
	"courses": SectionEducation, "training": SectionEducation, "education & certifications": SectionEducation,
	"academic background": SectionEducation,

	"interests": SectionInterests, "hobbies": SectionInterests, "activities": SectionInterests,
	"volunteering": SectionInterests, "volunteer": SectionInterests, "hobbies & interests": SectionInterests,
}

// Section is a contiguous resume region and its weight.
type Section struct {
	Name    SectionName
	Heading string
	Weight  float64
	Text    string
}

// Weight returns the fixed weight of a section name. Unknown names get the
// Summary weight.
func Weight(name SectionName) float64 {
	if w, ok := sectionWeights[name]; ok {
		return w
	}
	return sectionWeights[SectionSummary]
}

// ClassifyHeading reports whether line looks like a section heading. Lines of
// the form "Skills: Go, SQL" are headings with inline content returned as rest.
func ClassifyHeading(line string) (name SectionName, rest string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", "", false
	}

	if head, tail, found := strings.Cut(trimmed, ":"); found {
		if name, known := headingAliases[cleanHeading(head)]; known {
			return name, strings.TrimSpace(tail), true
		}
	}

	clean := cleanHeading(trimmed)
	if clean == "" || len(strings.Fields(clean)) > maxHeadingWords {
		return "", "", false
	}
	if name, known := headingAliases[clean]; known {
		return name, "", true
	}
	if looksLikeHeading(trimmed) {
		return SectionOther, "", true
	}
	return "", "", false
}

// SplitSections cuts resume text at detected headings. Text before the first
// heading is treated as Summary.
func SplitSections(text string) []Section {
	var (
		sections []Section
		current  = Section{Name: SectionSummary, Weight: Weight(SectionSummary)}
		body     []string
	)

	flush := func() {
		joined := strings.TrimSpace(strings.Join(body, "\n"))
		if joined != "" {
			current.Text = joined
			sections = append(sections, current)
		}
		body = body[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		name, rest, ok := ClassifyHeading(line)
		if !ok {
			body = append(body, line)
			continue
		}
		flush()
		current = Section{Name: name, Heading: strings.TrimSpace(line), Weight: Weight(name)}
		if rest != "" {
			body = append(body, rest)
		}
	}
	flush()

	return sections
}

func cleanHeading(s string) string {
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune("#*-=_•:|", r)
	})
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// looksLikeHeading accepts short all-caps lines without terminal punctuation.
func looksLikeHeading(line string) bool {
	clean := strings.TrimFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune("#*-=_•:|", r)
	})
	if clean == "" || strings.ContainsAny(clean, ",;/") || strings.ContainsAny(clean[len(clean)-1:], ".!?") {
		return false
	}
	if len(strings.Fields(clean)) > maxHeadingWords-1 {
		return false
	}
	letters := 0
	for _, r := range clean {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return letters >= 5
}
