// Package drafting builds the deterministic outreach draft for a job.
package drafting

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
	"github.com/orestes-garcia-martinez/careerclaw/internal/textsignal"
)

const (
	// MaxSkills caps the skills named in a draft.
	MaxSkills = 4
	// minSkillLength skips short single-token skills that match inside other words.
	minSkillLength = 3

	subjectPrefix = "Subject: "
)

// tokenPolicy keeps every token so whole-word skill matches see the full posting.
var tokenPolicy = textsignal.Policy{MinTokenLength: 1}

// Draft is one outreach message.
type Draft struct {
	JobID   string `json:"job_id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SubjectLine is the subject as it appears at the top of the message.
func (d Draft) SubjectLine() string {
	return subjectPrefix + d.Subject
}

// Text renders the subject line, a blank line and the body.
func (d Draft) Text() string {
	return d.SubjectLine() + "\n\n" + d.Body
}

// WithBody returns a copy carrying a replacement body and the same subject.
func (d Draft) WithBody(body string) Draft {
	d.Body = strings.TrimSpace(body)
	return d
}

// Compose writes the deterministic draft for job. The output depends only on
// profile and job.
func Compose(profile *jobs.Profile, job *jobs.Job) Draft {
	company := orDefault(job.Company, "your team")
	title := orDefault(job.Title, "this role")

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s team,\n\n", company)
	fmt.Fprintf(&b, "I'm reaching out to express interest in the %s role. %s\n\n", title, experienceLine(profile.ExperienceYears))

	if skills := RelevantSkills(profile, job); len(skills) > 0 {
		fmt.Fprintf(&b, "From the posting, it looks like you're looking for someone with experience in %s. ", strings.Join(skills, ", "))
		b.WriteString("That aligns well with my background, including:\n")
	} else {
		b.WriteString("The posting lines up well with my background, including:\n")
	}
	b.WriteString("- Delivering high-quality work with strong ownership and attention to outcomes\n")
	b.WriteString("- Communicating clearly and collaborating effectively with colleagues and stakeholders\n")
	b.WriteString("- Identifying problems quickly and following through with practical, lasting solutions\n\n")
	b.WriteString("If helpful, I can share a brief summary of relevant work and walk through how I'd approach the first 30 days in this role. ")
	b.WriteString("Thanks for your time. I'd welcome the chance to connect.\n\n")
	b.WriteString("Best regards,\n[Your Name]")

	return Draft{
		JobID:   job.ID,
		Subject: fmt.Sprintf("Interest in %s at %s", title, company),
		Body:    b.String(),
	}
}

// RelevantSkills returns up to MaxSkills profile skills found in the posting.
// Single-word skills must match a whole token; multi-word skills match as a
// substring. When nothing matches the first profile skills are used.
func RelevantSkills(profile *jobs.Profile, job *jobs.Job) []string {
	hay := strings.ToLower(strings.Join([]string{job.Title, job.Description, strings.Join(job.Tags, " ")}, " "))
	tokens := make(map[string]struct{})
	for _, tok := range tokenPolicy.Tokens(hay) {
		tokens[tok] = struct{}{}
	}

	var hits []string
	for _, skill := range profile.Skills {
		skill = strings.TrimSpace(skill)
		low := strings.ToLower(skill)
		if len([]rune(low)) < minSkillLength {
			continue
		}
		if strings.Contains(low, " ") {
			if strings.Contains(hay, low) {
				hits = append(hits, skill)
			}
		} else if _, ok := tokens[low]; ok {
			hits = append(hits, skill)
		}
		if len(hits) >= MaxSkills {
			break
		}
	}
	if len(hits) > 0 {
		return hits
	}

	var fallback []string
	for _, skill := range profile.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			fallback = append(fallback, skill)
		}
		if len(fallback) >= MaxSkills {
			break
		}
	}
	return fallback
}

func experienceLine(years *float64) string {
	if years == nil || *years <= 0 {
		return "I have a strong track record of delivering results in my field."
	}
	return fmt.Sprintf("I have %s+ years of experience and a strong track record of delivering results in my field.",
		strconv.FormatFloat(*years, 'f', -1, 64))
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
