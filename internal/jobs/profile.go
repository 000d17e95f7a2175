package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Profile is the candidate side of a match.
type Profile struct {
	Skills          []string `json:"skills" mapstructure:"skills" validate:"dive,required"`
	TargetRoles     []string `json:"target_roles" mapstructure:"target_roles" validate:"dive,required"`
	ExperienceYears *float64 `json:"experience_years,omitempty" mapstructure:"experience_years" validate:"omitempty,gte=0,lte=60"`
	WorkMode        WorkMode `json:"work_mode,omitempty" mapstructure:"work_mode" validate:"omitempty,oneof=remote hybrid onsite any"`
	ResumeSummary   string   `json:"resume_summary,omitempty" mapstructure:"resume_summary"`
	Location        string   `json:"location,omitempty" mapstructure:"location"`
	SalaryMin       *int     `json:"salary_min,omitempty" mapstructure:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax       *int     `json:"salary_max,omitempty" mapstructure:"salary_max" validate:"omitempty,gte=0"`
}

var errEmptyProfile = errors.New("profile needs at least one skill or target role")

// Validate rejects profiles that carry nothing to match on.
func (p *Profile) Validate() error {
	if len(nonEmpty(p.Skills)) == 0 && len(nonEmpty(p.TargetRoles)) == 0 {
		return &ValidationError{Kind: "profile", Err: errEmptyProfile}
	}
	if err := validate.Struct(p); err != nil {
		return &ValidationError{Kind: "profile", Err: err}
	}
	return nil
}

// Normalize trims list entries and parses the work mode spelling.
func (p *Profile) Normalize() {
	p.Skills = nonEmpty(p.Skills)
	p.TargetRoles = nonEmpty(p.TargetRoles)
	p.WorkMode = ParseWorkMode(string(p.WorkMode))
	p.ResumeSummary = strings.TrimSpace(p.ResumeSummary)
	p.Location = collapse(p.Location)
}

// LoadProfile reads a JSON profile from path and normalizes it.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %q: %w", path, err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("decoding profile %q: %w", path, err)
	}

	profile.Normalize()
	return &profile, nil
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = collapse(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
