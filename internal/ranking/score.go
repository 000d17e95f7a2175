// Package ranking scores jobs against a profile and orders them.
package ranking

import (
	"fmt"
	"math"

	"github.com/orestes-garcia-martinez/careerclaw/internal/gap"
	"github.com/orestes-garcia-martinez/careerclaw/internal/jobs"
	"github.com/orestes-garcia-martinez/careerclaw/internal/requirements"
	"github.com/orestes-garcia-martinez/careerclaw/internal/resume"
	"github.com/orestes-garcia-martinez/careerclaw/internal/textsignal"
)

const (
	// NeutralScore is used when one side of a dimension has no data.
	NeutralScore = 0.5
	// ExperienceShortfallLimit is the shortfall in years at which experience scores 0.
	ExperienceShortfallLimit = 5.0
	// SalaryInRangeScore applies when the profile floor sits inside the job range.
	SalaryInRangeScore = 0.8
	// PartialWorkModeCredit applies when exactly one side is hybrid.
	PartialWorkModeCredit = 0.5
)

// Weights are the fixed shares of each dimension in the composite.
type Weights struct {
	Keyword    float64 `json:"keyword"`
	Experience float64 `json:"experience"`
	Salary     float64 `json:"salary"`
	WorkMode   float64 `json:"work_mode"`
}

var DefaultWeights = Weights{Keyword: 0.50, Experience: 0.20, Salary: 0.15, WorkMode: 0.15}

// Breakdown explains one composite score.
type Breakdown struct {
	Keyword    float64 `json:"keyword"`
	Experience float64 `json:"experience"`
	Salary     float64 `json:"salary"`
	WorkMode   float64 `json:"work_mode"`
	Weights    Weights `json:"weights"`
	Composite  float64 `json:"composite"`
	Details    Details `json:"details"`
}

// Details records the inputs behind each sub-score.
type Details struct {
	MatchedSignals   []string      `json:"matched_signals,omitempty"`
	RequirementCount int           `json:"requirement_count"`
	ProfileYears     *float64      `json:"profile_years,omitempty"`
	JobMinYears      *float64      `json:"job_min_years,omitempty"`
	ProfileSalaryMin *int          `json:"profile_salary_min,omitempty"`
	JobSalaryMin     *int          `json:"job_salary_min,omitempty"`
	JobSalaryMax     *int          `json:"job_salary_max,omitempty"`
	ProfileWorkMode  jobs.WorkMode `json:"profile_work_mode,omitempty"`
	JobWorkMode      jobs.WorkMode `json:"job_work_mode,omitempty"`
}

// Score computes the breakdown of job for profile. When analysis is nil the
// keyword dimension is the overlap of the profile's own signals with the job's
// requirement signals. Score has no hidden state.
func Score(job *jobs.Job, profile *jobs.Profile, analysis *gap.Analysis) Breakdown {
	return DefaultWeights.Score(job, profile, analysis)
}

// Score computes the breakdown with w, extracting requirements with the
// default policy.
func (w Weights) Score(job *jobs.Job, profile *jobs.Profile, analysis *gap.Analysis) Breakdown {
	return w.scoreWith(job, profile, analysis, requirements.Extract(job))
}

// scoreWith scores against an already extracted requirement set.
func (w Weights) scoreWith(job *jobs.Job, profile *jobs.Profile, analysis *gap.Analysis, req requirements.Set) Breakdown {
	if analysis == nil {
		a := gap.Analyze(profileIntelligence(profile), req)
		analysis = &a
	}

	jobMode := job.Mode()
	b := Breakdown{
		Keyword:    clamp01(analysis.FitScoreUnweighted),
		Experience: ExperienceScore(profile.ExperienceYears, req.MinYears),
		Salary:     SalaryScore(profile.SalaryMin, job.SalaryMin, job.SalaryMax),
		WorkMode:   WorkModeScore(profile.WorkMode, jobMode),
		Weights:    w,
		Details: Details{
			MatchedSignals:   analysis.Matched(),
			RequirementCount: req.Len(),
			ProfileYears:     profile.ExperienceYears,
			JobMinYears:      req.MinYears,
			ProfileSalaryMin: profile.SalaryMin,
			JobSalaryMin:     job.SalaryMin,
			JobSalaryMax:     job.SalaryMax,
			ProfileWorkMode:  profile.WorkMode,
			JobWorkMode:      jobMode,
		},
	}
	b.Composite = w.Composite(b.Keyword, b.Experience, b.Salary, b.WorkMode)
	return b
}

// Composite is the clamped weighted sum of the four sub-scores. Sub-scores
// outside [0,1] are a programming error.
func (w Weights) Composite(keyword, experience, salary, workMode float64) float64 {
	for name, v := range map[string]float64{
		"keyword": keyword, "experience": experience, "salary": salary, "work_mode": workMode,
	} {
		mustUnit(name, v)
	}
	for name, v := range map[string]float64{
		"keyword": w.Keyword, "experience": w.Experience, "salary": w.Salary, "work_mode": w.WorkMode,
	} {
		if v < 0 || math.IsNaN(v) {
			panic(fmt.Sprintf("ranking: %s weight %v is negative", name, v))
		}
	}

	total := keyword*w.Keyword + experience*w.Experience + salary*w.Salary + workMode*w.WorkMode
	return clamp01(total)
}

// ExperienceScore is 1 when the profile meets the job minimum and decays
// linearly with the shortfall, reaching 0 at ExperienceShortfallLimit years.
// A job without a minimum scores 1; a profile without years is neutral.
func ExperienceScore(profileYears, jobMinYears *float64) float64 {
	if jobMinYears == nil || *jobMinYears <= 0 {
		return 1
	}
	if profileYears == nil {
		return NeutralScore
	}
	shortfall := *jobMinYears - *profileYears
	if shortfall <= 0 {
		return 1
	}
	return clamp01(1 - shortfall/ExperienceShortfallLimit)
}

// SalaryScore compares the profile floor with the job range. Missing data on
// either side is neutral. A floor at or below the job minimum scores 1, a floor
// inside the range SalaryInRangeScore, and a floor above the range decays with
// the distance.
func SalaryScore(profileMin, jobMin, jobMax *int) float64 {
	if profileMin == nil || *profileMin <= 0 {
		return NeutralScore
	}
	lo, hi, ok := salaryBounds(jobMin, jobMax)
	if !ok {
		return NeutralScore
	}

	floor := float64(*profileMin)
	switch {
	case floor <= lo:
		return 1
	case floor <= hi:
		return SalaryInRangeScore
	default:
		return clamp01(hi / floor * NeutralScore)
	}
}

func salaryBounds(jobMin, jobMax *int) (float64, float64, bool) {
	var lo, hi float64
	switch {
	case jobMin != nil && *jobMin > 0 && jobMax != nil && *jobMax > 0:
		lo, hi = float64(*jobMin), float64(*jobMax)
	case jobMin != nil && *jobMin > 0:
		lo, hi = float64(*jobMin), float64(*jobMin)
	case jobMax != nil && *jobMax > 0:
		lo, hi = float64(*jobMax), float64(*jobMax)
	default:
		return 0, 0, false
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo, hi, true
}

// WorkModeScore is 1 for an exact match, PartialWorkModeCredit when one side
// is hybrid, and 0 for remote against onsite. Unknown modes are neutral and a
// profile preference of "any" accepts everything.
func WorkModeScore(pref, mode jobs.WorkMode) float64 {
	switch {
	case pref == jobs.WorkModeUnknown || mode == jobs.WorkModeUnknown:
		return NeutralScore
	case pref == jobs.WorkModeAny || pref == mode:
		return 1
	case pref == jobs.WorkModeHybrid || mode == jobs.WorkModeHybrid:
		return PartialWorkModeCredit
	default:
		return 0
	}
}

func profileIntelligence(p *jobs.Profile) *resume.Intelligence {
	return resume.NewBuilder(textsignal.DefaultPolicy()).Build(resume.InputFromProfile(p, ""))
}

func mustUnit(name string, v float64) {
	if math.IsNaN(v) || v < 0 || v > 1 {
		panic(fmt.Sprintf("ranking: %s score %v outside [0,1]", name, v))
	}
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
