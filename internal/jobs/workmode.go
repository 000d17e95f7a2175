package jobs

import (
	"regexp"
	"strings"
)

// WorkMode is where the work happens.
type WorkMode string

const (
	WorkModeUnknown WorkMode = ""
	WorkModeRemote  WorkMode = "remote"
	WorkModeHybrid  WorkMode = "hybrid"
	WorkModeOnsite  WorkMode = "onsite"
	// WorkModeAny is a profile preference that accepts every mode.
	WorkModeAny WorkMode = "any"
)

var (
	hybridPattern = regexp.MustCompile(`\bhybrid\b`)
	remotePattern = regexp.MustCompile(`\b(remote|anywhere|worldwide|work from home|wfh|distributed team)\b`)
	onsitePattern = regexp.MustCompile(`\b(on-?site|in[- ]office|in[- ]person|office[- ]based)\b`)
)

// ParseWorkMode maps free-form values such as "On-site" or "Remote only" to a WorkMode.
func ParseWorkMode(value string) WorkMode {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "":
		return WorkModeUnknown
	case "any", "flexible", "either":
		return WorkModeAny
	}
	return InferWorkMode(v)
}

// InferWorkMode looks for work-mode markers in the supplied texts, in order.
// Hybrid wins over remote because hybrid posts routinely mention remote days.
func InferWorkMode(texts ...string) WorkMode {
	for _, text := range texts {
		t := strings.ToLower(text)
		switch {
		case hybridPattern.MatchString(t):
			return WorkModeHybrid
		case onsitePattern.MatchString(t):
			return WorkModeOnsite
		case remotePattern.MatchString(t):
			return WorkModeRemote
		}
	}
	return WorkModeUnknown
}
