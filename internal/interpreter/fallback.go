package interpreter

import (
	"context"
	"regexp"
	"strings"
)

var digitRunRE = regexp.MustCompile(`\d{10,}`)

var callAllPhrases = []string{
	"call all",
	"start calling",
	"call everyone",
	"dial all",
}

// RegexResolver is the deterministic fallback: a run of 10+ digits targets
// that single number, call-all phrasing targets the whole pending list.
type RegexResolver struct{}

func (RegexResolver) Name() string { return "fallback" }

func (RegexResolver) Attempt(_ context.Context, command string, _ []string) (Action, error) {
	if run := digitRunRE.FindString(command); run != "" {
		return Action{Kind: ActionCallOne, Number: run}, nil
	}

	lower := strings.ToLower(command)
	for _, phrase := range callAllPhrases {
		if strings.Contains(lower, phrase) {
			return Action{Kind: ActionCallAll}, nil
		}
	}

	return Action{}, ErrNotHandled
}
