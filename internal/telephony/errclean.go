package telephony

import (
	"regexp"
	"strings"
)

// Error strings coming back from the vendor SDK-style responses can carry
// ANSI escapes, boilerplate and trailing documentation URLs. CleanError
// reduces them to the core message. It is idempotent: cleaning a cleaned
// message returns it unchanged, which makes the bulk log cleanup safe to
// re-run.

const twilioInfoMarker = "Twilio returned the following information:"

var (
	ansiRE      = regexp.MustCompile(`\x1B(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)
	colorCodeRE = regexp.MustCompile(`\[[0-9;]*m`)
	moreInfoRE  = regexp.MustCompile(`(?s)More information may be available here:.*$`)
	trailingURL = regexp.MustCompile(`https?://\S+$`)
	spaceRunRE  = regexp.MustCompile(`\s+`)
	createRecRE = regexp.MustCompile(`(?s)Unable to create record:.*?(?:More information may be available|$)`)
	numberRE    = regexp.MustCompile(`\+?\d{10,}`)
)

// StripANSI removes terminal escape sequences.
func StripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

// CleanError extracts the core vendor message from a raw error string.
func CleanError(raw string) string {
	if raw == "" {
		return raw
	}

	cleaned := StripANSI(raw)

	if strings.Contains(cleaned, twilioInfoMarker) {
		_, after, _ := strings.Cut(cleaned, twilioInfoMarker)
		msg := strings.TrimSpace(after)
		msg = colorCodeRE.ReplaceAllString(msg, "")
		msg = moreInfoRE.ReplaceAllString(msg, "")
		msg = strings.TrimSpace(msg)
		msg = trailingURL.ReplaceAllString(msg, "")
		return strings.TrimSpace(msg)
	}

	if strings.Contains(cleaned, "HTTP Error") && strings.Contains(cleaned, "Unable to create record:") {
		if m := createRecRE.FindString(cleaned); m != "" {
			m = strings.TrimSuffix(m, "More information may be available")
			return strings.TrimSpace(spaceRunRE.ReplaceAllString(m, " "))
		}
	}

	return cleaned
}

const (
	hintSourceNumber = " | Fix: use a provider-purchased number as the caller ID (purchased numbers are pre-verified)"
	hintVerifyTip    = " | Tip: trial accounts must verify destination numbers in the provider console before calling them"
)

// WithGuidance appends a one-shot actionable hint to verification failures.
// Applied at dispatch time only, never during cleanup, so the stored text
// stays stable across cleanup runs.
func WithGuidance(msg string) string {
	lower := strings.ToLower(msg)
	if !strings.Contains(lower, "verified") && !strings.Contains(lower, "unverified") {
		return msg
	}
	if strings.Contains(msg, " | Fix:") || strings.Contains(msg, " | Action required:") || strings.Contains(msg, " | Tip:") {
		return msg
	}

	if strings.Contains(lower, "source phone number") {
		return msg + hintSourceNumber
	}
	if num := numberRE.FindString(msg); num != "" {
		return msg + " | Action required: verify the destination number " + num + " in the provider console (trial accounts can only call verified numbers)"
	}
	return msg + hintVerifyTip
}
