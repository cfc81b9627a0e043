package valuation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/wavemarine/deckworth/internal/models"
)

// Discouraged phrasing is removed outright, not re-worded. This is a content
// pass, not paraphrasing.
var denylistPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)reduces value`),
	regexp.MustCompile(`(?i)limits pricing`),
	regexp.MustCompile(`(?i)\bissues\b`),
	regexp.MustCompile(`(?i)\bconcerning\b`),
}

// Any upstream occurrence of the machine-parseable tokens is stripped before
// the canonical token line is appended, so the tokens appear exactly once.
var tokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Estimated Market Range:[^.]*\.`),
	regexp.MustCompile(`(?i)Most Likely:[^.]*\.`),
	regexp.MustCompile(`(?i)Wholesale:[^.]*\.`),
	regexp.MustCompile(`(?i)Confidence:[^.]*\.`),
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ScrubNarrative removes denylisted phrasing and collapses the resulting
// whitespace.
func ScrubNarrative(text string) string {
	for _, p := range denylistPatterns {
		text = p.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

func stripTokenLines(text string) string {
	for _, p := range tokenPatterns {
		text = p.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// tokenLine renders the fixed machine-parseable trailer carrying the exact
// range, mid, wholesale and confidence values.
func tokenLine(low, high, mid, wholesale *float64, confidence models.ConfidenceLevel) string {
	return fmt.Sprintf(" Estimated Market Range: $%s–$%s. Most Likely: $%s. Wholesale: ~$%s. Confidence: %s.",
		formatAmount(low), formatAmount(high), formatAmount(mid), formatAmount(wholesale), confidence)
}

// finalizeNarrative scrubs, de-duplicates tokens and appends the canonical
// token line.
func finalizeNarrative(text string, low, high, mid, wholesale *float64, confidence models.ConfidenceLevel) string {
	text = stripTokenLines(ScrubNarrative(text))
	if text != "" && !strings.HasSuffix(text, ".") {
		text += "."
	}
	return text + tokenLine(low, high, mid, wholesale, confidence)
}

// formatAmount renders a nullable amount with thousands separators, using an
// em-width dash placeholder for missing values.
func formatAmount(v *float64) string {
	if v == nil {
		return "—"
	}

	digits := strconv.FormatInt(int64(math.Round(*v)), 10)
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// floor10k rounds a derived wholesale figure down to the nearest 10,000
// currency units. The conservative bias is deliberate policy, not display
// formatting.
func floor10k(v *float64) *float64 {
	if v == nil {
		return nil
	}
	floored := math.Floor(*v/10000) * 10000
	return &floored
}
