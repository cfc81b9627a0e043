package valuation

import (
	"strings"
	"testing"

	"github.com/wavemarine/deckworth/internal/models"
)

func TestScrubNarrative(t *testing.T) {
	in := "High engine hours reduces value and limits pricing; some issues are concerning overall."
	out := ScrubNarrative(in)

	for _, banned := range []string{"reduces value", "limits pricing", "issues", "concerning"} {
		if strings.Contains(strings.ToLower(out), banned) {
			t.Errorf("expected %q removed, got %q", banned, out)
		}
	}
	if strings.Contains(out, "  ") {
		t.Errorf("expected collapsed whitespace, got %q", out)
	}
}

func TestScrubNarrative_KeepsCleanText(t *testing.T) {
	in := "Engine hours are typical for age and there is room to modernize."
	if out := ScrubNarrative(in); out != in {
		t.Errorf("expected clean text unchanged, got %q", out)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   *float64
		want string
	}{
		{models.Float(1250000), "1,250,000"},
		{models.Float(250000), "250,000"},
		{models.Float(999), "999"},
		{models.Float(0), "0"},
		{nil, "—"},
	}

	for _, tt := range tests {
		if got := formatAmount(tt.in); got != tt.want {
			t.Errorf("formatAmount(%v): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestFloor10k(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{141000, 140000},
		{149999, 140000},
		{150000, 150000},
		{9999, 0},
	}

	for _, tt := range tests {
		got := floor10k(&tt.in)
		if got == nil || *got != tt.want {
			t.Errorf("floor10k(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}

	if floor10k(nil) != nil {
		t.Error("expected nil passthrough")
	}
}

func TestFinalizeNarrative_AppendsSingleTokenLine(t *testing.T) {
	text := "Great boat. Estimated Market Range: $9–$10. Most Likely: $9. Confidence: Low."
	out := finalizeNarrative(text,
		models.Float(100000), models.Float(200000), models.Float(150000), models.Float(90000),
		models.ConfidenceMedium)

	if got := strings.Count(out, "Estimated Market Range:"); got != 1 {
		t.Errorf("expected one range token, got %d in %q", got, out)
	}
	if !strings.HasSuffix(out, "Estimated Market Range: $100,000–$200,000. Most Likely: $150,000. Wholesale: ~$90,000. Confidence: Medium.") {
		t.Errorf("unexpected token line suffix: %q", out)
	}
	if !strings.HasPrefix(out, "Great boat.") {
		t.Errorf("expected original prose preserved: %q", out)
	}
}
