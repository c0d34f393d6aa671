package application

import "testing"

func TestParseLabels(t *testing.T) {
	t.Parallel()

	if mood, ok := ParseMood(" overwhelmed "); !ok || mood != MoodOverwhelmed {
		t.Fatalf("expected Overwhelmed, got %q (%v)", mood, ok)
	}
	if _, ok := ParseMood("Ecstatic"); ok {
		t.Fatalf("expected unknown mood to be rejected")
	}

	for _, input := range []string{"Very Good", "very_good", "VeryGood", "very-good"} {
		if quality, ok := ParseSleepQuality(input); !ok || quality != SleepVeryGood {
			t.Errorf("ParseSleepQuality(%q) = %q, %v", input, quality, ok)
		}
	}

	if level, ok := ParseEnergyLevel("low"); !ok || level != EnergyLow {
		t.Fatalf("expected Low, got %q (%v)", level, ok)
	}
	if _, ok := ParseEnergyLevel(""); ok {
		t.Fatalf("expected empty energy label to be rejected")
	}
}

func TestCloneCheckInDetachesSlices(t *testing.T) {
	t.Parallel()

	original := CheckIn{ID: "c-1", Factors: []string{"Family"}, Media: &MediaAttachment{URL: "blob:1", Type: MediaImage}}
	clone := cloneCheckIn(original)
	clone.Factors[0] = "Health"
	clone.Media.URL = "blob:2"

	if original.Factors[0] != "Family" || original.Media.URL != "blob:1" {
		t.Fatalf("expected clone to be independent of the original, got %#v", original)
	}
}
