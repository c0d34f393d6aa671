package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func newTestFlow(t *testing.T) (*CheckInFlow, *CheckInStore, time.Time) {
	t.Helper()

	now := time.Date(2024, time.March, 5, 20, 30, 0, 0, time.UTC)
	counter := 0
	store := NewCheckInStore()
	flow := NewCheckInFlow(store, func() string {
		counter++
		return fmt.Sprintf("check-in-%d", counter)
	}, func() time.Time { return now }, nil)
	return flow, store, now
}

func advanceTo(t *testing.T, flow *CheckInFlow, step WizardStep) {
	t.Helper()
	for flow.Draft().Step < step {
		if _, err := flow.Next(); err != nil {
			t.Fatalf("Next failed: %v", err)
		}
	}
}

func TestCheckInFlow_FinishWithDefaults(t *testing.T) {
	t.Parallel()

	flow, store, now := newTestFlow(t)
	advanceTo(t, flow, StepReflection)

	var notified []CheckIn
	flow.OnFinish(func(c CheckIn) { notified = append(notified, c) })

	checkIn, err := flow.Finish(context.Background())
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if checkIn.ID != "check-in-1" || !checkIn.Date.Equal(now) {
		t.Fatalf("expected generated id and timestamp, got %q at %v", checkIn.ID, checkIn.Date)
	}
	if checkIn.Mood != MoodCalm || checkIn.SleepQuality != SleepOkay || checkIn.SleepHours != 7 ||
		checkIn.EnergyLevel != EnergyMedium || checkIn.Description != "" || len(checkIn.Factors) != 0 || checkIn.Media != nil {
		t.Fatalf("expected default check-in, got %#v", checkIn)
	}
	if store.Len() != 1 {
		t.Fatalf("expected exactly one stored check-in, got %d", store.Len())
	}
	if len(notified) != 1 || notified[0].ID != checkIn.ID {
		t.Fatalf("expected completion callback for %s, got %#v", checkIn.ID, notified)
	}

	draft := flow.Draft()
	if draft.Step != StepMood || draft.Mood != DefaultMood || len(draft.Factors) != 0 {
		t.Fatalf("expected wizard to reset to defaults, got %#v", draft)
	}
}

func TestCheckInFlow_AccumulatesAcrossSteps(t *testing.T) {
	t.Parallel()

	flow, store, _ := newTestFlow(t)

	mustDraft := func(_ CheckInDraft, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	mustDraft(flow.SelectMood(MoodAnxious))
	mustDraft(flow.Next())
	mustDraft(flow.SelectSleep(SleepPoor, 4.3))
	mustDraft(flow.Next())
	mustDraft(flow.ToggleFactor("Health"))
	mustDraft(flow.ToggleFactor("Finance"))
	mustDraft(flow.ToggleFactor("Health"))
	mustDraft(flow.Back())
	mustDraft(flow.Back())

	back := flow.Draft()
	if back.Step != StepMood || back.Mood != MoodAnxious || back.SleepHours != 4.5 {
		t.Fatalf("expected back to keep accumulated data, got %#v", back)
	}

	advanceTo(t, flow, StepEnergy)
	mustDraft(flow.SelectEnergy(EnergyLow))
	mustDraft(flow.Next())
	mustDraft(flow.SetReflection("rough week", &MediaAttachment{URL: "blob:photo", Type: MediaImage}))

	checkIn, err := flow.Finish(context.Background())
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if checkIn.Mood != MoodAnxious || checkIn.SleepQuality != SleepPoor || checkIn.SleepHours != 4.5 ||
		checkIn.EnergyLevel != EnergyLow || checkIn.Description != "rough week" {
		t.Fatalf("unexpected check-in %#v", checkIn)
	}
	if len(checkIn.Factors) != 1 || checkIn.Factors[0] != "Finance" {
		t.Fatalf("expected factor toggle to leave only Finance, got %v", checkIn.Factors)
	}
	if checkIn.Media == nil || checkIn.Media.URL != "blob:photo" {
		t.Fatalf("expected media attachment, got %#v", checkIn.Media)
	}
	if latest, _ := store.Latest(); latest.ID != checkIn.ID {
		t.Fatalf("expected store latest to be %s, got %s", checkIn.ID, latest.ID)
	}
}

func TestCheckInFlow_TransitionRules(t *testing.T) {
	t.Parallel()

	flow, store, _ := newTestFlow(t)

	if _, err := flow.Back(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected back from first step to fail, got %v", err)
	}
	if _, err := flow.Finish(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected finish before reflection to fail, got %v", err)
	}
	if _, err := flow.SelectEnergy(EnergyHigh); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected energy selection on the mood step to fail, got %v", err)
	}

	advanceTo(t, flow, StepReflection)
	if _, err := flow.Next(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected next from reflection to fail, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected no check-ins before finish, got %d", store.Len())
	}
}

func TestCheckInFlow_RejectsUnknownLabels(t *testing.T) {
	t.Parallel()

	flow, _, _ := newTestFlow(t)
	_, err := flow.SelectMood(Mood("Ecstatic"))
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.FieldErrors["mood"] == "" {
		t.Fatalf("expected mood validation error, got %v", err)
	}
	if flow.Draft().Mood != DefaultMood {
		t.Fatalf("expected default mood to be kept")
	}
}

func TestClampSleepHours(t *testing.T) {
	t.Parallel()

	tests := map[float64]float64{
		-3:   0,
		0:    0,
		6.74: 6.5,
		6.75: 7,
		7:    7,
		11.9: 12,
		15:   12,
	}
	for in, want := range tests {
		if got := ClampSleepHours(in); got != want {
			t.Errorf("ClampSleepHours(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestCheckInFlow_DuplicateIDPanicReleasesWizard(t *testing.T) {
	t.Parallel()

	store := NewCheckInStore()
	flow := NewCheckInFlow(store, func() string { return "dup" }, time.Now, nil)

	advanceTo(t, flow, StepReflection)
	if _, err := flow.Finish(context.Background()); err != nil {
		t.Fatalf("first Finish failed: %v", err)
	}
	advanceTo(t, flow, StepReflection)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected duplicate id to panic")
			}
		}()
		_, _ = flow.Finish(context.Background())
	}()

	done := make(chan CheckInDraft, 1)
	go func() { done <- flow.Draft() }()
	select {
	case draft := <-done:
		if draft.Step != StepReflection {
			t.Fatalf("expected the wizard to stay on the reflection step, got %s", draft.Step)
		}
	case <-time.After(time.Second):
		t.Fatalf("wizard stayed locked after the duplicate id panic")
	}
	if store.Len() != 1 {
		t.Fatalf("expected one stored check-in, got %d", store.Len())
	}
}
