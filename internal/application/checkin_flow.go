package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// WizardStep is a stage of the check-in capture flow.
type WizardStep int

const (
	StepMood WizardStep = iota + 1
	StepSleep
	StepFactors
	StepEnergy
	StepReflection
)

func (s WizardStep) String() string {
	switch s {
	case StepMood:
		return "mood"
	case StepSleep:
		return "sleep"
	case StepFactors:
		return "factors"
	case StepEnergy:
		return "energy"
	case StepReflection:
		return "reflection"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Wizard defaults. Every field has one, so finishing never fails on input.
const (
	DefaultMood         = MoodCalm
	DefaultSleepQuality = SleepOkay
	DefaultSleepHours   = 7.0
	DefaultEnergyLevel  = EnergyMedium

	MaxSleepHours  = 12.0
	SleepHoursStep = 0.5
)

// CheckInDraft is a read-only snapshot of the wizard with defaults applied.
type CheckInDraft struct {
	Step         WizardStep
	Mood         Mood
	SleepQuality SleepQuality
	SleepHours   float64
	Factors      []string
	EnergyLevel  EnergyLevel
	Description  string
	Media        *MediaAttachment
}

type sleepSelection struct {
	quality SleepQuality
	hours   float64
}

type reflection struct {
	description string
	media       *MediaAttachment
}

// checkInBuilder keeps one optional field per wizard step; nil means "use the default".
type checkInBuilder struct {
	mood       *Mood
	sleep      *sleepSelection
	factors    []string
	energy     *EnergyLevel
	reflection *reflection
}

func (b checkInBuilder) draft(step WizardStep) CheckInDraft {
	d := CheckInDraft{
		Step:         step,
		Mood:         DefaultMood,
		SleepQuality: DefaultSleepQuality,
		SleepHours:   DefaultSleepHours,
		Factors:      append([]string{}, b.factors...),
		EnergyLevel:  DefaultEnergyLevel,
	}
	if b.mood != nil {
		d.Mood = *b.mood
	}
	if b.sleep != nil {
		d.SleepQuality = b.sleep.quality
		d.SleepHours = b.sleep.hours
	}
	if b.energy != nil {
		d.EnergyLevel = *b.energy
	}
	if b.reflection != nil {
		d.Description = b.reflection.description
		if b.reflection.media != nil {
			media := *b.reflection.media
			d.Media = &media
		}
	}
	return d
}

// CheckInFlow is the five step capture wizard. Finishing appends exactly one
// check-in to the store and resets the wizard.
type CheckInFlow struct {
	mu          sync.Mutex
	store       *CheckInStore
	idGenerator func() string
	now         func() time.Time
	onFinish    func(CheckIn)
	logger      *slog.Logger

	step    WizardStep
	builder checkInBuilder
}

// NewCheckInFlow wires the wizard to the store that receives finished check-ins.
func NewCheckInFlow(store *CheckInStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CheckInFlow {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &CheckInFlow{
		store:       store,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
		step:        StepMood,
	}
}

// OnFinish registers a callback invoked after each successful Finish.
func (f *CheckInFlow) OnFinish(fn func(CheckIn)) {
	f.mu.Lock()
	f.onFinish = fn
	f.mu.Unlock()
}

// Draft returns the current step and accumulated values.
func (f *CheckInFlow) Draft() CheckInDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.builder.draft(f.step)
}

// SelectMood records the mood step.
func (f *CheckInFlow) SelectMood(mood Mood) (CheckInDraft, error) {
	if _, ok := ParseMood(string(mood)); !ok {
		return f.Draft(), fieldError("mood", "mood is invalid")
	}
	return f.update(StepMood, func(b *checkInBuilder) {
		b.mood = &mood
	})
}

// SelectSleep records the sleep step. Hours are clamped to [0,12] and snapped to half hours.
func (f *CheckInFlow) SelectSleep(quality SleepQuality, hours float64) (CheckInDraft, error) {
	if _, ok := ParseSleepQuality(string(quality)); !ok {
		return f.Draft(), fieldError("sleep_quality", "sleep quality is invalid")
	}
	return f.update(StepSleep, func(b *checkInBuilder) {
		b.sleep = &sleepSelection{quality: quality, hours: ClampSleepHours(hours)}
	})
}

// ToggleFactor adds the label when absent and removes it when present.
func (f *CheckInFlow) ToggleFactor(label string) (CheckInDraft, error) {
	label = strings.TrimSpace(label)
	return f.update(StepFactors, func(b *checkInBuilder) {
		if label == "" {
			return
		}
		for i, existing := range b.factors {
			if existing == label {
				b.factors = append(b.factors[:i:i], b.factors[i+1:]...)
				return
			}
		}
		b.factors = append(b.factors, label)
	})
}

// SelectEnergy records the energy step.
func (f *CheckInFlow) SelectEnergy(level EnergyLevel) (CheckInDraft, error) {
	if _, ok := ParseEnergyLevel(string(level)); !ok {
		return f.Draft(), fieldError("energy_level", "energy level is invalid")
	}
	return f.update(StepEnergy, func(b *checkInBuilder) {
		b.energy = &level
	})
}

// SetReflection records the free text note and optional media reference.
func (f *CheckInFlow) SetReflection(description string, media *MediaAttachment) (CheckInDraft, error) {
	var attached *MediaAttachment
	if media != nil && strings.TrimSpace(media.URL) != "" {
		copied := *media
		attached = &copied
	}
	return f.update(StepReflection, func(b *checkInBuilder) {
		b.reflection = &reflection{description: description, media: attached}
	})
}

func (f *CheckInFlow) update(step WizardStep, apply func(*checkInBuilder)) (CheckInDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != step {
		return f.builder.draft(f.step), fmt.Errorf("%w: wizard is on the %s step, not %s", ErrInvalidTransition, f.step, step)
	}
	apply(&f.builder)
	return f.builder.draft(f.step), nil
}

// Next advances one step. It is available from the mood through the energy step.
func (f *CheckInFlow) Next() (CheckInDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step >= StepReflection {
		return f.builder.draft(f.step), fmt.Errorf("%w: next is not available on the %s step", ErrInvalidTransition, f.step)
	}
	f.step++
	return f.builder.draft(f.step), nil
}

// Back returns to the previous step keeping accumulated values.
func (f *CheckInFlow) Back() (CheckInDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step <= StepMood {
		return f.builder.draft(f.step), fmt.Errorf("%w: back is not available on the %s step", ErrInvalidTransition, f.step)
	}
	f.step--
	return f.builder.draft(f.step), nil
}

// Finish materializes the check-in, appends it to the store and resets the wizard.
func (f *CheckInFlow) Finish(ctx context.Context) (checkIn CheckIn, err error) {
	logger := serviceLogger(ctx, f.logger, "CheckInFlow", "Finish")

	checkIn, onFinish, err := f.commit()
	if err != nil {
		logger.WarnContext(ctx, "check-in finish rejected", "error", err, "error_kind", ErrorKind(err))
		return CheckIn{}, err
	}

	logger.With(
		"check_in_id", checkIn.ID,
		"mood", checkIn.Mood,
		"factor_count", len(checkIn.Factors),
	).InfoContext(ctx, "check-in recorded")

	if onFinish != nil {
		onFinish(cloneCheckIn(checkIn))
	}
	return checkIn, nil
}

// commit materializes the draft and appends it. The lock is released even
// when Append panics on a duplicate id.
func (f *CheckInFlow) commit() (CheckIn, func(CheckIn), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepReflection {
		return CheckIn{}, nil, fmt.Errorf("%w: finish is only available on the %s step, wizard is on %s", ErrInvalidTransition, StepReflection, f.step)
	}

	d := f.builder.draft(f.step)
	checkIn := CheckIn{
		ID:           f.idGenerator(),
		Date:         f.now(),
		Mood:         d.Mood,
		Description:  d.Description,
		SleepQuality: d.SleepQuality,
		SleepHours:   d.SleepHours,
		Factors:      d.Factors,
		EnergyLevel:  d.EnergyLevel,
		Media:        d.Media,
	}
	f.store.Append(checkIn)

	f.step = StepMood
	f.builder = checkInBuilder{}
	return checkIn, f.onFinish, nil
}

// ClampSleepHours bounds a slider value to [0,12] in half hour steps. NaN maps to the default.
func ClampSleepHours(hours float64) float64 {
	if math.IsNaN(hours) {
		return DefaultSleepHours
	}
	hours = math.Max(0, math.Min(MaxSleepHours, hours))
	return math.Round(hours/SleepHoursStep) * SleepHoursStep
}
