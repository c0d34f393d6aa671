package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/mindease/internal/application"
	"github.com/example/mindease/internal/persistence"
)

var (
	userCounter     uint64
	sessionCounter  uint64
	checkInCounter  uint64
	resourceCounter uint64
)

var referenceTime = time.Date(2024, time.March, 5, 20, 30, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// UserFixture is a deterministic account that can be materialised for
// application or persistence tests.
type UserFixture struct {
	ID                string
	Name              string
	Email             string
	PreferredLanguage string
	CreatedAt         time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	fixture := UserFixture{
		ID:                id,
		Name:              fmt.Sprintf("Visitor %03d", idx),
		Email:             fmt.Sprintf("%s@example.com", id),
		PreferredLanguage: application.Languages[0],
		CreatedAt:         referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

func WithUserID(id string) UserOption {
	return func(f *UserFixture) { f.ID = id }
}

func WithUserName(name string) UserOption {
	return func(f *UserFixture) { f.Name = name }
}

func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) { f.Email = email }
}

func WithUserLanguage(language string) UserOption {
	return func(f *UserFixture) { f.PreferredLanguage = language }
}

// Application converts the fixture into the application layer representation.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:                f.ID,
		Name:              f.Name,
		Email:             f.Email,
		PreferredLanguage: f.PreferredLanguage,
		CreatedAt:         f.CreatedAt,
	}
}

// Persistence converts the fixture into the persistence layer representation.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:                f.ID,
		Name:              f.Name,
		Email:             f.Email,
		PreferredLanguage: f.PreferredLanguage,
		CreatedAt:         f.CreatedAt,
	}
}

// SessionFixture is a deterministic bearer session.
type SessionFixture struct {
	ID        string
	UserID    string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a session that expires twelve hours after creation.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		UserID:    "user-001",
		Token:     fmt.Sprintf("token-%03d", idx),
		CreatedAt: created,
		ExpiresAt: created.Add(12 * time.Hour),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

func WithSessionUser(userID string) SessionOption {
	return func(f *SessionFixture) { f.UserID = userID }
}

func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) { f.Token = token }
}

func WithSessionExpiry(expires time.Time) SessionOption {
	return func(f *SessionFixture) { f.ExpiresAt = expires }
}

func WithSessionRevokedAt(revoked time.Time) SessionOption {
	return func(f *SessionFixture) {
		at := revoked
		f.RevokedAt = &at
	}
}

func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		RevokedAt: copyTime(f.RevokedAt),
	}
}

func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		RevokedAt: copyTime(f.RevokedAt),
	}
}

// CheckInFixture describes one completed daily check-in.
type CheckInFixture struct {
	ID           string
	Date         time.Time
	Mood         application.Mood
	Description  string
	SleepQuality application.SleepQuality
	SleepHours   float64
	Factors      []string
	EnergyLevel  application.EnergyLevel
}

// CheckInOption configures the generated check-in fixture.
type CheckInOption func(*CheckInFixture)

// NewCheckInFixture returns a calm, well-rested check-in dated at ReferenceTime.
func NewCheckInFixture(opts ...CheckInOption) CheckInFixture {
	idx := atomic.AddUint64(&checkInCounter, 1)
	fixture := CheckInFixture{
		ID:           fmt.Sprintf("checkin-%03d", idx),
		Date:         referenceTime,
		Mood:         application.MoodCalm,
		SleepQuality: application.SleepOkay,
		SleepHours:   7,
		EnergyLevel:  application.EnergyMedium,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

func WithCheckInID(id string) CheckInOption {
	return func(f *CheckInFixture) { f.ID = id }
}

func WithCheckInDate(date time.Time) CheckInOption {
	return func(f *CheckInFixture) { f.Date = date }
}

// WithCheckInDaysAgo dates the check-in relative to ReferenceTime.
func WithCheckInDaysAgo(days int) CheckInOption {
	return func(f *CheckInFixture) { f.Date = referenceTime.AddDate(0, 0, -days) }
}

func WithCheckInMood(mood application.Mood) CheckInOption {
	return func(f *CheckInFixture) { f.Mood = mood }
}

func WithCheckInSleep(quality application.SleepQuality, hours float64) CheckInOption {
	return func(f *CheckInFixture) {
		f.SleepQuality = quality
		f.SleepHours = hours
	}
}

func WithCheckInFactors(factors ...string) CheckInOption {
	return func(f *CheckInFixture) { f.Factors = append([]string(nil), factors...) }
}

func WithCheckInDescription(text string) CheckInOption {
	return func(f *CheckInFixture) { f.Description = text }
}

func (f CheckInFixture) Application() application.CheckIn {
	return application.CheckIn{
		ID:           f.ID,
		Date:         f.Date,
		Mood:         f.Mood,
		Description:  f.Description,
		SleepQuality: f.SleepQuality,
		SleepHours:   f.SleepHours,
		Factors:      append([]string(nil), f.Factors...),
		EnergyLevel:  f.EnergyLevel,
	}
}

// ResourceFixture describes a catalog entry.
type ResourceFixture struct {
	ID       string
	Title    string
	Type     application.ResourceType
	Category string
	MoodTags []application.Mood
	Language string
}

// ResourceOption configures the generated resource fixture.
type ResourceOption func(*ResourceFixture)

// NewResourceFixture returns an English article tagged Calm.
func NewResourceFixture(opts ...ResourceOption) ResourceFixture {
	idx := atomic.AddUint64(&resourceCounter, 1)
	fixture := ResourceFixture{
		ID:       fmt.Sprintf("res-%03d", idx),
		Title:    fmt.Sprintf("Resource %03d", idx),
		Type:     application.ResourceArticle,
		Category: "Mindfulness",
		MoodTags: []application.Mood{application.MoodCalm},
		Language: application.Languages[0],
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

func WithResourceID(id string) ResourceOption {
	return func(f *ResourceFixture) { f.ID = id }
}

func WithResourceType(kind application.ResourceType) ResourceOption {
	return func(f *ResourceFixture) { f.Type = kind }
}

func WithResourceMoods(moods ...application.Mood) ResourceOption {
	return func(f *ResourceFixture) { f.MoodTags = append([]application.Mood(nil), moods...) }
}

func WithResourceLanguage(language string) ResourceOption {
	return func(f *ResourceFixture) { f.Language = language }
}

func (f ResourceFixture) Application() application.Resource {
	return application.Resource{
		ID:       f.ID,
		Title:    f.Title,
		Type:     f.Type,
		Category: f.Category,
		MoodTags: append([]application.Mood(nil), f.MoodTags...),
		Language: f.Language,
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
