package application

import (
	"strings"
	"time"
)

// Mood is the closed set of feelings a check-in can record.
type Mood string

const (
	MoodHappy       Mood = "Happy"
	MoodCalm        Mood = "Calm"
	MoodStressed    Mood = "Stressed"
	MoodAnxious     Mood = "Anxious"
	MoodLonely      Mood = "Lonely"
	MoodOverwhelmed Mood = "Overwhelmed"
	MoodSad         Mood = "Sad"
)

// Moods lists every mood in presentation order.
var Moods = []Mood{MoodHappy, MoodCalm, MoodStressed, MoodAnxious, MoodLonely, MoodOverwhelmed, MoodSad}

// ParseMood resolves a mood label case-insensitively.
func ParseMood(value string) (Mood, bool) {
	key := normalizeLabel(value)
	for _, mood := range Moods {
		if normalizeLabel(string(mood)) == key {
			return mood, true
		}
	}
	return "", false
}

// SleepQuality rates the previous night's sleep.
type SleepQuality string

const (
	SleepVeryGood SleepQuality = "Very Good"
	SleepOkay     SleepQuality = "Okay"
	SleepPoor     SleepQuality = "Poor"
)

var sleepQualities = []SleepQuality{SleepVeryGood, SleepOkay, SleepPoor}

// ParseSleepQuality accepts "Very Good", "very_good" and "VeryGood" alike.
func ParseSleepQuality(value string) (SleepQuality, bool) {
	key := normalizeLabel(value)
	for _, quality := range sleepQualities {
		if normalizeLabel(string(quality)) == key {
			return quality, true
		}
	}
	return "", false
}

// EnergyLevel is the self-reported energy for the day.
type EnergyLevel string

const (
	EnergyHigh   EnergyLevel = "High"
	EnergyMedium EnergyLevel = "Medium"
	EnergyLow    EnergyLevel = "Low"
)

var energyLevels = []EnergyLevel{EnergyHigh, EnergyMedium, EnergyLow}

// ParseEnergyLevel resolves an energy label case-insensitively.
func ParseEnergyLevel(value string) (EnergyLevel, bool) {
	key := normalizeLabel(value)
	for _, level := range energyLevels {
		if normalizeLabel(string(level)) == key {
			return level, true
		}
	}
	return "", false
}

func normalizeLabel(value string) string {
	replacer := strings.NewReplacer(" ", "", "_", "", "-", "")
	return strings.ToLower(replacer.Replace(strings.TrimSpace(value)))
}

// MediaType identifies the kind of attachment captured with a reflection.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// MediaAttachment is an opaque reference produced by the media capture collaborator.
type MediaAttachment struct {
	URL  string
	Type MediaType
}

// User is the mocked identity created at login. It lives as long as the login session.
type User struct {
	ID                string
	Name              string
	Email             string
	PreferredLanguage string
	CreatedAt         time.Time
}

// CheckIn is one immutable mood journal entry.
type CheckIn struct {
	ID           string
	Date         time.Time
	Mood         Mood
	Description  string
	SleepQuality SleepQuality
	SleepHours   float64
	Factors      []string
	EnergyLevel  EnergyLevel
	Media        *MediaAttachment
}

func cloneCheckIn(checkIn CheckIn) CheckIn {
	clone := checkIn
	clone.Factors = append([]string(nil), checkIn.Factors...)
	if checkIn.Media != nil {
		media := *checkIn.Media
		clone.Media = &media
	}
	return clone
}

// ResourceType classifies catalog entries.
type ResourceType string

const (
	ResourceArticle ResourceType = "article"
	ResourceVideo   ResourceType = "video"
	ResourceMovie   ResourceType = "movie"
	ResourceSong    ResourceType = "song"
)

// Resource is a read-only catalog entry supplied at startup.
type Resource struct {
	ID          string
	Title       string
	Description string
	Type        ResourceType
	Category    string
	Thumbnail   string
	Tags        []string
	MoodTags    []Mood
	URL         string
	Language    string
}

// ChatRole identifies the author of a transcript entry.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one transcript entry of a companion dialogue.
type ChatMessage struct {
	ID        string
	Role      ChatRole
	Text      string
	Timestamp time.Time
}

// Principal represents the logged-in user invoking an operation.
type Principal struct {
	UserID    string
	SessionID string
}

// Session represents a login session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// LoginParams captures the mocked login form.
type LoginParams struct {
	Name              string
	Email             string
	PreferredLanguage string
}

// LoginResult captures the outcome of a successful login.
type LoginResult struct {
	User    User
	Session Session
}

// Languages lists the preferred languages offered on the login form.
var Languages = []string{"English", "Tamil", "Hindi", "Spanish", "French", "German"}

// FactorSuggestions is the fixed list offered by the factors step of the check-in wizard.
var FactorSuggestions = []string{"Studies / Work", "Family", "Relationships", "Health", "Finance", "Unknown"}

// Affirmations are shown one at a time on the home screen.
var Affirmations = []string{
	"You are capable of handling whatever this day throws at you.",
	"Your mistakes don't define your value.",
	"It's okay to take a break and breathe.",
	"You are worthy of love, especially from yourself.",
	"Small progress is still progress.",
	"Your feelings are valid, even if they're difficult.",
}
