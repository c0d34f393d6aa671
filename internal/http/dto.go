package http

import (
	"time"

	"github.com/example/mindease/internal/application"
)

const dateLayout = "2006-01-02"

type mediaDTO struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

func toMediaDTO(media *application.MediaAttachment) *mediaDTO {
	if media == nil {
		return nil
	}
	return &mediaDTO{URL: media.URL, Type: string(media.Type)}
}

func (m *mediaDTO) toMedia() *application.MediaAttachment {
	if m == nil {
		return nil
	}
	return &application.MediaAttachment{URL: m.URL, Type: application.MediaType(m.Type)}
}

type checkInDTO struct {
	ID           string    `json:"id"`
	Date         string    `json:"date"`
	Mood         string    `json:"mood"`
	Description  string    `json:"description,omitempty"`
	SleepQuality string    `json:"sleep_quality"`
	SleepHours   float64   `json:"sleep_hours"`
	Factors      []string  `json:"factors"`
	EnergyLevel  string    `json:"energy_level"`
	Media        *mediaDTO `json:"media,omitempty"`
}

func toCheckInDTO(c application.CheckIn) checkInDTO {
	factors := c.Factors
	if factors == nil {
		factors = []string{}
	}
	return checkInDTO{
		ID:           c.ID,
		Date:         c.Date.Format(time.RFC3339),
		Mood:         string(c.Mood),
		Description:  c.Description,
		SleepQuality: string(c.SleepQuality),
		SleepHours:   c.SleepHours,
		Factors:      factors,
		EnergyLevel:  string(c.EnergyLevel),
		Media:        toMediaDTO(c.Media),
	}
}

func toCheckInDTOs(checkIns []application.CheckIn) []checkInDTO {
	out := make([]checkInDTO, 0, len(checkIns))
	for _, c := range checkIns {
		out = append(out, toCheckInDTO(c))
	}
	return out
}

type draftDTO struct {
	Step              string    `json:"step"`
	StepNumber        int       `json:"step_number"`
	Mood              string    `json:"mood"`
	SleepQuality      string    `json:"sleep_quality"`
	SleepHours        float64   `json:"sleep_hours"`
	Factors           []string  `json:"factors"`
	EnergyLevel       string    `json:"energy_level"`
	Description       string    `json:"description"`
	Media             *mediaDTO `json:"media,omitempty"`
	FactorSuggestions []string  `json:"factor_suggestions,omitempty"`
}

func toDraftDTO(d application.CheckInDraft) draftDTO {
	dto := draftDTO{
		Step:         d.Step.String(),
		StepNumber:   int(d.Step),
		Mood:         string(d.Mood),
		SleepQuality: string(d.SleepQuality),
		SleepHours:   d.SleepHours,
		Factors:      d.Factors,
		EnergyLevel:  string(d.EnergyLevel),
		Description:  d.Description,
		Media:        toMediaDTO(d.Media),
	}
	if dto.Factors == nil {
		dto.Factors = []string{}
	}
	if d.Step == application.StepFactors {
		dto.FactorSuggestions = application.FactorSuggestions
	}
	return dto
}

type resourceDTO struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type"`
	Category    string   `json:"category,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	MoodTags    []string `json:"mood_tags,omitempty"`
	URL         string   `json:"url,omitempty"`
	Language    string   `json:"language,omitempty"`
	Favorite    bool     `json:"favorite"`
}

func toResourceDTOs(resources []application.Resource, store *application.CheckInStore) []resourceDTO {
	out := make([]resourceDTO, 0, len(resources))
	for _, r := range resources {
		moods := make([]string, 0, len(r.MoodTags))
		for _, m := range r.MoodTags {
			moods = append(moods, string(m))
		}
		out = append(out, resourceDTO{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Type:        string(r.Type),
			Category:    r.Category,
			Thumbnail:   r.Thumbnail,
			Tags:        r.Tags,
			MoodTags:    moods,
			URL:         r.URL,
			Language:    r.Language,
			Favorite:    store != nil && store.IsFavorite(r.ID),
		})
	}
	return out
}

type chatMessageDTO struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

func toChatMessageDTO(m application.ChatMessage) chatMessageDTO {
	return chatMessageDTO{ID: m.ID, Role: string(m.Role), Text: m.Text, Timestamp: m.Timestamp.Format(time.RFC3339Nano)}
}

func toChatMessageDTOs(messages []application.ChatMessage) []chatMessageDTO {
	out := make([]chatMessageDTO, 0, len(messages))
	for _, m := range messages {
		out = append(out, toChatMessageDTO(m))
	}
	return out
}
