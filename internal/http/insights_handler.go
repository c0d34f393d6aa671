package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/example/mindease/internal/application"
)

// InsightsHandler serves the dashboard and the mood calendar.
type InsightsHandler struct {
	location  *time.Location
	responder responder
}

// NewInsightsHandler resolves calendar days in loc (time.Local when nil).
func NewInsightsHandler(loc *time.Location, logger *slog.Logger) *InsightsHandler {
	if loc == nil {
		loc = time.Local
	}
	return &InsightsHandler{location: loc, responder: newResponder(defaultLogger(logger))}
}

func (h *InsightsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}
	d := application.BuildDashboard(ws.Store.List())

	resp := dashboardResponse{
		Streak:            d.Streak,
		DominantMood:      string(d.DominantMood),
		AverageSleepHours: d.AverageSleepHours,
		NextMilestone:     d.NextMilestone,
		MoodSeries:        make([]moodPointDTO, 0, len(d.MoodSeries)),
		SleepSeries:       make([]sleepPointDTO, 0, len(d.SleepSeries)),
		MoodCounts:        make(map[string]int, len(d.MoodCounts)),
	}
	for _, p := range d.MoodSeries {
		resp.MoodSeries = append(resp.MoodSeries, moodPointDTO{CheckInID: p.CheckInID, Date: p.Date.Format(time.RFC3339), Mood: string(p.Mood), Score: p.Score})
	}
	for _, p := range d.SleepSeries {
		resp.SleepSeries = append(resp.SleepSeries, sleepPointDTO{CheckInID: p.CheckInID, Date: p.Date.Format(time.RFC3339), Hours: p.Hours, Adequacy: string(p.Adequacy)})
	}
	for mood, n := range d.MoodCounts {
		resp.MoodCounts[string(mood)] = n
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// CalendarDay looks up the check-in for ?date=YYYY-MM-DD.
func (h *InsightsHandler) CalendarDay(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}
	day, err := time.ParseInLocation(dateLayout, r.URL.Query().Get("date"), h.location)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, fieldValidation("date", "date must be formatted as YYYY-MM-DD"))
		return
	}

	resp := calendarDayResponse{Date: day.Format(dateLayout)}
	if c, found := application.CheckInOnDay(ws.Store.List(), day.Year(), day.Month(), day.Day(), h.location); found {
		dto := toCheckInDTO(c)
		resp.CheckIn = &dto
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// CalendarMonth returns the month grid for /calendar/{year}/{month}.
func (h *InsightsHandler) CalendarMonth(w http.ResponseWriter, r *http.Request) {
	ws, ok := requireWorkspace(w, r, h.responder)
	if !ok {
		return
	}

	year, yErr := strconv.Atoi(r.PathValue("year"))
	month, mErr := strconv.Atoi(r.PathValue("month"))
	if yErr != nil || mErr != nil || year < 1 || month < 1 || month > 12 {
		h.responder.handleServiceError(r.Context(), w, fieldValidation("month", "year and month must be numeric, month 1-12"))
		return
	}

	cal := application.BuildCalendarMonth(ws.Store.List(), year, time.Month(month), h.location)
	resp := calendarMonthResponse{
		Year:          cal.Year,
		Month:         int(cal.Month),
		LeadingBlanks: cal.LeadingBlanks,
		Days:          make([]calendarCellDTO, 0, len(cal.Days)),
	}
	for _, d := range cal.Days {
		cell := calendarCellDTO{Day: d.Day}
		if d.CheckIn != nil {
			cell.Mood = string(d.CheckIn.Mood)
			cell.CheckInID = d.CheckIn.ID
		}
		resp.Days = append(resp.Days, cell)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

type moodPointDTO struct {
	CheckInID string `json:"check_in_id"`
	Date      string `json:"date"`
	Mood      string `json:"mood"`
	Score     int    `json:"score"`
}

type sleepPointDTO struct {
	CheckInID string  `json:"check_in_id"`
	Date      string  `json:"date"`
	Hours     float64 `json:"hours"`
	Adequacy  string  `json:"adequacy"`
}

type dashboardResponse struct {
	Streak            int             `json:"streak"`
	DominantMood      string          `json:"dominant_mood"`
	AverageSleepHours float64         `json:"average_sleep_hours"`
	NextMilestone     string          `json:"next_milestone"`
	MoodSeries        []moodPointDTO  `json:"mood_series"`
	SleepSeries       []sleepPointDTO `json:"sleep_series"`
	MoodCounts        map[string]int  `json:"mood_counts"`
}

type calendarDayResponse struct {
	Date    string      `json:"date"`
	CheckIn *checkInDTO `json:"check_in"`
}

type calendarCellDTO struct {
	Day       int    `json:"day"`
	Mood      string `json:"mood,omitempty"`
	CheckInID string `json:"check_in_id,omitempty"`
}

type calendarMonthResponse struct {
	Year          int               `json:"year"`
	Month         int               `json:"month"`
	LeadingBlanks int               `json:"leading_blanks"`
	Days          []calendarCellDTO `json:"days"`
}
