package application

import (
	"slices"
	"time"
)

// Dashboard constants shown as-is. The sleep average is a display value, not computed.
const (
	DisplayedAverageSleepHours = 7.5
	AdequateSleepHours         = 7.0
	NextMilestone              = "1 Month"
	unmappedMoodScore          = 3
)

var moodScores = map[Mood]int{
	MoodHappy:       5,
	MoodCalm:        4,
	MoodStressed:    2,
	MoodAnxious:     1,
	MoodLonely:      1,
	MoodOverwhelmed: 2,
	MoodSad:         0,
}

// MoodScore maps a mood onto the ordinal pleasantness scale used by the trend chart.
func MoodScore(mood Mood) int {
	if score, ok := moodScores[mood]; ok {
		return score
	}
	return unmappedMoodScore
}

// MoodPoint is one entry of the mood trend, oldest first.
type MoodPoint struct {
	CheckInID string
	Date      time.Time
	Mood      Mood
	Score     int
}

// SleepAdequacy flags a night's sleep against the seven hour rule.
type SleepAdequacy string

const (
	SleepAdequate SleepAdequacy = "adequate"
	SleepLow      SleepAdequacy = "low"
)

// SleepPoint is one entry of the sleep chart, oldest first.
type SleepPoint struct {
	CheckInID string
	Date      time.Time
	Hours     float64
	Adequacy  SleepAdequacy
}

// MoodScoreSeries reverses the newest-first store order and scores each check-in.
func MoodScoreSeries(checkIns []CheckIn) []MoodPoint {
	points := make([]MoodPoint, 0, len(checkIns))
	for i := len(checkIns) - 1; i >= 0; i-- {
		c := checkIns[i]
		points = append(points, MoodPoint{CheckInID: c.ID, Date: c.Date, Mood: c.Mood, Score: MoodScore(c.Mood)})
	}
	return points
}

// SleepSeries lists sleep hours oldest first with the adequacy flag.
func SleepSeries(checkIns []CheckIn) []SleepPoint {
	points := make([]SleepPoint, 0, len(checkIns))
	for i := len(checkIns) - 1; i >= 0; i-- {
		c := checkIns[i]
		adequacy := SleepLow
		if c.SleepHours >= AdequateSleepHours {
			adequacy = SleepAdequate
		}
		points = append(points, SleepPoint{CheckInID: c.ID, Date: c.Date, Hours: c.SleepHours, Adequacy: adequacy})
	}
	return points
}

// MoodHistogram counts occurrences per mood. Moods that never occur are absent.
func MoodHistogram(checkIns []CheckIn) map[Mood]int {
	counts := make(map[Mood]int)
	for _, c := range checkIns {
		counts[c.Mood]++
	}
	return counts
}

// Dashboard aggregates every dashboard widget from the store contents.
type Dashboard struct {
	Streak            int
	DominantMood      Mood
	AverageSleepHours float64
	NextMilestone     string
	MoodSeries        []MoodPoint
	SleepSeries       []SleepPoint
	MoodCounts        map[Mood]int
}

// BuildDashboard recomputes the dashboard. DominantMood is the latest entry's
// mood (Calm when empty), not the histogram mode.
func BuildDashboard(checkIns []CheckIn) Dashboard {
	dominant := DefaultMood
	if len(checkIns) > 0 {
		dominant = checkIns[0].Mood
	}
	return Dashboard{
		Streak:            len(checkIns),
		DominantMood:      dominant,
		AverageSleepHours: DisplayedAverageSleepHours,
		NextMilestone:     NextMilestone,
		MoodSeries:        MoodScoreSeries(checkIns),
		SleepSeries:       SleepSeries(checkIns),
		MoodCounts:        MoodHistogram(checkIns),
	}
}

// CheckInOnDay returns the first check-in in store order dated on the given
// calendar day in loc. A nil loc means time.Local.
func CheckInOnDay(checkIns []CheckIn, year int, month time.Month, day int, loc *time.Location) (CheckIn, bool) {
	if loc == nil {
		loc = time.Local
	}
	for _, c := range checkIns {
		y, m, d := c.Date.In(loc).Date()
		if y == year && m == month && d == day {
			return c, true
		}
	}
	return CheckIn{}, false
}

// CalendarDay is one cell of the monthly mood calendar.
type CalendarDay struct {
	Day     int
	CheckIn *CheckIn
}

// CalendarMonth is the grid for one month. LeadingBlanks is the weekday offset of the first day.
type CalendarMonth struct {
	Year          int
	Month         time.Month
	LeadingBlanks int
	Days          []CalendarDay
}

// BuildCalendarMonth resolves every day of the month with CheckInOnDay.
func BuildCalendarMonth(checkIns []CheckIn, year int, month time.Month, loc *time.Location) CalendarMonth {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	numDays := first.AddDate(0, 1, -1).Day()

	cal := CalendarMonth{Year: year, Month: month, LeadingBlanks: int(first.Weekday()), Days: make([]CalendarDay, 0, numDays)}
	for day := 1; day <= numDays; day++ {
		cell := CalendarDay{Day: day}
		if c, ok := CheckInOnDay(checkIns, year, month, day, loc); ok {
			cell.CheckIn = &c
		}
		cal.Days = append(cal.Days, cell)
	}
	return cal
}

// ResourceFilter is the type tab selected on the resources page.
type ResourceFilter string

const (
	FilterAll     ResourceFilter = "all"
	FilterArticle ResourceFilter = "article"
	FilterVideo   ResourceFilter = "video"
	FilterMovie   ResourceFilter = "movie"
	FilterSong    ResourceFilter = "song"
)

// ParseResourceFilter maps an empty value to FilterAll.
func ParseResourceFilter(value string) (ResourceFilter, bool) {
	switch ResourceFilter(normalizeLabel(value)) {
	case "", FilterAll:
		return FilterAll, true
	case FilterArticle:
		return FilterArticle, true
	case FilterVideo:
		return FilterVideo, true
	case FilterMovie:
		return FilterMovie, true
	case FilterSong:
		return FilterSong, true
	}
	return "", false
}

// FilterResources keeps catalog order. A resource passes when the type filter
// matches and it is mood tagged, in the preferred language, or not a movie.
func FilterResources(catalog []Resource, filter ResourceFilter, mood Mood, preferredLanguage string) []Resource {
	out := make([]Resource, 0, len(catalog))
	for _, r := range catalog {
		if filter != FilterAll && ResourceFilter(r.Type) != filter {
			continue
		}
		sameLanguage := r.Language != "" && r.Language == preferredLanguage
		if slices.Contains(r.MoodTags, mood) || sameLanguage || r.Type != ResourceMovie {
			out = append(out, r)
		}
	}
	return out
}

// FavoriteResources resolves favorite ids against the catalog in catalog order.
func FavoriteResources(catalog []Resource, favoriteIDs []string) []Resource {
	out := make([]Resource, 0, len(favoriteIDs))
	for _, r := range catalog {
		if slices.Contains(favoriteIDs, r.ID) {
			out = append(out, r)
		}
	}
	return out
}
