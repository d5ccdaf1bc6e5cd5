package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var honorificRe = regexp.MustCompile(`(?i)^(Dr\.?|Doctor|Mrs\.?|Ms\.?|Mr\.?)\s+`)

// NormalizeDoctor maps free-form doctor references to "Dr. Lastname".
func NormalizeDoctor(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	raw = honorificRe.ReplaceAllString(raw, "")
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return ""
	}
	last := parts[len(parts)-1]
	last = strings.ToUpper(last[:1]) + strings.ToLower(last[1:])
	return "Dr. " + last
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

// ResolveDate turns relative date phrases ("tomorrow", "next Tuesday") and
// absolute forms into YYYY-MM-DD. Unparseable input is returned unchanged so
// the booking handler can surface a validation clarification.
func ResolveDate(raw string, now time.Time) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch s {
	case "today":
		return today.Format("2006-01-02")
	case "tomorrow":
		return today.AddDate(0, 0, 1).Format("2006-01-02")
	case "next week":
		return today.AddDate(0, 0, 7).Format("2006-01-02")
	case "next month":
		return today.AddDate(0, 1, 0).Format("2006-01-02")
	}

	// "next tuesday" / bare weekday name: the next future occurrence.
	name := strings.TrimSpace(strings.TrimPrefix(s, "next "))
	if wd, ok := weekdays[name]; ok {
		days := int(wd-today.Weekday()+7) % 7
		if days == 0 {
			days = 7
		}
		return today.AddDate(0, 0, days).Format("2006-01-02")
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("2006-01-02")
	}
	// "June 4" / "June 4th"
	if t, ok := parseMonthDay(s, now.Year()); ok {
		return t.Format("2006-01-02")
	}
	return raw
}

var monthDayRe = regexp.MustCompile(`(?i)^(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})(?:st|nd|rd|th)?$`)

func parseMonthDay(s string, year int) (time.Time, bool) {
	m := monthDayRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	month := strings.ToLower(m[1])
	month = strings.ToUpper(month[:1]) + month[1:]
	t, err := time.Parse("January 2 2006", fmt.Sprintf("%s %s %d", month, m[2], year))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var clockRe = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m\.?$`)

// ResolveTime normalizes spoken times ("3pm", "3:30 PM", "15:00") to HH:MM
// 24-hour form. Unparseable input is returned unchanged.
func ResolveTime(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04")
	}
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return raw
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	period := strings.ToLower(m[3])
	if period == "p" && hour < 12 {
		hour += 12
	}
	if period == "a" && hour == 12 {
		hour = 0
	}
	if hour > 23 || minute > 59 {
		return raw
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
