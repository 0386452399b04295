package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders bytes with two significant decimals, e.g. 1536 -> "1.5 KB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	exp := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if exp >= len(sizeUnits) {
		exp = len(sizeUnits) - 1
	}

	value := float64(bytes) / math.Pow(1024, float64(exp))
	rounded := math.Round(value*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[exp]
}

// TimeAgo describes how long ago t was relative to now. Anything older than 30 days is printed as a date.
func TimeAgo(t, now time.Time) string {
	seconds := int64(now.Sub(t) / time.Second)
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return plural(seconds/60, "minute") + " ago"
	case seconds < 86400:
		return plural(seconds/3600, "hour") + " ago"
	case seconds < 2592000:
		return plural(seconds/86400, "day") + " ago"
	default:
		return t.Local().Format("January 2, 2006 15:04")
	}
}

// FormatDuration renders the time between start and end as "42s", "3m 5s" or "2h 10m".
func FormatDuration(start, end time.Time) string {
	seconds := int64(end.Sub(start) / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	default:
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	}
}

// FormatDisplayName keeps the first name and the initial of the second: "JUAN CARLOS PEREZ" -> "Juan C.".
func FormatDisplayName(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "User"
	}

	first := capitalize(parts[0])
	if len(parts) == 1 {
		return first
	}

	initial, _ := utf8.DecodeRuneInString(parts[1])
	return fmt.Sprintf("%s %c.", first, unicode.ToUpper(initial))
}

// NameInitial is the avatar letter for fullName.
func NameInitial(fullName string) string {
	trimmed := strings.TrimSpace(fullName)
	if trimmed == "" {
		return "U"
	}
	r, _ := utf8.DecodeRuneInString(trimmed)
	return string(unicode.ToUpper(r))
}

func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
