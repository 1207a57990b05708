package scorm

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidDuration = errors.New("invalid duration")

var (
	isoDurationRe = regexp.MustCompile(`^P(?:(\d+(?:\.\d+)?)Y)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)
	timespanRe    = regexp.MustCompile(`^(\d{2,4}):(\d{2}):(\d{2})(?:\.(\d{1,2}))?$`)
)

// isoUnits are the multipliers for the Y, M, D, H, M, S groups. Calendar
// units use fixed lengths; packages only ever report elapsed time.
var isoUnits = []time.Duration{
	365 * 24 * time.Hour,
	30 * 24 * time.Hour,
	24 * time.Hour,
	time.Hour,
	time.Minute,
	time.Second,
}

// ParseDuration accepts both ISO 8601 durations (SCORM 2004, "PT1H2M3.5S")
// and CMITimespan values (SCORM 1.2, "HHHH:MM:SS.SS").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if m := timespanRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		sec, _ := strconv.Atoi(m[3])
		if min > 59 || sec > 59 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		d := time.Duration(h)*time.Hour + time.Duration(min)*time.Minute + time.Duration(sec)*time.Second
		if m[4] != "" {
			frac := m[4]
			if len(frac) == 1 {
				frac += "0"
			}
			cs, _ := strconv.Atoi(frac)
			d += time.Duration(cs) * 10 * time.Millisecond
		}
		return d, nil
	}

	m := isoDurationRe.FindStringSubmatch(strings.ToUpper(s))
	if m == nil || s == "P" || strings.HasSuffix(strings.ToUpper(s), "T") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	var total time.Duration
	for i, unit := range isoUnits {
		v := m[i+1]
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		total += time.Duration(f * float64(unit))
	}
	return total, nil
}

// FormatISO renders d as a SCORM 2004 timeinterval, truncated to seconds.
func FormatISO(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs <= 0 {
		return "PT0S"
	}
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	var b strings.Builder
	b.WriteString("PT")
	if h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m > 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	if s > 0 {
		fmt.Fprintf(&b, "%dS", s)
	}
	return b.String()
}

// FormatTimespan renders d as a SCORM 1.2 CMITimespan ("0001:02:03").
func FormatTimespan(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%04d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// FormatClock renders d for people: "1:02:03" or "2:03".
func FormatClock(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
