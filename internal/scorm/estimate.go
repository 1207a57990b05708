package scorm

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/alexanderramin/coursegate/internal/domain"
)

var (
	embeddedProgressRe = regexp.MustCompile(`(?i)["']?progress["']?\s*[:=]\s*["']?(\d+(?:\.\d+)?)`)
	plainDecimalRe     = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	hexLikeRe          = regexp.MustCompile(`^[0-9a-fA-F]{8,}$`)
)

// maxLocationValue bounds the numeric lesson_location fallback.
const maxLocationValue = 500

// EstimateProgress guesses a completion percentage from opaque suspend data,
// falling back to a numeric lesson location. It is a heuristic: anything it
// cannot read yields 0.
//
// Suspend data of the form {"h": {...visited units...}} is scored by the
// number of visited units against an estimated total. With a numeric
// current-unit pointer (c, current or currentSlide) the total is
// max(current+5, visited+3); otherwise it is bucketed by the visited count.
func EstimateProgress(suspendData, location string) int {
	suspendData = strings.TrimSpace(suspendData)
	if suspendData == "" {
		return locationProgress(location)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(suspendData), &parsed); err != nil {
		if m := embeddedProgressRe.FindStringSubmatch(suspendData); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				return domain.ClampPct(domain.RoundHalfUp(f))
			}
		}
		return 0
	}

	if visited, ok := parsed["h"].(map[string]any); ok {
		completed := len(visited)
		total := estimateTotalUnits(parsed, completed)
		return domain.PctOf(completed, total)
	}

	for _, field := range []string{"progress", "completed", "percent"} {
		if f, ok := numericLike(parsed[field]); ok {
			return domain.ClampPct(domain.RoundHalfUp(f))
		}
	}

	return locationProgress(location)
}

func estimateTotalUnits(parsed map[string]any, completed int) int {
	for _, field := range []string{"c", "current", "currentSlide"} {
		if cur, ok := numericLike(parsed[field]); ok {
			return max(int(cur)+5, completed+3)
		}
	}
	switch {
	case completed <= 5:
		return 15
	case completed <= 10:
		return 25
	case completed <= 15:
		return 30
	case completed <= 20:
		return 40
	default:
		return max(completed+10, 50)
	}
}

// locationProgress reads a lesson location as a percentage only when it is a
// plain decimal in [0, 500]. Hex-like identifiers are never slide numbers.
func locationProgress(location string) int {
	location = strings.TrimSpace(location)
	if location == "" || hexLikeRe.MatchString(location) || !plainDecimalRe.MatchString(location) {
		return 0
	}
	f, err := strconv.ParseFloat(location, 64)
	if err != nil || f > maxLocationValue {
		return 0
	}
	return domain.ClampPct(domain.RoundHalfUp(f))
}

func numericLike(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case string:
		n = strings.TrimSpace(n)
		if !plainDecimalRe.MatchString(n) {
			return 0, false
		}
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
