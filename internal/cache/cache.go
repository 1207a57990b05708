// Package cache keeps the latest SCORM snapshot of each learner and content
// outside the session, so a relaunch can recover state that was changed but
// never committed.
package cache

import (
	"strings"

	"github.com/alexanderramin/coursegate/internal/scorm"
)

const keyPrefix = "coursegate:scorm"

// Key is the cache key of a target's snapshot.
func Key(t scorm.Target) string {
	return strings.Join([]string{keyPrefix, t.UserID, t.ClientID, t.CourseID, t.ContentID}, ":")
}
