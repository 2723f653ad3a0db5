package cache

import (
	"fmt"
	"strings"
	"time"
)

// AnalysisKey addresses one cached analysis result. inputHash identifies the
// normalized records the result was computed from.
func AnalysisKey(studentID, inputHash string) string {
	return fmt.Sprintf("analysis:%s:%s", studentID, inputHash)
}

// StudentAnalysisPattern is the SCAN pattern for every AnalysisKey of the student.
func StudentAnalysisPattern(studentID string) string {
	return fmt.Sprintf("analysis:%s:*", globEscaper.Replace(studentID))
}

// RateLimitKey names the request counter of one API key in the fixed window
// starting at windowStart.
func RateLimitKey(keyPrefix string, windowStart time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%d", keyPrefix, windowStart.Unix())
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
