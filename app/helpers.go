package app

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
)

// swedishIndicators are common Swedish words used as a cheap language signal
// for "auto" cover-letter language selection.
var swedishIndicators = map[string]struct{}{
	"och": {}, "att": {}, "är": {}, "på": {}, "för": {},
	"med": {}, "som": {}, "av": {}, "till": {}, "vi": {},
	"ansökan": {}, "kunskap": {}, "erfarenhet": {}, "arbete": {}, "företag": {},
}

// detectLanguage guesses between Swedish and English from the combined job
// description and CV text. Arabic is never auto-detected; callers wanting "ar"
// must ask for it explicitly.
func detectLanguage(jobDescription, cvText string) string {
	text := strings.ToLower(jobDescription + " " + cvText)

	swedishCount := 0
	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if _, ok := swedishIndicators[word]; ok {
			swedishCount++
		}
	}

	if swedishCount > 5 {
		return "sv"
	}
	return "en"
}

// hoursUntilReset rounds a retry-after duration up to whole hours for the
// user-facing rate-limit message.
func hoursUntilReset(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours()))
}

// truncateForLog shortens s to limit runes, appending an ellipsis when truncated.
func truncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// timeoutContext derives a per-call deadline for upstream assistant requests.
func timeoutContext(c *gin.Context, seconds int) (context.Context, context.CancelFunc) {
	if seconds <= 0 {
		seconds = 60
	}
	return context.WithTimeout(c.Request.Context(), time.Duration(seconds)*time.Second)
}

func normalizeLanguage(lang string) string {
	switch lang {
	case "en", "sv", "ar":
		return lang
	default:
		return "en"
	}
}
