package extract

import (
	"regexp"
	"strings"

	"github.com/nhle/autoniq-extractor/internal/model"
)

// headlinePattern finds a styled div whose content is a single line, the
// notification headline ("Sold!", "Just Bought", "Back in Stock").
var headlinePattern = regexp.MustCompile(`<div style="[^\n]*\n([^\n]*)\n[ \t]*</div>`)

// Headline returns the first styled one-line div text of an HTML body.
func Headline(htmlBody string) (string, bool) {
	m := headlinePattern.FindStringSubmatch(htmlBody)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// Classify determines the lifecycle type of an HTML notification. "Sold"
// is checked before "Bought" and both checks are case-sensitive. Anything
// else is BackInStock. When no headline is found the second result is
// false and the type is the BackInStock default.
func Classify(htmlBody string) (model.LifecycleType, bool) {
	headline, ok := Headline(htmlBody)
	if !ok {
		return model.LifecycleBackInStock, false
	}
	return classifyHeadline(headline), true
}

func classifyHeadline(headline string) model.LifecycleType {
	switch {
	case strings.Contains(headline, "Sold"):
		return model.LifecycleSold
	case strings.Contains(headline, "Bought"):
		return model.LifecycleBought
	default:
		return model.LifecycleBackInStock
	}
}
