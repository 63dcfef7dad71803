package extract

import (
	"regexp"
	"strings"
)

// Description is a vehicle description split into its parts.
type Description struct {
	Year  string
	Make  string
	Model string
}

// descriptionPattern is optional leading digits, a space, one word, a
// space, then everything else: "2019 Toyota Camry XLE". The word may hold
// any Unicode letter or digit ("Citroën", "Škoda"), which \w does not.
var descriptionPattern = regexp.MustCompile(`^(\d*)\s([\p{L}\p{N}_]+)\s(.*)`)

// nbsp is what &nbsp; decodes to; \s does not match it.
const nbsp = "\u00a0"

// ParseDescription splits an already decoded description into year, make
// and model. Entities are decoded once, by the template that read the
// body, so "&amp;" here is literal text. A description that does not fit
// the pattern yields an empty Description; this is never an error.
func ParseDescription(text string) Description {
	text = strings.TrimSpace(strings.ReplaceAll(text, nbsp, " "))

	m := descriptionPattern.FindStringSubmatch(text)
	if m == nil {
		return Description{}
	}

	return Description{
		Year:  strings.TrimSpace(m[1]),
		Make:  strings.TrimSpace(m[2]),
		Model: strings.TrimSpace(m[3]),
	}
}

// Empty reports whether no part of the description was recognised.
func (d Description) Empty() bool {
	return d.Year == "" && d.Make == "" && d.Model == ""
}
