package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Fields holds the raw, trimmed values located in a message body.
type Fields struct {
	Description string
	VIN         string
	Mileage     string
	Color       string

	// Link is the URL of the anchor embedded in the HTML vehicle cell.
	// It is empty for plain-text bodies and for cells without an anchor.
	Link string
}

// Template is one body grammar the sender is known to use.
type Template interface {
	// Name identifies the template in errors and logs.
	Name() string

	// TryExtract locates the four listing fields in body. It returns a
	// structural *ParseError when the layout is absent.
	TryExtract(body string) (Fields, error)
}

// PlainTextTemplate reads the line-oriented text/plain body:
//
//	Vehicle: 2019 Toyota Camry XLE
//	...
//	VIN: 4T1B11HK5KU000000
//	Mileage: 45231
//	Color: Silver
type PlainTextTemplate struct{}

// The Color line may end the body without a newline.
var plainTextPattern = regexp.MustCompile(
	`(?i)Vehicle:(.*)\n(?:.*\n)*?VIN:(.*)\nMileage:(.*)\nColor:(.*)(?:\n|$)`,
)

// Name implements Template.
func (PlainTextTemplate) Name() string { return "plain" }

// TryExtract implements Template.
func (t PlainTextTemplate) TryExtract(body string) (Fields, error) {
	m := plainTextPattern.FindStringSubmatch(body)
	if m == nil {
		return Fields{}, structuralError(
			t.Name(), "", "Vehicle/VIN/Mileage/Color lines not found",
		)
	}

	return Fields{
		Description: strings.TrimSpace(m[1]),
		VIN:         strings.TrimSpace(m[2]),
		Mileage:     strings.TrimSpace(m[3]),
		Color:       strings.TrimSpace(m[4]),
	}, nil
}

// HTMLTableTemplate reads the text/html body, where the fields are four
// consecutive two-cell table rows labelled Vehicle:, VIN:, Mileage: and
// Color:. The Vehicle cell may wrap its text in a link to the listing.
type HTMLTableTemplate struct{}

// tableRow matches one label/value row. The label cell may carry any
// attributes; only the value cell content is captured.
func tableRow(label string) string {
	return `<tr[^>]*>\s*<td.*?` + label + `:</td>\s*<td[^>]*>\s*(.*?)</td>\s*</tr>`
}

var htmlTablePattern = regexp.MustCompile(
	`(?i)` + tableRow("Vehicle") + `\s*` +
		tableRow("VIN") + `\s*` +
		tableRow("Mileage") + `\s*` +
		tableRow("Color"),
)

// Name implements Template.
func (HTMLTableTemplate) Name() string { return "html" }

// TryExtract implements Template.
func (t HTMLTableTemplate) TryExtract(body string) (Fields, error) {
	m := htmlTablePattern.FindStringSubmatch(body)
	if m == nil {
		return Fields{}, structuralError(
			t.Name(), "", "Vehicle/VIN/Mileage/Color rows not found",
		)
	}

	description, link := vehicleCell(strings.TrimSpace(m[1]))

	return Fields{
		Description: description,
		VIN:         strings.TrimSpace(m[2]),
		Mileage:     strings.TrimSpace(m[3]),
		Color:       strings.TrimSpace(m[4]),
		Link:        link,
	}, nil
}

// vehicleCell splits the Vehicle cell into description and link. When the
// cell holds an anchor with an href, the href is the link and the anchor
// text the description; otherwise the whole cell is the description.
func vehicleCell(cell string) (description, link string) {
	if !strings.Contains(strings.ToLower(cell), "<a") {
		return DecodeEntities(cell), ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cell))
	if err != nil {
		return DecodeEntities(cell), ""
	}

	anchor := doc.Find("a[href]").First()
	if anchor.Length() == 0 {
		return DecodeEntities(cell), ""
	}

	href, _ := anchor.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" {
		return DecodeEntities(cell), ""
	}

	return strings.TrimSpace(anchor.Text()), href
}

var (
	plainText PlainTextTemplate
	htmlTable HTMLTableTemplate
)

// ExtractFields runs the plain-text or HTML template over body.
func ExtractFields(body string, isPlainText bool) (Fields, error) {
	if isPlainText {
		return plainText.TryExtract(body)
	}
	return htmlTable.TryExtract(body)
}
