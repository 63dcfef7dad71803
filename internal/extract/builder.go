package extract

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/autoniq-extractor/internal/model"
)

// Message is one fetched notification as handed over by the mail driver.
type Message struct {
	UID       uint32
	MessageID string
	Subject   string
	Date      time.Time
	TextBody  string
	HTMLBody  string
}

// IsPlainText reports whether the text/plain body will be used. Plain
// text is preferred whenever the message has one.
func (m Message) IsPlainText() bool {
	return strings.TrimSpace(m.TextBody) != ""
}

// Body returns the body the builder reads.
func (m Message) Body() string {
	if m.IsPlainText() {
		return m.TextBody
	}
	return m.HTMLBody
}

// Outcome is a built listing together with how it was obtained.
type Outcome struct {
	Listing model.Listing

	// Template is the name of the body grammar that matched.
	Template string

	// Described is false when the description could not be split into
	// year, make and model.
	Described bool

	// Classified is false for plain-text messages and for HTML messages
	// without a headline block.
	Classified bool
}

// Builder turns messages into listings using one template per body type.
type Builder struct {
	plain Template
	html  Template
}

// NewBuilder returns a Builder wired with the sender's plain-text and
// HTML-table templates.
func NewBuilder() *Builder {
	return &Builder{
		plain: PlainTextTemplate{},
		html:  HTMLTableTemplate{},
	}
}

// NewBuilderWithTemplates returns a Builder using the given templates.
func NewBuilderWithTemplates(plain, html Template) *Builder {
	return &Builder{plain: plain, html: html}
}

// Build parses msg into a listing. It returns a *ParseError when the
// message yields no listing.
func (b *Builder) Build(msg Message) (model.Listing, error) {
	out, err := b.Inspect(msg)
	if err != nil {
		return model.Listing{}, err
	}
	return out.Listing, nil
}

// Inspect is Build with the extra detail of Outcome.
func (b *Builder) Inspect(msg Message) (Outcome, error) {
	isPlain := msg.IsPlainText()

	tmpl := b.html
	if isPlain {
		tmpl = b.plain
	}

	body := msg.Body()
	if strings.TrimSpace(body) == "" {
		return Outcome{}, structuralError(tmpl.Name(), "", "message has no body")
	}

	fields, err := tmpl.TryExtract(body)
	if err != nil {
		return Outcome{}, err
	}

	mileage, err := parseMileage(tmpl.Name(), fields.Mileage)
	if err != nil {
		return Outcome{}, err
	}

	if fields.VIN == "" {
		return Outcome{}, structuralError(tmpl.Name(), "VIN", "empty value")
	}
	if fields.Color == "" {
		return Outcome{}, structuralError(tmpl.Name(), "Color", "empty value")
	}

	desc := ParseDescription(fields.Description)

	lifecycle := model.LifecycleUnset
	classified := false
	if !isPlain {
		lifecycle, classified = Classify(body)
	}

	return Outcome{
		Listing: model.Listing{
			VIN:        fields.VIN,
			Mileage:    mileage,
			Color:      fields.Color,
			Year:       desc.Year,
			Make:       desc.Make,
			Model:      desc.Model,
			SourceLink: fields.Link,
			Lifecycle:  lifecycle,
			MessageID:  msg.MessageID,
			UID:        msg.UID,
			ReceivedAt: msg.Date,
		},
		Template:   tmpl.Name(),
		Described:  !desc.Empty(),
		Classified: classified,
	}, nil
}

// parseMileage converts the mileage text to a number. Only decimal
// notation is accepted: thousands separators, hex floats, underscores,
// NaN, infinities and negative values are rejected.
func parseMileage(template, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !isDecimal(s) || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, &ParseError{
			Kind:     NumericConversion,
			Template: template,
			Field:    "Mileage",
			Value:    s,
			Message:  "not a non-negative number",
		}
	}
	return v, nil
}

// isDecimal reports whether s uses only digits, a decimal point, an
// exponent marker and signs.
func isDecimal(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !strings.ContainsRune("0123456789.eE+-", r)
	}) < 0
}
