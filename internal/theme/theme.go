package theme

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/autoniq-extractor/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for section headers.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// CardStyle wraps one found car.
var CardStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// LabelStyle renders field labels inside a card.
var LabelStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Width(9)

// HelpStyle is used for hints and secondary text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ErrorStyle is used for rejected messages.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed)

// LifecycleStyle returns a color-coded badge style for a lifecycle type.
func LifecycleStyle(t model.LifecycleType) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch t {
	case model.LifecycleBought:
		return base.Foreground(ColorBlue)
	case model.LifecycleSold:
		return base.Foreground(ColorGreen)
	case model.LifecycleBackInStock:
		return base.Foreground(ColorOrange)
	default:
		return base.Foreground(ColorGray)
	}
}

// RenderListing renders a found car as a bordered card.
func RenderListing(l model.Listing) string {
	title := strings.TrimSpace(strings.Join([]string{l.Year, l.Make, l.Model}, " "))
	if title == "" {
		title = "(unrecognised vehicle)"
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(title) + " " +
			LifecycleStyle(l.Lifecycle).Render(l.Lifecycle.String()),
		field("VIN", l.VIN),
		field("Mileage", strconv.FormatFloat(l.Mileage, 'f', -1, 64)),
		field("Color", l.Color),
	}
	if l.SourceLink != "" {
		lines = append(lines, field("Link", l.SourceLink))
	}

	return CardStyle.Render(strings.Join(lines, "\n"))
}

// RenderRejection renders one message that produced no listing.
func RenderRejection(r model.Rejection) string {
	subject := r.Subject
	if subject == "" {
		subject = r.MessageID
	}
	return ErrorStyle.Render(fmt.Sprintf("✗ #%d %s", r.UID, subject)) + " " +
		HelpStyle.Render(r.Reason)
}

// RenderSummary renders the batch totals line.
func RenderSummary(found, parsed, rejected int, from string) string {
	head := fmt.Sprintf("Found %d emails", found)
	if from != "" {
		head += " from " + from
	}

	rejectedStyle := HelpStyle
	if rejected > 0 {
		rejectedStyle = lipgloss.NewStyle().Foreground(ColorYellow)
	}

	return HeaderStyle.Render(head) + " " +
		lipgloss.NewStyle().Foreground(ColorGreen).Render(fmt.Sprintf("%d parsed", parsed)) + " " +
		rejectedStyle.Render(fmt.Sprintf("%d rejected", rejected))
}

func field(label, value string) string {
	return LabelStyle.Render(label+":") + " " + value
}
