package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/autoniq-extractor/internal/model"
)

func TestRenderListing(t *testing.T) {
	out := RenderListing(model.Listing{
		VIN:        "4T1B11HK5KU123456",
		Mileage:    45210.5,
		Color:      "Celestial Silver",
		Year:       "2019",
		Make:       "Toyota",
		Model:      "Camry",
		SourceLink: "https://autoniq.com/v/1",
		Lifecycle:  model.LifecycleSold,
	})

	for _, want := range []string{
		"2019 Toyota Camry", "sold", "4T1B11HK5KU123456",
		"45210.5", "Celestial Silver", "https://autoniq.com/v/1",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRenderListingWithoutDescription(t *testing.T) {
	out := RenderListing(model.Listing{VIN: "X", Color: "Red"})

	assert.Contains(t, out, "(unrecognised vehicle)")
	assert.Contains(t, out, "unclassified")
	assert.NotContains(t, out, "Link:")
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(3, 2, 1, "alerts@autoniq.com")

	assert.Contains(t, out, "Found 3 emails from alerts@autoniq.com")
	assert.Contains(t, out, "2 parsed")
	assert.Contains(t, out, "1 rejected")
}

func TestRenderRejectionFallsBackToMessageID(t *testing.T) {
	out := RenderRejection(model.Rejection{UID: 4, MessageID: "m4", Reason: "no rows"})

	assert.Contains(t, out, "#4 m4")
	assert.Contains(t, out, "no rows")
}
