package model

import (
	"fmt"
	"strings"
	"time"
)

// LifecycleType classifies the listing event a notification describes.
type LifecycleType string

const (
	// LifecycleUnset is carried by listings whose message had no
	// classification signal (plain-text bodies).
	LifecycleUnset       LifecycleType = ""
	LifecycleBought      LifecycleType = "bought"
	LifecycleSold        LifecycleType = "sold"
	LifecycleBackInStock LifecycleType = "backinstock"
)

// LifecycleTypes lists the classified lifecycle types in report order.
var LifecycleTypes = []LifecycleType{
	LifecycleBought,
	LifecycleSold,
	LifecycleBackInStock,
}

// ParseLifecycleType converts a configuration value into a LifecycleType.
// It accepts the canonical names as well as the "back_in_stock" spelling.
func ParseLifecycleType(s string) (LifecycleType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bought":
		return LifecycleBought, nil
	case "sold":
		return LifecycleSold, nil
	case "backinstock", "back_in_stock", "back-in-stock":
		return LifecycleBackInStock, nil
	default:
		return LifecycleUnset, fmt.Errorf("unknown lifecycle type %q", s)
	}
}

// String returns the report name of the lifecycle type.
func (t LifecycleType) String() string {
	if t == LifecycleUnset {
		return "unclassified"
	}
	return string(t)
}

// Listing is one vehicle listing parsed from a single notification email.
// Listings are values: they are built once and never modified afterwards.
type Listing struct {
	// VIN is the vehicle identification number. Always non-empty.
	VIN string `json:"vin" db:"vin"`

	// Mileage is the odometer reading. Always finite and non-negative.
	Mileage float64 `json:"mileage" db:"mileage"`

	// Color is the exterior color. Always non-empty.
	Color string `json:"color" db:"color"`

	// Year, Make and Model come from the free-text vehicle description
	// and are empty when the description could not be split.
	Year  string `json:"year" db:"year"`
	Make  string `json:"make" db:"make"`
	Model string `json:"model" db:"model"`

	// SourceLink is the listing URL embedded in the HTML body, if any.
	SourceLink string `json:"source_link,omitempty" db:"source_link"`

	// Lifecycle is set for HTML messages only.
	Lifecycle LifecycleType `json:"lifecycle" db:"lifecycle"`

	// MessageID, UID and ReceivedAt identify the originating message.
	MessageID  string    `json:"message_id" db:"message_id"`
	UID        uint32    `json:"uid" db:"uid"`
	ReceivedAt time.Time `json:"received_at" db:"received_at"`
}
