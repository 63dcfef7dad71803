package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainTextTemplate(t *testing.T) {
	fields, err := ExtractFields(plainNotification, true)
	require.NoError(t, err)

	assert.Equal(t, Fields{
		Description: "2018 Honda Accord Sport",
		VIN:         "1HGCV1F34JA000001",
		Mileage:     "32110",
		Color:       "Modern Steel",
	}, fields)
}

func TestPlainTextTemplateColorEndsBody(t *testing.T) {
	body := "Vehicle: 2020 Ford Escape SE\n" +
		"VIN: 1FMCU0G61LUA00001\n" +
		"Mileage: 10432\n" +
		"Color: Oxford White"

	fields, err := ExtractFields(body, true)
	require.NoError(t, err)
	assert.Equal(t, "Oxford White", fields.Color)

	fields, err = ExtractFields(body+"\r\n", true)
	require.NoError(t, err)
	assert.Equal(t, "Oxford White", fields.Color)
}

func TestPlainTextTemplateLabelsAreCaseInsensitive(t *testing.T) {
	body := "vehicle: 2020 Ford Escape\nvin: ABC\nmileage: 10\ncolor: Red\n"

	fields, err := ExtractFields(body, true)
	require.NoError(t, err)
	assert.Equal(t, "2020 Ford Escape", fields.Description)
	assert.Equal(t, "ABC", fields.VIN)
	assert.Empty(t, fields.Link)
}

func TestPlainTextTemplateRequiresContiguousFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing color", "Vehicle: x\nVIN: 1\nMileage: 2\n"},
		{"missing vehicle", "VIN: 1\nMileage: 2\nColor: Red\n"},
		{"gap between vin and mileage", "Vehicle: x\nVIN: 1\nTrim: LX\nMileage: 2\nColor: Red\n"},
		{"empty body", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractFields(tt.body, true)
			require.Error(t, err)
			assert.True(t, IsStructural(err))
		})
	}
}

func TestHTMLTemplateWithAnchor(t *testing.T) {
	body := htmlNotification(
		"Sold!",
		`<a href="https://autoniq.com/app/vehicle/123?src=email">2019 Toyota Camry XLE &amp; Nav</a>`,
		"45231",
	)

	fields, err := ExtractFields(body, false)
	require.NoError(t, err)

	assert.Equal(t, "https://autoniq.com/app/vehicle/123?src=email", fields.Link)
	assert.Equal(t, "2019 Toyota Camry XLE & Nav", fields.Description)
	assert.Equal(t, "4T1B11HK5KU123456", fields.VIN)
	assert.Equal(t, "45231", fields.Mileage)
	assert.Equal(t, "Celestial Silver", fields.Color)
}

func TestHTMLTemplateWithoutAnchor(t *testing.T) {
	body := htmlNotification("Back in Stock", "2017 Mazda CX&#45;5 Touring", "61000")

	fields, err := ExtractFields(body, false)
	require.NoError(t, err)

	assert.Empty(t, fields.Link)
	assert.Equal(t, "2017 Mazda CX-5 Touring", fields.Description)
}

func TestHTMLTemplateAnchorWithoutHrefFallsBack(t *testing.T) {
	body := htmlNotification("Just Bought", `<a name="top">2016 Jeep Wrangler</a>`, "1")

	fields, err := ExtractFields(body, false)
	require.NoError(t, err)

	assert.Empty(t, fields.Link)
	assert.Equal(t, `<a name="top">2016 Jeep Wrangler</a>`, fields.Description)
}

func TestHTMLTemplateMissingRow(t *testing.T) {
	body := htmlNotification("Sold!", "2019 Toyota Camry", "")

	_, err := ExtractFields(body, false)
	require.Error(t, err)
	assert.True(t, IsStructural(err))
	assert.False(t, IsNumericConversion(err))
}

func TestHTMLTemplateUppercaseTags(t *testing.T) {
	body := "<TR><TD class=l>VEHICLE:</TD><TD>2015 BMW 328i</TD></TR>\n" +
		"<TR><TD class=l>VIN:</TD><TD>WBA</TD></TR>\n" +
		"<TR><TD class=l>MILEAGE:</TD><TD>88000</TD></TR>\n" +
		"<TR><TD class=l>COLOR:</TD><TD>Black</TD></TR>"

	fields, err := ExtractFields(body, false)
	require.NoError(t, err)
	assert.Equal(t, "2015 BMW 328i", fields.Description)
	assert.Equal(t, "88000", fields.Mileage)
}

func TestTemplateNames(t *testing.T) {
	assert.Equal(t, "plain", PlainTextTemplate{}.Name())
	assert.Equal(t, "html", HTMLTableTemplate{}.Name())
}
