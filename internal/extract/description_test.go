package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDescription(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Description
	}{
		{
			name: "year make model",
			raw:  "2019 Toyota Camry",
			want: Description{Year: "2019", Make: "Toyota", Model: "Camry"},
		},
		{
			name: "model keeps remaining words",
			raw:  "2019 Toyota Camry XLE V6",
			want: Description{Year: "2019", Make: "Toyota", Model: "Camry XLE V6"},
		},
		{
			name: "non-breaking space separates tokens",
			raw:  "2020\u00a0Land_Rover Range Rover & Co",
			want: Description{Year: "2020", Make: "Land_Rover", Model: "Range Rover & Co"},
		},
		{
			name: "entities are not decoded again",
			raw:  "2019 Foo &amp; Bar",
			want: Description{Year: "2019", Make: "Foo", Model: "&amp; Bar"},
		},
		{
			name: "accented make",
			raw:  "2019 Citroën C4 Picasso",
			want: Description{Year: "2019", Make: "Citroën", Model: "C4 Picasso"},
		},
		{
			name: "make with caron",
			raw:  "2020 Škoda Octavia",
			want: Description{Year: "2020", Make: "Škoda", Model: "Octavia"},
		},
		{
			name: "too few tokens",
			raw:  "Toyota",
			want: Description{},
		},
		{
			name: "no year",
			raw:  "Toyota Camry XLE",
			want: Description{},
		},
		{
			name: "hyphenated make does not split",
			raw:  "2018 Mercedes-Benz C300",
			want: Description{},
		},
		{
			name: "empty",
			raw:  "",
			want: Description{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDescription(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == Description{}, got.Empty())
		})
	}
}

func TestDecodeEntities(t *testing.T) {
	assert.Equal(t, `Tom & "Jerry" <3 'x'`, DecodeEntities("Tom &amp; &quot;Jerry&quot; &lt;3 &#39;x&#x27;"))
	assert.Equal(t, "plain", DecodeEntities("plain"))
}
