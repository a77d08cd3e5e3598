package lazyline

import (
	"slices"
	"testing"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		data    string
		name    string
		exclude []string
	}{
		{"colors", "colors", nil},
		{" colors ", "colors", nil},
		{"colors,not=red", "colors", []string{"red"}},
		{"colors,not=red|blue", "colors", []string{"red", "blue"}},
		{"colors,not= red | blue |", "colors", []string{"red", "blue"}},
		{"colors,not=red,blue", "colors", []string{"red", "blue"}},
		{"colors,not=dark red|blue, green", "colors", []string{"dark red", "blue, green"}},
		{"colors,other=x", "colors", nil},
		{"people/names, not=bob", "people/names", []string{"bob"}},
	}
	for _, tt := range tests {
		name, exclude := ParseTag(tt.data)
		if name != tt.name || !slices.Equal(exclude, tt.exclude) {
			t.Errorf("ParseTag(%q) = %q, %q; want %q, %q", tt.data, name, exclude, tt.name, tt.exclude)
		}
	}
}
