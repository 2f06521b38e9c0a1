package handlers

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Living Room":  "living-room",
		"  Mugs  ":     "mugs",
		"Home   Decor": "home-decor",
		"UPPER":        "upper",
	}
	for input, want := range cases {
		if got := slugify(input); got != want {
			t.Fatalf("slugify(%q) = %q, want %q", input, got, want)
		}
	}
}
