package slug

import (
	"testing"

	"golang.org/x/text/language"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"My Page: A Test!", "my-page--a-test-"},
		{"hello", "hello"},
		{"Go 1.25", "go-1-25"},
		{"  spaced  ", "--spaced--"},
		{"Заметки о Go", "заметки-о-go"},
		{"Café", "café"},
		{"日本語", "---"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSlugify_Stable(t *testing.T) {
	first := Slugify("Some Title (draft)")
	for range 5 {
		if got := Slugify("Some Title (draft)"); got != first {
			t.Fatalf("Slugify not stable: %q then %q", first, got)
		}
	}
}

func TestSlugify_Locale(t *testing.T) {
	s := New(language.Turkish)
	if got := s.Slugify("Işık"); got != "ışık" {
		t.Errorf("turkish Slugify = %q, want %q", got, "ışık")
	}
}

func TestURL(t *testing.T) {
	s := New(language.Und)
	if got := s.URL("/notes/", "My Page"); got != "/notes/my-page" {
		t.Errorf("URL = %q, want %q", got, "/notes/my-page")
	}
}
