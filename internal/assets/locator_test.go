package assets

import (
	"testing"

	"arbiter/internal/fixture/models"
)

func TestCamelToPath(t *testing.T) {
	cases := map[string]string{
		"clubLogo":         "club/logo",
		"clubPlayerPhoto":  "club/player/photo",
		"personStaffPhoto": "person/staff/photo",
		"stadium":          "stadium",
	}
	for in, want := range cases {
		if got := camelToPath(in); got != want {
			t.Errorf("camelToPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestURL(t *testing.T) {
	l := NewLocator("https://cdn.example.com/")

	t.Run("nil reference yields empty", func(t *testing.T) {
		if got := l.URL(nil, ModuleClubLogo); got != "" {
			t.Fatalf("expected empty URL, got %q", got)
		}
	})

	t.Run("builds path from module, id, and extension", func(t *testing.T) {
		ref := &models.FileRef{ID: 42, Module: "clubLogo", Name: "emblem.PNG"}
		want := "https://cdn.example.com/club/logo/42.png"
		if got := l.URL(ref, ""); got != want {
			t.Fatalf("URL = %q, want %q", got, want)
		}
	})

	t.Run("missing module falls back to the default", func(t *testing.T) {
		ref := &models.FileRef{ID: 7, Name: "portrait.jpg"}
		want := "https://cdn.example.com/person/staff/photo/7.jpg"
		if got := l.URL(ref, ModuleRefereePhoto); got != want {
			t.Fatalf("URL = %q, want %q", got, want)
		}
	})

	t.Run("extensionless name falls back to bin", func(t *testing.T) {
		ref := &models.FileRef{ID: 9, Module: "clubLogo", Name: "emblem"}
		want := "https://cdn.example.com/club/logo/9.bin"
		if got := l.URL(ref, ""); got != want {
			t.Fatalf("URL = %q, want %q", got, want)
		}
	})
}
