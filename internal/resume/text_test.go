package resume

import (
	"strings"
	"testing"
)

func TestSanitizeTextStripsInvisibleCharacters(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"soft hyphen", "co\u00ADoperate", "cooperate"},
		{"zero width space", "a\u200Bb", "ab"},
		{"zero width joiner", "a\u200Db", "ab"},
		{"bom", "\uFEFFhello", "hello"},
		{"en dash", "2019–2021", "2019-2021"},
		{"em dash", "one—two", "one-two"},
		{"minus sign", "a−b", "a-b"},
		{"keeps newline and tab", "a\nb\tc", "a\nb\tc"},
		{"control char", "a\x07b", "ab"},
		{"plain text untouched", "Senior Engineer", "Senior Engineer"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeText(tc.in); got != tc.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeProjectTitle(t *testing.T) {
	if _, err := NormalizeProjectTitle("   "); err == nil {
		t.Error("expected error for blank title")
	}
	if _, err := NormalizeProjectTitle(strings.Repeat("x", MaxProjectTitle+1)); err == nil {
		t.Error("expected error for over-long title")
	}
	got, err := NormalizeProjectTitle("  My Resume  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "My Resume" {
		t.Errorf("got %q, want %q", got, "My Resume")
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare host gets https", "example.com", "https://example.com/", false},
		{"keeps http", "http://example.com", "http://example.com/", false},
		{"collapses doubled scheme", "https://https://example.com", "https://example.com/", false},
		{"first scheme wins", "http://https://example.com", "http://example.com/", false},
		{"lowercases host", "HTTPS://Example.COM/Path", "https://example.com/Path", false},
		{"keeps query", "example.com/a?b=c", "https://example.com/a?b=c", false},
		{"empty is empty", "   ", "", false},
		{"no host", "https://", "", true},
		{"space in host", "exa mple.com", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeURL("url", tc.in, MaxLinkURL)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("NormalizeURL(%q) expected error, got %q", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeURL(%q) unexpected error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}

	if _, err := NormalizeURL("url", "example.com/"+strings.Repeat("a", MaxLinkURL), MaxLinkURL); err == nil {
		t.Error("expected error for over-long URL")
	}
}

func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail("email", " Jane.Doe@Example.COM ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "jane.doe@example.com" {
		t.Errorf("got %q", got)
	}

	if _, err := NormalizeEmail("email", "not-an-email"); err == nil {
		t.Error("expected error for invalid email")
	}
	if got, err := NormalizeEmail("email", ""); err != nil || got != "" {
		t.Errorf("empty email should pass through, got %q err %v", got, err)
	}
}

func TestNormalizeBulletsAndTags(t *testing.T) {
	bullets, err := NormalizeBullets("bullets", "first line\n\n  second line  \n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bullets) != 2 || bullets[0] != "first line" || bullets[1] != "second line" {
		t.Errorf("bullets = %v", bullets)
	}

	tags, err := NormalizeTags("tags", "Go, SQL ,,  Docker")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tags) != 3 || tags[2] != "Docker" {
		t.Errorf("tags = %v", tags)
	}

	fromList, err := NormalizeTags("tags", []any{"Go", " SQL "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fromList) != 2 || fromList[1] != "SQL" {
		t.Errorf("fromList = %v", fromList)
	}

	if _, err := NormalizeBullets("bullets", strings.Repeat("x", MaxBulletLine+1)); err == nil {
		t.Error("expected error for over-long bullet")
	}
	if _, err := NormalizeTags("tags", 42); err == nil {
		t.Error("expected error for non-string input")
	}
}

func TestNormalizeYearAndMonth(t *testing.T) {
	if _, err := NormalizeYear("year", YearMin-1); err == nil {
		t.Error("expected error below YearMin")
	}
	if _, err := NormalizeYear("year", YearMax()+1); err == nil {
		t.Error("expected error above current year")
	}
	if y, err := NormalizeYear("year", 2000); err != nil || y != 2000 {
		t.Errorf("year = %d err %v", y, err)
	}
	if _, err := NormalizeMonth("month", 0); err == nil {
		t.Error("expected error for month 0")
	}
	if _, err := NormalizeMonth("month", 13); err == nil {
		t.Error("expected error for month 13")
	}
}
