package brandsite

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"The Estate", "the-estate"},
		{"  Estate   Gallery!  ", "estate-gallery"},
		{"GACP & EU-GMP", "gacp-eu-gmp"},
		{"already-a-slug", "already-a-slug"},
		{"???", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	if got := BuildURL("https://example.com", "about"); got != "https://example.com/about/" {
		t.Errorf("BuildURL = %q", got)
	}
	if got := BuildURL("https://example.com/"); got != "https://example.com/" {
		t.Errorf("BuildURL base only = %q", got)
	}
	if got := BuildURL("https://example.com", "a", "b"); got != "https://example.com/a/b/" {
		t.Errorf("BuildURL nested = %q", got)
	}
}
