package urlutil

import "testing"

func TestValidate(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://example.com/path",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Fatalf("expected valid, got error: %v", err)
		}
	}

	invalid := []string{"ftp://example.com", "//example.com", "http:///", "entry?camc={id}"}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Fatalf("expected invalid for %s", u)
		}
	}
}

func TestResolveURL(t *testing.T) {
	cases := []struct {
		base, href, want string
	}{
		{"https://example.com/campaigns/", "detail/1", "https://example.com/campaigns/detail/1"},
		{"https://example.com/campaigns/", "/top", "https://example.com/top"},
		{"https://example.com/", "https://other.example/x", "https://other.example/x"},
	}
	for _, c := range cases {
		if got := ResolveURL(c.base, c.href); got != c.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", c.base, c.href, got, c.want)
		}
	}
}

func TestExpandTemplate(t *testing.T) {
	if got := ExpandTemplate("https://example.com/entry?camc={id}", "A 1"); got != "https://example.com/entry?camc=A+1" {
		t.Errorf("unexpected expansion %q", got)
	}
	if got := ExpandTemplate("", "A"); got != "" {
		t.Errorf("empty template expanded to %q", got)
	}
	if got := ExpandTemplate("https://example.com/fixed", "A"); got != "https://example.com/fixed" {
		t.Errorf("template without placeholder changed: %q", got)
	}
}
