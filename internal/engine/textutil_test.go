package engine

import "testing"

func TestSanitizeQuestion(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase and trim", "  How Many Years of Go?  ", "how many years of go?"},
		{"quotes dropped", `do you have a "valid" visa`, "do you have a valid visa"},
		{"backslash dropped", `path\to\skill`, "pathtoskill"},
		{"newlines collapse to space", "first line\nsecond line", "first line second line"},
		{"control chars dropped", "tab\there", "tabhere"},
		{"trailing comma stripped", "city, state,", "city, state"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeQuestion(tt.in); got != tt.want {
				t.Errorf("SanitizeQuestion(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeQuestionIdempotent(t *testing.T) {
	inputs := []string{
		"  How Many Years?  ",
		`"quoted" question,`,
		"multi\nline\rquestion",
	}
	for _, in := range inputs {
		once := SanitizeQuestion(in)
		twice := SanitizeQuestion(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"yes", "yes", 0},
		{"yes", "no", 3},
	}
	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestBestMatch(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		options []string
		want    string
	}{
		{"exact", "Yes", []string{"Yes", "No"}, "Yes"},
		{"close numeric", "10 or more", []string{"0-1", "2-5", "6-10", "10+"}, "10+"},
		{"case insensitive", "ENGLISH", []string{"English", "German"}, "English"},
		{"empty options", "anything", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BestMatch(tt.text, tt.options); got != tt.want {
				t.Errorf("BestMatch(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"5 years", 5, true},
		{"I have 12 years of experience", 12, true},
		{"over 200 applicants", 200, true},
		{"none", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ExtractNumber(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ExtractNumber(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```html\n<p>hi</p>\n```", "<p>hi</p>"},
		{"```\nplain\n```", "plain"},
		{"no fences", "no fences"},
	}
	for _, tt := range tests {
		if got := StripFences(tt.in); got != tt.want {
			t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeLink(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/jobs/view/123?refId=abc&tracking=x", "https://example.com/jobs/view/123"},
		{"https://example.com/jobs/view/123#apply", "https://example.com/jobs/view/123"},
		{"https://example.com/jobs/view/123/", "https://example.com/jobs/view/123"},
		{"https://example.com/jobs/view/123", "https://example.com/jobs/view/123"},
	}
	for _, tt := range tests {
		if got := NormalizeLink(tt.in); got != tt.want {
			t.Errorf("NormalizeLink(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
