package normalize

import "testing"

func TestNormalizeLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Python  ", "python"},
		{"SQL...", "sql"},
		{"data   analysis", "data analysis"},
		{"front–end", "front-end"},   // en-dash
		{"front—end", "front-end"},   // em-dash
		{"front−end", "front-end"},   // minus sign
		{"ui / ux", "ui-ux"},
		{"front - end", "front-end"},
		{"AI&ML", "ai and ml"},
		{"testing?!", "testing"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := normalizeLabel(tc.in); got != tc.want {
			t.Errorf("normalizeLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Python Programming", "python-programming"},
		{"Machine Learning & AI", "machine-learning-ai"},
		{"  C++  ", "c"},
		{"café management", "cafe-management"},
		{"--already--slugged--", "already-slugged"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"machine learning", "Machine Learning"},
		{"SQL server", "SQL Server"},
		{"HTML and CSS", "HTML And CSS"},
		{"PYTHON PROGRAMMING", "Python Programming"}, // >5 chars is not an acronym
	}

	for _, tc := range cases {
		if got := titleCase(tc.in); got != tc.want {
			t.Errorf("titleCase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
