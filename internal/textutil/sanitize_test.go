package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Термодинамика", want: "Термодинамика"},
		{name: "unsafe", in: `a/b\c:d*e?f"g<h>i|j`, want: "a_b_c_d_e_f_g_h_i_j"},
		{name: "control", in: "line\none\ttab\r", want: "line_one_tab_"},
		{name: "trim", in: "  ..тема..  ", want: "тема"},
		{name: "empty", in: "", want: DefaultFileName},
		{name: "only dots", in: " . . ", want: DefaultFileName},
		{name: "nfc", in: "и\u0306", want: "\u0439"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFileName(tc.in); got != tc.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeFileNameIsIdempotent(t *testing.T) {
	for _, in := range []string{"a/b", " x. ", "Системы: уравнений?"} {
		once := SanitizeFileName(in)
		if twice := SanitizeFileName(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestSanitizeSegmentEmpty(t *testing.T) {
	if got := SanitizeSegment("   "); got != "" {
		t.Fatalf("expected empty segment, got %q", got)
	}
}

func TestSplitExt(t *testing.T) {
	cases := map[string][2]string{
		"x.pdf":     {"x", ".pdf"},
		"a.b.tar":   {"a.b", ".tar"},
		"noext":     {"noext", ""},
		".hidden":   {".hidden", ""},
		"Скан_x.md": {"Скан_x", ".md"},
	}
	for in, want := range cases {
		stem, ext := SplitExt(in)
		if stem != want[0] || ext != want[1] {
			t.Fatalf("SplitExt(%q) = (%q, %q), want %v", in, stem, ext, want)
		}
	}
}

func TestArchiveDate(t *testing.T) {
	if got := ArchiveDate("05.09.2025"); got != "05_09_2025" {
		t.Fatalf("unexpected archive date %q", got)
	}
}
