package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"report.docx", "report.docx", false},
		{"  report.docx  ", "report.docx", false},
		{"a/b.docx", "a_b.docx", false},
		{"a\\b.docx", "a_b.docx", false},
		{"../../etc/passwd", "", true},
		{"", "", true},
		{"   ", "", true},
	}
	for _, tc := range cases {
		got, err := SanitizeFileName(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("SanitizeFileName(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("SanitizeFileName(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHashUserKeyIsStable(t *testing.T) {
	a := HashUserKey("user-1")
	b := HashUserKey("user-1")
	c := HashUserKey("user-2")
	if a != b {
		t.Error("hash not deterministic")
	}
	if a == c {
		t.Error("distinct inputs collide")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}
