package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	got, err := SanitizeFileName(" my/cv\\2024.pdf ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "my_cv_2024.pdf" {
		t.Fatalf("unexpected name: %q", got)
	}
	for _, bad := range []string{"", "   ", "../etc/passwd"} {
		if _, err := SanitizeFileName(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
