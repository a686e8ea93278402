package utils

import "testing"

func TestJSONPointerToPath(t *testing.T) {
	tests := []struct {
		ptr  string
		want string
	}{
		{"", ""},
		{"#", ""},
		{"#/", ""},
		{"#/0", "[0]"},
		{"#/0/residents/1/dueDate", "[0].residents[1].dueDate"},
		{"/2/subtopics/0", "[2].subtopics[0]"},
		{"#/0/a~1b/c~0d", "[0].a/b.c~d"},
	}
	for _, tt := range tests {
		if got := JSONPointerToPath(tt.ptr); got != tt.want {
			t.Errorf("JSONPointerToPath(%q) = %q, want %q", tt.ptr, got, tt.want)
		}
	}
}
