package csvutil_test

import (
	"bytes"
	"testing"

	"github.com/dalemusser/quizmart/internal/app/system/csvutil"
)

func TestWriter_BOMAndCRLF(t *testing.T) {
	var buf bytes.Buffer
	w, err := csvutil.NewWriter(&buf)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	if err := w.WriteTable([]string{"A", "B"}, [][]string{{"1", "x,y"}}); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}

	want := "\ufeffA,B\r\n1,\"x,y\"\r\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSanitizeField(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"=SUM(A1)", "'=SUM(A1)"},
		{"+1", "'+1"},
		{"-1", "'-1"},
		{"@cmd", "'@cmd"},
		{"a=b", "a=b"},
	}
	for _, tt := range tests {
		if got := csvutil.SanitizeField(tt.in); got != tt.want {
			t.Errorf("SanitizeField(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
