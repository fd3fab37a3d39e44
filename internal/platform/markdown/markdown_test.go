package markdown

import (
	"strings"
	"testing"
)

func TestToHTMLHeadingsAndBullets(t *testing.T) {
	out, err := New().ToHTML("## Summary\n\n- one\n- two\n")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	for _, want := range []string{"<h2>Summary</h2>", "<li>one</li>", "<li>two</li>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestToHTMLEscapesRawHTML(t *testing.T) {
	out, err := New().ToHTML("<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("raw html should not pass through: %q", out)
	}
}

func TestToHTMLEmpty(t *testing.T) {
	out, err := New().ToHTML("")
	if err != nil || out != "" {
		t.Fatalf("ToHTML(empty): got=%q err=%v", out, err)
	}
}
