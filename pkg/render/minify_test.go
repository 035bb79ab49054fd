package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

func TestMinify(t *testing.T) {
	r := NewRenderer(RendererConfig{Pretty: true})
	pretty, err := r.RenderToString(vdom.Div(vdom.Ul(vdom.Li("a"), vdom.Li("b"))))
	if err != nil {
		t.Fatal(err)
	}
	got, err := Minify(pretty)
	if err != nil {
		t.Fatalf("Minify: %v", err)
	}
	if strings.Contains(got, "\n") {
		t.Errorf("minified output still has newlines: %q", got)
	}
	if !strings.Contains(got, "<li>a</li>") || !strings.Contains(got, "</ul>") {
		t.Errorf("minified output lost content: %q", got)
	}
	if len(got) >= len(pretty) {
		t.Errorf("minified output is not shorter: %d >= %d", len(got), len(pretty))
	}
}

func TestMinifyTo(t *testing.T) {
	var out bytes.Buffer
	if err := MinifyTo(&out, strings.NewReader("<p>  a   b  </p>")); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "<p>a b</p>" {
		t.Errorf("got %q, want %q", got, "<p>a b</p>")
	}
}
