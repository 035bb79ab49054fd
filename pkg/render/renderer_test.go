package render

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

func TestRenderToString(t *testing.T) {
	tests := []struct {
		name string
		node *vdom.Node
		want string
	}{
		{"text", vdom.Text("Hello, World!"), "Hello, World!"},
		{"text escaped", vdom.Text("<script>alert('x')</script>"), "&lt;script&gt;alert(&#39;x&#39;)&lt;/script&gt;"},
		{"comment", vdom.Comment(" note "), "<!-- note -->"},
		{"raw", vdom.Raw("<b>bold</b>"), "<b>bold</b>"},
		{"nil", nil, ""},
		{
			"element",
			vdom.Div(vdom.Class("container"), vdom.H1("Title"), vdom.P("Content")),
			`<div class="container"><h1>Title</h1><p>Content</p></div>`,
		},
		{"void", vdom.Input(vdom.Type("text"), vdom.ValueAttr("v")), `<input type="text" value="v">`},
		{"attribute escaped", vdom.A(vdom.Href(`/q?a=1&b="2"`), "x"), `<a href="/q?a=1&amp;b=&#34;2&#34;">x</a>`},
		{"boolean true", vdom.Button(vdom.Disabled(true), "b"), `<button disabled>b</button>`},
		{"boolean false", vdom.Button(vdom.Disabled(false), "b"), `<button>b</button>`},
		{"non-boolean bool", vdom.Div(vdom.AriaHidden(true)), `<div aria-hidden="true"></div>`},
		{"numbers", vdom.Img(vdom.Width(10), vdom.Attr("data-r", 1.5)), `<img width="10" data-r="1.5">`},
		{
			"diff-only names dropped",
			vdom.Li(vdom.Key("a"), vdom.Skip(), vdom.Replace(), vdom.ID("x"), "a"),
			`<li id="x">a</li>`,
		},
		{"listener dropped", vdom.Button(vdom.On("click", "h1", nil), "go"), `<button>go</button>`},
		{
			"merged class",
			vdom.Div(vdom.Class("a b"), vdom.Class("b c")),
			`<div class="a b c"></div>`,
		},
		{
			"style",
			vdom.Div(vdom.Style(vdom.Prop("color", "red")), vdom.Style(vdom.Prop("margin", 0), vdom.Prop("color", "blue"))),
			`<div style="color:blue;margin:0"></div>`,
		},
		{
			"style with simple value",
			vdom.Div(vdom.Attr("style", "display: none;"), vdom.Style(vdom.Prop("color", "red"))),
			`<div style="display: none;color:red"></div>`,
		},
		{"inner html", vdom.Div(vdom.InnerHTML("<i>x</i>"), "ignored"), `<div><i>x</i></div>`},
		{"fragment", vdom.Fragment(vdom.P("a"), "b"), `<p>a</p>b`},
		{
			"component",
			vdom.Component("Counter", vdom.Attr("start", 1)),
			`<vdiff-component type="Counter" start="1"></vdiff-component>`,
		},
		{
			"namespaced attribute",
			vdom.ElementNS("http://www.w3.org/2000/svg", "use", vdom.AttrNS("http://www.w3.org/1999/xlink", "href", "#a")),
			`<use xlink:href="#a"></use>`,
		},
	}
	r := NewRenderer(RendererConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.RenderToString(tt.node)
			if err != nil {
				t.Fatalf("RenderToString: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderUnknownKind(t *testing.T) {
	r := NewRenderer(RendererConfig{})
	if _, err := r.RenderToString(&vdom.Node{Kind: vdom.NodeKind(99)}); err == nil {
		t.Error("expected error for unknown node kind")
	}
}

func TestRenderPretty(t *testing.T) {
	r := NewRenderer(RendererConfig{Pretty: true})
	got, err := r.RenderToString(vdom.Ul(vdom.Li("a"), vdom.Li("b")))
	if err != nil {
		t.Fatal(err)
	}
	want := "<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderPage(t *testing.T) {
	r := NewRenderer(RendererConfig{})
	var b strings.Builder
	err := r.RenderPage(&b, PageData{
		Title: "Inbox",
		Head:  []*vdom.Node{vdom.Link(vdom.Rel("icon"), vdom.Href("/f.ico"))},
		Body:  vdom.Main(vdom.P("hi")),
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "<!DOCTYPE html>\n<html lang=\"en\">\n" +
		`<head><meta charset="utf-8"><title>Inbox</title><link rel="icon" href="/f.ico"></head>` +
		"<body><main><p>hi</p></main></body>\n</html>\n"
	if b.String() != want {
		t.Errorf("got %q, want %q", b.String(), want)
	}
}

func TestRenderPageFullDocument(t *testing.T) {
	r := NewRenderer(RendererConfig{})
	var b strings.Builder
	doc := vdom.Html(vdom.Attr("lang", "fr"), vdom.Head(vdom.Title("t")), vdom.Body("x"))
	if err := r.RenderPage(&b, PageData{Title: "ignored", Body: doc}); err != nil {
		t.Fatal(err)
	}
	want := `<!DOCTYPE html>` + "\n" + `<html lang="fr"><head><title>t</title></head><body>x</body></html>`
	if b.String() != want {
		t.Errorf("got %q, want %q", b.String(), want)
	}
}

func TestStreamingRenderer(t *testing.T) {
	rec := httptest.NewRecorder()
	s := NewStreamingRenderer(rec, RendererConfig{})
	if err := s.RenderPage(PageData{Lang: "de", Body: vdom.P("x")}); err != nil {
		t.Fatal(err)
	}
	if !rec.Flushed {
		t.Error("response was not flushed")
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<html lang="de">`) || !strings.Contains(body, "<body><p>x</p></body>") {
		t.Errorf("unexpected page %q", body)
	}
}
