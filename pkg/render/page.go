package render

import (
	"fmt"
	"io"

	"golang.org/x/net/html"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

// PageData describes a complete HTML document around a rendered tree.
type PageData struct {
	// Body is the page content. A root html element is rendered as the
	// whole document and the remaining fields are ignored.
	Body *vdom.Node

	// Title is the document title. Omitted when empty.
	Title string

	// Head holds extra nodes for the document head, such as meta or
	// link elements.
	Head []*vdom.Node

	// Lang is the language attribute of the html element.
	// Defaults to "en".
	Lang string
}

// isDocument reports whether the body already is a full document.
func (p PageData) isDocument() bool {
	return p.Body != nil && p.Body.Kind == vdom.KindElement && p.Body.Tag == "html" && p.Body.Namespace == ""
}

func (p PageData) lang() string {
	if p.Lang == "" {
		return "en"
	}
	return p.Lang
}

func (p PageData) head() *vdom.Node {
	children := []any{vdom.Meta(vdom.Attr("charset", "utf-8"))}
	if p.Title != "" {
		children = append(children, vdom.Title(p.Title))
	}
	for _, n := range p.Head {
		children = append(children, n)
	}
	return vdom.Head(children...)
}

// RenderPage renders a complete HTML document to w.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	return r.renderPage(w, page, func() {})
}

func (r *Renderer) renderPage(w io.Writer, page PageData, flush func()) error {
	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}
	if page.isDocument() {
		if err := r.RenderToWriter(w, page.Body); err != nil {
			return err
		}
		flush()
		return nil
	}

	if _, err := fmt.Fprintf(w, "<html lang=\"%s\">\n", html.EscapeString(page.lang())); err != nil {
		return err
	}
	if err := r.RenderToWriter(w, page.head()); err != nil {
		return err
	}
	flush()

	if _, err := io.WriteString(w, "<body>"); err != nil {
		return err
	}
	if err := r.RenderToWriter(w, page.Body); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "</body>\n</html>\n"); err != nil {
		return err
	}
	flush()
	return nil
}
