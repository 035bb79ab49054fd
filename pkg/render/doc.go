// Package render turns trees into HTML.
//
// Attributes are rendered merged, in first-seen order, without the
// diff-only reserved names (key, skip, skip_criteria, replace). Listeners
// and function calls have no markup form and are left out, except that an
// InnerHTML call replaces the element's children with its raw argument.
// Style values render as "name:value" pairs joined by semicolons. Boolean
// HTML attributes render bare when true and are omitted when false.
// Components render as a vdiff-component placeholder element carrying the
// component type and inputs.
//
// # Basic Usage
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// # Full Pages
//
//	err := renderer.RenderPage(w, render.PageData{Title: "Inbox", Body: node})
//
// StreamingRenderer does the same for an http.ResponseWriter, flushing
// after the document head.
//
// # Minification
//
// Minify runs rendered markup through the tdewolff HTML minifier, keeping
// end tags and attribute quotes so the output still parses back into the
// same tree.
package render
