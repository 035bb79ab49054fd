package render

import (
	"io"
	"net/http"
)

// StreamingRenderer renders pages to an HTTP response, flushing after the
// head so the browser can start on it before the body is rendered.
type StreamingRenderer struct {
	*Renderer
	flusher http.Flusher
	w       io.Writer
}

// NewStreamingRenderer creates a streaming renderer for w. Flushing is a
// no-op when w does not implement http.Flusher.
func NewStreamingRenderer(w http.ResponseWriter, config RendererConfig) *StreamingRenderer {
	flusher, _ := w.(http.Flusher)
	return &StreamingRenderer{
		Renderer: NewRenderer(config),
		flusher:  flusher,
		w:        w,
	}
}

// RenderPage renders a complete HTML document with incremental flushing.
func (s *StreamingRenderer) RenderPage(page PageData) error {
	return s.renderPage(s.w, page, s.flush)
}

func (s *StreamingRenderer) flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
