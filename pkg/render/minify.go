package render

import (
	"io"
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

const mediaHTML = "text/html"

var (
	minifier     *minify.M
	minifierOnce sync.Once
)

func getMinifier() *minify.M {
	minifierOnce.Do(func() {
		minifier = minify.New()
		minifier.Add(mediaHTML, &html.Minifier{
			KeepDocumentTags: true,
			KeepEndTags:      true,
			KeepQuotes:       true,
		})
	})
	return minifier
}

// Minify removes insignificant whitespace and redundant markup from an
// HTML document or fragment.
func Minify(s string) (string, error) {
	return getMinifier().String(mediaHTML, s)
}

// MinifyTo minifies HTML read from r into w.
func MinifyTo(w io.Writer, r io.Reader) error {
	return getMinifier().Minify(mediaHTML, w, r)
}
