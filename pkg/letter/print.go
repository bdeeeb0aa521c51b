package letter

import (
	"context"
	"io"
	"regexp"
	"strings"

	g "maragu.dev/gomponents"
)

// Print writes every letter into one printable document, one sheet per letter
// in the order given. ctx is checked before each letter; a cancelled job leaves
// a truncated document and returns ctx's error.
func Print(ctx context.Context, w io.Writer, letters []Letter) error {
	sheets := g.NodeFunc(func(w io.Writer) error {
		for _, l := range letters {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := l.Node().Render(w); err != nil {
				return err
			}
		}
		return nil
	})
	return Document("Admission Letters", sheets).Render(w)
}

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]+`)

// Filename is the suggested download name for a letter.
func Filename(l Letter) string {
	slug := strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(l.Entry.Name), "-"), "-")
	if slug == "" {
		slug = "student"
	}
	return "admission-letter-" + slug + ".html"
}
