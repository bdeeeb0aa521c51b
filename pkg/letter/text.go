package letter

import (
	"bytes"
	"context"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PageBreak separates letters in plain-text output.
const PageBreak = "\f"

var blockElements = map[atom.Atom]bool{
	atom.Div: true,
	atom.P:   true,
	atom.H1:  true,
	atom.H2:  true,
	atom.H3:  true,
	atom.Br:  true,
	atom.Li:  true,
}

// Text returns the letter as plain text, one line per block of the rendered
// sheet. It reads the HTML rendering so both outputs always carry the same
// wording.
func Text(l Letter) (string, error) {
	var buf bytes.Buffer
	if err := l.Node().Render(&buf); err != nil {
		return "", err
	}
	lines, err := extractLines(&buf)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// WriteText writes every letter as plain text with a form feed between them.
func WriteText(ctx context.Context, w io.Writer, letters []Letter) error {
	for i, l := range letters {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			if _, err := io.WriteString(w, PageBreak+"\n"); err != nil {
				return err
			}
		}
		s, err := Text(l)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, s); err != nil {
			return err
		}
	}
	return nil
}

func extractLines(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var lines []string
	var cur strings.Builder
	flush := func() {
		if line := strings.Join(strings.Fields(cur.String()), " "); line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	var traverse func(n *html.Node)
	traverse = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			cur.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Head, atom.Style, atom.Script, atom.Svg:
				return
			case atom.Img:
				if alt := attr(n, "alt"); alt != "" {
					cur.WriteString(" [" + alt + "] ")
				}
				return
			}
		}

		block := n.Type == html.ElementNode && blockElements[n.DataAtom]
		if block {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
		if block {
			flush()
		}
	}
	traverse(doc)
	flush()
	return lines, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
