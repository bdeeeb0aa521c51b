package server

import (
	"net/http"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// --- Help Content ---

const helpMarkdownContent = `
# Help

This tool prints provisional admission letters for every student in every
admission batch.

## Workflow

1.  Open [School](/school) and fill in the letterhead details. Only the first
    saved school profile is used on the letters. Empty fields print the
    built-in defaults.
2.  Open [Students](/student), enter the admission year and class, and list the
    names, one per line. Blank lines and repeated names are dropped.
3.  Use [Review](/review) to edit or delete what you saved. Deleting cannot be
    undone.
4.  Open [Letters](/letters), pick a student to preview, then download or print.
    **Print all** produces one A4 sheet per student.

## Dates

*   **Date Issued** is printed as "5th of February 2024". When it is empty the
    current date is used.
*   **Deadline** is printed as "Monday the 5th of February 2024". When it is
    empty the default deadline is printed.

## Command line

Everything here is also available from the command line: ` + "`admitgen school`" + `,
` + "`admitgen batch`" + `, ` + "`admitgen letters`" + ` and ` + "`admitgen db`" + `.
`

// HelpContent component for the /help page
func HelpContent() g.Node {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)

	htmlOutput := markdown.ToHTML([]byte(helpMarkdownContent), p, nil)

	return Main(Class("container mx-auto mt-8 mb-16 p-4"),
		Section(Class("bg-white rounded-lg shadow p-6 md:p-8 prose max-w-3xl mx-auto"),
			g.Raw(string(htmlOutput)),
		),
	)
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	PageLayout("Help - Admission Letters", "/help", HelpContent()).Render(w)
}
