package server

import (
	"fmt"
	"time"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/eccowas/admitgen/pkg/letter"
)

// PageLayout wraps content in the site chrome. The letter stylesheet is always
// included so previews match the printed sheet.
func PageLayout(title string, currentPath string, content g.Node) g.Node {
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(Lang("en"),
			Head(
				Meta(Charset("UTF-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(title)),
				Script(Src("https://cdn.tailwindcss.com")),
				StyleEl(g.Raw(letter.Stylesheet)),
				StyleEl(g.Raw(`
					::selection { background: #1b7a17; color: white; }
					a:focus-visible, button:focus-visible, input:focus-visible, textarea:focus-visible {
						outline: 2px solid #55ff4c;
						outline-offset: 2px;
					}
					.field-error { color: #b91c1c; font-size: 0.875rem; }
				`)),
			),
			Body(Class("bg-slate-100 font-sans antialiased flex flex-col min-h-screen text-slate-800"),
				Navbar(currentPath),
				Div(Class("flex-grow"), content),
				FooterEl(),
			),
		),
	})
}

// Navbar component
func Navbar(currentPath string) g.Node {
	navLink := func(href, label string) g.Node {
		base := "block text-center md:inline-block transition-all duration-200 px-3 py-2 rounded-md text-sm font-medium "
		if currentPath == href {
			base += "text-white bg-green-800"
		} else {
			base += "text-green-100 hover:text-white hover:bg-green-800/60"
		}
		return A(Href(href), Class(base), g.Text(label))
	}

	return Nav(Class("no-print bg-green-900 text-white p-4 shadow-lg sticky top-0 z-50"),
		Div(Class("container mx-auto flex flex-wrap justify-between items-center gap-2"),
			A(Href("/"), Class("text-xl font-bold tracking-tight"), g.Text("Admission Letters")),
			Div(Class("flex flex-wrap gap-1"),
				navLink("/", "Home"),
				navLink("/school", "School"),
				navLink("/student", "Students"),
				navLink("/review", "Review"),
				navLink("/letters", "Letters"),
				navLink("/help", "Help"),
			),
		),
	)
}

// FooterEl component (using El suffix to avoid conflict with html.Footer)
func FooterEl() g.Node {
	return Footer(Class("no-print bg-green-950 text-green-200 mt-auto"),
		Div(Class("container mx-auto px-4 py-6 text-sm"),
			P(g.Text(fmt.Sprintf("© %d admitgen. Records are kept in a local database.", time.Now().Year()))),
		),
	)
}

func card(title string, children ...g.Node) g.Node {
	return Section(Class("bg-white rounded-xl shadow p-6 mb-6"),
		H2(Class("text-lg font-semibold text-green-900 mb-4"), g.Text(title)),
		g.Group(children),
	)
}

func button(label string, attrs ...g.Node) g.Node {
	return Button(Class("bg-green-700 hover:bg-green-600 text-white font-semibold py-2 px-4 rounded-lg"), g.Group(attrs), g.Text(label))
}

func linkButton(href, label string) g.Node {
	return A(Href(href), Class("inline-block bg-green-700 hover:bg-green-600 text-white font-semibold py-2 px-4 rounded-lg"), g.Text(label))
}

func flash(msg string) g.Node {
	return g.If(msg != "", Div(Class("bg-red-50 border border-red-300 text-red-800 rounded-lg p-4 mb-6"), g.Text(msg)))
}
