package letter

import (
	"io"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Stylesheet lays a letter out on one A4 sheet. On screen each sheet gets a
// dashed outline; in print every letter ends with a page break.
const Stylesheet = `
@page { size: A4; margin: 0 }
.letter-container {
	position: relative;
	box-sizing: border-box;
	width: 210mm;
	min-height: 297mm;
	margin: 0 auto;
	padding: 0;
	background: #fff;
	color: #111;
	font-family: "Times New Roman", Times, serif;
	font-size: 12pt;
	line-height: 1.5;
	page-break-after: always;
	break-after: page;
}
.letter-band { height: 14mm; background: linear-gradient(90deg, #55ff4c 0%, #1b7a17 60%, #0b3d09 100%); }
.letter-band.bottom { position: absolute; left: 0; right: 0; bottom: 0; transform: scaleX(-1); }
.letter-body { padding: 10mm 18mm 24mm 18mm; }
.letter-head { display: flex; align-items: center; gap: 6mm; border-bottom: 2px solid #1b7a17; padding-bottom: 4mm; }
.letter-head img.logo { width: 28mm; height: 28mm; object-fit: contain; }
.letter-head .school-name { margin: 0; font-size: 20pt; color: #0b3d09; letter-spacing: 0.5pt; }
.letter-head .accreditation { margin: 0; font-weight: bold; font-size: 10pt; }
.letter-head .motto { display: inline-block; margin: 1mm 0; padding: 0 3mm; border-radius: 3mm; background: #1b7a17; color: #fff; font-style: italic; }
.letter-head .contact { margin: 0; font-size: 9pt; }
.issue-date { text-align: right; margin: 6mm 0 4mm; }
.salutation { font-size: 12pt; margin: 0 0 3mm; }
.letter-heading { text-align: center; text-decoration: underline; font-size: 13pt; margin: 0 0 4mm; }
.letter-paragraph { text-align: justify; margin: 0 0 3mm; }
.signature { margin-top: 12mm; }
.signature img { height: 18mm; }
.signature .registrar { margin: 0; font-weight: bold; }
@media screen {
	.letter-container { border: 1px dashed #999; margin-bottom: 8mm; }
}
@media print {
	body { margin: 0; }
	.no-print { display: none !important; }
	.letter-container:last-child { page-break-after: auto; break-after: auto; }
}
`

// Node renders the letter sheet. The same node serves the preview and the
// printed output.
func (l Letter) Node() g.Node {
	h := l.Letterhead
	return Div(Class("letter-container"),
		Div(Class("letter-band top")),
		Div(Class("letter-body"),
			Div(Class("letter-head"),
				g.If(h.Logo != "", Img(Class("logo"), Src(h.Logo), Alt("School logo"))),
				Div(
					H1(Class("school-name"), g.Text(h.SchoolName)),
					P(Class("motto"), g.Text("Motto: "+h.Motto)),
					P(Class("accreditation"), g.Text(Accreditation)),
					P(Class("contact"), Strong(g.Text("HEADQUARTERS: ")), g.Text(h.Headquarters)),
					P(Class("contact"), Strong(g.Text("ANNEX: ")), g.Text(h.Annex)),
					P(Class("contact"), g.Textf("Tel: %s • e-mail: %s", h.Phones, h.Email)),
					P(Class("contact"), g.Text(h.Website)),
				),
			),
			Div(Class("issue-date"), g.Text(l.IssueDate)),
			H2(Class("salutation"), g.Text(l.Salutation)),
			H2(Class("letter-heading"), g.Text(l.Heading)),
			g.Map(l.Paragraphs, paragraphNode),
			Div(Class("signature"),
				P(Class("registrar"), g.Text(SignatureLabel)),
				g.If(l.Signature != "", Img(Src(l.Signature), Alt("Signature"))),
				g.If(l.Signature == "", P(g.Text(SignaturePlaceholder))),
			),
		),
		Div(Class("letter-band bottom")),
	)
}

func paragraphNode(p Paragraph) g.Node {
	return P(Class("letter-paragraph"), g.Map(p.Spans, func(s TextSpan) g.Node {
		if s.Strong {
			return Strong(g.Text(s.Text))
		}
		return g.Text(s.Text)
	}))
}

// Document wraps body in a standalone HTML page carrying the letter stylesheet.
func Document(title string, body g.Node) g.Node {
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(Lang("en"),
			Head(
				Meta(Charset("UTF-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				TitleEl(g.Text(title)),
				StyleEl(g.Raw(Stylesheet)),
			),
			Body(body),
		),
	})
}

// Render writes a single letter as a standalone page.
func Render(w io.Writer, l Letter) error {
	return Document("Admission Letter - "+l.Entry.Name, l.Node()).Render(w)
}
