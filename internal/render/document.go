// Package render builds paginated project documents from decoded records.
package render

// Title levels map onto document styles: 0 is the document title style,
// 1 and above are headings.
const (
	LevelTitle   = 0
	LevelHeading = 1
)

// Document is an in-memory structured document. It is owned by a single
// pipeline run and never shared.
type Document struct {
	Title string
	Style *Style
	Pages []Page
}

// Style carries document-wide presentation defaults. A nil Style leaves the
// format's own defaults in place.
type Style struct {
	FontFamily   string
	FontSizePt   int
	CenterTitles bool
}

// Page is one self-contained unit of content. BreakAfter marks a page break
// between this page and the next one.
type Page struct {
	Title      string
	TitleLevel int
	Sections   []Section
	BreakAfter bool
}

// Section is a labeled block holding either body text or a list of lines.
// An empty Label renders the body as a plain paragraph.
type Section struct {
	Label string
	Body  string
	Lines []string
}

// PageBreaks counts the internal page breaks of d.
func (d *Document) PageBreaks() int {
	n := 0
	for _, p := range d.Pages {
		if p.BreakAfter {
			n++
		}
	}
	return n
}

// Section returns the first section of p with the given label.
func (p Page) Section(label string) (Section, bool) {
	for _, s := range p.Sections {
		if s.Label == label {
			return s, true
		}
	}
	return Section{}, false
}
