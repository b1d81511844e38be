package render

import (
	"fmt"

	"github.com/Lllllllleong/projectdocumentflow/internal/record"
)

const (
	SingleTitle = "Project Document"
	ReportTitle = "All Projects"

	UntitledPlaceholder = "Untitled Project"
	MissingPlaceholder  = "N/A"

	LabelDescription = "Description"
	LabelSupervisor  = "Supervisor"
	LabelTeam        = "Team Members"
)

// Project field names read by the bulk template.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldSupervisor  = "supervisorId"
	FieldStudents    = "students"
)

// ReportStyle is applied document-wide to bulk reports.
var ReportStyle = Style{
	FontFamily:   "Arial",
	FontSizePt:   11,
	CenterTitles: true,
}

// Single renders one record as a one-page document with a "name: value"
// paragraph per field, in record order.
func Single(rec record.Decoded) *Document {
	page := Page{Title: SingleTitle, TitleLevel: LevelTitle}
	for _, e := range rec.Entries() {
		page.Sections = append(page.Sections, Section{Body: fmt.Sprintf("%s: %s", e.Name, e.Text)})
	}
	return &Document{Title: SingleTitle, Pages: []Page{page}}
}

// Bulk renders one page per record, separated by page breaks. Missing
// optional fields degrade to placeholders; a missing students field omits
// the team section.
func Bulk(recs []record.Decoded) *Document {
	doc := NewReport()
	for _, rec := range recs {
		AppendPage(doc, rec)
	}
	return doc
}

// NewReport returns an empty bulk report carrying the report style.
func NewReport() *Document {
	style := ReportStyle
	return &Document{Title: ReportTitle, Style: &style, Pages: []Page{}}
}

// AppendPage adds rec as the last page of a bulk document. The previous last
// page gains a page break; the new one has none.
func AppendPage(doc *Document, rec record.Decoded) {
	if n := len(doc.Pages); n > 0 {
		doc.Pages[n-1].BreakAfter = true
	}
	doc.Pages = append(doc.Pages, projectPage(rec))
}

func projectPage(rec record.Decoded) Page {
	page := Page{
		Title:      textOr(rec, FieldTitle, UntitledPlaceholder),
		TitleLevel: LevelHeading,
		Sections: []Section{
			{Label: LabelDescription, Body: textOr(rec, FieldDescription, MissingPlaceholder)},
			{Label: LabelSupervisor, Body: textOr(rec, FieldSupervisor, MissingPlaceholder)},
		},
	}
	if students, ok := rec.List(FieldStudents); ok {
		page.Sections = append(page.Sections, Section{Label: LabelTeam, Lines: memberLines(students)})
	} else if text, present := rec.Get(FieldStudents); present {
		// Not a list: one line with the raw text.
		page.Sections = append(page.Sections, Section{Label: LabelTeam, Lines: []string{text}})
	}
	return page
}

func memberLines(students []record.Value) []string {
	lines := make([]string, 0, len(students))
	for _, s := range students {
		if s.Kind != record.KindMap {
			lines = append(lines, s.Text())
			continue
		}
		lines = append(lines, fmt.Sprintf("%s (%s)", member(s, "name"), member(s, "email")))
	}
	return lines
}

func member(v record.Value, name string) string {
	f, ok := v.Lookup(name)
	if !ok || f.Text() == "" {
		return MissingPlaceholder
	}
	return f.Text()
}

func textOr(rec record.Decoded, name, placeholder string) string {
	if v, ok := rec.Get(name); ok && v != "" {
		return v
	}
	return placeholder
}
