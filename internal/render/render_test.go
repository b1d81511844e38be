package render_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/projectdocumentflow/internal/record"
	"github.com/Lllllllleong/projectdocumentflow/internal/render"
)

func decoded(t *testing.T, fieldsJSON string) record.Decoded {
	t.Helper()
	fields, err := record.ParseFields([]byte(fieldsJSON))
	require.NoError(t, err)
	return record.Decode(fields)
}

func TestSingleRendersFieldsInOrder(t *testing.T) {
	rec := decoded(t, `{"title": {"stringValue": "Alpha"}, "count": {"integerValue": "3"}}`)

	doc := render.Single(rec)
	require.Len(t, doc.Pages, 1)
	require.Nil(t, doc.Style)
	require.Zero(t, doc.PageBreaks())

	page := doc.Pages[0]
	require.Equal(t, render.SingleTitle, page.Title)
	require.Equal(t, render.LevelTitle, page.TitleLevel)
	require.False(t, page.BreakAfter)

	var texts []string
	for _, s := range page.Sections {
		require.Empty(t, s.Label)
		texts = append(texts, s.Body)
	}
	require.Equal(t, []string{"title: Alpha", "count: 3"}, texts)
}

func TestSingleEmptyRecord(t *testing.T) {
	doc := render.Single(record.Decode(nil))
	require.Len(t, doc.Pages, 1)
	require.Empty(t, doc.Pages[0].Sections)
}

func TestBulkPagesAndBreaks(t *testing.T) {
	recs := []record.Decoded{
		decoded(t, `{"title": {"stringValue": "One"}}`),
		decoded(t, `{"title": {"stringValue": "Two"}}`),
		decoded(t, `{"title": {"stringValue": "Three"}}`),
	}

	doc := render.Bulk(recs)
	require.Len(t, doc.Pages, 3)
	require.Equal(t, 2, doc.PageBreaks())
	require.True(t, doc.Pages[0].BreakAfter)
	require.True(t, doc.Pages[1].BreakAfter)
	require.False(t, doc.Pages[2].BreakAfter)

	require.Equal(t, "One", doc.Pages[0].Title)
	require.Equal(t, "Two", doc.Pages[1].Title)
	require.Equal(t, "Three", doc.Pages[2].Title)

	require.NotNil(t, doc.Style)
	require.Equal(t, render.ReportStyle, *doc.Style)
}

func TestBulkNoRecords(t *testing.T) {
	doc := render.Bulk(nil)
	require.Empty(t, doc.Pages)
	require.Zero(t, doc.PageBreaks())
	require.Equal(t, render.ReportTitle, doc.Title)
}

func TestBulkSectionOrderAndMembers(t *testing.T) {
	rec := decoded(t, `{
		"title": {"stringValue": "Solar Car"},
		"description": {"stringValue": "Build a car"},
		"supervisorId": {"stringValue": "t-42"},
		"students": {"arrayValue": {"values": [
			{"mapValue": {"fields": {"name": {"stringValue": "Ada"}, "email": {"stringValue": "ada@uni.edu"}}}},
			{"mapValue": {"fields": {"name": {"stringValue": "Alan"}}}}
		]}}
	}`)

	page := render.Bulk([]record.Decoded{rec}).Pages[0]
	require.Equal(t, "Solar Car", page.Title)
	require.Len(t, page.Sections, 3)
	require.Equal(t, render.LabelDescription, page.Sections[0].Label)
	require.Equal(t, "Build a car", page.Sections[0].Body)
	require.Equal(t, render.LabelSupervisor, page.Sections[1].Label)
	require.Equal(t, "t-42", page.Sections[1].Body)
	require.Equal(t, render.LabelTeam, page.Sections[2].Label)
	require.Equal(t, []string{"Ada (ada@uni.edu)", "Alan (N/A)"}, page.Sections[2].Lines)
}

func TestBulkMissingOptionalFields(t *testing.T) {
	page := render.Bulk([]record.Decoded{decoded(t, `{"supervisorId": {"stringValue": ""}}`)}).Pages[0]

	require.Equal(t, render.UntitledPlaceholder, page.Title)

	desc, ok := page.Section(render.LabelDescription)
	require.True(t, ok)
	require.Equal(t, "N/A", desc.Body)

	sup, ok := page.Section(render.LabelSupervisor)
	require.True(t, ok)
	require.Equal(t, "N/A", sup.Body)

	_, ok = page.Section(render.LabelTeam)
	require.False(t, ok)
}

func TestBulkEmptyStudentsKeepsSection(t *testing.T) {
	page := render.Bulk([]record.Decoded{decoded(t, `{"students": {"arrayValue": {}}}`)}).Pages[0]

	team, ok := page.Section(render.LabelTeam)
	require.True(t, ok)
	require.Empty(t, team.Lines)
}

func TestAppendPageMovesBreak(t *testing.T) {
	doc := render.NewReport()
	render.AppendPage(doc, decoded(t, `{"title": {"stringValue": "A"}}`))
	require.Zero(t, doc.PageBreaks())

	render.AppendPage(doc, decoded(t, `{"title": {"stringValue": "B"}}`))
	require.Equal(t, 1, doc.PageBreaks())
	require.True(t, doc.Pages[0].BreakAfter)
	require.False(t, doc.Pages[1].BreakAfter)
}
