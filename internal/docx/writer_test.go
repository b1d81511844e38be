package docx_test

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	tabula "github.com/tsawler/tabula/docx"

	"github.com/Lllllllleong/projectdocumentflow/internal/docx"
	"github.com/Lllllllleong/projectdocumentflow/internal/record"
	"github.com/Lllllllleong/projectdocumentflow/internal/render"
)

// writeFile serialises doc into a temp .docx and returns its path.
func writeFile(t *testing.T, doc *render.Document) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out"+docx.Extension)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, docx.Write(f, doc))
	require.NoError(t, f.Close())
	return path
}

func part(t *testing.T, path, name string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func decodedProjects(t *testing.T, titles ...string) []record.Decoded {
	t.Helper()
	var out []record.Decoded
	for _, title := range titles {
		out = append(out, record.Decode(record.FromNative(map[string]any{
			"title":       title,
			"description": "About " + title,
			"students":    []any{map[string]any{"name": "Ada", "email": "ada@uni.edu"}},
		})))
	}
	return out
}

func TestWriteSingleReadable(t *testing.T) {
	rec := record.Decode(record.FromNative(map[string]any{"title": "Alpha", "count": int64(3)}))
	path := writeFile(t, render.Single(rec))

	r, err := tabula.Open(path)
	require.NoError(t, err)
	defer r.Close()

	text, err := r.Text()
	require.NoError(t, err)
	require.Contains(t, text, "Project Document")
	require.Contains(t, text, "count: 3")
	require.Contains(t, text, "title: Alpha")
	require.Less(t, strings.Index(text, "count: 3"), strings.Index(text, "title: Alpha"))

	require.Equal(t, render.SingleTitle, r.Metadata().Title)
	require.NotContains(t, part(t, path, "word/document.xml"), `w:type="page"`)
}

func TestWriteBulkPageBreaks(t *testing.T) {
	path := writeFile(t, render.Bulk(decodedProjects(t, "One", "Two", "Three")))

	body := part(t, path, "word/document.xml")
	require.Equal(t, 2, strings.Count(body, `w:type="page"`))
	require.Equal(t, 3, strings.Count(body, `<w:pStyle w:val="Heading1">`))
	require.Equal(t, 3, strings.Count(body, `<w:jc w:val="center">`))
	require.Equal(t, 3, strings.Count(body, `<w:pStyle w:val="ListBullet">`))

	r, err := tabula.Open(path)
	require.NoError(t, err)
	defer r.Close()

	text, err := r.Text()
	require.NoError(t, err)
	for _, want := range []string{"One", "Two", "Three", "About Two", "Team Members", "Ada (ada@uni.edu)"} {
		require.Contains(t, text, want)
	}
}

func TestWriteBulkStyleDefaults(t *testing.T) {
	path := writeFile(t, render.Bulk(decodedProjects(t, "One")))

	styles := part(t, path, "word/styles.xml")
	require.Contains(t, styles, `<w:rFonts w:ascii="Arial" w:hAnsi="Arial" w:cs="Arial">`)
	require.Contains(t, styles, `<w:sz w:val="22">`)
}

func TestWriteSingleKeepsTemplateDefaults(t *testing.T) {
	path := writeFile(t, render.Single(record.Decode(nil)))

	styles := part(t, path, "word/styles.xml")
	require.Contains(t, styles, "w:docDefaults")
	require.NotContains(t, styles, `w:ascii="Arial"`)
}

func TestWriteCoreProperties(t *testing.T) {
	path := writeFile(t, render.Bulk(nil))

	core := part(t, path, "docProps/core.xml")
	require.Contains(t, core, "<dc:title>All Projects</dc:title>")
	require.Contains(t, core, "<dc:creator>projectdocumentflow</dc:creator>")
}

func TestWriteEmptyReportIsValid(t *testing.T) {
	path := writeFile(t, render.Bulk(nil))

	r, err := tabula.Open(path)
	require.NoError(t, err)
	defer r.Close()

	text, err := r.Text()
	require.NoError(t, err)
	require.Empty(t, strings.TrimSpace(text))
	require.Contains(t, part(t, path, "word/document.xml"), "<w:sectPr")
}

func TestWriteEscapesText(t *testing.T) {
	rec := record.Decode(record.FromNative(map[string]any{"title": `R&D <"lab">`}))
	path := writeFile(t, render.Single(rec))

	r, err := tabula.Open(path)
	require.NoError(t, err)
	defer r.Close()

	text, err := r.Text()
	require.NoError(t, err)
	require.Contains(t, text, `title: R&D <"lab">`)
}

func TestWriteDeterministic(t *testing.T) {
	doc := render.Bulk(decodedProjects(t, "One", "Two"))

	var a, b bytes.Buffer
	require.NoError(t, docx.Write(&a, doc))
	require.NoError(t, docx.Write(&b, doc))
	require.Equal(t, a.Bytes(), b.Bytes())
}
