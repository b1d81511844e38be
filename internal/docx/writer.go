// Package docx serialises rendered documents as Office Open XML (.docx) packages.
package docx

import (
	"fmt"
	"io"

	"github.com/gomutex/godocx"
	wml "github.com/gomutex/godocx/docx"
	"github.com/gomutex/godocx/wml/ctypes"
	"github.com/gomutex/godocx/wml/stypes"

	"github.com/Lllllllleong/projectdocumentflow/internal/render"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	Extension   = ".docx"

	// styleBullet is the template's bulleted list paragraph style.
	styleBullet = "ListBullet"

	headingTitle   uint = 0
	headingPage    uint = 1
	headingSection uint = 2
)

// Write serialises doc as a .docx package to w. Output is deterministic for
// a given document.
func Write(w io.Writer, doc *render.Document) error {
	root, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("failed to open docx template: %w", err)
	}
	defer root.Close()

	if err := addPages(root, doc); err != nil {
		return err
	}
	applyStyle(root, doc.Style)

	core, err := coreProperties(doc.Title)
	if err != nil {
		return fmt.Errorf("building %s: %w", corePropertiesPart, err)
	}
	root.FileMap.Store(corePropertiesPart, core)

	if err := root.Write(w); err != nil {
		return fmt.Errorf("failed to write docx package: %w", err)
	}
	return nil
}

func addPages(root *wml.RootDoc, doc *render.Document) error {
	centered := doc.Style != nil && doc.Style.CenterTitles

	for _, page := range doc.Pages {
		level := headingTitle
		if page.TitleLevel > render.LevelTitle {
			level = headingPage
		}
		title, err := root.AddHeading(page.Title, level)
		if err != nil {
			return fmt.Errorf("adding page title %q: %w", page.Title, err)
		}
		if centered {
			title.Justification(stypes.JustificationCenter)
		}

		for _, s := range page.Sections {
			if s.Label != "" {
				if _, err := root.AddHeading(s.Label, headingSection); err != nil {
					return fmt.Errorf("adding section %q: %w", s.Label, err)
				}
			}
			switch {
			case s.Body != "":
				root.AddParagraph(s.Body)
			case s.Label == "" && len(s.Lines) == 0:
				root.AddEmptyParagraph()
			}
			for _, line := range s.Lines {
				root.AddParagraph(line).Style(styleBullet)
			}
		}

		if page.BreakAfter {
			root.AddPageBreak()
		}
	}
	return nil
}

// applyStyle replaces the template's default run font and size. Theme font
// references are dropped so the explicit family wins.
func applyStyle(root *wml.RootDoc, style *render.Style) {
	if style == nil {
		return
	}
	defaults := root.DocStyles.DocDefaults
	if defaults == nil {
		defaults = &ctypes.DocDefault{}
		root.DocStyles.DocDefaults = defaults
	}
	if defaults.RunProp == nil {
		defaults.RunProp = &ctypes.RunPropDefault{}
	}
	if defaults.RunProp.RunProp == nil {
		defaults.RunProp.RunProp = &ctypes.RunProperty{}
	}
	rpr := defaults.RunProp.RunProp

	if style.FontFamily != "" {
		rpr.Fonts = &ctypes.RunFonts{Ascii: style.FontFamily, HAnsi: style.FontFamily, CS: style.FontFamily}
	}
	if style.FontSizePt > 0 {
		// w:sz is in half-points.
		rpr.Size = ctypes.NewFontSize(uint64(style.FontSizePt) * 2)
	}
}
