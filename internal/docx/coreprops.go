package docx

import "encoding/xml"

const (
	corePropertiesPart = "docProps/core.xml"

	creator = "projectdocumentflow"

	nsCP = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsDC = "http://purl.org/dc/elements/1.1/"
)

// corePropertiesXML is docProps/core.xml. godocx carries this part through
// untouched, so the document title is set by replacing it.
type corePropertiesXML struct {
	XMLName xml.Name `xml:"cp:coreProperties"`
	NSCP    string   `xml:"xmlns:cp,attr"`
	NSDC    string   `xml:"xmlns:dc,attr"`
	Title   string   `xml:"dc:title"`
	Creator string   `xml:"dc:creator"`
}

func coreProperties(title string) ([]byte, error) {
	out, err := xml.Marshal(corePropertiesXML{NSCP: nsCP, NSDC: nsDC, Title: title, Creator: creator})
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
