package docx

import (
	"bytes"
	"encoding/xml"
	"path"
	"strings"
)

type styleSheet struct {
	names         map[string]string // style id -> name
	defaultParaID string
}

func parseStyles(data []byte) (*styleSheet, error) {
	var doc struct {
		Styles []struct {
			Type    string `xml:"type,attr"`
			ID      string `xml:"styleId,attr"`
			Default string `xml:"default,attr"`
			Name    struct {
				Val string `xml:"val,attr"`
			} `xml:"name"`
		} `xml:"style"`
	}
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, err
	}

	s := &styleSheet{names: make(map[string]string, len(doc.Styles))}
	for _, st := range doc.Styles {
		s.names[st.ID] = st.Name.Val
		if st.Type == "paragraph" && (st.Default == "1" || st.Default == "true") {
			s.defaultParaID = st.ID
		}
	}
	return s, nil
}

func (s *styleSheet) name(id string) string {
	if s == nil {
		if id == "" {
			return "Normal"
		}
		return id
	}
	if id == "" {
		id = s.defaultParaID
	}
	if name, ok := s.names[id]; ok && name != "" {
		return displayName(name)
	}
	if id == "" {
		return "Normal"
	}
	return id
}

// displayName maps the lowercase names Word stores for built-in styles to
// the names it shows.
func displayName(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "heading ") && len(lower) > len("heading "):
		return "Heading " + name[len("heading "):]
	case lower == "caption", lower == "footer", lower == "header",
		lower == "normal", lower == "title", lower == "subtitle":
		return strings.ToUpper(lower[:1]) + lower[1:]
	}
	return name
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

func parseRels(data []byte) ([]relationship, error) {
	var doc struct {
		Rels []relationship `xml:"Relationship"`
	}
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, err
	}
	return doc.Rels, nil
}

func (r relationship) kind() PartKind {
	switch {
	case r.TargetMode == "External":
		return PartBody
	case strings.HasSuffix(r.Type, "/header"):
		return PartHeader
	case strings.HasSuffix(r.Type, "/footer"):
		return PartFooter
	}
	return PartBody
}

// resolve returns the zip entry name of the target relative to dir.
func (r relationship) resolve(dir string) string {
	if strings.HasPrefix(r.Target, "/") {
		return strings.TrimPrefix(path.Clean(r.Target), "/")
	}
	return path.Clean(path.Join(dir, r.Target))
}
