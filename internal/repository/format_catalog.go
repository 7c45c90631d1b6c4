package repository

import "strings"

// DefaultSectionFormats are the course formats organised into sections.
var DefaultSectionFormats = []string{"topics", "weeks"}

// FormatCatalog answers whether a course format uses sections.
type FormatCatalog struct {
	sections map[string]struct{}
}

// NewFormatCatalog builds a catalog from format names. An empty list uses DefaultSectionFormats.
func NewFormatCatalog(sectionFormats []string) *FormatCatalog {
	if len(sectionFormats) == 0 {
		sectionFormats = DefaultSectionFormats
	}
	sections := make(map[string]struct{}, len(sectionFormats))
	for _, format := range sectionFormats {
		sections[normaliseFormat(format)] = struct{}{}
	}
	return &FormatCatalog{sections: sections}
}

// UsesSections reports whether the format is organised into sections.
func (c *FormatCatalog) UsesSections(format string) bool {
	_, ok := c.sections[normaliseFormat(format)]
	return ok
}

func normaliseFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}
