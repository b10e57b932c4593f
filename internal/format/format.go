// Package format renders reports to the plain-text interchange block
// used for the shared document and the external channel, and parses
// such text back into candidate reports.
//
// The grammar is a stable cross-version contract: the section markers,
// the bullet prefix, and the separator line must not change, or
// previously exported documents stop round-tripping.
package format

import (
	"strings"

	"github.com/katapios/lazybones/internal/model"
)

const (
	// GoodMarker and BadMarker head the two item sections.
	GoodMarker = "✓ good:"
	BadMarker  = "✗ bad:"

	// BulletPrefix precedes every item line. Because formatted item
	// lines always carry it, no item can collide with a marker or the
	// separator.
	BulletPrefix = "• "

	// Separator divides report blocks in a multi-report document.
	Separator = "----------"

	// dateHeaderPrefix and authorPrefix head a block's metadata lines.
	dateHeaderPrefix = "# "
	authorPrefix     = "@ "
)

// Format renders a single report block without provenance.
func Format(r model.Report) string {
	return format(r, false)
}

// FormatAll renders reports as separator-delimited blocks. With
// includeProvenance, each block carries an author line naming where the
// report came from.
func FormatAll(reports []model.Report, includeProvenance bool) string {
	blocks := make([]string, 0, len(reports))
	for _, r := range reports {
		blocks = append(blocks, format(r, includeProvenance))
	}
	return strings.Join(blocks, Separator+"\n")
}

func format(r model.Report, includeProvenance bool) string {
	var b strings.Builder

	b.WriteString(dateHeaderPrefix)
	b.WriteString(r.Day())
	b.WriteString("\n")

	if includeProvenance {
		if author := provenanceLabel(r); author != "" {
			b.WriteString(authorPrefix)
			b.WriteString(author)
			b.WriteString("\n")
		}
	}

	// Empty sections are omitted entirely: no empty headers.
	if len(r.GoodItems) > 0 {
		b.WriteString(GoodMarker)
		b.WriteString("\n")
		for _, item := range r.GoodItems {
			b.WriteString(BulletPrefix)
			b.WriteString(item)
			b.WriteString("\n")
		}
	}
	if len(r.BadItems) > 0 {
		b.WriteString(BadMarker)
		b.WriteString("\n")
		for _, item := range r.BadItems {
			b.WriteString(BulletPrefix)
			b.WriteString(item)
			b.WriteString("\n")
		}
	}

	return b.String()
}

// provenanceLabel names a report's origin for the provenance line.
func provenanceLabel(r model.Report) string {
	switch r.Type {
	case model.ReportTypeExternal:
		if r.AuthorHandle != "" {
			return r.AuthorHandle
		}
		return r.AuthorName
	case model.ReportTypeShared:
		if r.AuthorHandle != "" {
			return r.AuthorHandle
		}
		return string(model.ReportTypeShared)
	default:
		return "local"
	}
}
