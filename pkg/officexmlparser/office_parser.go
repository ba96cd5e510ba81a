// Package officexmlparser decodes document metadata from the XML parts of
// MS Office (docProps/core.xml, docProps/custom.xml) and Open Document (meta.xml) files.
//
// Decoding never fails. Missing elements, unparsable values and malformed XML
// simply lead to fewer fields being set.
package officexmlparser

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/johbar/office-metadata-service/pkg/xmltree"
)

// vocabulary holds the tag names of the scalar fields of one dialect.
type vocabulary struct {
	title, author, lastModifiedBy, description, subject, language string
	created, modified                                             string
}

var msOfficeCoreTags = vocabulary{
	title:          "dc:title",
	author:         "dc:creator",
	lastModifiedBy: "cp:lastModifiedBy",
	description:    "dc:description",
	subject:        "dc:subject",
	language:       "dc:language",
	created:        "dcterms:created",
	modified:       "dcterms:modified",
}

var openDocumentTags = vocabulary{
	title:          "dc:title",
	author:         "meta:initial-creator",
	lastModifiedBy: "dc:creator",
	description:    "dc:description",
	subject:        "dc:subject",
	language:       "dc:language",
	created:        "meta:creation-date",
	modified:       "dc:date",
}

const (
	msOfficeKeywordsTag    = "cp:keywords"
	openDocumentKeywordTag = "meta:keyword"
	userDefinedTag         = "meta:user-defined"
)

// dialects is evaluated in order; the first marker found wins.
var dialects = []struct {
	dialect Dialect
	marker  string
	decode  func(marker *etree.Element) Metadata
}{
	{DialectCoreProperties, "coreProperties", decodeCoreProperties},
	{DialectOdfMeta, "meta", decodeOpenDocumentMeta},
}

// DecodeMetadata detects the dialect of xmlText and decodes its standard fields.
// If neither an MS Office nor an Open Document marker is present,
// the result is empty.
func DecodeMetadata(xmlText string) Metadata {
	return DecodeMetadataTree(xmltree.Parse(xmlText))
}

// DecodeMetadataTree works like DecodeMetadata on an already parsed tree.
func DecodeMetadataTree(tree *xmltree.Tree) Metadata {
	for _, d := range dialects {
		if marker := xmltree.First(tree.Node(), d.marker); marker != nil {
			m := d.decode(marker)
			m.Dialect = d.dialect
			return m
		}
	}
	return Metadata{}
}

// DetectDialect reports which dialect DecodeMetadata would use for xmlText.
func DetectDialect(xmlText string) Dialect {
	tree := xmltree.Parse(xmlText)
	for _, d := range dialects {
		if xmltree.First(tree.Node(), d.marker) != nil {
			return d.dialect
		}
	}
	return DialectNone
}

func decodeCoreProperties(marker *etree.Element) Metadata {
	m := decodeScalars(marker, msOfficeCoreTags)
	if keywords, ok := firstText(marker, msOfficeKeywordsTag); ok {
		m.Keywords = keywords
	}
	return m
}

func decodeOpenDocumentMeta(marker *etree.Element) Metadata {
	m := decodeScalars(marker, openDocumentTags)
	var keywords []string
	for _, el := range xmltree.Descendants(marker, openDocumentKeywordTag) {
		if kw := xmltree.TextContent(el); len(kw) > 0 {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) > 0 {
		m.Keywords = strings.Join(keywords, " ")
	}
	if props := decodeUserDefined(marker); len(props) > 0 {
		m.CustomProperties = props
	}
	return m
}

// decodeScalars assigns every field whose tag has non-empty text.
// Unparsable dates are still assigned, as invalid Timestamps.
func decodeScalars(marker *etree.Element, tags vocabulary) Metadata {
	var m Metadata
	if v, ok := firstText(marker, tags.title); ok {
		m.Title = v
	}
	if v, ok := firstText(marker, tags.author); ok {
		m.Author = v
	}
	if v, ok := firstText(marker, tags.lastModifiedBy); ok {
		m.LastModifiedBy = v
	}
	if v, ok := firstText(marker, tags.description); ok {
		m.Description = v
	}
	if v, ok := firstText(marker, tags.subject); ok {
		m.Subject = v
	}
	if v, ok := firstText(marker, tags.language); ok {
		m.Language = v
	}
	if v, ok := firstText(marker, tags.created); ok {
		m.Created = newTimestamp(v)
	}
	if v, ok := firstText(marker, tags.modified); ok {
		m.Modified = newTimestamp(v)
	}
	return m
}

// decodeUserDefined reads all meta:user-defined elements.
// Entries without a name attribute or text, and numbers that do not parse, are skipped.
func decodeUserDefined(marker *etree.Element) CustomProperties {
	props := CustomProperties{}
	for _, el := range xmltree.Descendants(marker, userDefinedTag) {
		name, ok := xmltree.Attr(el, "name")
		if !ok {
			continue
		}
		text := xmltree.TextContent(el)
		if text == "" {
			continue
		}
		valueType, ok := xmltree.Attr(el, "value-type")
		if !ok {
			valueType = "string"
		}
		if v, ok := decodeOdfValue(valueType, text); ok {
			props[name] = v
		}
	}
	return props
}

func firstText(node *etree.Element, tag string) (string, bool) {
	text := xmltree.TextContent(xmltree.First(node, tag))
	return text, len(text) > 0
}
