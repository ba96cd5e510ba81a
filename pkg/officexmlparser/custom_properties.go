package officexmlparser

import "github.com/johbar/office-metadata-service/pkg/xmltree"

const propertyTag = "property"

// DecodeCustomProperties decodes the user defined properties of an
// MS Office docProps/custom.xml payload.
//
// Each property element carries its value in its first child element,
// e.g. <vt:lpwstr>. Later properties overwrite earlier ones of the same
// name, unless their value cannot be decoded.
func DecodeCustomProperties(xmlText string) CustomProperties {
	return DecodeCustomPropertiesTree(xmltree.Parse(xmlText))
}

// DecodeCustomPropertiesTree works like DecodeCustomProperties on an already parsed tree.
func DecodeCustomPropertiesTree(tree *xmltree.Tree) CustomProperties {
	props := CustomProperties{}
	for _, el := range xmltree.Descendants(tree.Node(), propertyTag) {
		name, ok := xmltree.Attr(el, "name")
		if !ok {
			continue
		}
		valueEl := xmltree.FirstChildElement(el)
		if valueEl == nil {
			continue
		}
		if v, ok := decodeVariantValue(valueEl.FullTag(), xmltree.TextContent(valueEl)); ok {
			props[name] = v
		}
	}
	return props
}
