package schema

import (
	"sort"
	"strings"
)

// typicalRdnAttributes maps well-known structural objectClasses to the
// attribute conventionally used as their RDN.
var typicalRdnAttributes = map[string]string{
	"inetorgperson":        "cn",
	"organizationalperson": "cn",
	"person":               "cn",
	"groupofnames":         "cn",
	"groupofuniquenames":   "cn",
	"posixgroup":           "cn",
	"organizationalunit":   "ou",
	"dcobject":             "dc",
	"domain":               "dc",
	"organization":         "o",
	"locality":             "l",
	"country":              "c",
}

// AllowedAttributes returns the union of MUST and MAY attributes of the
// named objectClasses and all their superiors.
func (s *Schema) AllowedAttributes(objectClassNames []string) []string {
	return s.collectAttributes(objectClassNames, true)
}

// RequiredAttributes returns the union of MUST attributes of the named
// objectClasses and all their superiors.
func (s *Schema) RequiredAttributes(objectClassNames []string) []string {
	return s.collectAttributes(objectClassNames, false)
}

// collectAttributes walks the SUP chain of each named class. Unknown class
// names are skipped. A visited set keyed by lowercased class name keeps
// cyclic or self-referential SUP chains from recursing forever.
func (s *Schema) collectAttributes(objectClassNames []string, includeMay bool) []string {
	attrs := make(map[string]string)
	visited := make(map[string]bool)

	var walk func(name string)
	walk = func(name string) {
		key := strings.ToLower(name)
		if visited[key] {
			return
		}
		visited[key] = true

		item, ok := s.ObjectClass(name)
		if !ok {
			return
		}
		for _, attr := range keywordList(item.Definition, "MUST") {
			if _, seen := attrs[strings.ToLower(attr)]; !seen {
				attrs[strings.ToLower(attr)] = attr
			}
		}
		if includeMay {
			for _, attr := range keywordList(item.Definition, "MAY") {
				if _, seen := attrs[strings.ToLower(attr)]; !seen {
					attrs[strings.ToLower(attr)] = attr
				}
			}
		}
		for _, sup := range keywordList(item.Definition, "SUP") {
			walk(sup)
		}
	}

	for _, name := range objectClassNames {
		walk(name)
	}

	names := make([]string, 0, len(attrs))
	for _, original := range attrs {
		names = append(names, original)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// TypicalRdnAttribute suggests the RDN attribute for a new entry with the
// given objectClasses. The second return value is false when none of the
// classes is known.
func TypicalRdnAttribute(objectClassNames []string) (string, bool) {
	for _, name := range objectClassNames {
		if attr, ok := typicalRdnAttributes[strings.ToLower(name)]; ok {
			return attr, true
		}
	}
	return "", false
}
