package schema

import "strings"

// ParseItem extracts name, OID and description from a raw schema description
// string of the form "( <oid> NAME '<name>' DESC '<description>' ... )".
// It is a tolerant scanner, not an RFC 4512 grammar: malformed definitions
// degrade to partial items instead of failing. When no name can be found the
// OID is used, and failing that the literal "unknown".
func ParseItem(definition string) Item {
	item := Item{
		Name:        parseName(definition),
		Oid:         parseOid(definition),
		Description: quotedAfter(definition, "DESC "),
		Definition:  definition,
	}
	if item.Name == "" {
		if item.Oid != "" {
			item.Name = item.Oid
		} else {
			item.Name = "unknown"
		}
	}
	return item
}

// parseName takes the substring between the first quote pair after the NAME
// token. Multi-named items ("NAME ( 'a' 'b' )") yield the first quoted name,
// which the same quote scan finds.
func parseName(definition string) string {
	return quotedAfter(definition, "NAME ")
}

// parseOid returns the first token after the leading "(", but only if it
// contains a dot. The dot distinguishes numeric OIDs from bare keywords; an
// OID-less definition that starts with a dotted token is misread as having
// an OID, which matches the behavior this scanner has always had.
func parseOid(definition string) string {
	s := strings.TrimSpace(definition)
	s = strings.TrimPrefix(s, "(")
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	if strings.Contains(fields[0], ".") {
		return fields[0]
	}
	return ""
}

// quotedAfter returns the substring between the first quote pair following
// the keyword, or "" when either the keyword or the quotes are absent.
func quotedAfter(definition, keyword string) string {
	idx := strings.Index(definition, keyword)
	if idx < 0 {
		return ""
	}
	rest := definition[idx+len(keyword):]
	start := strings.Index(rest, "'")
	if start < 0 {
		return ""
	}
	rest = rest[start+1:]
	end := strings.Index(rest, "'")
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// keywordList extracts the attribute or superior list following a MUST, MAY
// or SUP keyword: either a parenthesized "$"-delimited list or a single bare
// token. Returns nil when the keyword is absent.
func keywordList(definition, keyword string) []string {
	idx := strings.Index(definition, " "+keyword+" ")
	if idx < 0 {
		return nil
	}
	rest := strings.TrimSpace(definition[idx+len(keyword)+2:])
	if strings.HasPrefix(rest, "(") {
		end := strings.Index(rest, ")")
		if end < 0 {
			end = len(rest)
		}
		var names []string
		for _, part := range strings.Split(rest[1:end], "$") {
			if name := strings.TrimSpace(part); name != "" {
				names = append(names, name)
			}
		}
		return names
	}
	end := strings.IndexAny(rest, " )")
	if end < 0 {
		end = len(rest)
	}
	if name := strings.TrimSpace(rest[:end]); name != "" {
		return []string{name}
	}
	return nil
}
