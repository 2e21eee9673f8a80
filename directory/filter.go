package directory

import (
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// Filter builds LDAP search filter strings. Values passed to the
// constructors are escaped; filter structure is not.
type Filter interface {
	String() string
}

type rawFilter string

func (f rawFilter) String() string { return string(f) }

type andFilter struct{ parts []Filter }

func And(filters ...Filter) Filter { return andFilter{parts: filters} }

func (f andFilter) String() string {
	var parts []string
	for _, p := range f.parts {
		parts = append(parts, p.String())
	}
	return "(&" + strings.Join(parts, "") + ")"
}

type orFilter struct{ parts []Filter }

func Or(filters ...Filter) Filter { return orFilter{parts: filters} }

func (f orFilter) String() string {
	var parts []string
	for _, p := range f.parts {
		parts = append(parts, p.String())
	}
	return "(|" + strings.Join(parts, "") + ")"
}

type notFilter struct{ part Filter }

func Not(f Filter) Filter { return notFilter{part: f} }

func (f notFilter) String() string {
	return "(!" + f.part.String() + ")"
}

func Eq(attr, value string) Filter {
	return rawFilter("(" + attr + "=" + ldap.EscapeFilter(value) + ")")
}

func Contains(attr, value string) Filter {
	return rawFilter("(" + attr + "=*" + ldap.EscapeFilter(value) + "*)")
}

func Present(attr string) Filter {
	return rawFilter("(" + attr + "=*)")
}

// QuickSearchFilter builds the filter behind the UI's simple search box: a
// substring match on one attribute, restricted to entries that carry it.
func QuickSearchFilter(attribute, term string) string {
	return And(Present(attribute), Contains(attribute, term)).String()
}
