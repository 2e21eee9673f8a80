package schema

import (
	"sort"
	"strings"
)

// Item is one objectClass or attributeType definition read from the
// server's subschema subentry. Definition keeps the raw description string
// so MUST/MAY/SUP lists can be re-parsed lazily.
type Item struct {
	Name        string `json:"name"`
	Oid         string `json:"oid,omitempty"`
	Description string `json:"description,omitempty"`
	Definition  string `json:"definition"`
}

// Schema holds the objectClass and attributeType definitions of one server.
// Both lists are sorted case-insensitively by name.
type Schema struct {
	ObjectClasses  []Item `json:"objectClasses"`
	AttributeTypes []Item `json:"attributeTypes"`
}

// New sorts both item lists by name and returns the assembled schema.
func New(objectClasses, attributeTypes []Item) *Schema {
	sortByName(objectClasses)
	sortByName(attributeTypes)
	return &Schema{
		ObjectClasses:  objectClasses,
		AttributeTypes: attributeTypes,
	}
}

func sortByName(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
}

// ObjectClass looks up an objectClass definition by case-insensitive name.
func (s *Schema) ObjectClass(name string) (Item, bool) {
	for _, item := range s.ObjectClasses {
		if strings.EqualFold(item.Name, name) {
			return item, true
		}
	}
	return Item{}, false
}
