package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseItem(t *testing.T) {
	def := "( 2.5.6.6 NAME 'person' DESC 'RFC2256: a person' SUP top STRUCTURAL MUST ( sn $ cn ) MAY ( userPassword $ telephoneNumber ) )"
	item := ParseItem(def)

	assert.Equal(t, "person", item.Name)
	assert.Equal(t, "2.5.6.6", item.Oid)
	assert.Equal(t, "RFC2256: a person", item.Description)
	assert.Equal(t, def, item.Definition)
}

func TestParseItemMultipleNames(t *testing.T) {
	item := ParseItem("( 2.5.4.3 NAME ( 'cn' 'commonName' ) SUP name )")
	assert.Equal(t, "cn", item.Name)
	assert.Equal(t, "2.5.4.3", item.Oid)
}

func TestParseItemNameFallsBackToOid(t *testing.T) {
	item := ParseItem("( 1.3.6.1.4.1.1466.101.120.6 SYNTAX 1.3.6.1.4.1.1466.115.121.1.15 )")
	assert.Equal(t, "1.3.6.1.4.1.1466.101.120.6", item.Name)
	assert.Equal(t, "1.3.6.1.4.1.1466.101.120.6", item.Oid)
}

func TestParseItemUnknown(t *testing.T) {
	item := ParseItem("( malformed )")
	assert.Equal(t, "unknown", item.Name)
	assert.Empty(t, item.Oid)
}

func TestParseOidRequiresDot(t *testing.T) {
	// a bare keyword in OID position is not mistaken for an OID
	item := ParseItem("( top NAME 'something' )")
	assert.Empty(t, item.Oid)
	assert.Equal(t, "something", item.Name)
}

func TestKeywordList(t *testing.T) {
	def := "( 2.5.6.7 NAME 'organizationalPerson' SUP person STRUCTURAL MAY ( title $ ou $ l ) )"

	assert.Equal(t, []string{"person"}, keywordList(def, "SUP"))
	assert.Equal(t, []string{"title", "ou", "l"}, keywordList(def, "MAY"))
	assert.Nil(t, keywordList(def, "MUST"))
}

func TestKeywordListSingleToken(t *testing.T) {
	assert.Equal(t, []string{"cn"}, keywordList("( 2.5.6.0 NAME 'x' MUST cn )", "MUST"))
}
