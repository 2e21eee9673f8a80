package ldif

import (
	"encoding/base64"
	"strings"

	"github.com/ssoellinger/open-ldap-viewer/directory"
)

// Parse splits LDIF text into change operations. Blocks are separated by
// blank lines; comment lines are dropped; a block without a dn line is
// dropped entirely. The returned order matches the input text, since later
// operations may depend on earlier ones.
func Parse(text string) []Operation {
	var ops []Operation
	for _, block := range splitBlocks(text) {
		if op, ok := parseBlock(block); ok {
			ops = append(ops, op)
		}
	}
	return ops
}

func splitBlocks(text string) [][]string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var blocks [][]string
	var current []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

var modificationTypes = map[string]directory.ModificationType{
	"add":     directory.ModAdd,
	"replace": directory.ModReplace,
	"delete":  directory.ModDelete,
}

func parseBlock(lines []string) (Operation, bool) {
	op := Operation{
		ChangeType: ChangeAdd,
		Attributes: make(map[string][]string),
	}

	// The open add:/replace:/delete: header of a modify block. Each value
	// line under it emits one modification; a header closed with no value
	// lines emits a single valueless one (delete-all).
	var pendingAttr string
	var pendingType directory.ModificationType
	pendingOpen := false
	pendingValues := 0

	closePending := func() {
		if pendingOpen && pendingValues == 0 {
			op.Modifications = append(op.Modifications, directory.Modification{
				AttributeName: pendingAttr,
				Type:          pendingType,
			})
		}
		pendingOpen = false
		pendingValues = 0
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			continue
		}
		if strings.TrimSpace(line) == "-" {
			closePending()
			continue
		}

		key, value, ok := splitLine(line)
		if !ok {
			continue
		}

		lowerKey := strings.ToLower(key)
		switch {
		case lowerKey == "dn":
			op.Dn = value
		case lowerKey == "changetype":
			switch strings.ToLower(value) {
			case "modify":
				op.ChangeType = ChangeModify
			case "delete":
				op.ChangeType = ChangeDelete
			default:
				op.ChangeType = ChangeAdd
			}
		case op.ChangeType == ChangeModify:
			if modType, isHeader := modificationTypes[lowerKey]; isHeader {
				closePending()
				pendingAttr = value
				pendingType = modType
				pendingOpen = true
				continue
			}
			if pendingOpen && strings.EqualFold(key, pendingAttr) {
				mod := directory.Modification{
					AttributeName: pendingAttr,
					Type:          pendingType,
				}
				if pendingType == directory.ModDelete {
					mod.OldValue = value
				} else {
					mod.NewValue = value
				}
				op.Modifications = append(op.Modifications, mod)
				pendingValues++
			}
			// lines not matching the open attribute are dropped
		default:
			op.Attributes[key] = append(op.Attributes[key], value)
		}
	}
	closePending()

	if op.Dn == "" {
		return Operation{}, false
	}
	if op.ChangeType != ChangeAdd || len(op.Attributes) == 0 {
		op.Attributes = nil
	}
	return op, true
}

// splitLine splits on the first colon. A second colon marks a base64 value;
// when decoding fails the raw text is kept rather than failing the parse.
func splitLine(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	rest := line[idx+1:]
	if strings.HasPrefix(rest, ":") {
		encoded := strings.TrimSpace(rest[1:])
		if decoded, err := base64.StdEncoding.DecodeString(encoded); err == nil {
			return key, string(decoded), true
		}
		return key, encoded, true
	}
	return key, strings.TrimSpace(rest), true
}
