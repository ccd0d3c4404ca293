package main

import (
	"encoding/json"
	"log"
	"os"
	"strings"
)

// AliasTable maps a lowercase shop-name token to the set of canonical tokens
// it should match. The table is symmetric by construction: for every
// canonical name C with aliases A1..An, each Ai maps to {C} and C maps to
// itself, so expansion works in both match directions.
type AliasTable map[string]map[string]struct{}

// LoadAliases reads a JSON file of the persisted form
// {"canonical": ["alias", ...], ...}. A missing file is an empty table;
// a malformed file logs a warning and yields an empty table.
func LoadAliases(filePath string) AliasTable {
	aliases := make(AliasTable)
	if filePath == "" {
		return aliases
	}

	buf, err := os.ReadFile(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: can't read aliases from '%s': %v", filePath, err)
		}
		return aliases
	}

	var data map[string][]string
	if err := json.Unmarshal(buf, &data); err != nil {
		log.Printf("Warning: can't parse aliases from '%s': %v", filePath, err)
		return aliases
	}

	for canonical, aliasList := range data {
		canonicalLower := strings.ToLower(canonical)
		aliases.add(canonicalLower, canonicalLower)
		for _, alias := range aliasList {
			aliases.add(strings.ToLower(alias), canonicalLower)
		}
	}
	return aliases
}

func (a AliasTable) add(key, canonical string) {
	set, ok := a[key]
	if !ok {
		set = make(map[string]struct{})
		a[key] = set
	}
	set[canonical] = struct{}{}
}
