// Package tables holds the lookup data for the ELM327/STN AT dialect and the
// OBD-II / UDS-KWP service sets the analyzer decodes: AT/ST command
// descriptions, mode descriptions, PID names and the NRC table required by
// the specification. The data is bundled as YAML and parsed once at init,
// the way Dire Wolf loads its tocalls.yaml device-identification table
// rather than hand-coding every entry as a Go literal.
package tables

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed data.yaml
var dataYAML []byte

type raw struct {
	ATCommands map[string]string `yaml:"atCommands"`
	STCommands map[string]string `yaml:"stCommands"`
	OBDModes   map[string]string `yaml:"obdModes"`
	UDSModes   map[string]string `yaml:"udsModes"`
	PIDNames   map[string]string `yaml:"pidNames"`
	NRC        map[string]string `yaml:"nrc"`
}

// ATCommands maps an AT command prefix (e.g. "ATSP") to its description.
var ATCommands map[string]string

// STCommands maps an ST command prefix to its description.
var STCommands map[string]string

// OBDModes maps an OBD-II mode byte to its description.
var OBDModes map[byte]string

// UDSModes maps a UDS/KWP service byte to its description.
var UDSModes map[byte]string

// PIDNames maps a mode-01-style PID byte to its human name.
var PIDNames map[byte]string

// NRC maps a negative-response code byte to its standardized meaning.
var NRC map[byte]string

// ATKeysByLength is ATCommands' keys sorted longest-first, so callers can
// find the longest matching prefix in one pass.
var ATKeysByLength []string

// STKeysByLength is STCommands' keys sorted longest-first.
var STKeysByLength []string

func init() {
	var r raw
	if err := yaml.Unmarshal(dataYAML, &r); err != nil {
		panic(fmt.Sprintf("tables: failed to parse embedded data.yaml: %s", err))
	}

	ATCommands = r.ATCommands
	STCommands = r.STCommands
	OBDModes = mustHexMap(r.OBDModes)
	UDSModes = mustHexMap(r.UDSModes)
	PIDNames = mustHexMap(r.PIDNames)
	NRC = mustHexMap(r.NRC)

	ATKeysByLength = sortedByLengthDesc(ATCommands)
	STKeysByLength = sortedByLengthDesc(STCommands)
}

func mustHexMap(in map[string]string) map[byte]string {
	var out = make(map[byte]string, len(in))
	for k, v := range in {
		var n, err = strconv.ParseUint(k, 0, 8)
		if err != nil {
			panic(fmt.Sprintf("tables: bad hex key %q: %s", k, err))
		}
		out[byte(n)] = v
	}
	return out
}

func sortedByLengthDesc(m map[string]string) []string {
	var keys = make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
