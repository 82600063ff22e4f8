// Package config loads the optional JSON preferences file and merges it
// with CLI-supplied values: CLI flags override the config file, which
// overrides built-in defaults.
package config

import (
	"encoding/json"
	"os"
)

// File is the JSON config file's schema. Only these three keys are
// recognized, per specification.
type File struct {
	Theme        string `json:"theme,omitempty"`
	HistoryPath  string `json:"historyPath,omitempty"`
	HistoryDepth *int   `json:"historyDepth,omitempty"`
}

// Load reads and parses the config file at path. A missing file is not an
// error: it returns a zero-value File. A malformed file is an I/O-adjacent
// warning-class error per the error taxonomy — callers should warn, not
// abort, so Load returns the error for the caller to decide.
func Load(path string) (File, error) {
	var data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, nil
		}
		return File{}, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, err
	}
	return f, nil
}

// Merged is the fully resolved set of preferences after applying
// defaults, then the config file, then explicit CLI overrides.
type Merged struct {
	Theme        string
	HistoryPath  string
	HistoryDepth int
}

// Resolve applies the merge order: defaults < config file < CLI flags.
// cliTheme/cliHistoryPath/cliHistoryDepth should be the flag's current value
// and cliXxxSet whether the user explicitly passed it.
func Resolve(defaults Merged, file File, cliTheme string, cliThemeSet bool, cliHistoryPath string, cliHistoryPathSet bool, cliHistoryDepth int, cliHistoryDepthSet bool) Merged {
	var m = defaults

	if file.Theme != "" {
		m.Theme = file.Theme
	}
	if file.HistoryPath != "" {
		m.HistoryPath = file.HistoryPath
	}
	if file.HistoryDepth != nil {
		m.HistoryDepth = *file.HistoryDepth
	}

	if cliThemeSet {
		m.Theme = cliTheme
	}
	if cliHistoryPathSet {
		m.HistoryPath = cliHistoryPath
	}
	if cliHistoryDepthSet {
		m.HistoryDepth = cliHistoryDepth
	}

	return m
}
