// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aclements/go-tidydraws/tidy"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// newConfig returns a viper instance that reads TIDYDRAWS_* from the
// environment.
func newConfig() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("tidydraws")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// readConfigFile merges the YAML or TOML file at path into v.
func readConfigFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	return nil
}

// parseSpecs splits each of args like a shell would and parses the
// words as parameter specs, so "b[i, j] sigma" names two parameters.
func parseSpecs(args []string, regex bool) ([]tidy.Spec, error) {
	var words []string
	for _, arg := range args {
		ws, err := shellquote.Split(arg)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", arg, err)
		}
		words = append(words, ws...)
	}
	// Rejoin index lists split at spaces, like "b[i," "j]".
	var joined []string
	for _, w := range words {
		if n := len(joined); n > 0 && strings.Count(joined[n-1], "[") > strings.Count(joined[n-1], "]") {
			joined[n-1] += w
			continue
		}
		joined = append(joined, w)
	}
	return tidy.ParseSpecs(joined, regex)
}

// domainFile is the on-disk form of a tidy.Domain.
type domainFile struct {
	Levels  []string `yaml:"levels,omitempty" toml:"levels,omitempty"`
	Numeric bool     `yaml:"numeric,omitempty" toml:"numeric,omitempty"`
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// loadRecovery reads a recovery map from a YAML or TOML file, chosen
// by extension.
func loadRecovery(path string) (tidy.Recovery, error) {
	var m map[string]domainFile
	if isTOML(path) {
		if _, err := toml.DecodeFile(path, &m); err != nil {
			return nil, fmt.Errorf("reading recovery map: %w", err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("reading recovery map %s: %w", path, err)
		}
	}
	rec := make(tidy.Recovery, len(m))
	for name, d := range m {
		if d.Numeric && len(d.Levels) > 0 {
			return nil, fmt.Errorf("recovery map %s: index %s has both levels and numeric", path, name)
		}
		rec[name] = tidy.Domain{Levels: d.Levels, Numeric: d.Numeric}
	}
	return rec, nil
}

// saveRecovery writes rec to path in the format loadRecovery reads.
func saveRecovery(path string, rec tidy.Recovery) error {
	m := make(map[string]domainFile, len(rec))
	for name, d := range rec {
		m[name] = domainFile{d.Levels, d.Numeric}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if isTOML(path) {
		err = toml.NewEncoder(f).Encode(m)
	} else {
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		err = enc.Encode(m)
		if err == nil {
			err = enc.Close()
		}
	}
	if err1 := f.Close(); err == nil {
		err = err1
	}
	return err
}
