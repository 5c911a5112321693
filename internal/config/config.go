// Package config handles intcode.toml project manifests.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"
)

const FileName = "intcode.toml"

// Manifest represents an intcode.toml file.
type Manifest struct {
	// Program is the program file, relative to Dir.
	Program string  `toml:"program"`
	Inputs  []int64 `toml:"inputs"`
	ASCII   bool    `toml:"ascii"`
	// Patches maps decimal addresses to values written before the run.
	Patches map[string]int64 `toml:"patches"`
	Limits  Limits           `toml:"limits"`
	Log     Log              `toml:"log"`

	// Dir is the directory containing the manifest (set at load time).
	Dir string `toml:"-"`
}

type Limits struct {
	MaxSteps  int64 `toml:"max_steps"`
	MaxMemory int64 `toml:"max_memory"`
}

type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Patch is a parsed [patches] entry.
type Patch struct {
	Addr  int64
	Value int64
}

func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	if m.Limits.MaxSteps < 0 || m.Limits.MaxMemory < 0 {
		return nil, fmt.Errorf("%s: limits must not be negative", path)
	}
	if _, err := m.PatchList(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir looking for intcode.toml. It returns
// nil without error when none exists.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// ProgramPath resolves Program against the manifest directory.
func (m *Manifest) ProgramPath() string {
	if m.Program == "" || filepath.IsAbs(m.Program) {
		return m.Program
	}
	return filepath.Join(m.Dir, m.Program)
}

// PatchList returns the patches ordered by address.
func (m *Manifest) PatchList() ([]Patch, error) {
	out := make([]Patch, 0, len(m.Patches))
	for k, v := range m.Patches {
		addr, err := strconv.ParseInt(k, 10, 64)
		if err != nil || addr < 0 {
			return nil, fmt.Errorf("invalid patch address %q", k)
		}
		out = append(out, Patch{Addr: addr, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out, nil
}
