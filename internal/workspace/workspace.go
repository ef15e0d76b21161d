// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package workspace

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// Package is one workspace package as reported by the workspace tool.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Path    string `json:"path"`
}

// Lister enumerates the packages of a workspace.
type Lister interface {
	List(ctx context.Context) ([]Package, error)
}

// DefaultCommand is the workspace tool invocation used when none is
// configured. `pnpm m ls` emits one JSON object per workspace package.
var DefaultCommand = []string{"pnpm", "m", "ls", "--json", "--depth=-1"}

// CommandLister shells out to the workspace tool and parses its JSON
// output. Dir is the workspace root; Command overrides DefaultCommand.
type CommandLister struct {
	Dir     string
	Command []string
}

func (l *CommandLister) List(ctx context.Context) ([]Package, error) {
	argv := l.Command
	if len(argv) == 0 {
		argv = DefaultCommand
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = l.Dir
	log.Debugf("listing workspace via: %s", strings.Join(argv, " "))

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("workspace listing failed (%s): %w", argv[0], err)
	}

	return ParsePackages(out)
}

// ParsePackages extracts workspace packages from the tool's JSON output.
// Both a bare array and a {"packages": [...]} wrapper are accepted.
// Entries without a name (the anonymous workspace root, usually) are
// skipped.
func ParsePackages(data []byte) ([]Package, error) {
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() && !doc.IsObject() {
		return nil, fmt.Errorf("unrecognized workspace listing output")
	}

	entries := doc
	if doc.IsObject() {
		entries = doc.Get("packages")
		if !entries.IsArray() {
			return nil, fmt.Errorf("workspace listing has no packages array")
		}
	}

	var packages []Package
	entries.ForEach(func(_, entry gjson.Result) bool {
		name := entry.Get("name").String()
		if name == "" {
			log.Debugf("skipping unnamed workspace entry: %s", entry.Get("path").String())
			return true
		}
		packages = append(packages, Package{
			Name:    name,
			Version: entry.Get("version").String(),
			Path:    entry.Get("path").String(),
		})
		return true
	})

	return packages, nil
}
