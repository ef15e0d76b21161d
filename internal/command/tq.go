// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/relctlgo/internal/meta"
	"github.com/staranto/relctlgo/internal/registry"
)

// tagRow is one dist-tag of one package.
type tagRow struct {
	Name    string `json:"name"`
	Tag     string `json:"tag"`
	Version string `json:"version"`
}

// tagRows flattens a packument's dist-tags into rows, sorted by tag name so
// output is stable.
func tagRows(m registry.Meta) []tagRow {
	tags := make([]string, 0, len(m.DistTags))
	for tag := range m.DistTags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	rows := make([]tagRow, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, tagRow{Name: m.Name, Tag: tag, Version: m.DistTags[tag]})
	}
	return rows
}

// TqCommandAction is the action handler for the "tq" subcommand. It reports
// every dist-tag of the packages named as arguments.
func TqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[tagRow]{
		CommandName:  "tq",
		SchemaType:   reflect.TypeOf(tagRow{}),
		DefaultAttrs: []string{"name", "tag", "version"},
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]tagRow, error) {
			names := cmd.Args().Slice()
			if len(names) == 0 {
				return nil, fmt.Errorf("at least one package name is required")
			}

			reg := NewRegistryClient(ctx, cmd)

			var rows []tagRow
			for _, name := range names {
				m, err := reg.Packument(ctx, name)
				if errors.Is(err, registry.ErrNoPackage) {
					log.Warnf("%s has never been published", name)
					continue
				}
				if err != nil {
					return nil, err
				}
				rows = append(rows, tagRows(m)...)
			}
			return rows, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// TqCommandBuilder constructs the cli.Command for "tq", wiring metadata,
// flags, and action/validator handlers.
func TqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "tq",
		Usage:     "dist-tag query",
		UsageText: `relctl tq PACKAGE... [options]`,
		Flags: []cli.Flag{
			NewRegistryFlag("tq", meta.Config.Source),
			NewTokenFlag(),
		},
		Action: TqCommandAction,
		Meta:   meta,
	}).Build()
}
