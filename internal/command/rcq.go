// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/apex/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/staranto/relctlgo/internal/meta"
	"github.com/staranto/relctlgo/internal/registry"
	"github.com/staranto/relctlgo/internal/workspace"
)

// releaseRow is one workspace package with its published dist-tag state.
type releaseRow struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Tag      string `json:"tag"`
	Latest   string `json:"latest"`
	Modified string `json:"modified"`
}

// packumentFetcher is the slice of registry.Client that rcq needs.
type packumentFetcher interface {
	Packument(ctx context.Context, name string) (registry.Meta, error)
}

// collectReleaseRows resolves the requested dist-tag for every workspace
// package. Lookups fan out across at most parallel workers. A failed lookup
// is logged and yields a row with empty registry fields, so one broken
// package never hides the rest.
func collectReleaseRows(
	ctx context.Context,
	reg packumentFetcher,
	pkgs []workspace.Package,
	tag string,
	parallel int,
) []releaseRow {
	rows := make([]releaseRow, len(pkgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, pkg := range pkgs {
		g.Go(func() error {
			row := releaseRow{Name: pkg.Name, Version: pkg.Version}

			m, err := reg.Packument(gctx, pkg.Name)
			switch {
			case errors.Is(err, registry.ErrNoPackage):
				log.Debugf("%s has never been published", pkg.Name)
			case err != nil:
				log.WithError(err).Warnf("skipping %s", pkg.Name)
			default:
				row.Tag = m.DistTags[tag]
				row.Latest = m.DistTags["latest"]
				if !m.Modified.IsZero() {
					row.Modified = m.Modified.Format(time.RFC3339)
				}
			}

			rows[i] = row

			// Always nil. Returning the lookup error would cancel the
			// sibling workers and abort the whole report.
			return nil
		})
	}
	_ = g.Wait()

	return rows
}

// RcqCommandAction is the action handler for the "rcq" subcommand. It lists
// the workspace packages and reports the requested dist-tag (rc by default)
// for each, supporting short-circuit behavior for --tldr and --schema, and
// emits results according to common output/attr flags.
func RcqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[releaseRow]{
		CommandName:  "rcq",
		SchemaType:   reflect.TypeOf(releaseRow{}),
		DefaultAttrs: []string{"name", "version", "tag"},
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]releaseRow, error) {
			pkgs, err := NewWorkspaceLister(cmd).List(ctx)
			if err != nil {
				return nil, err
			}
			log.Debugf("workspace has %d packages", len(pkgs))

			parallel := cmd.Int("parallel")
			if parallel < 1 {
				parallel = 1
			}

			reg := NewRegistryClient(ctx, cmd)
			return collectReleaseRows(ctx, reg, pkgs, cmd.String("tag"), parallel), nil
		},
	}
	return runner.Run(ctx, cmd)
}

// RcqCommandBuilder constructs the cli.Command definition for the "rcq"
// command, wiring flags, metadata, and the action/validator handlers.
func RcqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "rcq",
		Usage:     "release candidate query",
		UsageText: `relctl rcq [WorkspaceDir] [options]`,
		Flags: []cli.Flag{
			NewRegistryFlag("rcq", meta.Config.Source),
			NewTagFlag("rcq", meta.Config.Source),
			NewTokenFlag(),
			&cli.IntFlag{
				Name:    "parallel",
				Aliases: []string{"p"},
				Usage:   "registry lookups to run concurrently",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("rcq.parallel", altsrc.StringSourcer(meta.Config.Source)),
					yaml.YAML("parallel", altsrc.StringSourcer(meta.Config.Source)),
				),
				Value: 1,
				Validator: func(value int) error {
					return FlagValidators(value, ParallelValidator)
				},
			},
		},
		Action: RcqCommandAction,
		Meta:   meta,
	}).Build()
}
