// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/relctlgo/internal/meta"
	"github.com/staranto/relctlgo/internal/workspace"
)

// WlqCommandAction is the action handler for the "wlq" subcommand. It
// reports the raw workspace package listing without touching the registry.
func WlqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[workspace.Package]{
		CommandName:  "wlq",
		SchemaType:   reflect.TypeOf(workspace.Package{}),
		DefaultAttrs: []string{"name", "version", "path"},
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]workspace.Package, error) {
			pkgs, err := NewWorkspaceLister(cmd).List(ctx)
			if err != nil {
				return nil, err
			}
			log.Debugf("workspace has %d packages", len(pkgs))
			return pkgs, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// WlqCommandBuilder constructs the cli.Command for "wlq", wiring metadata,
// flags, and action/validator handlers.
func WlqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "wlq",
		Usage:     "workspace listing query",
		UsageText: `relctl wlq [WorkspaceDir] [options]`,
		Action:    WlqCommandAction,
		Meta:      meta,
	}).Build()
}
