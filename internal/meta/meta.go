// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"

	"github.com/staranto/relctlgo/internal/config"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	// WorkspaceDir is the root of the package workspace being queried. It
	// defaults to the directory relctl was started from.
	WorkspaceDir string
	StartingDir  string
}
