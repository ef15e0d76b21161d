// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output turns query result sets into text tables, JSON, or YAML,
// applying the --filter, --sort, and --attrs pipelines along the way.
package output
