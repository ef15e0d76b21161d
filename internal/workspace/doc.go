// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package workspace enumerates the packages of a JS/TS monorepo by driving
// the workspace tool (pnpm by default) and parsing its JSON listing.
package workspace
