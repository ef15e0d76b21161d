// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package registry is a minimal npm-registry client. It fetches abbreviated
// packuments and exposes just the pieces relctl needs: dist-tags and the
// last-modified time.
package registry
