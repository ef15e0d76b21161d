// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache provides a read-through caching facade over a pluggable
// key-value store. Fetch implements the classic hit/miss flow with
// serialize-to-JSON storage; FetchLatest layers on freshness-derived keys,
// where any write to the newest matching record changes the key and makes
// the old entry unreachable. Stores are provided for Redis, the local
// filesystem, and in-process memory.
//
// Cache faults never surface to callers. A failed read, a malformed entry,
// or a failed write degrades to computing the value directly.
package cache
