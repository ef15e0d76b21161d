// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/relctlgo/internal/cache"
)

// ErrNoPackage is returned when the registry has never seen the package.
var ErrNoPackage = errors.New("package not found in registry")

// abbreviatedAccept asks the registry for the abbreviated packument, which
// still carries dist-tags and is much smaller than the full document.
const abbreviatedAccept = "application/vnd.npm.install-v1+json; q=1.0, application/json; q=0.8"

// Meta is the slice of a packument relctl cares about.
type Meta struct {
	Name     string            `json:"name"`
	DistTags map[string]string `json:"dist_tags"`
	Modified time.Time         `json:"modified"`
}

// Client queries a package registry for packuments, memoizing them through
// the cache facade so repeated lookups in one run (or across runs, with a
// shared store) skip the network.
type Client struct {
	base  string
	token string
	httpc *http.Client
	cache *cache.Cache
	ttl   time.Duration
}

// New builds a Client for the registry at base. c may be nil to disable
// caching; ttl bounds how long cached packuments are trusted.
func New(base, token string, c *cache.Cache, ttl time.Duration) *Client {
	return &Client{
		base:  strings.TrimSuffix(base, "/"),
		token: token,
		httpc: &http.Client{},
		cache: c,
		ttl:   ttl,
	}
}

// Packument returns the dist-tags and modification time for name.
func (c *Client) Packument(ctx context.Context, name string) (Meta, error) {
	key := "packument-" + name
	return cache.Fetch(ctx, c.cache, key, cache.Options{Expires: c.ttl},
		func(ctx context.Context) (Meta, error) {
			doc, err := c.fetch(ctx, name)
			if err != nil {
				return Meta{}, err
			}
			return parseMeta(name, doc.Bytes()), nil
		})
}

// DistTag returns the version the named dist-tag points at, or ok=false
// when the package has no such tag.
func (c *Client) DistTag(ctx context.Context, name, tag string) (string, bool, error) {
	meta, err := c.Packument(ctx, name)
	if err != nil {
		return "", false, err
	}
	version, ok := meta.DistTags[tag]
	return version, ok, nil
}

func (c *Client) fetch(ctx context.Context, name string) (bytes.Buffer, error) {
	// Scoped names keep their @scope/ prefix with the slash encoded.
	url := c.base + "/" + strings.ReplaceAll(name, "/", "%2F")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return bytes.Buffer{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", abbreviatedAccept)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return bytes.Buffer{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return bytes.Buffer{}, fmt.Errorf("%s: %w", name, ErrNoPackage)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return bytes.Buffer{}, fmt.Errorf("registry returned %s for %s", resp.Status, name)
	}

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return bytes.Buffer{}, fmt.Errorf("failed to read response: %w", err)
	}

	log.Debugf("fetched packument for %s (%d bytes)", name, doc.Len())
	return doc, nil
}

// parseMeta extracts dist-tags and the modification time from a packument.
// Abbreviated packuments use "modified" at the root; full ones carry it
// under "time.modified".
func parseMeta(name string, doc []byte) Meta {
	meta := Meta{Name: name, DistTags: map[string]string{}}

	tags := gjson.GetBytes(doc, "dist-tags")
	tags.ForEach(func(key, value gjson.Result) bool {
		meta.DistTags[key.String()] = value.String()
		return true
	})

	modified := gjson.GetBytes(doc, "modified")
	if !modified.Exists() {
		modified = gjson.GetBytes(doc, "time.modified")
	}
	if modified.Exists() {
		if t, err := time.Parse(time.RFC3339, modified.String()); err == nil {
			meta.Modified = t
		} else {
			log.Debugf("unparseable modified time for %s: %s", name, modified.String())
		}
	}

	return meta
}
