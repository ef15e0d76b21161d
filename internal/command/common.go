// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"reflect"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/relctlgo/internal/attrs"
	"github.com/staranto/relctlgo/internal/cache"
	"github.com/staranto/relctlgo/internal/config"
	"github.com/staranto/relctlgo/internal/meta"
	"github.com/staranto/relctlgo/internal/output"
	"github.com/staranto/relctlgo/internal/registry"
	"github.com/staranto/relctlgo/internal/workspace"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr relctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "relctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// DumpSchemaIfRequested prints the JSON schema for the provided type when
// --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema("", t)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// EmitJSONSlice marshals a slice as JSON and passes it to the common output
// routine.
func EmitJSONSlice(results any, al attrs.AttrList, cmd *cli.Command) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	output.SliceDiceSpit(*bytes.NewBuffer(raw), al, cmd, "", os.Stdout)
	return nil
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// NewCache builds the cache facade selected by the cache.backend config key:
// "file" (the default), "redis", "memory", or "off". A nil return means
// caching is disabled and callers compute directly.
func NewCache(ctx context.Context) *cache.Cache {
	backend, _ := config.GetString("cache.backend", "file")

	switch backend {
	case "off":
		return nil
	case "memory":
		return cache.New(cache.NewMemoryStore())
	case "redis":
		addr, _ := config.GetString("cache.redis.addr", "localhost:6379")
		password, _ := config.GetString("cache.redis.password", "")
		db, _ := config.GetInt("cache.redis.db", 0)
		return cache.New(cache.NewRedisStore(cache.NewRedisClient(addr, password, db)))
	case "file":
		if !cache.Enabled() {
			return nil
		}
		base, _, err := cache.EnsureBaseDir()
		if err != nil {
			log.WithError(err).Warn("cache dir unavailable, running uncached")
			return nil
		}
		return cache.New(cache.NewFileStore(base))
	default:
		log.Errorf("unknown cache.backend %q, running uncached", backend)
		return nil
	}
}

// CacheTTL returns the configured cache entry lifetime (cache.ttl, seconds).
func CacheTTL() time.Duration {
	secs, _ := config.GetInt("cache.ttl", 3600)
	return time.Duration(secs) * time.Second
}

// NewRegistryClient builds a registry client from the --registry/--token
// flags and the configured cache backend.
func NewRegistryClient(ctx context.Context, cmd *cli.Command) *registry.Client {
	return registry.New(
		cmd.String("registry"),
		cmd.String("token"),
		NewCache(ctx),
		CacheTTL(),
	)
}

// NewWorkspaceLister builds the lister for the command's workspace dir. The
// tool invocation can be overridden with the workspace.command config key.
func NewWorkspaceLister(cmd *cli.Command) workspace.Lister {
	m := GetMeta(cmd)
	argv, _ := config.GetStringSlice("workspace.command", workspace.DefaultCommand)
	return &workspace.CommandLister{Dir: m.WorkspaceDir, Command: argv}
}

// QueryCommandBuilder is a helper that constructs a cli.Command for query
// subcommands (rcq, tq, wlq) using a consistent pattern. It accepts the
// command name, usage text, optional UsageText, custom flags, the action
// handler, and meta. The builder automatically wires metadata, adds
// tldr/schema flags, applies global flags, and sets up validators.
type QueryCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		Metadata: map[string]any{
			"meta": qcb.Meta,
		},
		Flags: append(qcb.Flags, append([]cli.Flag{
			tldrFlag,
			schemaFlag,
		}, NewGlobalFlags(qcb.Name)...)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: qcb.Action,
	}
}

// QueryActionRunner[T] encapsulates the common query action pattern for all
// query subcommands. It handles GetMeta, short-circuit checks, BuildAttrs,
// schema dumping, and output emission, with the data fetch provided by
// FetchFn.
type QueryActionRunner[T any] struct {
	CommandName  string
	SchemaType   reflect.Type
	DefaultAttrs []string
	FetchFn      func(context.Context, *cli.Command) ([]T, error)
}

// Run executes the query action with the provided context and command.
func (qar *QueryActionRunner[T]) Run(
	ctx context.Context,
	cmd *cli.Command,
) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, qar.CommandName) {
		return nil
	}
	if DumpSchemaIfRequested(cmd, qar.SchemaType) {
		return nil
	}

	attrs := BuildAttrs(cmd, qar.DefaultAttrs...)
	log.Debugf("attrs: %v", attrs)

	results, err := qar.FetchFn(ctx, cmd)
	if err != nil {
		return err
	}

	if err := EmitJSONSlice(results, attrs, cmd); err != nil {
		return err
	}
	return nil
}
