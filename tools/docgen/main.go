// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
)

// docgen reads docs/commands/*.md (one file per subcommand) and renders
// each one twice:
//   - docs/man/share/man1/relctl-<cmd>.1 via md2man
//   - docs/tldr/relctl-<cmd>.md from the first H1 and the "Quick examples"
//     fenced block

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")

	for _, dir := range []string{manOutDir, tldrOutDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatalf("creating output dir: %v", err)
		}
	}

	entries, err := os.ReadDir(commandsDir)
	if err != nil {
		fatalf("reading commands dir %s: %v", commandsDir, err)
	}

	var processed int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		cmd := strings.TrimSuffix(e.Name(), ".md")
		raw, err := os.ReadFile(filepath.Join(commandsDir, e.Name()))
		if err != nil {
			fatalf("reading %s: %v", e.Name(), err)
		}

		manPath := filepath.Join(manOutDir, fmt.Sprintf("relctl-%s.1", cmd))
		if err := writeFileIfChanged(manPath, md2man.Render(raw), writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", cmd, err)
		}

		tldrPath := filepath.Join(tldrOutDir, fmt.Sprintf("relctl-%s.md", cmd))
		tldr := buildTLDR(cmd, string(raw))
		if err := writeFileIfChanged(tldrPath, []byte(tldr), writeOnlyIfChanged); err != nil {
			fatalf("writing TLDR for %s: %v", cmd, err)
		}

		processed++
	}

	if processed == 0 {
		fatalf("no command markdown found under %s", commandsDir)
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, content []byte, onlyIfChanged bool) error {
	if onlyIfChanged {
		old, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err == nil && bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(content)) {
			return nil
		}
	}
	return os.WriteFile(path, content, 0o644)
}

var h1Re = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// buildTLDR produces a tldr-pages style page: title line, short description
// from the H1, then one bullet per example in the "Quick examples" fence.
// Example lines come in pairs: a `# description` comment and the command.
func buildTLDR(cmd, md string) string {
	var b strings.Builder
	b.WriteString("# relctl-" + cmd + "\n\n")

	title := "relctl " + cmd
	if m := h1Re.FindStringSubmatch(md); m != nil {
		title = strings.TrimSpace(m[1])
	}
	b.WriteString("> " + title + "\n")
	b.WriteString("> More information: https://github.com/staranto/relctlgo.\n\n")

	examples := quickExamples(md)
	if len(examples) == 0 {
		b.WriteString("- Show help for the command:\n\n")
		b.WriteString("`relctl " + cmd + " --help`\n")
		return b.String()
	}

	for i, ex := range examples {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + ex[0] + ":\n\n")
		b.WriteString("`" + ex[1] + "`\n")
	}
	return b.String()
}

// quickExamples returns (description, command) pairs from the first fenced
// code block after the "Quick examples" header.
func quickExamples(md string) [][2]string {
	idx := strings.Index(strings.ToLower(md), "quick examples")
	if idx < 0 {
		return nil
	}

	rest := md[idx:]
	start := strings.Index(rest, "```")
	if start < 0 {
		return nil
	}
	rest = rest[start+3:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return nil
	}

	var out [][2]string
	desc := ""
	for _, ln := range strings.Split(rest[:end], "\n") {
		ln = strings.TrimSpace(strings.TrimRight(ln, "\r"))
		switch {
		case ln == "":
		case strings.HasPrefix(ln, "#"):
			desc = strings.TrimSpace(strings.TrimLeft(ln, "# "))
		default:
			if desc == "" {
				desc = "Example"
			}
			out = append(out, [2]string{desc, strings.Join(strings.Fields(ln), " ")})
			desc = ""
		}
	}
	return out
}
