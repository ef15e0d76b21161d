package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/staranto/relctlgo/internal/meta"
	"github.com/urfave/cli/v3"
)

const bashCompletionScript = `# bash completion for relctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_relctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "rcq tq wlq completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
  local common="--attrs -a --color -c --filter -f --local -l --output -o --sort -s --titles -t --tldr"

    # Determine if an optional WorkspaceDir (first non-flag after subcommand) has already been provided
    local have_wsdir=0
    local idx=2
    while [[ $idx -lt ${#COMP_WORDS[@]} ]]; do
        local w=${COMP_WORDS[$idx]}
        if [[ $w != -* ]]; then
            have_wsdir=1
            break
        fi
        ((idx++))
    done

    case "$cmd" in
    rcq)
      local opts="$common --schema --registry -r --tag -g --token --parallel -p"
            ;;
        tq)
      local opts="$common --schema --registry -r --token"
            ;;
        wlq)
      local opts="$common --schema"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

  # If current token starts with '-', or we've already consumed WorkspaceDir, offer flags
  if [[ "$cur" == -* || $have_wsdir -eq 1 ]]; then
    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
  fi

  # tq takes package names, not a directory
  if [[ "$cmd" == "tq" ]]; then
    return 0
  fi

  # Otherwise, we're on the (optional) WorkspaceDir positional - complete directories
  COMPREPLY=( $(compgen -o dirnames -- "$cur") )
  return 0
}

complete -F _relctl relctl
`

const zshCompletionScript = `#compdef relctl

_relctl() {
  local -a cmds
  cmds=(
    'rcq:release candidate query'
    'tq:dist-tag query'
    'wlq:workspace listing query'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-l --local)'{-l,--local}'[timestamps in local time]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'relctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    rcq)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-r --registry)'{-r,--registry}'[registry base URL]' \
        '(-g --tag)'{-g,--tag}'[dist-tag to report]' \
        '--token[registry bearer token]' \
        '(-p --parallel)'{-p,--parallel}'[concurrent lookups]:count' \
        '::WorkspaceDir:_directories'
      ;;
    tq)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '(-r --registry)'{-r,--registry}'[registry base URL]' \
        '--token[registry bearer token]' \
        '*:package name:'
      ;;
    wlq)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '::WorkspaceDir:_directories'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common '*:directory:_directories'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _relctl relctl relctlgo
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(os.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(os.Stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(os.Stdout, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(os.Stdout, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: relctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "relctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
