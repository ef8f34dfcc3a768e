// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/catsync/internal/meta"
)

const bashCompletionScript = `# bash completion for catsync
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_catsync()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "backups check completion config diff export list restore run status sync --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local listing="--color -c --output -o --padding --sort -s --titles -t"

    case "$cmd" in
    backups)
        local opts="--exact --older-than --output -o --prune --titles -t"
        ;;
    check|sync)
        local opts="--store"
        ;;
    config)
        local opts="--auto-sync --interval --notify --store"
        ;;
    diff)
        local opts="$listing --collection --detail --passphrase -p --pick --store"
        ;;
    export)
        local opts="--archive --format --out --passphrase -p --seal --store"
        ;;
    list)
        if [[ ${COMP_CWORD} -eq 2 ]]; then
            COMPREPLY=( $(compgen -W "products categories" -- "$cur") )
            return 0
        fi
        local opts="$listing --attrs -a --filter -f --local -l --schema --store"
        ;;
    restore)
        local opts="--latest --passphrase -p --store"
        ;;
    run)
        local opts="--interval --on-change --reload-delay --store --sync-now"
        ;;
    status)
        local opts="--output -o --store --titles -t"
        ;;
    completion)
        COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
        return 0
        ;;
    *)
        local opts="--help"
        ;;
    esac

    case "$prev" in
    --output|-o)
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
        ;;
    --format)
        COMPREPLY=( $(compgen -W "json csv" -- "$cur") )
        return 0
        ;;
    --collection)
        COMPREPLY=( $(compgen -W "products categories" -- "$cur") )
        return 0
        ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    # Backup locations are files.
    COMPREPLY=( $(compgen -f -- "$cur") )
    return 0
}

complete -F _catsync catsync
`

const zshCompletionScript = `#compdef catsync

_catsync() {
  local -a cmds
  cmds=(
    'backups:list or prune archived backups'
    'check:check that the store holds products and categories'
    'completion:generate shell completion script'
    'config:show or change the sync configuration'
    'diff:compare a collection between two snapshots'
    'export:export the catalog as json or csv'
    'list:list products or categories'
    'restore:restore the catalog from a backup'
    'run:auto-sync and watch the catalog for changes'
    'status:show sync configuration and catalog status'
    'sync:stamp the last sync marker'
  )

  local -a listing
  listing=(
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '--padding[spaces between columns]:padding'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'catsync commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    backups)
      _arguments -C \
        '--exact[show creation times]' \
        '--older-than[prune age in hours]:hours' \
        '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)' \
        '--prune[delete old backups]' \
        '(-t --titles)'{-t,--titles}'[show titles]'
      ;;
    check|sync)
      _arguments -C '--store[catalog store]:store'
      ;;
    config)
      _arguments -C \
        '--auto-sync[sync on an interval]' \
        '--interval[sync interval in ms]:ms' \
        '--notify[notify on external changes]' \
        '--store[catalog store]:store'
      ;;
    diff)
      _arguments -C \
        $listing \
        '--collection[collection]:collection:(products categories)' \
        '--detail[show field changes]' \
        '(-p --passphrase)'{-p,--passphrase}'[passphrase for sealed backups]:passphrase' \
        '--pick[pick sources interactively]' \
        '--store[catalog store]:store' \
        '*:source:_files'
      ;;
    export)
      _arguments -C \
        '--archive[keep a copy in the archive]' \
        '--format[format]:format:(json csv)' \
        '--out[destination]:out:_files' \
        '(-p --passphrase)'{-p,--passphrase}'[passphrase for sealed backups]:passphrase' \
        '--seal[encrypt the export]' \
        '--store[catalog store]:store'
      ;;
    list)
      _arguments -C \
        $listing \
        '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs' \
        '(-f --filter)'{-f,--filter}'[filters to apply]:filters' \
        '(-l --local)'{-l,--local}'[local timestamps]' \
        '--schema[list attrs]' \
        '--store[catalog store]:store' \
        '1:collection:(products categories)'
      ;;
    restore)
      _arguments -C \
        '--latest[restore the newest archived backup]' \
        '(-p --passphrase)'{-p,--passphrase}'[passphrase for sealed backups]:passphrase' \
        '--store[catalog store]:store' \
        '1:source:_files'
      ;;
    run)
      _arguments -C \
        '--interval[sync interval in ms]:ms' \
        '--on-change[command to run on change]:command' \
        '--reload-delay[delay before the change command]:duration' \
        '--store[catalog store]:store' \
        '--sync-now[sync once at start]'
      ;;
    status)
      _arguments -C \
        '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)' \
        '--store[catalog store]:store' \
        '(-t --titles)'{-t,--titles}'[show titles]'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _catsync catsync
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := cmd.Args().First()
	if shell == "" {
		// Fall back to the login shell.
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	switch shell {
	case "bash":
		fmt.Fprint(stdout(cmd), bashCompletionScript)
	case "zsh":
		fmt.Fprint(stdout(cmd), zshCompletionScript)
	default:
		return fmt.Errorf("usage: catsync completion [bash|zsh]")
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "catsync completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
