// Package toolserver manages the lifecycle of an MCP tool server child
// process: preflight validation, command construction, stdio transport
// and the protocol session on top of it.
package toolserver

import (
	"errors"
	"fmt"
	"os"

	"github.com/firescout/firescout/internal/config"
)

// ErrPreflight wraps all startup validation failures.
var ErrPreflight = errors.New("preflight failed")

// Spec describes how to spawn a tool server without spawning it yet:
// resolved executable path, fixed argument list and the environment
// overrides passed to the child only.
type Spec struct {
	Path string
	Args []string
	Env  map[string]string
}

// FirecrawlSpec preflight-validates configuration and the npm launcher,
// then builds the command spec for the hosted Firecrawl MCP server.
// All problems are aggregated into one error so operators see every
// missing piece in a single message. The -y flag auto-confirms npm
// prompts; npx would otherwise hang in non-interactive shells.
func FirecrawlSpec(cfg *config.Config) (Spec, error) {
	var problems []error

	if cfg.FirecrawlAPIKey == "" {
		_, err := config.RequireEnv(config.EnvFirecrawlKey...)
		problems = append(problems, err)
	}
	if cfg.KimiBase == "" {
		_, err := config.RequireEnv(config.EnvKimiBase...)
		problems = append(problems, err)
	}
	if cfg.KimiToken == "" {
		_, err := config.RequireEnv(config.EnvKimiToken...)
		problems = append(problems, err)
	}

	launcher := Locate(LauncherCandidates()...)
	if launcher == "" {
		problems = append(problems, errors.New("npx not found on PATH (install Node.js LTS)"))
	}

	if len(problems) > 0 {
		return Spec{}, fmt.Errorf("%w: %w", ErrPreflight, errors.Join(problems...))
	}

	return Spec{
		Path: launcher,
		Args: []string{"-y", "firecrawl-mcp"},
		Env:  map[string]string{"FIRECRAWL_API_KEY": cfg.FirecrawlAPIKey},
	}, nil
}

// BuiltinSpec builds the command spec for the built-in web tool server:
// this binary re-executed with the webtools subcommand.
func BuiltinSpec() (Spec, error) {
	self, err := os.Executable()
	if err != nil {
		return Spec{}, fmt.Errorf("%w: resolving own executable: %w", ErrPreflight, err)
	}
	return Spec{
		Path: self,
		Args: []string{"webtools"},
	}, nil
}
