package cli

import (
	"runtime"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"gitlab.com/tozd/go/errors"
)

// ErrUsage marks errors caused by the command line itself.
var ErrUsage = errors.New("usage")

// ParseArgs parses command line arguments into Config.
func ParseArgs(args []string) (*Config, error) {
	cfg := &Config{}

	fs := pflag.NewFlagSet("gen-uwp-dts", pflag.ContinueOnError)
	fs.StringVarP(&cfg.IterationPath, "iteration", "i", "", "iteration tree JSON produced by the runtime walker")
	fs.StringVarP(&cfg.Output, "output", "o", "", "declaration file to write")
	fs.StringVar(&cfg.DocsRoot, "docs", "referencedocs", "documentation root, a directory or an archive")
	fs.StringVar(&cfg.CachePath, "cache", "cache/corpus.json", "reference corpus cache")
	fs.BoolVarP(&cfg.ForceReparse, "force-reparse", "f", false, "parse the documentation even when a cache exists")
	fs.StringVar(&cfg.DebugDump, "debug-dump", "", "write the merged declaration tree as JSON")
	fs.StringVar(&cfg.ShortNamesPath, "short-names", "supplies/shortnames.json", "short name override table")
	fs.StringVar(&cfg.ArityPath, "generic-arity", "supplies/generics.json", "generic arity table")
	fs.StringVar(&cfg.Language, "language", "JavaScript", "preferred language tag of documented types")
	fs.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "concurrent document parses")
	fs.BoolVar(&cfg.Strict, "strict", false, "fail on unrecognized page titles")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log debug messages")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "disable colored log output")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "show version")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, errors.WithStack(err)
		}
		return nil, errors.Errorf("%w: %s", ErrUsage, err.Error())
	}
	if cfg.ShowVersion {
		return cfg, nil
	}

	var missing *multierror.Error
	if strings.TrimSpace(cfg.IterationPath) == "" {
		missing = multierror.Append(missing, errors.New("--iteration is required"))
	}
	if strings.TrimSpace(cfg.Output) == "" {
		missing = multierror.Append(missing, errors.New("--output is required"))
	}
	if strings.TrimSpace(cfg.Language) == "" {
		missing = multierror.Append(missing, errors.New("--language must not be empty"))
	}
	if cfg.Workers < 1 {
		missing = multierror.Append(missing, errors.Errorf("--workers must be positive, got %d", cfg.Workers))
	}
	if err := missing.ErrorOrNil(); err != nil {
		return nil, errors.Errorf("%w: %s", ErrUsage, err.Error())
	}
	return cfg, nil
}
