package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"
	"gitlab.com/tozd/go/errors"

	"github.com/seitarof/gen-uwp-dts/internal/cli"
	"github.com/seitarof/gen-uwp-dts/internal/corpus"
	"github.com/seitarof/gen-uwp-dts/internal/generator"
	"github.com/seitarof/gen-uwp-dts/internal/logging"
	"github.com/seitarof/gen-uwp-dts/internal/mapper"
	"github.com/seitarof/gen-uwp-dts/internal/matcher"
	"github.com/seitarof/gen-uwp-dts/internal/notation"
	"github.com/seitarof/gen-uwp-dts/internal/parser"
	"github.com/seitarof/gen-uwp-dts/internal/resolver"
)

var version = "dev"

func main() {
	cfg, err := cli.ParseArgs(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.ShowVersion {
		fmt.Println(version)
		return
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	logger, ctx := logging.Setup(ctx, os.Stderr, logging.Options{Level: level, NoColor: cfg.NoColor})

	popts := parser.DefaultOptions()
	popts.Language = cfg.Language
	popts.LanguageCategory = "DevLang:" + strings.ToLower(cfg.Language)

	runner := cli.NewRunner(
		corpus.NewBuilder(parser.New(popts), corpus.Options{Workers: cfg.Workers, Strict: cfg.Strict}),
		func(c *notation.Corpus, names matcher.NameMatcher) mapper.Mapper {
			return mapper.New(c, names, mapper.Options{Language: cfg.Language})
		},
		func(r resolver.Resolver) generator.Generator {
			return generator.New(r, generator.NewCRLFFormatter(), generator.NewFileWriter())
		},
	)
	if err := runner.Run(logging.With(ctx, "version", version), cfg); err != nil {
		logger.ErrorContext(ctx, "generation failed", "error", err)
		stop()
		os.Exit(1)
	}
}
