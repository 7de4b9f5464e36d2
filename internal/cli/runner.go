package cli

import (
	"context"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"

	"github.com/seitarof/gen-uwp-dts/internal/corpus"
	"github.com/seitarof/gen-uwp-dts/internal/decl"
	"github.com/seitarof/gen-uwp-dts/internal/generator"
	"github.com/seitarof/gen-uwp-dts/internal/iteration"
	"github.com/seitarof/gen-uwp-dts/internal/logging"
	"github.com/seitarof/gen-uwp-dts/internal/mapper"
	"github.com/seitarof/gen-uwp-dts/internal/matcher"
	"github.com/seitarof/gen-uwp-dts/internal/notation"
	"github.com/seitarof/gen-uwp-dts/internal/resolver"
	"github.com/seitarof/gen-uwp-dts/internal/supplies"
)

// Runner orchestrates corpus/mapper/resolver/generator layers.
type Runner interface {
	Run(ctx context.Context, cfg *Config) error
}

// MapperFactory builds the mapper once the corpus is known.
type MapperFactory func(c *notation.Corpus, names matcher.NameMatcher) mapper.Mapper

// GeneratorFactory builds the generator once the arity table is known.
type GeneratorFactory func(r resolver.Resolver) generator.Generator

type runnerImpl struct {
	builder      corpus.Builder
	newMapper    MapperFactory
	newGenerator GeneratorFactory
}

// NewRunner creates a default runner implementation.
func NewRunner(b corpus.Builder, m MapperFactory, g GeneratorFactory) Runner {
	return &runnerImpl{
		builder:      b,
		newMapper:    m,
		newGenerator: g,
	}
}

// Run executes a single generation cycle.
func (r *runnerImpl) Run(ctx context.Context, cfg *Config) error {
	logger := logging.FromContext(ctx)

	names, err := supplies.LoadShortNames(cfg.ShortNamesPath)
	if err != nil {
		return errors.Errorf("load short names: %w", err)
	}
	arity, err := supplies.LoadArity(cfg.ArityPath)
	if err != nil {
		return errors.Errorf("load generic arity: %w", err)
	}

	root, err := iteration.LoadFile(cfg.IterationPath)
	if err != nil {
		return errors.Errorf("load iteration tree %s: %w", cfg.IterationPath, err)
	}
	members := 0
	root.Walk(func(*iteration.Node) { members++ })
	logger.DebugContext(ctx, "loaded iteration tree", "path", cfg.IterationPath, "members", members)

	c, err := r.corpus(ctx, cfg)
	if err != nil {
		return err
	}

	merged, err := r.newMapper(c, matcher.NewNameMatcher(c, names)).Map(ctx, root)
	if err != nil {
		return errors.Errorf("map iteration tree: %w", err)
	}

	if cfg.DebugDump != "" {
		if err := dump(cfg.DebugDump, merged); err != nil {
			return err
		}
		logger.DebugContext(ctx, "wrote merged tree", "path", cfg.DebugDump)
	}

	if err := r.newGenerator(resolver.NewDefault(resolver.Arity(arity))).Generate(cfg, merged); err != nil {
		return errors.Errorf("generate %s: %w", cfg.OutputFilename(), err)
	}
	logger.InfoContext(ctx, "wrote declarations", "path", cfg.OutputFilename())
	return nil
}

// corpus loads the cached corpus, or builds and caches it when the cache is
// missing or a reparse was forced.
func (r *runnerImpl) corpus(ctx context.Context, cfg *Config) (*notation.Corpus, error) {
	logger := logging.FromContext(ctx)
	cache := corpus.Cache{Path: cfg.CachePath}

	if !cfg.ForceReparse {
		c, err := cache.Load()
		if err == nil {
			logger.InfoContext(ctx, "loaded reference corpus from cache", "path", cfg.CachePath, "entries", c.Len())
			return c, nil
		}
		if !errors.Is(err, corpus.ErrCacheMiss) {
			return nil, err
		}
	}

	docs, err := corpus.OpenRoot(ctx, cfg.DocsRoot)
	if err != nil {
		return nil, err
	}
	report, err := r.builder.Build(logging.With(ctx, "root", cfg.DocsRoot), docs)
	if err != nil {
		return nil, errors.Errorf("build reference corpus: %w", err)
	}
	if err := cache.Save(report.Corpus); err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "saved reference corpus", "path", cfg.CachePath)
	return report.Corpus, nil
}

func dump(path string, root *decl.Namespace) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WithStack(err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Errorf("create debug dump: %w", err)
	}
	if err := decl.Dump(f, root); err != nil {
		f.Close()
		return err
	}
	return errors.WithStack(f.Close())
}
