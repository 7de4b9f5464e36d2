// Package corpus builds the Reference Corpus from a documentation tree and
// caches it on disk.
package corpus

import (
	"context"
	"io/fs"
	"path"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/seitarof/gen-uwp-dts/internal/logging"
	"github.com/seitarof/gen-uwp-dts/internal/notation"
	"github.com/seitarof/gen-uwp-dts/internal/parser"
)

// DocumentExtensions are the file extensions read as documentation pages.
var DocumentExtensions = []string{".htm", ".html"}

// Skip records a document that produced no notation.
type Skip struct {
	Path   string
	Title  string
	Reason parser.SkipReason
}

// Report is the outcome of one build.
type Report struct {
	Corpus    *notation.Corpus
	Documents int
	Skipped   []Skip
	// Extensions counts interfaces that gained numbered siblings.
	Extensions int
}

// Builder parses every document of a documentation tree.
type Builder interface {
	Build(ctx context.Context, docs fs.FS) (*Report, error)
}

// Options tune a Builder.
type Options struct {
	// Workers bounds concurrent parses; the CPU count when zero.
	Workers int
	// Strict turns unrecognized page titles into build errors.
	Strict bool
}

type builderImpl struct {
	parser parser.Parser
	opts   Options
}

// NewBuilder returns a Builder that parses with p.
func NewBuilder(p parser.Parser, opts Options) Builder {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &builderImpl{parser: p, opts: opts}
}

// Build parses documents concurrently and merges their entries in lexical
// path order, so the corpus equals that of a sequential run. Any hard parse
// error cancels the remaining work and is returned with the document path.
func (b *builderImpl) Build(ctx context.Context, docs fs.FS) (*Report, error) {
	paths, err := FindDocuments(docs)
	if err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx)
	logger.InfoContext(ctx, "parsing documents", "count", humanize.Comma(int64(len(paths))), "workers", b.opts.Workers)

	results := make([]*parser.Result, len(paths))
	var done, skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dctx := logging.With(gctx, "document", p)
			result, err := b.parseFile(dctx, docs, p)
			if err != nil {
				return errors.Errorf("parse %s: %w", p, err)
			}
			results[i] = result

			n := done.Add(1)
			s := skipped.Load()
			if result.Skipped() {
				s = skipped.Add(1)
				logger.DebugContext(dctx, "skipped document", "title", result.Title, "reason", string(result.Skip))
			}
			logger.DebugContext(dctx, "parsed document",
				"progress", humanize.FtoaWithDigits(float64(n)/float64(len(paths))*100, 4)+" %",
				"skipped", humanize.Comma(s),
				"total", humanize.Comma(int64(len(paths))),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Corpus: notation.NewCorpus(), Documents: len(paths)}
	for i, result := range results {
		if result.Skipped() {
			report.Skipped = append(report.Skipped, Skip{Path: paths[i], Title: result.Title, Reason: result.Skip})
			continue
		}
		for _, entry := range result.Entries {
			report.Corpus.Add(entry.ID, entry.Notation)
		}
	}
	report.Extensions = LinkExtensions(report.Corpus)

	logger.InfoContext(ctx, "built reference corpus",
		"documents", humanize.Comma(int64(report.Documents)),
		"skipped", humanize.Comma(int64(len(report.Skipped))),
		"entries", humanize.Comma(int64(report.Corpus.Len())),
		"extended", report.Extensions,
	)
	return report, nil
}

func (b *builderImpl) parseFile(ctx context.Context, docs fs.FS, p string) (*parser.Result, error) {
	f, err := docs.Open(p)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	result, err := b.parser.Parse(f)
	if errors.Is(err, parser.ErrUnrecognizedTitle) && !b.opts.Strict && result != nil {
		logging.FromContext(ctx).WarnContext(ctx, "unrecognized document title", "title", result.Title)
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FindDocuments lists every documentation page under docs in lexical order.
func FindDocuments(docs fs.FS) ([]string, error) {
	var paths []string
	err := fs.WalkDir(docs, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isDocument(p) {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walk documentation root: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func isDocument(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, want := range DocumentExtensions {
		if ext == want {
			return true
		}
	}
	return false
}
