package cli

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
)

const iterationFixture = `{
  "__type": "structure",
  "__fullname": "Windows",
  "Foundation": {
    "__type": "structure",
    "__fullname": "Windows.Foundation",
    "Widget": {"__type": "class", "__fullname": "Windows.Foundation.Widget", "__extends": "Object"}
  }
}`

func writeFile(t testing.TB, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// testConfig lays out a workspace with supplies, an iteration tree and an
// empty documentation root.
func testConfig(t testing.TB) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &Config{
		IterationPath:  filepath.Join(dir, "iteration.json"),
		Output:         filepath.Join(dir, "out", "uwp.d.ts"),
		DocsRoot:       filepath.Join(dir, "referencedocs"),
		CachePath:      filepath.Join(dir, "cache", "corpus.json"),
		ShortNamesPath: filepath.Join(dir, "supplies", "shortnames.json"),
		ArityPath:      filepath.Join(dir, "supplies", "generics.json"),
		Language:       "JavaScript",
		Workers:        2,
	}
	writeFile(t, cfg.IterationPath, iterationFixture)
	writeFile(t, cfg.ShortNamesPath, "{}\n")
	writeFile(t, cfg.ArityPath, `{"Windows.Foundation.TypedEventHandler": 2}`)
	require.NoError(t, os.MkdirAll(cfg.DocsRoot, 0o755))
	return cfg
}

func widgetCorpus() *notation.Corpus {
	c := notation.NewCorpus()
	c.Add("Windows.Foundation.Widget", &notation.Class{Info: notation.Info{CamelID: "Windows.Foundation.Widget", Description: "A widget."}})
	return c
}

func TestRunner_Run_BuildsAndCachesCorpusOnMiss(t *testing.T) {
	cfg := testConfig(t)
	b := &mockBuilder{corpus: widgetCorpus()}
	m := &mockMapper{root: &decl.Namespace{Name: "Windows", FullName: "Windows"}}
	gen := &mockGenerator{}

	err := NewRunner(b, m.factory, gen.factory).Run(logging.Discard(context.Background()), cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, b.callCount)
	assert.Equal(t, 1, m.callCount)
	assert.Same(t, b.corpus, m.corpus)
	assert.Equal(t, "Windows", m.root.Name)
	assert.Equal(t, "Windows.Foundation.Widget", m.lastRoot.Children[0].Children[0].FullName)

	assert.Equal(t, 1, gen.callCount)
	assert.Same(t, m.root, gen.root)
	assert.Equal(t, cfg.Output, gen.cfg.OutputFilename())
	assert.Equal(t, "Windows.Foundation.TypedEventHandler<any, any>", gen.resolver.Type("Windows.Foundation.TypedEventHandler"))

	cached, err := corpus.Cache{Path: cfg.CachePath}.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Len())
}

func TestRunner_Run_UsesCacheUnlessForced(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, corpus.Cache{Path: cfg.CachePath}.Save(widgetCorpus()))
	b := &mockBuilder{corpus: notation.NewCorpus()}
	m := &mockMapper{root: &decl.Namespace{Name: "Windows", FullName: "Windows"}}
	gen := &mockGenerator{}
	runner := NewRunner(b, m.factory, gen.factory)
	ctx := logging.Discard(context.Background())

	require.NoError(t, runner.Run(ctx, cfg))
	assert.Equal(t, 0, b.callCount)
	_, ok := m.corpus.Get("windows.foundation.widget")
	assert.True(t, ok)

	cfg.ForceReparse = true
	require.NoError(t, runner.Run(ctx, cfg))
	assert.Equal(t, 1, b.callCount)
	assert.Same(t, b.corpus, m.corpus)

	cached, err := corpus.Cache{Path: cfg.CachePath}.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cached.Len())
}

func TestRunner_Run_BuildFailureLeavesNoCache(t *testing.T) {
	cfg := testConfig(t)
	b := &mockBuilder{err: errors.New("parse a.htm: unexpected document structure")}
	m := &mockMapper{}
	gen := &mockGenerator{}

	err := NewRunner(b, m.factory, gen.factory).Run(logging.Discard(context.Background()), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.htm")

	_, statErr := os.Stat(cfg.CachePath)
	assert.True(t, errors.Is(statErr, fs.ErrNotExist))
	assert.Equal(t, 0, m.callCount)
	assert.Equal(t, 0, gen.callCount)
}

func TestRunner_Run_WritesDebugDump(t *testing.T) {
	cfg := testConfig(t)
	cfg.DebugDump = filepath.Join(filepath.Dir(cfg.CachePath), "merged.json")
	m := &mockMapper{root: &decl.Namespace{Name: "Windows", FullName: "Windows", Members: decl.List{
		&decl.Class{Name: "Widget", FullName: "Windows.Foundation.Widget"},
	}}}

	err := NewRunner(&mockBuilder{corpus: widgetCorpus()}, m.factory, (&mockGenerator{}).factory).
		Run(logging.Discard(context.Background()), cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.DebugDump)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind": "namespace"`)
	assert.Contains(t, string(data), `"kind": "class"`)
}

func TestRunner_Run_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
		m      *mockMapper
		gen    *mockGenerator
		want   string
	}{
		{
			name:   "missing short names",
			mutate: func(cfg *Config) { cfg.ShortNamesPath += ".missing" },
			want:   "load short names",
		},
		{
			name:   "missing arity table",
			mutate: func(cfg *Config) { cfg.ArityPath += ".missing" },
			want:   "load generic arity",
		},
		{
			name:   "missing iteration tree",
			mutate: func(cfg *Config) { cfg.IterationPath += ".missing" },
			want:   "load iteration tree",
		},
		{
			name: "mapper failure",
			m:    &mockMapper{err: errors.New("not a namespace")},
			want: "map iteration tree",
		},
		{
			name: "generator failure",
			gen:  &mockGenerator{err: errors.New("disk full")},
			want: "disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			m := tt.m
			if m == nil {
				m = &mockMapper{root: &decl.Namespace{Name: "Windows", FullName: "Windows"}}
			}
			gen := tt.gen
			if gen == nil {
				gen = &mockGenerator{}
			}

			err := NewRunner(&mockBuilder{corpus: widgetCorpus()}, m.factory, gen.factory).
				Run(logging.Discard(context.Background()), cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

type mockBuilder struct {
	callCount int
	corpus    *notation.Corpus
	err       error
}

func (m *mockBuilder) Build(_ context.Context, _ fs.FS) (*corpus.Report, error) {
	m.callCount++
	if m.err != nil {
		return nil, m.err
	}
	return &corpus.Report{Corpus: m.corpus}, nil
}

type mockMapper struct {
	callCount int
	corpus    *notation.Corpus
	names     matcher.NameMatcher
	lastRoot  *iteration.Node
	root      *decl.Namespace
	err       error
}

func (m *mockMapper) factory(c *notation.Corpus, names matcher.NameMatcher) mapper.Mapper {
	m.corpus = c
	m.names = names
	return m
}

func (m *mockMapper) Map(_ context.Context, root *iteration.Node) (*decl.Namespace, error) {
	m.callCount++
	m.lastRoot = root
	return m.root, m.err
}

type mockGenerator struct {
	callCount int
	resolver  resolver.Resolver
	cfg       generator.Config
	root      *decl.Namespace
	err       error
}

func (m *mockGenerator) factory(r resolver.Resolver) generator.Generator {
	m.resolver = r
	return m
}

func (m *mockGenerator) Generate(cfg generator.Config, root *decl.Namespace) error {
	m.callCount++
	m.cfg = cfg
	m.root = root
	return m.err
}
