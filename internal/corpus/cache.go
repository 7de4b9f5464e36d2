package corpus

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"

	"github.com/seitarof/gen-uwp-dts/internal/notation"
)

// ErrCacheMiss is returned by Cache.Load when no cache file exists.
var ErrCacheMiss = errors.New("corpus cache not found")

// Cache persists a corpus as sorted, indented JSON.
type Cache struct {
	Path string
}

// Load reads the cached corpus.
func (c Cache) Load() (*notation.Corpus, error) {
	data, err := os.ReadFile(c.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Errorf("%w: %s", ErrCacheMiss, c.Path)
	}
	if err != nil {
		return nil, errors.Errorf("read corpus cache: %w", err)
	}
	corpus := notation.NewCorpus()
	if err := json.Unmarshal(data, corpus); err != nil {
		return nil, errors.Errorf("decode corpus cache %s: %w", c.Path, err)
	}
	return corpus, nil
}

// Save writes corpus through a temporary file in the same directory and
// renames it into place, so a failed write never leaves a partial cache.
func (c Cache) Save(corpus *notation.Corpus) error {
	data, err := Encode(corpus)
	if err != nil {
		return err
	}
	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Errorf("create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".corpus-*.json")
	if err != nil {
		return errors.Errorf("create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.Path); err != nil {
		return errors.Errorf("replace cache file: %w", err)
	}
	return nil
}

// Encode returns the byte-stable cache representation of corpus.
func Encode(corpus *notation.Corpus) ([]byte, error) {
	raw, err := corpus.MarshalJSON()
	if err != nil {
		return nil, errors.Errorf("encode corpus: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "\t"); err != nil {
		return nil, errors.Errorf("indent corpus: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
