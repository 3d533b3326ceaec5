package driver

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"tensa/internal/diag"
	"tensa/internal/project"
	"tensa/internal/source"
)

// bump when DiskPayload changes shape
const diskCacheSchemaVersion uint16 = 2

const cacheEntryExt = ".mp"

// DiskCache stores finished StageGenerate runs keyed by file content and
// target profile. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is one cached run.
type DiskPayload struct {
	Schema      uint16
	ContentHash project.Digest
	TargetHash  project.Digest
	// Spans are stored without file IDs and rebound on restore.
	Diagnostics []CachedDiagnostic
	Output      []byte
}

type CachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Label    string
	Start    uint32
	End      uint32
	Notes    []CachedNote
}

type CachedNote struct {
	Start uint32
	End   uint32
	Msg   string
}

// OpenDiskCache opens app under the user cache directory.
func OpenDiskCache(app string) (*DiskCache, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt uses dir as the cache root.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(filepath.Join(dir, "runs"), 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) entryPath(key project.Digest) string {
	return filepath.Join(c.dir, "runs", key.String()+cacheEntryExt)
}

// cacheKey is empty when the run must not use the cache: timings are never
// cached and only complete runs are stored.
func (r *runner) cacheKey() (project.Digest, bool) {
	if r.opts.Cache == nil || r.opts.Stage != StageGenerate || r.opts.EnableTimings {
		return project.Digest{}, false
	}
	// лимит и warnings_as_errors меняют сохранённые диагностики
	opts := sha256.Sum256(fmt.Appendf(nil, "max=%d wae=%t", r.opts.MaxDiagnostics, r.opts.WarningsAsErrors))
	return project.Combine(project.Digest(r.res.File.Hash), project.TargetDigest(r.opts.Target), opts), true
}

// Put stores payload under key, replacing any previous entry atomically.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) error {
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.entryPath(key)
	tmp, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Get loads the entry for key. A missing entry is not an error.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	c.mu.RLock()
	data, err := os.ReadFile(c.entryPath(key))
	c.mu.RUnlock()
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	return true, nil
}

// DropAll removes every entry and returns how many there were.
func (c *DiskCache) DropAll() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	runs := filepath.Join(c.dir, "runs")
	entries, err := filepath.Glob(filepath.Join(runs, "*"+cacheEntryExt))
	if err != nil {
		return 0, err
	}
	if err := os.RemoveAll(runs); err != nil {
		return 0, err
	}
	return len(entries), os.MkdirAll(runs, 0o755)
}

func newDiskPayload(res *Result, target project.Digest) *DiskPayload {
	payload := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		ContentHash: project.Digest(res.File.Hash),
		TargetHash:  target,
		Output:      res.Output,
	}
	for _, d := range res.Bag.Items() {
		cd := CachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Label:    d.Label,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, CachedNote{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		payload.Diagnostics = append(payload.Diagnostics, cd)
	}
	return payload
}

// matches guards against stale entries written by another schema or for
// other content.
func (p *DiskPayload) matches(file *source.File, target project.Digest) bool {
	return p.Schema == diskCacheSchemaVersion &&
		p.ContentHash == project.Digest(file.Hash) &&
		p.TargetHash == target
}

// restore fills res from the payload, binding spans to res.File.
func (p *DiskPayload) restore(res *Result) {
	id := res.File.ID
	for _, cd := range p.Diagnostics {
		d := diag.Diagnostic{
			Severity: diag.Severity(cd.Severity),
			Code:     diag.Code(cd.Code),
			Message:  cd.Message,
			Label:    cd.Label,
			Primary:  source.Span{File: id, Start: cd.Start, End: cd.End},
		}
		for _, n := range cd.Notes {
			d.Notes = append(d.Notes, diag.Note{Span: source.Span{File: id, Start: n.Start, End: n.End}, Msg: n.Msg})
		}
		res.Bag.Add(d)
	}
	res.Output = p.Output
	res.Cached = true
}
