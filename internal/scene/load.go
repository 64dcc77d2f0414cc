package scene

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"strings"
)

// Load reads the MTL materials then the OBJ geometry and colours the
// meshes. Either path may be a local file or an http(s) URL. An empty
// mtlPath loads the geometry without materials.
func Load(ctx context.Context, mtlPath, objPath string) LoadResult {
	var mats map[string]Material
	if mtlPath != "" {
		rc, err := open(ctx, mtlPath)
		if err != nil {
			log.Printf("scene: an error happened loading %s: %v", mtlPath, err)
			return LoadResult{Err: err}
		}
		mats, err = ParseMTL(rc)
		rc.Close()
		if err != nil {
			log.Printf("scene: an error happened loading %s: %v", mtlPath, err)
			return LoadResult{Err: fmt.Errorf("%s: %w", mtlPath, err)}
		}
	}

	rc, err := open(ctx, objPath)
	if err != nil {
		log.Printf("scene: an error happened loading %s: %v", objPath, err)
		return LoadResult{Err: err}
	}
	defer rc.Close()

	m, err := ParseOBJ(rc, mats)
	if err != nil {
		log.Printf("scene: an error happened loading %s: %v", objPath, err)
		return LoadResult{Err: fmt.Errorf("%s: %w", objPath, err)}
	}
	m.Colorize()
	log.Printf("scene: model loaded (%d meshes, %d vertices, %d faces)", len(m.Meshes), m.Vertices, m.Faces)
	return LoadResult{Model: m}
}

// LoadAsync runs Load in its own goroutine. The channel yields exactly one
// result and is then closed.
func LoadAsync(ctx context.Context, mtlPath, objPath string) <-chan LoadResult {
	out := make(chan LoadResult, 1)
	go func() {
		defer close(out)
		out <- Load(ctx, mtlPath, objPath)
	}()
	return out
}

func isURL(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// open returns a reader that logs load progress as it is consumed.
func open(ctx context.Context, p string) (io.ReadCloser, error) {
	if isURL(p) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p, nil)
		if err != nil {
			return nil, fmt.Errorf("scene: request %s: %w", p, err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("scene: fetch %s: %w", p, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("scene: fetch %s: %s", p, resp.Status)
		}
		return newProgressReader(resp.Body, path.Base(p), resp.ContentLength), nil
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	var size int64 = -1
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}
	return newProgressReader(f, path.Base(p), size), nil
}

type progressReader struct {
	rc      io.ReadCloser
	name    string
	total   int64
	read    int64
	lastPct int
}

func newProgressReader(rc io.ReadCloser, name string, total int64) *progressReader {
	return &progressReader{rc: rc, name: name, total: total, lastPct: -1}
}

// Read logs every 25% step when the total size is known.
func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.rc.Read(b)
	p.read += int64(n)
	if p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if step := pct / 25 * 25; step > p.lastPct {
			p.lastPct = step
			log.Printf("scene: %s %d%% loaded", p.name, step)
		}
	}
	return n, err
}

func (p *progressReader) Close() error {
	return p.rc.Close()
}
