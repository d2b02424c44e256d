package results

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/weiihann/aeadbench/sweep"
)

// Diagnostic records a file skipped during collection.
type Diagnostic struct {
	Path string
	Err  error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %v", d.Path, d.Err)
}

// Collection is the parsed content of one backend result directory.
type Collection struct {
	Backend sweep.Backend
	Dir     string
	Series  map[Key]Series
	// Paths maps each key to the file it was loaded from.
	Paths       map[Key]string
	Diagnostics []Diagnostic
}

// Algorithms returns the sorted distinct algorithm names in the collection.
func (c *Collection) Algorithms() []string {
	seen := make(map[string]struct{})
	var out []string

	for k := range c.Series {
		if _, ok := seen[k.Algorithm]; ok {
			continue
		}
		seen[k.Algorithm] = struct{}{}
		out = append(out, k.Algorithm)
	}

	slices.Sort(out)

	return out
}

// Collector scans result directories.
type Collector struct {
	Logger *slog.Logger
}

// NewCollector creates a Collector.
func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{Logger: logger.With(slog.String("component", "collector"))}
}

// Collect loads every well-formed result file in dir for the backend.
//
// For the hardware backend only _kernel files are accepted; host-side
// transfer timings share the directory but measure something else. For the
// software backend _kernel files are ignored. Files that fail to parse are
// skipped and recorded as diagnostics. A missing directory yields an empty
// collection.
func (c *Collector) Collect(dir string, backend sweep.Backend) (*Collection, error) {
	col := &Collection{
		Backend: backend,
		Dir:     dir,
		Series:  make(map[Key]Series),
		Paths:   make(map[Key]string),
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		c.Logger.Warn("result directory missing",
			slog.String("dir", dir),
			slog.String("backend", backend.String()),
		)

		return col, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read result dir %s: %w", dir, err)
	}

	// ReadDir sorts by name, so duplicate keys resolve deterministically.
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name())

		key, err := ParseFilename(entry.Name())
		if err != nil {
			c.skip(col, path, err)

			continue
		}

		if key.Kernel != (backend == sweep.Hardware) {
			c.Logger.Debug("ignoring result file for other measurement",
				slog.String("path", path),
				slog.Bool("kernel", key.Kernel),
			)

			continue
		}

		series, err := readSeriesFile(path)
		if err != nil {
			c.skip(col, path, err)

			continue
		}

		if len(series) == 0 {
			c.skip(col, path, errors.New("no samples"))

			continue
		}

		if prev, ok := col.Paths[key]; ok {
			c.Logger.Warn("duplicate result key, last file wins",
				slog.String("previous", prev),
				slog.String("path", path),
			)
		}

		col.Series[key] = series
		col.Paths[key] = path
	}

	c.Logger.Debug("collected results",
		slog.String("dir", dir),
		slog.Int("files", len(col.Series)),
		slog.Int("skipped", len(col.Diagnostics)),
	)

	return col, nil
}

func (c *Collector) skip(col *Collection, path string, err error) {
	col.Diagnostics = append(col.Diagnostics, Diagnostic{Path: path, Err: err})

	c.Logger.Warn("skipping result file",
		slog.String("path", path),
		slog.String("error", err.Error()),
	)
}

func readSeriesFile(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	return ReadSeries(f)
}
