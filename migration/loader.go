package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// filePattern matches migration files stored on disk:
//
//	0001_create_users.up.sql
//	0001_create_users.down.sql
var filePattern = regexp.MustCompile( //nolint:gochecknoglobals // compiled once, used by DirLoader
	`^(\d+)_(\w+)\.(up|down)\.sql$`,
)

// DirLoader discovers migration units stored as SQL files in a directory.
// Each matched up/down pair becomes one unit whose directions run the file
// contents verbatim; a unit without a .down.sql file has no down direction.
type DirLoader struct {
	dir string
}

// NewDirLoader returns a DirLoader scanning dir.
func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{dir: dir}
}

// Discover scans the directory for unit files. Files that do not match the
// naming pattern are ignored; a .down.sql without its .up.sql is an orphan
// and does not produce a unit.
func (l *DirLoader) Discover() ([]Unit, error) {
	grouped, err := l.scan()
	if err != nil {
		return nil, err
	}

	units := make([]Unit, 0, len(grouped))

	for name, f := range grouped {
		if f.upFile == "" {
			continue // orphan .down.sql
		}

		seq, _ := ParseName(name)
		units = append(units, Unit{Seq: seq, Name: name, Source: filepath.Join(l.dir, f.upFile)})
	}

	return Sort(units), nil
}

// Load reads the unit's SQL files and wraps their contents in direction
// functions that collect a single raw operation each.
func (l *DirLoader) Load(name string) (Handle, error) {
	grouped, err := l.scan()
	if err != nil {
		return Handle{}, err
	}

	f, ok := grouped[name]
	if !ok || f.upFile == "" {
		return Handle{}, fmt.Errorf("%s: %w", name, ErrUnitNotFound)
	}

	upSQL, err := l.read(f.upFile)
	if err != nil {
		return Handle{}, err
	}

	h := Handle{Up: rawFunc(upSQL)}

	if f.downFile != "" {
		downSQL, err := l.read(f.downFile)
		if err != nil {
			return Handle{}, err
		}

		h.Down = rawFunc(downSQL)
	}

	return h, nil
}

// rawFunc returns a direction func that collects sql as one raw operation.
func rawFunc(sql string) Func {
	return func(c *Collector) {
		c.Collect(c.Raw(sql))
	}
}

// unitFiles pairs a unit's up and down files.
type unitFiles struct {
	upFile   string // filename only (not full path)
	downFile string // filename only (not full path)
}

// scan groups matching directory entries by unit name.
func (l *DirLoader) scan() (map[string]*unitFiles, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrDiscovery, l.dir, err)
	}

	grouped := make(map[string]*unitFiles)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		m := filePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}

		name := m[1] + "_" + m[2]

		f, ok := grouped[name]
		if !ok {
			f = &unitFiles{}
			grouped[name] = f
		}

		if m[3] == "up" {
			f.upFile = entry.Name()
		} else {
			f.downFile = entry.Name()
		}
	}

	return grouped, nil
}

// read returns the trimmed contents of a migration file.
func (l *DirLoader) read(file string) (string, error) {
	path := filepath.Join(l.dir, file)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading migration file %s: %w", path, err)
	}

	return strings.TrimSpace(string(data)), nil
}

// MultiLoader presents several loaders as one source. Discovery rejects
// units that appear in more than one source; Load asks each source in
// order.
type MultiLoader struct {
	sources []Loader
}

// NewMultiLoader returns a MultiLoader over the given sources.
func NewMultiLoader(sources ...Loader) *MultiLoader {
	return &MultiLoader{sources: sources}
}

// Discover merges the units of every source, sorted by sequence.
func (l *MultiLoader) Discover() ([]Unit, error) {
	seen := make(map[string]string) // unit name → source
	var units []Unit

	for _, src := range l.sources {
		found, err := src.Discover()
		if err != nil {
			return nil, err
		}

		for _, u := range found {
			if prev, dup := seen[u.Name]; dup {
				return nil, fmt.Errorf("%w: unit %s found in both %s and %s",
					ErrDiscovery, u.Name, prev, u.Source)
			}

			seen[u.Name] = u.Source
			units = append(units, u)
		}
	}

	return Sort(units), nil
}

// Load resolves name against each source in order.
func (l *MultiLoader) Load(name string) (Handle, error) {
	for _, src := range l.sources {
		h, err := src.Load(name)
		if err == nil {
			return h, nil
		}

		if !errors.Is(err, ErrUnitNotFound) {
			return Handle{}, err
		}
	}

	return Handle{}, fmt.Errorf("%s: %w", name, ErrUnitNotFound)
}
