package store

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed migrations/objects/*.sql
var objectsMigrationsFS embed.FS

//go:embed migrations/progress/*.sql
var progressMigrationsFS embed.FS

// Kind selects which embedded migration bundle a Store is bound to. The
// two logical databases must never be mixed: an objects-DB Store only
// ever applies the objects bundle, a progress-DB Store only the progress
// bundle.
type Kind string

const (
	// KindObjects is the objects database: `objects` and
	// `expiration_unlock_conditions`.
	KindObjects Kind = "objects"
	// KindProgress is the progress database: `last_checkpoint_sync`.
	KindProgress Kind = "progress"
)

type migration struct {
	version int
	up      string
	down    string
}

func migrationsFor(which Kind) ([]migration, error) {
	var (
		fsys embed.FS
		dir  string
	)
	switch which {
	case KindObjects:
		fsys, dir = objectsMigrationsFS, "migrations/objects"
	case KindProgress:
		fsys, dir = progressMigrationsFS, "migrations/progress"
	default:
		return nil, fmt.Errorf("unknown migration set %q", which)
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir %s: %w", dir, err)
	}

	byVersion := map[int]*migration{}
	for _, entry := range entries {
		name := entry.Name()
		var version int
		var direction string
		if _, err := fmt.Sscanf(name, "%04d_", &version); err != nil {
			continue
		}
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			direction = "up"
		case strings.HasSuffix(name, ".down.sql"):
			direction = "down"
		default:
			continue
		}

		contents, err := fsys.ReadFile(path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &migration{version: version}
			byVersion[version] = m
		}
		if direction == "up" {
			m.up = string(contents)
		} else {
			m.down = string(contents)
		}
	}

	out := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}
