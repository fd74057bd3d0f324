package settings

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// globalRegistry is the process-wide table of Store instances keyed by id,
// mirroring the player and playlist registries (spec §3: "Registered
// globally by id for request dispatch").
var (
	registryMu sync.Mutex
	registry   = map[string]*Store{}
)

// Lookup returns a previously-constructed Store by id, or nil.
func Lookup(id string) *Store {
	registryMu.Lock()
	defer registryMu.Unlock()
	return registry[id]
}

// Store is a named collection of Groups, persisted to a single INI file.
// Registration (AddGroup / Add<Type>) is construction-time only — once Load
// has been called, the set of entries is fixed for the process lifetime
// (spec §1: "not hot-reloadable").
type Store struct {
	mu         sync.Mutex
	id         string
	entriesDir string
	groups     []*Group
}

// New creates a Store registered under id, with its file at
// {configDir}/melo/{id}. configDir is typically the user config directory;
// the melo subdirectory is created (mode 0700) on first Load/Save.
func New(id, configDir string) *Store {
	s := &Store{
		id:         id,
		entriesDir: filepath.Join(configDir, "melo"),
	}
	registryMu.Lock()
	registry[id] = s
	registryMu.Unlock()
	return s
}

// ID returns the store's registered id.
func (s *Store) ID() string { return s.id }

// path returns the full settings file path.
func (s *Store) path() string {
	return filepath.Join(s.entriesDir, s.id)
}

// AddGroup registers a new settings group. Must be called before Load.
func (s *Store) AddGroup(id, name, description string, validator Validator) *Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := &Group{ID: id, Name: name, Description: description, Validator: validator}
	s.groups = append(s.groups, g)
	return g
}

// Group looks up a registered group by id.
func (s *Store) Group(id string) *Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// Groups returns all registered groups in declaration order.
func (s *Store) Groups() []*Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Group, len(s.groups))
	copy(out, s.groups)
	return out
}

// AddBool registers a bool entry in g.
func (s *Store) AddBool(g *Group, id, name, desc string, def bool, dep *Entry, flags Flags) *Entry {
	return s.addEntry(g, id, name, desc, TypeBool, boolValue(def), dep, flags)
}

// AddI32 registers an int32 entry in g.
func (s *Store) AddI32(g *Group, id, name, desc string, def int32, dep *Entry, flags Flags) *Entry {
	return s.addEntry(g, id, name, desc, TypeI32, i32Value(def), dep, flags)
}

// AddU32 registers a uint32 entry in g.
func (s *Store) AddU32(g *Group, id, name, desc string, def uint32, dep *Entry, flags Flags) *Entry {
	return s.addEntry(g, id, name, desc, TypeU32, u32Value(def), dep, flags)
}

// AddI64 registers an int64 entry in g.
func (s *Store) AddI64(g *Group, id, name, desc string, def int64, dep *Entry, flags Flags) *Entry {
	return s.addEntry(g, id, name, desc, TypeI64, i64Value(def), dep, flags)
}

// AddU64 registers a uint64 entry in g.
func (s *Store) AddU64(g *Group, id, name, desc string, def uint64, dep *Entry, flags Flags) *Entry {
	return s.addEntry(g, id, name, desc, TypeU64, u64Value(def), dep, flags)
}

// AddF32 registers a float32 entry in g.
func (s *Store) AddF32(g *Group, id, name, desc string, def float32, dep *Entry, flags Flags) *Entry {
	return s.addEntry(g, id, name, desc, TypeF32, f32Value(def), dep, flags)
}

// AddF64 registers a float64 entry in g.
func (s *Store) AddF64(g *Group, id, name, desc string, def float64, dep *Entry, flags Flags) *Entry {
	return s.addEntry(g, id, name, desc, TypeF64, f64Value(def), dep, flags)
}

// AddString registers a string entry in g.
func (s *Store) AddString(g *Group, id, name, desc string, def string, dep *Entry, flags Flags) *Entry {
	return s.addEntry(g, id, name, desc, TypeString, stringValue(def), dep, flags)
}

func (s *Store) addEntry(g *Group, id, name, desc string, t Type, def Value, dep *Entry, flags Flags) *Entry {
	e := &Entry{
		ID:          id,
		DisplayName: name,
		Description: desc,
		Type:        t,
		current:     def,
		pending:     def,
		Default:     def,
		DependsOn:   dep,
		Flags:       flags,
	}
	return g.add(e)
}

// Load reads the store's file, applying known values onto the registered
// groups/entries and falling back to defaults for anything missing, unknown,
// or unparsable (spec §4.3). After loading, the file is rewritten to
// canonicalize it.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return s.saveLocked()
		}
		return fmt.Errorf("settings: read %s: %w", s.path(), err)
	}

	doc, err := decodeINI(data)
	if err != nil {
		slog.Warn("settings: corrupt file, entries fall back to defaults", "path", s.path(), "err", err)
		return s.saveLocked()
	}

	for _, g := range s.groups {
		section, ok := doc[g.ID]
		if !ok {
			continue // unknown/missing group: entries keep their defaults
		}
		for _, e := range g.entries {
			raw, ok := section[e.ID]
			if !ok {
				continue // unknown/missing entry: keeps its default
			}
			v, err := parseValue(e.Type, raw)
			if err != nil {
				slog.Warn("settings: invalid value, using default", "group", g.ID, "entry", e.ID, "raw", raw)
				continue
			}
			e.current = v
			e.pending = v
		}
	}

	return s.saveLocked()
}

// Save writes all groups and entries, in declaration order, to the store's
// file. Export filtering (NoExport/Password) applies only to wire output,
// never to the on-disk file (spec §4.3).
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	if err := os.MkdirAll(s.entriesDir, 0o700); err != nil {
		return fmt.Errorf("settings: mkdir %s: %w", s.entriesDir, err)
	}
	data := encodeINI(s.groups)

	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("settings: write %s: %w", tmp, err)
	}
	return os.Rename(tmp, s.path())
}
