// Package history manages the on-disk migration workspace: the declared
// model files and the ordered migration plan files.
package history

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/schemaplan/schemaplan/migrate"
)

// Store reads and writes migration workspace files through an afero
// filesystem, which keeps the whole package testable in memory.
type Store struct {
	fs            afero.Fs
	modelsDir     string
	migrationsDir string
}

// NewStore creates a store over the given filesystem and directories.
func NewStore(fs afero.Fs, modelsDir, migrationsDir string) *Store {
	return &Store{fs: fs, modelsDir: modelsDir, migrationsDir: migrationsDir}
}

// ModelsDir returns the directory holding model files.
func (s *Store) ModelsDir() string {
	return s.modelsDir
}

// MigrationsDir returns the directory holding migration plan files.
func (s *Store) MigrationsDir() string {
	return s.migrationsDir
}

// EnsureLayout creates the workspace directories if they are missing.
func (s *Store) EnsureLayout() error {
	for _, dir := range []string{s.modelsDir, s.migrationsDir} {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// planFile pairs a migration file name with its parsed version prefix.
type planFile struct {
	name    string
	version uint32
}

// PlanFiles lists migration file names sorted by version prefix.
func (s *Store) PlanFiles() ([]string, error) {
	files, err := s.planFiles()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}
	return names, nil
}

func (s *Store) planFiles() ([]planFile, error) {
	entries, err := afero.ReadDir(s.fs, s.migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory %s: %w", s.migrationsDir, err)
	}
	var files []planFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		version, ok := parseVersionPrefix(entry.Name())
		if !ok {
			continue
		}
		files = append(files, planFile{name: entry.Name(), version: version})
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].version < files[j].version
	})
	return files, nil
}

// LoadPlans reads every migration plan in version order.
func (s *Store) LoadPlans() ([]migrate.Plan, error) {
	files, err := s.planFiles()
	if err != nil {
		return nil, err
	}
	plans := make([]migrate.Plan, 0, len(files))
	for _, f := range files {
		data, err := afero.ReadFile(s.fs, filepath.Join(s.migrationsDir, f.name))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", f.name, err)
		}
		var plan migrate.Plan
		if err := json.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("failed to parse migration %s: %w", f.name, err)
		}
		if plan.Version == 0 {
			plan.Version = f.version
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// SavePlan writes a plan as a new migration file and returns the file
// name. The name combines the version and a sanitized comment.
func (s *Store) SavePlan(plan migrate.Plan) (string, error) {
	if err := s.EnsureLayout(); err != nil {
		return "", err
	}
	name := PlanFileName(plan)
	path := filepath.Join(s.migrationsDir, name)
	if exists, _ := afero.Exists(s.fs, path); exists {
		return "", fmt.Errorf("migration file already exists: %s", name)
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode migration: %w", err)
	}
	if err := afero.WriteFile(s.fs, path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write migration %s: %w", name, err)
	}
	return name, nil
}

// PlanFileName derives the file name for a plan.
func PlanFileName(plan migrate.Plan) string {
	slug := "migration"
	if plan.Comment != nil {
		if s := sanitizeComment(*plan.Comment); s != "" {
			slug = s
		}
	}
	return fmt.Sprintf("%04d_%s.json", plan.Version, slug)
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeComment lowercases a comment and collapses every run of
// non-alphanumeric characters into a single underscore.
func sanitizeComment(comment string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(comment), "_")
	return strings.Trim(slug, "_")
}

// parseVersionPrefix extracts the numeric version prefix from a
// migration file name.
func parseVersionPrefix(name string) (uint32, bool) {
	i := 0
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	v, err := strconv.ParseUint(name[:i], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}
