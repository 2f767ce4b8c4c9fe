package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-skybattle/internal/behavior"
	"github.com/vovakirdan/tui-skybattle/internal/level"
)

// AppDir is the per-user directory holding settings, levels and the database.
const AppDir = ".skybattle"

// DefaultShieldCharges is used when a level does not set shield_charges.
const DefaultShieldCharges = 1

// LoadCampaign loads the archetype table and every level, merges them and
// validates the result.
func LoadCampaign(levelsDir, archetypesPath string) ([]level.Definition, error) {
	shared, err := LoadArchetypes(archetypesPath)
	if err != nil {
		return nil, err
	}
	defs, err := LoadLevels(levelsDir)
	if err != nil {
		return nil, err
	}
	for i := range defs {
		defs[i] = MergeArchetypes(defs[i], shared)
	}
	if err := ValidateCampaign(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// LoadLevels loads level definitions sorted by file name.
// Search order: customDir -> ~/.skybattle/levels -> ./levels -> embedded default
func LoadLevels(customDir string) ([]level.Definition, error) {
	// Try custom directory first
	if customDir != "" {
		defs, err := loadLevelsFS(os.DirFS(customDir))
		if err != nil {
			return nil, fmt.Errorf("config: cannot load levels from %s: %w", customDir, err)
		}
		if len(defs) == 0 {
			return nil, fmt.Errorf("config: no levels found in %s", customDir)
		}
		return defs, nil
	}

	// Try user and local directories
	for _, dir := range []string{userPath("levels"), "levels"} {
		if dir == "" {
			continue
		}
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			continue
		}
		if defs, err := loadLevelsFS(os.DirFS(dir)); err == nil && len(defs) > 0 {
			return defs, nil
		}
	}

	// Use embedded defaults
	return loadLevelsFS(DefaultLevelsFS())
}

// LoadLevelFile parses one level definition.
func LoadLevelFile(p string) (level.Definition, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return level.Definition{}, fmt.Errorf("config: failed to read level %s: %w", p, err)
	}
	def, err := ParseLevel(data)
	if err != nil {
		return level.Definition{}, fmt.Errorf("config: failed to parse level %s: %w", p, err)
	}
	return def, nil
}

// ParseLevel decodes a level definition, filling unset fields with defaults.
func ParseLevel(data []byte) (level.Definition, error) {
	def := level.Definition{
		PlayerHealth:  level.DefaultPlayerHealth,
		ShieldCharges: DefaultShieldCharges,
		Goal:          level.GoalKills,
	}
	if err := yaml.Unmarshal(data, &def); err != nil {
		return level.Definition{}, err
	}
	for k, s := range def.Archetypes {
		if s.Kind == "" {
			s.Kind = k
			def.Archetypes[k] = s
		}
	}
	return def, nil
}

// LoadArchetypes loads the shared archetype table.
// Search order: customPath -> ~/.skybattle/archetypes.yaml -> ./archetypes.yaml -> embedded default
func LoadArchetypes(customPath string) (map[string]behavior.Spec, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read archetypes %s: %w", customPath, err)
		}
		specs, err := ParseArchetypes(data)
		if err != nil {
			return nil, fmt.Errorf("config: failed to parse archetypes %s: %w", customPath, err)
		}
		return specs, nil
	}

	for _, p := range []string{userPath("archetypes.yaml"), "archetypes.yaml"} {
		if p == "" {
			continue
		}
		if data, err := os.ReadFile(p); err == nil {
			if specs, err := ParseArchetypes(data); err == nil {
				return specs, nil
			}
		}
	}

	// Use embedded default YAML
	specs, err := ParseArchetypes(defaultArchetypesYAML)
	if err != nil {
		return behavior.Defaults(), nil // Fallback to built-in table if embed fails
	}
	return specs, nil
}

// ParseArchetypes decodes an archetype table keyed by kind.
func ParseArchetypes(data []byte) (map[string]behavior.Spec, error) {
	specs := make(map[string]behavior.Spec)
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, err
	}
	for k, s := range specs {
		if s.Kind == "" {
			s.Kind = k
			specs[k] = s
		}
	}
	return specs, nil
}

func loadLevelsFS(fsys fs.FS) ([]level.Definition, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := path.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	defs := make([]level.Definition, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		def, err := ParseLevel(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		if def.ID == "" {
			def.ID = strings.TrimSuffix(name, path.Ext(name))
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// userPath returns a path under ~/.skybattle, or empty if home is unavailable.
func userPath(elem ...string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append([]string{home, AppDir}, elem...)...)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("config: cannot determine home directory")
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
