package config

import (
	"embed"
	"io/fs"
)

//go:embed defaults/archetypes.yaml
var defaultArchetypesYAML []byte

//go:embed defaults/levels/*.yaml
var defaultLevels embed.FS

// DefaultLevelsFS returns the embedded campaign.
func DefaultLevelsFS() fs.FS {
	sub, err := fs.Sub(defaultLevels, "defaults/levels")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	return sub
}

// DefaultArchetypesYAML returns the embedded archetype table.
func DefaultArchetypesYAML() []byte {
	return defaultArchetypesYAML
}
