package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/awareness/internal/world"
)

// TerrainInfo is one map entry from terrain_list.yaml.
type TerrainInfo struct {
	TerrainID int16  `yaml:"terrain_id"`
	Name      string `yaml:"name"`
	Disabled  bool   `yaml:"disabled"` // listed but not indexed
}

type terrainListFile struct {
	Terrains []TerrainInfo `yaml:"terrains"`
}

// TerrainTable is the fixed enumeration of maps known at startup.
type TerrainTable struct {
	byID  map[world.Terrain]TerrainInfo
	order []world.Terrain
}

// LoadTerrainTable reads terrain_list.yaml. Duplicate ids are an error.
func LoadTerrainTable(path string) (*TerrainTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read terrain list %s: %w", path, err)
	}
	return parseTerrainTable(raw)
}

func parseTerrainTable(raw []byte) (*TerrainTable, error) {
	var file terrainListFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse terrain list: %w", err)
	}
	table := &TerrainTable{byID: make(map[world.Terrain]TerrainInfo, len(file.Terrains))}
	for _, info := range file.Terrains {
		id := world.Terrain(info.TerrainID)
		if prev, dup := table.byID[id]; dup {
			return nil, fmt.Errorf("terrain id %d listed twice (%q, %q)", info.TerrainID, prev.Name, info.Name)
		}
		table.byID[id] = info
		if !info.Disabled {
			table.order = append(table.order, id)
		}
	}
	sort.Slice(table.order, func(i, j int) bool { return table.order[i] < table.order[j] })
	return table, nil
}

// Count returns the number of enabled terrains.
func (t *TerrainTable) Count() int { return len(t.order) }

// Terrains returns the enabled terrains in ascending id order.
func (t *TerrainTable) Terrains() []world.Terrain {
	return append([]world.Terrain(nil), t.order...)
}

// Name returns the terrain's display name, or "" if unknown.
func (t *TerrainTable) Name(id world.Terrain) string {
	return t.byID[id].Name
}
