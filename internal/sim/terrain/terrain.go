package terrain

import "fmt"

// Terrain is a source terrain category. Values are dense ordinals and must
// stay stable: source world files and the classification tables index by them.
type Terrain uint8

const (
	Grass                Terrain = 0
	Dirt                 Terrain = 1
	Sand                 Terrain = 2
	Sandstone            Terrain = 3
	Stone                Terrain = 4
	Rock                 Terrain = 5
	Water                Terrain = 6
	Lava                 Terrain = 7
	Snow                 Terrain = 8
	DeepSnow             Terrain = 9
	Gravel               Terrain = 10
	Clay                 Terrain = 11
	Cobblestone          Terrain = 12
	MossyCobblestone     Terrain = 13
	Netherrack           Terrain = 14
	SoulSand             Terrain = 15
	Obsidian             Terrain = 16
	Bedrock              Terrain = 17
	Desert               Terrain = 18
	Netherlike           Terrain = 19
	Resources            Terrain = 20
	Beaches              Terrain = 21
	Mycelium             Terrain = 27
	EndStone             Terrain = 28
	BareGrass            Terrain = 29
	Permadirt            Terrain = 49
	Podzol               Terrain = 50
	RedSand              Terrain = 51
	HardenedClay         Terrain = 52
	WhiteStainedClay     Terrain = 53
	OrangeStainedClay    Terrain = 54
	MagentaStainedClay   Terrain = 55
	LightBlueStainedClay Terrain = 56
	YellowStainedClay    Terrain = 57
	LimeStainedClay      Terrain = 58
	PinkStainedClay      Terrain = 59
	GreyStainedClay      Terrain = 60
	LightGreyStainedClay Terrain = 61
	CyanStainedClay      Terrain = 62
	PurpleStainedClay    Terrain = 63
	BlueStainedClay      Terrain = 64
	BrownStainedClay     Terrain = 65
	GreenStainedClay     Terrain = 66
	RedStainedClay       Terrain = 67
	BlackStainedClay     Terrain = 68
	Mesa                 Terrain = 69
	RedDesert            Terrain = 70
	RedSandstone         Terrain = 71
	Granite              Terrain = 72
	Diorite              Terrain = 73
	Andesite             Terrain = 74
	StoneMix             Terrain = 75
	GrassPath            Terrain = 100
)

const (
	// NumTerrains counts every ordinal, custom slots included.
	NumTerrains = 149
	// NumCustom is the number of user-definable custom slots.
	NumCustom = 96
)

// Custom slots are interleaved with the named terrains in four runs.
var customRuns = [...]struct {
	first Terrain
	slot  int
	n     int
}{
	{22, 1, 5},
	{30, 6, 19},
	{76, 25, 24},
	{101, 49, 48},
}

// CustomIndex returns the 1-based custom slot of t.
func (t Terrain) CustomIndex() (int, bool) {
	for _, r := range customRuns {
		if t >= r.first && int(t) < int(r.first)+r.n {
			return r.slot + int(t-r.first), true
		}
	}
	return 0, false
}

func (t Terrain) IsCustom() bool {
	_, ok := t.CustomIndex()
	return ok
}

// Custom returns the terrain ordinal of custom slot n (1..NumCustom).
func Custom(n int) (Terrain, bool) {
	for _, r := range customRuns {
		if n >= r.slot && n < r.slot+r.n {
			return r.first + Terrain(n-r.slot), true
		}
	}
	return 0, false
}

func (t Terrain) Valid() bool { return int(t) < NumTerrains }

func (t Terrain) String() string {
	if n, ok := t.CustomIndex(); ok {
		return fmt.Sprintf("Custom %d", n)
	}
	if t.Valid() && names[t] != "" {
		return names[t]
	}
	return fmt.Sprintf("Terrain %d", uint8(t))
}

var names = [NumTerrains]string{
	Grass:                "Grass",
	Dirt:                 "Dirt",
	Sand:                 "Sand",
	Sandstone:            "Sandstone",
	Stone:                "Stone",
	Rock:                 "Rock",
	Water:                "Water",
	Lava:                 "Lava",
	Snow:                 "Snow",
	DeepSnow:             "Deep Snow",
	Gravel:               "Gravel",
	Clay:                 "Clay",
	Cobblestone:          "Cobblestone",
	MossyCobblestone:     "Mossy Cobblestone",
	Netherrack:           "Netherrack",
	SoulSand:             "Soul Sand",
	Obsidian:             "Obsidian",
	Bedrock:              "Bedrock",
	Desert:               "Desert",
	Netherlike:           "Netherlike",
	Resources:            "Resources",
	Beaches:              "Beaches",
	Mycelium:             "Mycelium",
	EndStone:             "End Stone",
	BareGrass:            "Bare Grass",
	Permadirt:            "Permadirt",
	Podzol:               "Podzol",
	RedSand:              "Red Sand",
	HardenedClay:         "Hardened Clay",
	WhiteStainedClay:     "White Stained Clay",
	OrangeStainedClay:    "Orange Stained Clay",
	MagentaStainedClay:   "Magenta Stained Clay",
	LightBlueStainedClay: "Light Blue Stained Clay",
	YellowStainedClay:    "Yellow Stained Clay",
	LimeStainedClay:      "Lime Stained Clay",
	PinkStainedClay:      "Pink Stained Clay",
	GreyStainedClay:      "Grey Stained Clay",
	LightGreyStainedClay: "Light Grey Stained Clay",
	CyanStainedClay:      "Cyan Stained Clay",
	PurpleStainedClay:    "Purple Stained Clay",
	BlueStainedClay:      "Blue Stained Clay",
	BrownStainedClay:     "Brown Stained Clay",
	GreenStainedClay:     "Green Stained Clay",
	RedStainedClay:       "Red Stained Clay",
	BlackStainedClay:     "Black Stained Clay",
	Mesa:                 "Mesa",
	RedDesert:            "Red Desert",
	RedSandstone:         "Red Sandstone",
	Granite:              "Granite",
	Diorite:              "Diorite",
	Andesite:             "Andesite",
	StoneMix:             "Stone Mix",
	GrassPath:            "Grass Path",
}

// DefaultMaterial is the block a terrain presents at the surface when the
// source world does not say otherwise.
func DefaultMaterial(t Terrain) Material {
	if t.IsCustom() {
		return 3
	}
	if !t.Valid() {
		return NoMaterial
	}
	return defaultMaterials[t]
}

var defaultMaterials = [NumTerrains]Material{
	Grass:                2,
	Dirt:                 3,
	Sand:                 12,
	Sandstone:            24,
	Stone:                1,
	Rock:                 1,
	Water:                9,
	Lava:                 11,
	Snow:                 80,
	DeepSnow:             80,
	Gravel:               13,
	Clay:                 82,
	Cobblestone:          4,
	MossyCobblestone:     48,
	Netherrack:           87,
	SoulSand:             88,
	Obsidian:             49,
	Bedrock:              7,
	Desert:               12,
	Netherlike:           87,
	Resources:            1,
	Beaches:              12,
	Mycelium:             110,
	EndStone:             121,
	BareGrass:            2,
	Permadirt:            3,
	Podzol:               3,
	RedSand:              12,
	HardenedClay:         172,
	WhiteStainedClay:     159,
	OrangeStainedClay:    159,
	MagentaStainedClay:   159,
	LightBlueStainedClay: 159,
	YellowStainedClay:    159,
	LimeStainedClay:      159,
	PinkStainedClay:      159,
	GreyStainedClay:      159,
	LightGreyStainedClay: 159,
	CyanStainedClay:      159,
	PurpleStainedClay:    159,
	BlueStainedClay:      159,
	BrownStainedClay:     159,
	GreenStainedClay:     159,
	RedStainedClay:       159,
	BlackStainedClay:     159,
	Mesa:                 172,
	RedDesert:            12,
	RedSandstone:         179,
	Granite:              1,
	Diorite:              1,
	Andesite:             1,
	StoneMix:             1,
	GrassPath:            208,
}
