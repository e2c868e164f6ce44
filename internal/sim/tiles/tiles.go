package tiles

import "fmt"

// Type is a surface tile type of the target map. Values are stored in the
// high byte of a packed tile word and must stay stable.
type Type uint8

const (
	Hole             Type = 0
	Sand             Type = 1
	Grass            Type = 2
	Rock             Type = 4
	Dirt             Type = 5
	Clay             Type = 6
	Field            Type = 7
	DirtPacked       Type = 8
	Cobblestone      Type = 9
	Mycelium         Type = 10
	Lava             Type = 12
	Planks           Type = 13
	StoneSlabs       Type = 14
	CobblestoneRough Type = 15
	Moss             Type = 16
	Marsh            Type = 17
	Steppe           Type = 18
	Tundra           Type = 19
	Peat             Type = 20
	Tar              Type = 21
	Gravel           Type = 22
	Kelp             Type = 23
	Reed             Type = 24
	Snow             Type = 25
	Cliff            Type = 26

	// Tree tiles, one per species, starting at treeBase.
	TreeBirch    Type = 100
	TreePine     Type = 101
	TreeOak      Type = 102
	TreeCedar    Type = 103
	TreeWillow   Type = 104
	TreeMaple    Type = 105
	TreeApple    Type = 106
	TreeLemon    Type = 107
	TreeOlive    Type = 108
	TreeCherry   Type = 109
	TreeChestnut Type = 110
	TreeWalnut   Type = 111
	TreeFir      Type = 112
	TreeLinden   Type = 113

	// Bush tiles, one per bush type, starting at bushBase.
	BushLavender Type = 140
	BushRose     Type = 141
	BushThorn    Type = 142
	BushGrape    Type = 143
	BushCamellia Type = 144
	BushOleander Type = 145
)

const (
	treeBase = TreeBirch
	bushBase = BushLavender
)

var typeNames = map[Type]string{
	Hole:             "HOLE",
	Sand:             "SAND",
	Grass:            "GRASS",
	Rock:             "ROCK",
	Dirt:             "DIRT",
	Clay:             "CLAY",
	Field:            "FIELD",
	DirtPacked:       "DIRT_PACKED",
	Cobblestone:      "COBBLESTONE",
	Mycelium:         "MYCELIUM",
	Lava:             "LAVA",
	Planks:           "PLANKS",
	StoneSlabs:       "STONE_SLABS",
	CobblestoneRough: "COBBLESTONE_ROUGH",
	Moss:             "MOSS",
	Marsh:            "MARSH",
	Steppe:           "STEPPE",
	Tundra:           "TUNDRA",
	Peat:             "PEAT",
	Tar:              "TAR",
	Gravel:           "GRAVEL",
	Kelp:             "KELP",
	Reed:             "REED",
	Snow:             "SNOW",
	Cliff:            "CLIFF",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	if tr, ok := t.Tree(); ok {
		return "TREE_" + tr.String()
	}
	if b, ok := t.Bush(); ok {
		return "BUSH_" + b.String()
	}
	return fmt.Sprintf("TILE_%d", uint8(t))
}

// Tree reports the species when t is a tree tile.
func (t Type) Tree() (TreeType, bool) {
	if t >= treeBase && t < treeBase+Type(numTreeTypes) {
		return TreeType(t - treeBase), true
	}
	return 0, false
}

// Bush reports the bush type when t is a bush tile.
func (t Type) Bush() (BushType, bool) {
	if t >= bushBase && t < bushBase+Type(numBushTypes) {
		return BushType(t - bushBase), true
	}
	return 0, false
}

// AcceptsVegetation reports whether trees, bushes, moss or marsh may be
// placed on a tile of this type.
func (t Type) AcceptsVegetation() bool {
	switch t {
	case Grass, Dirt, Marsh, Moss:
		return true
	default:
		return false
	}
}

type GrassStage uint8

const (
	GrassShort GrassStage = iota
	GrassMedium
	GrassTall
	GrassWild
)

func (s GrassStage) String() string {
	switch s {
	case GrassShort:
		return "SHORT"
	case GrassMedium:
		return "MEDIUM"
	case GrassTall:
		return "TALL"
	case GrassWild:
		return "WILD"
	default:
		return fmt.Sprintf("STAGE_%d", uint8(s))
	}
}

// FlowerType is a 4-bit flower id; 0 means no flower.
type FlowerType uint8

const FlowerNone FlowerType = 0

func FlowerFromInt(v int) FlowerType { return FlowerType(v & 0x0F) }

type TreeType uint8

const (
	Birch TreeType = iota
	Pine
	Oak
	Cedar
	Willow
	Maple
	Apple
	Lemon
	Olive
	Cherry
	Chestnut
	Walnut
	Fir
	Linden

	numTreeTypes
)

var treeNames = [...]string{"BIRCH", "PINE", "OAK", "CEDAR", "WILLOW", "MAPLE", "APPLE", "LEMON", "OLIVE", "CHERRY", "CHESTNUT", "WALNUT", "FIR", "LINDEN"}

func (t TreeType) String() string {
	if int(t) < len(treeNames) {
		return treeNames[t]
	}
	return fmt.Sprintf("TREE_%d", uint8(t))
}

// TreeTypeByName resolves an upper-case species name such as "OAK".
func TreeTypeByName(name string) (TreeType, bool) {
	for i, n := range treeNames {
		if n == name {
			return TreeType(i), true
		}
	}
	return 0, false
}

// Tile returns the surface tile used for a tree of this species.
func (t TreeType) Tile() Type { return treeBase + Type(t) }

type BushType uint8

const (
	Lavender BushType = iota
	Rose
	Thorn
	Grape
	Camellia
	Oleander

	numBushTypes
)

var bushNames = [...]string{"LAVENDER", "ROSE", "THORN", "GRAPE", "CAMELLIA", "OLEANDER"}

func (b BushType) String() string {
	if int(b) < len(bushNames) {
		return bushNames[b]
	}
	return fmt.Sprintf("BUSH_%d", uint8(b))
}

func (b BushType) Tile() Type { return bushBase + Type(b) }

// BushFromInt maps 0..5 onto bush types; out-of-range values wrap.
func BushFromInt(v int) BushType { return BushType(uint(v) % uint(numBushTypes)) }

// FoliageAge is 0..15.
type FoliageAge uint8

func AgeFromInt(v int) FoliageAge { return FoliageAge(v & 0x0F) }

// GrowthStage is the 0..3 growth stage of the ground under a tree or bush.
type GrowthStage uint8

func GrowthFromInt(v int) GrowthStage { return GrowthStage(v & 0x03) }
