package terrain

import "fmt"

// Material is a source block id as produced by a terrain for a column.
type Material int16

// NoMaterial marks a cell with no usable material, e.g. a down-sampled block
// whose samples were all unsupported.
const NoMaterial Material = -1

// NumMaterials is the size of the named block id range.
const NumMaterials = 213

func (m Material) Valid() bool { return m >= 0 && int(m) < NumMaterials }

// Name returns a human readable block name for reports.
func (m Material) Name() string {
	if m.Valid() {
		return materialNames[m]
	}
	if m == NoMaterial {
		return "None"
	}
	return fmt.Sprintf("Block %d", int16(m))
}

func (m Material) String() string { return m.Name() }

var materialNames = [NumMaterials]string{
	// 0
	"Air",
	"Stone",
	"Grass",
	"Dirt",
	"Cobblestone",
	"Wooden Plank",
	"Sapling",
	"Bedrock",
	"Water",
	"Stationary Water",
	"Lava",
	"Stationary Lava",
	"Sand",
	"Gravel",
	"Gold Ore",
	"Iron Ore",
	// 16
	"Coal Ore",
	"Wood",
	"Leaves",
	"Sponge",
	"Glass",
	"Lapis Lazuli Ore",
	"Lapis Lazuli Block",
	"Dispenser",
	"Sandstone",
	"Note Block",
	"Bed",
	"Powered Rail",
	"Detector Rail",
	"Sticky Piston",
	"Cobweb",
	"Tall Grass",
	// 32
	"Dead Bush",
	"Piston",
	"Piston Extension",
	"Wool",
	"Block Moved By Piston",
	"Dandelion",
	"Flower",
	"Brown Mushroom",
	"Red Mushroom",
	"Gold Block",
	"Iron Block",
	"Double Slabs",
	"Slab",
	"Brick Block",
	"TNT",
	"Bookshelf",
	// 48
	"Mossy Cobblestone",
	"Obsidian",
	"Torch",
	"Fire",
	"Monster Spawner",
	"Wooden Stairs",
	"Chest",
	"Redstone Wire",
	"Diamond Ore",
	"Diamond Block",
	"Crafting Table",
	"Wheat",
	"Tilled Dirt",
	"Furnace",
	"Burning Furnace",
	"Sign Post",
	// 64
	"Wooden Door",
	"Ladder",
	"Rails",
	"Cobblestone Stairs",
	"Wall Sign",
	"Lever",
	"Stone Pressure Plate",
	"Iron Door",
	"Wooden Pressure Plate",
	"Redstone Ore",
	"Glowing Redstone Ore",
	"Redstone Torch (off)",
	"Redstone Torch (on)",
	"Stone Button",
	"Snow",
	"Ice",
	// 80
	"Snow Block",
	"Cactus",
	"Clay Block",
	"Sugar Cane",
	"Jukebox",
	"Fence",
	"Pumpkin",
	"Netherrack",
	"Soul Sand",
	"Glowstone Block",
	"Portal",
	"Jack-O-Lantern",
	"Cake",
	"Redstone Repeater (off)",
	"Redstone Repeater (on)",
	"Stained Glass",
	// 96
	"Trapdoor",
	"Hidden Silverfish",
	"Stone Bricks",
	"Huge Brown Mushroom",
	"Huge Red Mushroom",
	"Iron Bars",
	"Glass Pane",
	"Melon",
	"Pumpkin Stem",
	"Melon Stem",
	"Vines",
	"Fence Gate",
	"Brick Stairs",
	"Stone Brick Stairs",
	"Mycelium",
	"Lily Pad",
	// 112
	"Nether Brick",
	"Nether Brick Fence",
	"Nether Brick Stairs",
	"Nether Wart",
	"Enchantment Table",
	"Brewing Stand",
	"Cauldron",
	"End Portal",
	"End Portal Frame",
	"End Stone",
	"Dragon Egg",
	"Redstone Lamp (off)",
	"Redstone Lamp (on)",
	"Wooden Double Slab",
	"Wooden Slab",
	"Cocoa Plant",
	// 128
	"Sandstone Stairs",
	"Emerald Ore",
	"Ender Chest",
	"Tripwire Hook",
	"Tripwire",
	"Emerald Block",
	"Pine Wood Stairs",
	"Birch Wood Stairs",
	"Jungle Wood Stairs",
	"Command Block",
	"Beacon",
	"Cobblestone Wall",
	"Flower Pot",
	"Carrots",
	"Potatoes",
	"Wooden Button",
	// 144
	"Head",
	"Anvil",
	"Trapped Chest",
	"Weighted Pressure Plate (light)",
	"Weighted Pressure Plate (heavy)",
	"Redstone Comparator (unpowered)",
	"Redstone Comparator (powered)",
	"Daylight Sensor",
	"Redstone Block",
	"Nether Quartz Ore",
	"Hopper",
	"Quartz Block",
	"Quartz Stairs",
	"Activator Rail",
	"Dropper",
	"Stained Clay",
	// 160
	"Stained Glass Pane",
	"Leaves 2",
	"Wood 2",
	"Acacia Wood Stairs",
	"Dark Oak Wood Stairs",
	"Slime Block",
	"Barrier",
	"Iron Trapdoor",
	"Prismarine",
	"Sea Lantern",
	"Hay Bale",
	"Carpet",
	"Hardened Clay",
	"Coal Block",
	"Packed Ice",
	"Large Flower",
	// 176
	"Standing Banner",
	"Wall Banner",
	"Inverted Daylight Sensor",
	"Red Sandstone",
	"Red Sandstone Stairs",
	"Double Red Sandstone Slab",
	"Red Sandstone Slab",
	"Pine Wood Fence Gate",
	"Birch Wood Fence Gate",
	"Jungle Wood Fence Gate",
	"Dark Oak Wood Fence Gate",
	"Acacia Wood Fence Gate",
	"Pine Wood Fence",
	"Birch Wood Fence",
	"Jungle Wood Fence",
	"Dark Oak Wood Fence",
	// 192
	"Acacia Wood Fence",
	"Pine Wood Door",
	"Birch Wood Door",
	"Jungle Wood Door",
	"Acacia Wood Door",
	"Dark Oak Wood Door",
	"End Rod",
	"Chorus Plant",
	"Chorus Flower",
	"Purpur Block",
	"Purpur Pillar",
	"Purpur Stairs",
	"Double Purpur Slab",
	"Purpur Slab",
	"End Stone Bricks",
	"Beetroots",
	// 208
	"Grass Path",
	"End Gateway",
	"Repeating Command Block",
	"Chain Command Block",
	"Frosted Ice",
}
