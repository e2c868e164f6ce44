package classify

import (
	"wurmexport.ai/internal/sim/terrain"
	"wurmexport.ai/internal/sim/tiles"
)

type mapping struct {
	tile tiles.Type
	ok   bool
}

// terrainTiles covers every ordinal; zero entries (grass, water, beaches and
// the custom slots) defer to the material table.
var terrainTiles = [terrain.NumTerrains]mapping{
	terrain.Dirt:                 {tiles.Dirt, true},
	terrain.Sand:                 {tiles.Sand, true},
	terrain.Sandstone:            {tiles.Rock, true},
	terrain.Stone:                {tiles.Rock, true},
	terrain.Rock:                 {tiles.Rock, true},
	terrain.Lava:                 {tiles.Lava, true},
	terrain.Snow:                 {tiles.Snow, true},
	terrain.DeepSnow:             {tiles.Snow, true},
	terrain.Gravel:               {tiles.Gravel, true},
	terrain.Clay:                 {tiles.Clay, true},
	terrain.Cobblestone:          {tiles.Cobblestone, true},
	terrain.MossyCobblestone:     {tiles.CobblestoneRough, true},
	terrain.Netherrack:           {tiles.Rock, true},
	terrain.SoulSand:             {tiles.Tar, true},
	terrain.Obsidian:             {tiles.Rock, true},
	terrain.Bedrock:              {tiles.Rock, true},
	terrain.Desert:               {tiles.Sand, true},
	terrain.Netherlike:           {tiles.Rock, true},
	terrain.Resources:            {tiles.Rock, true},
	terrain.Mycelium:             {tiles.Mycelium, true},
	terrain.EndStone:             {tiles.Rock, true},
	terrain.BareGrass:            {tiles.Grass, true},
	terrain.Permadirt:            {tiles.DirtPacked, true},
	terrain.Podzol:               {tiles.Peat, true},
	terrain.RedSand:              {tiles.Sand, true},
	terrain.HardenedClay:         {tiles.Clay, true},
	terrain.WhiteStainedClay:     {tiles.Clay, true},
	terrain.OrangeStainedClay:    {tiles.Clay, true},
	terrain.MagentaStainedClay:   {tiles.Clay, true},
	terrain.LightBlueStainedClay: {tiles.Clay, true},
	terrain.YellowStainedClay:    {tiles.Clay, true},
	terrain.LimeStainedClay:      {tiles.Clay, true},
	terrain.PinkStainedClay:      {tiles.Clay, true},
	terrain.GreyStainedClay:      {tiles.Clay, true},
	terrain.LightGreyStainedClay: {tiles.Clay, true},
	terrain.CyanStainedClay:      {tiles.Clay, true},
	terrain.PurpleStainedClay:    {tiles.Clay, true},
	terrain.BlueStainedClay:      {tiles.Clay, true},
	terrain.BrownStainedClay:     {tiles.Clay, true},
	terrain.GreenStainedClay:     {tiles.Clay, true},
	terrain.RedStainedClay:       {tiles.Clay, true},
	terrain.BlackStainedClay:     {tiles.Clay, true},
	terrain.Mesa:                 {tiles.Rock, true},
	terrain.RedDesert:            {tiles.Sand, true},
	terrain.RedSandstone:         {tiles.Rock, true},
	terrain.Granite:              {tiles.Rock, true},
	terrain.Diorite:              {tiles.Rock, true},
	terrain.Andesite:             {tiles.Rock, true},
	terrain.StoneMix:             {tiles.Rock, true},
	terrain.GrassPath:            {tiles.Grass, true},
}

// materialTiles is indexed by block id; zero entries are unsupported.
var materialTiles = [terrain.NumMaterials]mapping{
	1:   {tiles.Rock, true},             // Stone
	2:   {tiles.Grass, true},            // Grass
	3:   {tiles.Dirt, true},             // Dirt
	4:   {tiles.Cobblestone, true},      // Cobblestone
	5:   {tiles.Planks, true},           // Wooden Plank
	7:   {tiles.Rock, true},             // Bedrock
	10:  {tiles.Lava, true},             // Lava
	11:  {tiles.Lava, true},             // Stationary Lava
	12:  {tiles.Sand, true},             // Sand
	13:  {tiles.Gravel, true},           // Gravel
	14:  {tiles.Rock, true},             // Gold Ore
	15:  {tiles.Rock, true},             // Iron Ore
	16:  {tiles.Rock, true},             // Coal Ore
	21:  {tiles.Rock, true},             // Lapis Lazuli Ore
	24:  {tiles.Rock, true},             // Sandstone
	43:  {tiles.StoneSlabs, true},       // Double Slabs
	44:  {tiles.StoneSlabs, true},       // Slab
	45:  {tiles.StoneSlabs, true},       // Brick Block
	48:  {tiles.CobblestoneRough, true}, // Mossy Cobblestone
	49:  {tiles.Rock, true},             // Obsidian
	56:  {tiles.Rock, true},             // Diamond Ore
	60:  {tiles.Dirt, true},             // Tilled Dirt
	73:  {tiles.Rock, true},             // Redstone Ore
	74:  {tiles.Rock, true},             // Glowing Redstone Ore
	78:  {tiles.Snow, true},             // Snow
	79:  {tiles.Snow, true},             // Ice
	80:  {tiles.Snow, true},             // Snow Block
	82:  {tiles.Clay, true},             // Clay Block
	87:  {tiles.Rock, true},             // Netherrack
	88:  {tiles.Sand, true},             // Soul Sand
	97:  {tiles.StoneSlabs, true},       // Hidden Silverfish
	98:  {tiles.StoneSlabs, true},       // Stone Bricks
	110: {tiles.Mycelium, true},         // Mycelium
	112: {tiles.StoneSlabs, true},       // Nether Brick
	125: {tiles.Planks, true},           // Wooden Double Slab
	126: {tiles.Planks, true},           // Wooden Slab
	129: {tiles.Rock, true},             // Emerald Ore
	153: {tiles.Rock, true},             // Nether Quartz Ore
	159: {tiles.Clay, true},             // Stained Clay
	168: {tiles.Rock, true},             // Prismarine
	172: {tiles.Clay, true},             // Hardened Clay
	174: {tiles.Snow, true},             // Packed Ice
	179: {tiles.Rock, true},             // Red Sandstone
	181: {tiles.StoneSlabs, true},       // Double Red Sandstone Slab
	182: {tiles.StoneSlabs, true},       // Red Sandstone Slab
	201: {tiles.StoneSlabs, true},       // Purpur Block
	204: {tiles.StoneSlabs, true},       // Double Purpur Slab
	205: {tiles.StoneSlabs, true},       // Purpur Slab
	206: {tiles.StoneSlabs, true},       // End Stone Bricks
	208: {tiles.Grass, true},            // Grass Path
	212: {tiles.Snow, true},             // Frosted Ice
}
