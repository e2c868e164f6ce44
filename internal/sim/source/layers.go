package source

import "wurmexport.ai/internal/sim/tiles"

// Layer is a closed set of layer variants: *FrostLayer, *TreeLayer and
// *OtherLayer. Consumers switch on the concrete type.
type Layer interface {
	ID() string
	Name() string
	layer()
}

// FrostLayer is a bit layer marking snow cover.
type FrostLayer struct{}

func (*FrostLayer) ID() string   { return "frost" }
func (*FrostLayer) Name() string { return "Frost" }
func (*FrostLayer) layer()       {}

// TreeLayer is a 0..15 level layer planting trees of a fixed species list.
// Swamp layers also turn shore cells into marsh.
type TreeLayer struct {
	LayerID   string
	LayerName string
	Swamp     bool
	Species   []tiles.TreeType
}

func (l *TreeLayer) ID() string   { return l.LayerID }
func (l *TreeLayer) Name() string { return l.LayerName }
func (*TreeLayer) layer()         {}

// OtherLayer is any layer the exporter does not render. Silent layers are
// left out of the ignored-layer report.
type OtherLayer struct {
	LayerID   string
	LayerName string
	Silent    bool
}

func (l *OtherLayer) ID() string   { return l.LayerID }
func (l *OtherLayer) Name() string { return l.LayerName }
func (*OtherLayer) layer()         {}

var (
	Frost = &FrostLayer{}

	DeciduousForest = &TreeLayer{
		LayerID:   "deciduous",
		LayerName: "Deciduous Forest",
		Species:   []tiles.TreeType{tiles.Birch, tiles.Oak, tiles.Maple, tiles.Chestnut, tiles.Linden},
	}
	PineForest = &TreeLayer{
		LayerID:   "pine",
		LayerName: "Pine Forest",
		Species:   []tiles.TreeType{tiles.Pine, tiles.Fir, tiles.Cedar},
	}
	Jungle = &TreeLayer{
		LayerID:   "jungle",
		LayerName: "Jungle",
		Species:   []tiles.TreeType{tiles.Apple, tiles.Lemon, tiles.Olive, tiles.Cherry, tiles.Walnut},
	}
	SwampLand = &TreeLayer{
		LayerID:   "swamp",
		LayerName: "Swamp",
		Swamp:     true,
		Species:   []tiles.TreeType{tiles.Willow},
	}

	ReadOnly = &OtherLayer{LayerID: "readonly", LayerName: "Read Only", Silent: true}
)

var builtinLayers = []Layer{Frost, DeciduousForest, PineForest, Jungle, SwampLand, ReadOnly}

// BuiltinLayer returns the predefined layer with the given id.
func BuiltinLayer(id string) (Layer, bool) {
	for _, l := range builtinLayers {
		if l.ID() == id {
			return l, true
		}
	}
	return nil, false
}

// Reported reports whether l belongs in the ignored-layer report.
func Reported(l Layer) bool {
	switch v := l.(type) {
	case *FrostLayer, *TreeLayer:
		return false
	case *OtherLayer:
		return !v.Silent
	default:
		return true
	}
}
