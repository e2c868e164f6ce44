package tiles

// Word is a packed surface tile: type in bits 24-31, data in bits 16-23 and
// a signed 16-bit height in bits 0-15.
type Word uint32

func Encode(t Type, data uint8, height int16) Word {
	return Word(uint32(t)<<24 | uint32(data)<<16 | uint32(uint16(height)))
}

func (w Word) Type() Type    { return Type(w >> 24) }
func (w Word) Data() uint8   { return uint8(w >> 16) }
func (w Word) Height() int16 { return int16(uint16(w)) }

func (w Word) WithType(t Type) Word {
	return Word(uint32(w)&0x00FFFFFF | uint32(t)<<24)
}

func (w Word) WithData(d uint8) Word {
	return Word(uint32(w)&0xFF00FFFF | uint32(d)<<16)
}

// GrassData packs a grass growth stage and flower into a data byte.
func GrassData(stage GrassStage, flower FlowerType) uint8 {
	return uint8(stage&0x03)<<4 | uint8(flower&0x0F)
}

func SplitGrassData(d uint8) (GrassStage, FlowerType) {
	return GrassStage((d >> 4) & 0x03), FlowerType(d & 0x0F)
}

// FoliageData packs a tree or bush age and growth stage into a data byte.
func FoliageData(age FoliageAge, stage GrowthStage) uint8 {
	return uint8(age&0x0F)<<4 | uint8(stage&0x03)
}

func SplitFoliageData(d uint8) (FoliageAge, GrowthStage) {
	return FoliageAge(d >> 4), GrowthStage(d & 0x03)
}
