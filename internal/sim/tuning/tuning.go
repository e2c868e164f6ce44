package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"wurmexport.ai/internal/sim/raster"
)

const (
	ScalingUnscaled   = "unscaled"
	ScalingHorizontal = "horizontal"
	ScalingVertical   = "vertical"

	HardMaxSizeExponent = 15
	HardMinSizeExponent = 10
)

type Tuning struct {
	ScalingMode      string  `yaml:"scaling_mode"`
	KelpMinimumDepth float32 `yaml:"kelp_minimum_depth"`
	MaxSizeExponent  int     `yaml:"max_size_exponent"`
	MinSizeExponent  int     `yaml:"min_size_exponent"`
	Workers          int     `yaml:"workers"`
	GrassMossOneIn   int     `yaml:"grass_moss_one_in"`
	TileLog          bool    `yaml:"tile_log"`
	BackupDir        string  `yaml:"backup_dir"`
	// DisableBackups makes an existing destination a configuration error.
	DisableBackups bool `yaml:"disable_backups"`
}

func Defaults() Tuning {
	return Tuning{
		ScalingMode:      ScalingUnscaled,
		KelpMinimumDepth: 3.0,
		MaxSizeExponent:  HardMaxSizeExponent,
		MinSizeExponent:  HardMinSizeExponent,
		Workers:          1,
	}
}

// Load overlays the YAML file at path on Defaults and validates the result.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("export.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("export.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if _, err := t.Mode(); err != nil {
		return err
	}
	if t.KelpMinimumDepth <= 0 {
		return fmt.Errorf("kelp_minimum_depth must be positive, got %v", t.KelpMinimumDepth)
	}
	if t.MinSizeExponent < HardMinSizeExponent || t.MaxSizeExponent > HardMaxSizeExponent || t.MinSizeExponent > t.MaxSizeExponent {
		return fmt.Errorf("size exponents must satisfy %d <= min (%d) <= max (%d) <= %d",
			HardMinSizeExponent, t.MinSizeExponent, t.MaxSizeExponent, HardMaxSizeExponent)
	}
	if t.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", t.Workers)
	}
	if t.GrassMossOneIn < 0 {
		return fmt.Errorf("grass_moss_one_in must not be negative, got %d", t.GrassMossOneIn)
	}
	return nil
}

// Mode resolves scaling_mode; an empty value means unscaled.
func (t Tuning) Mode() (raster.Mode, error) {
	switch t.ScalingMode {
	case "", ScalingUnscaled:
		return raster.Unscaled, nil
	case ScalingHorizontal:
		return raster.HorizontalScaled, nil
	case ScalingVertical:
		return raster.VerticalScaled, nil
	default:
		return raster.Unscaled, fmt.Errorf("unknown scaling_mode %q", t.ScalingMode)
	}
}

// RasterParams returns the per-export pipeline parameters.
func (t Tuning) RasterParams() (raster.Params, error) {
	mode, err := t.Mode()
	if err != nil {
		return raster.Params{}, err
	}
	return raster.Params{
		Mode:             mode,
		KelpMinimumDepth: t.KelpMinimumDepth,
		GrassMossOneIn:   t.GrassMossOneIn,
	}, nil
}
