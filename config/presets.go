package config

var Presets = map[string]*Config{
	"drop": {
		Slice: DefaultSlice, MaxSteps: DefaultMaxSteps,
		Gravity:  [3]float64{0, -9.8, 0},
		CellSize: DefaultCellSize, Cells: DefaultCells,
		Scene: SceneConfig{
			Duration: 10, Entities: 40, Floor: "wood",
			DropHeight: 8, Arena: 10,
		},
	},
	"stress": {
		Slice: DefaultSlice, MaxSteps: DefaultMaxSteps,
		Gravity:  [3]float64{0, -9.8, 0},
		CellSize: DefaultCellSize, Cells: DefaultCells,
		Scene: SceneConfig{
			Duration: 20, Entities: 400, Floor: "earth",
			DropHeight: 15, Arena: 20,
		},
	},
	"rink": {
		Slice: DefaultSlice, MaxSteps: DefaultMaxSteps,
		Gravity:  [3]float64{0, -9.8, 0},
		CellSize: DefaultCellSize, Cells: DefaultCells,
		Scene: SceneConfig{
			Duration: 15, Entities: 30, Shapes: []string{"box", "sphere"},
			Floor: "ice", DropHeight: 4, Arena: 12,
		},
	},
	"bounce": {
		Slice: DefaultSlice, MaxSteps: DefaultMaxSteps,
		Gravity:  [3]float64{0, -9.8, 0},
		CellSize: DefaultCellSize, Cells: DefaultCells,
		Scene: SceneConfig{
			Duration: 12, Entities: 25, Shapes: []string{"sphere"},
			Floor: "rubber", DropHeight: 10, Arena: 8,
		},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
