package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codifies/mechsim"
	"github.com/codifies/mechsim/clist"
	"github.com/codifies/mechsim/config"
)

var (
	configFile string
	preset     string
	duration   float64
	entities   int
	seed       int64
	floor      string
	verbose    bool
	benchTime  float64
)

// frameDt is the synthetic frame interval driving headless runs.
const frameDt = 1.0 / 60

func main() {
	rootCmd := &cobra.Command{
		Use:   "mechsim",
		Short: "rigid-body simulation sandbox",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scene headless and chart it",
		RunE:  runScene,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset scene")
	runCmd.Flags().Float64Var(&duration, "time", 0, "duration override (seconds)")
	runCmd.Flags().IntVar(&entities, "entities", 0, "entity count override")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed override")
	runCmd.Flags().StringVar(&floor, "floor", "", "floor material override")
	runCmd.Flags().BoolVar(&verbose, "verbose", false, "log scheduler diagnostics")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark stepping at several entity counts",
		RunE:  benchScene,
	}
	benchCmd.Flags().Float64Var(&benchTime, "time", 5.0, "simulated seconds per size")

	materialsCmd := &cobra.Command{
		Use:   "materials",
		Short: "show the surface material table",
		Run: func(cmd *cobra.Command, args []string) {
			printMaterials()
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scene presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-8s %d entities on %s for %.0fs\n",
					name, p.Scene.Entities, p.Scene.Floor, p.Scene.Duration)
			}
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, benchCmd, materialsCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("time") {
		cfg.Scene.Duration = duration
	}
	if cmd.Flags().Changed("entities") {
		cfg.Scene.Entities = entities
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("floor") {
		cfg.Scene.Floor = floor
	}
	return cfg, nil
}

// buildScene stands up a context with a ground plane and the configured
// entity drop. The returned clock pointer drives synthetic frame time.
func buildScene(cfg *config.Config, logger *zap.Logger) (*mechsim.Context, *float64, error) {
	sim := cfg.Sim()
	now := new(float64)
	sim.Clock = func() float64 { return *now }
	sim.Logger = logger

	ctx, err := mechsim.NewContext(sim)
	if err != nil {
		return nil, nil, err
	}

	surface, err := cfg.Scene.FloorSurface()
	if err != nil {
		ctx.Free()
		return nil, nil, err
	}
	ground := ctx.CreateStaticPlane(mgl64.Vec3{0, 1, 0}, 0)
	mechsim.InfoOf(ground.Data).Surface = surface

	mask, err := cfg.Scene.ShapeMask()
	if err != nil {
		ctx.Free()
		return nil, nil, err
	}
	for i := 0; i < cfg.Scene.Entities; i++ {
		pos := mgl64.Vec3{
			ctx.Rnd(-cfg.Scene.Arena, cfg.Scene.Arena),
			cfg.Scene.DropHeight + ctx.Rnd(0, cfg.Scene.DropHeight),
			ctx.Rnd(-cfg.Scene.Arena, cfg.Scene.Arena),
		}
		ctx.CreateRandomEntity(pos, mask)
	}
	return ctx, now, nil
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
	}

	ctx, now, err := buildScene(cfg, logger)
	if err != nil {
		return err
	}
	defer ctx.Free()

	frames := int(cfg.Scene.Duration / frameDt)
	contacts := make([]float64, 0, frames)
	energy := make([]float64, 0, frames)
	totalSteps := 0

	start := time.Now()
	for i := 0; i < frames; i++ {
		*now += frameDt
		totalSteps += ctx.Step()
		contacts = append(contacts, float64(ctx.LastContacts()))
		energy = append(energy, kineticEnergy(ctx))
	}
	elapsed := time.Since(start)

	asleep := 0
	ctx.Objects.IterateForward(func(n *clist.Node[*mechsim.Entity]) {
		if n.Data.Body.Disabled {
			asleep++
		}
	})

	fmt.Printf("simulated %.1fs (%d slices) in %v\n", cfg.Scene.Duration, totalSteps, elapsed)
	fmt.Printf("entities: %d (%d asleep)  final contacts: %d\n",
		ctx.Objects.Count(), asleep, ctx.LastContacts())
	fmt.Println()

	graph := asciigraph.Plot(downsample(contacts, 80),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("contacts per frame"),
	)
	fmt.Println(graph)
	fmt.Println()

	graph = asciigraph.Plot(downsample(energy, 80),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("kinetic energy"),
	)
	fmt.Println(graph)
	return nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	sizes := []int{50, 100, 200, 400}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "entities\tslices\twall time\tslices/sec")

	for _, n := range sizes {
		cfg := config.DefaultConfig()
		cfg.Seed = 1
		cfg.Scene.Entities = n
		cfg.Scene.Duration = benchTime
		cfg.Scene.Arena = 15

		ctx, now, err := buildScene(cfg, zap.NewNop())
		if err != nil {
			return err
		}

		frames := int(benchTime / frameDt)
		totalSteps := 0
		start := time.Now()
		for i := 0; i < frames; i++ {
			*now += frameDt
			totalSteps += ctx.Step()
		}
		elapsed := time.Since(start)
		ctx.Free()

		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n",
			n, totalSteps, elapsed.Round(time.Millisecond),
			float64(totalSteps)/elapsed.Seconds())
	}
	return w.Flush()
}

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(10).Align(lipgloss.Right)
)

func printMaterials() {
	fmt.Println(headerStyle.Render("surface material table"))
	fmt.Println()
	fmt.Print(labelStyle.Render(""))
	for _, col := range []string{"friction", "bounce", "bounceVel", "slip1", "slip2"} {
		fmt.Print(valueStyle.Render(col))
	}
	fmt.Println()
	for kind := mechsim.SurfaceKind(0); kind < mechsim.SurfaceCount; kind++ {
		s := mechsim.Surfaces[kind]
		fmt.Print(labelStyle.Render(kind.String()))
		for _, v := range []float64{s.Friction, s.Bounce, s.BounceVel, s.Slip1, s.Slip2} {
			fmt.Print(valueStyle.Render(fmt.Sprintf("%.4g", v)))
		}
		fmt.Println()
	}
}

// kineticEnergy sums the linear kinetic energy of the awake bodies.
func kineticEnergy(ctx *mechsim.Context) float64 {
	total := 0.0
	for _, b := range ctx.World.Bodies() {
		if b.Disabled || b.InvMass() == 0 {
			continue
		}
		v := b.Velocity.Len()
		total += 0.5 * b.Mass() * v * v
	}
	return total
}

// downsample reduces a series to at most n points by striding.
func downsample(data []float64, n int) []float64 {
	if len(data) <= n {
		return data
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = data[i*len(data)/n]
	}
	return out
}
