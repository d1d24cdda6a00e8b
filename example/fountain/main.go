// Fountain drops a crowd of random bodies onto a tilted slab and lets
// them slide off. Holding thrust lobs them back up, anything falling
// out of the world is respawned, and a trigger sphere near the slab
// edge tints whatever passes through it red.
package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/codifies/mechsim"
	"github.com/codifies/mechsim/actor"
	"github.com/codifies/mechsim/clist"
)

const (
	numObjects = 30
	frameDt    = 1.0 / 60

	canvasW = 72
	canvasH = 22

	// World window the canvas projects, side on.
	worldMinX = -14.0
	worldMaxX = 22.0
	worldMinY = -6.0
	worldMaxY = 16.0
)

var (
	red = mechsim.Color{R: 1, A: 1}

	trigPos    = mgl64.Vec3{5, -1, 0}
	trigRadius = 2.0
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	canvasStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	tintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type tickMsg time.Time

type model struct {
	ctx  *mechsim.Context
	now  *float64
	slab *clist.Node[*actor.Geom]

	thrust    bool
	steps     int
	physTime  time.Duration
	stepsHist []float64
}

func newModel() (model, error) {
	now := new(float64)
	ctx, err := mechsim.NewContext(mechsim.Config{
		Clock:  func() float64 { return *now },
		Logger: zap.NewNop(),
	})
	if err != nil {
		return model{}, err
	}

	// Tilted slab standing in for the ground.
	slab := ctx.CreateStaticBox(mgl64.Vec3{}, mgl64.Vec3{50, 1, 50})
	tilt := mgl64.QuatRotate(math.Pi*0.125, mgl64.Vec3{1, 0, -1}.Normalize())
	slab.Data.SetOffset(mgl64.Vec3{0, -0.5, 0}, tilt)

	// Whatever wanders into the sphere gets tinted; the slab itself is
	// exempt.
	zone := ctx.CreateStaticSphere(trigPos, trigRadius)
	mechsim.InfoOf(zone.Data).Trigger = func(_, intruder *actor.Geom) {
		if intruder == slab.Data {
			return
		}
		if gi := mechsim.InfoOf(intruder); gi != nil {
			gi.Hew = red
		}
	}

	m := model{ctx: ctx, now: now, slab: slab}
	for i := 0; i < numObjects; i++ {
		m.spawn()
	}
	return m, nil
}

func (m *model) spawn() {
	pos := mgl64.Vec3{m.ctx.Rnd(5, 11), m.ctx.Rnd(6, 12), m.ctx.Rnd(-3, 3)}
	m.ctx.CreateRandomEntity(pos, mechsim.AllShapes)
}

func (m model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.ctx.Free()
			return m, tea.Quit
		case " ":
			m.thrust = !m.thrust
		}
	case tickMsg:
		m.frame()
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return tickMsg(t) })
	}
	return m, nil
}

// frame runs one display frame: entity upkeep, then the fixed-step
// catch-up.
func (m *model) frame() {
	for node := m.ctx.Objects.Head(); node != nil; {
		next := node.Next()
		ent := node.Data
		body := ent.Body

		mechsim.SetEntityHew(ent, mechsim.White)

		pos := body.Position()
		if m.thrust && body.Velocity.Y() < 10 && pos.Y() < 10 {
			body.Enable()
			f := m.ctx.Rnd(8, 20) * body.Mass()
			body.AddForce(mgl64.Vec3{m.ctx.Rnd(-f, f), f * 10, m.ctx.Rnd(-f, f)})
		}

		if pos.Y() < -10 {
			m.ctx.FreeEntity(ent)
			m.spawn()
		}
		node = next
	}

	*m.now += frameDt
	start := time.Now()
	m.steps = m.ctx.Step()
	m.physTime = time.Since(start)

	m.stepsHist = append(m.stepsHist, float64(m.steps))
	if len(m.stepsHist) > 120 {
		m.stepsHist = m.stepsHist[1:]
	}
}

func project(p mgl64.Vec3) (int, int) {
	cx := int((p.X() - worldMinX) / (worldMaxX - worldMinX) * float64(canvasW))
	cy := int((worldMaxY - p.Y()) / (worldMaxY - worldMinY) * float64(canvasH))
	return cx, cy
}

func shapeRune(s actor.Shape) rune {
	switch s.(type) {
	case *actor.Box:
		return '#'
	case *actor.Sphere:
		return 'o'
	case *actor.Cylinder:
		return '|'
	case *actor.Capsule:
		return '!'
	default:
		return '*'
	}
}

func (m model) View() string {
	cells := make([][]rune, canvasH)
	tinted := make([][]bool, canvasH)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", canvasW))
		tinted[i] = make([]bool, canvasW)
	}

	plot := func(x, y int, r rune, tint bool) {
		if x < 0 || x >= canvasW || y < 0 || y >= canvasH {
			return
		}
		cells[y][x] = r
		tinted[y][x] = tint
	}

	// Slab outline along its top face, trigger sphere as a ring.
	slabRot := m.slab.Data.Placement().Rotation
	for t := -16.0; t <= 16.0; t += 0.5 {
		p := slabRot.Rotate(mgl64.Vec3{t, 0.5, 0})
		x, y := project(p)
		plot(x, y, '=', false)
	}
	for a := 0.0; a < 2*math.Pi; a += 0.3 {
		p := trigPos.Add(mgl64.Vec3{math.Cos(a) * trigRadius, math.Sin(a) * trigRadius, 0})
		x, y := project(p)
		plot(x, y, '.', true)
	}

	m.ctx.Objects.IterateForward(func(n *clist.Node[*mechsim.Entity]) {
		ent := n.Data
		g := ent.Geoms()[0]
		x, y := project(ent.Body.Position())
		plot(x, y, shapeRune(g.Shape()), mechsim.InfoOf(g).Hew == red)
	})

	var canvas strings.Builder
	for y := range cells {
		for x := range cells[y] {
			ch := string(cells[y][x])
			if tinted[y][x] {
				canvas.WriteString(tintStyle.Render(ch))
			} else {
				canvas.WriteString(ch)
			}
		}
		if y < canvasH-1 {
			canvas.WriteByte('\n')
		}
	}

	asleep := 0
	m.ctx.Objects.IterateForward(func(n *clist.Node[*mechsim.Entity]) {
		if n.Data.Body.Disabled {
			asleep++
		}
	})

	var stats strings.Builder
	stats.WriteString(labelStyle.Render("entities") + valueStyle.Render(fmt.Sprintf("%d (%d asleep)", m.ctx.Objects.Count(), asleep)) + "\n")
	stats.WriteString(labelStyle.Render("contacts") + valueStyle.Render(fmt.Sprintf("%d", m.ctx.LastContacts())) + "\n")
	stats.WriteString(labelStyle.Render("steps/frame") + valueStyle.Render(fmt.Sprintf("%d", m.steps)) + "\n")
	stats.WriteString(labelStyle.Render("phys time") + valueStyle.Render(m.physTime.Round(time.Microsecond).String()) + "\n")
	thrust := "off"
	if m.thrust {
		thrust = "ON"
	}
	stats.WriteString(labelStyle.Render("thrust") + valueStyle.Render(thrust) + "\n")
	if m.steps >= m.ctx.MaxSteps {
		stats.WriteString(warnStyle.Render("overloaded, lagging real time") + "\n")
	}
	if len(m.stepsHist) > 1 {
		chart := asciigraph.Plot(m.stepsHist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("steps/frame"))
		stats.WriteString("\n" + graphStyle.Render(chart) + "\n")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(canvas.String()),
		lipgloss.NewStyle().Padding(0, 2).Render(stats.String()),
	)

	return headerStyle.Render("fountain") + "\n" +
		body + "\n" +
		helpStyle.Render("space toggle thrust · q quit")
}

func main() {
	m, err := newModel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
