package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodecanvas/pkg/geom"
	"github.com/matzehuels/nodecanvas/pkg/graph"
	"github.com/matzehuels/nodecanvas/pkg/movement"
)

// tuiCommand creates the tui command.
func (c *CLI) tuiCommand() *cobra.Command {
	var step float64

	cmd := &cobra.Command{
		Use:   "tui <file>",
		Short: "Edit node positions interactively",
		Long: `Open a diagram in an interactive node list. Nodes can be selected, nudged,
and dragged; drags run through the movement engine one frame per tick, with
the configured snap and group-box clamping.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			g, err := readDiagram(args[0])
			if err != nil {
				return err
			}
			if step <= 0 {
				step = cfg.Canvas.Snap
			}
			e, sched := newEngine(g, cfg)
			m := newCanvasModel(g, e, sched, args[0], step, cfg.Canvas.FrameInterval.Duration)

			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(canvasModel); ok && fm.dirty {
				printWarning("Unsaved changes to %s were discarded", args[0])
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&step, "step", 0, "keyboard step (default: snap, or 10)")
	return cmd
}

// =============================================================================
// canvasModel - Interactive node list
// =============================================================================

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tableHeaderStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const defaultStep = 10

// frameMsg advances the movement engine by one frame.
type frameMsg time.Time

// canvasModel is the bubbletea model of the tui command. All canvas access
// happens inside Update, so the engine is only ever driven from one
// goroutine.
type canvasModel struct {
	graph    *graph.Graph
	engine   *movement.Engine
	sched    *movement.ManualScheduler
	path     string
	step     float64
	interval time.Duration

	cursor int
	offset int
	height int

	drag   *movement.Drag
	dirty  bool
	status string
}

func newCanvasModel(g *graph.Graph, e *movement.Engine, sched *movement.ManualScheduler, path string, step float64, interval time.Duration) canvasModel {
	if step <= 0 {
		step = defaultStep
	}
	if interval <= 0 {
		interval = movement.DefaultFrameInterval
	}
	return canvasModel{
		graph:    g,
		engine:   e,
		sched:    sched,
		path:     path,
		step:     step,
		interval: interval,
		height:   15,
	}
}

func (m canvasModel) Init() tea.Cmd {
	return m.nextFrame()
}

func (m canvasModel) nextFrame() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m canvasModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.sched.Step()
		return m, m.nextFrame()
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-9, 5)
		return m, nil
	case tea.KeyMsg:
		if m.drag != nil {
			return m.updateDrag(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

// updateList handles keys while no drag is in progress.
func (m canvasModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nodes := m.graph.Nodes()
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(nodes)-1 {
			m.cursor++
		}
	case " ":
		if n := m.current(); n != nil {
			m.toggle(n)
		}
	case "c":
		m.graph.ClearSelection()
		m.status = "Selection cleared"
	case "H", "J", "K", "L":
		m.nudge(keyDirection(msg.String()))
	case "d":
		m.startDrag()
	case "w":
		if err := writeDiagram(m.graph, m.path); err != nil {
			m.status = "Save failed: " + err.Error()
		} else {
			m.dirty = false
			m.status = "Saved " + m.path
		}
	}
	m.scroll()
	return m, nil
}

// updateDrag handles keys during a drag: direction keys move the canvas
// cursor, the engine makes the nodes follow on the next frame.
func (m canvasModel) updateDrag(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c":
		m.cancelDrag()
		return m, tea.Quit
	case "up", "down", "left", "right", "h", "j", "k", "l":
		d := keyDirection(key).Scale(m.step)
		m.graph.SetCursor(m.graph.Cursor().Add(d))
	case "enter":
		m.drag.Apply()
		m.drag.Stop()
		m.status = fmt.Sprintf("Moved %d node(s) in %d frames", len(m.drag.Nodes()), m.drag.Frames())
		m.drag = nil
		m.dirty = true
	case "esc":
		m.cancelDrag()
		m.status = "Drag cancelled"
	}
	return m, nil
}

func (m *canvasModel) current() *graph.Node {
	nodes := m.graph.Nodes()
	if m.cursor < 0 || m.cursor >= len(nodes) {
		return nil
	}
	return nodes[m.cursor]
}

func (m *canvasModel) toggle(n *graph.Node) {
	sel, _ := m.graph.Group(graph.SelectedGroup)
	if sel.Has(n) {
		m.graph.Deselect(n)
		return
	}
	m.graph.Select(n)
}

// ensureSelection selects the node under the cursor when nothing is selected.
func (m *canvasModel) ensureSelection() bool {
	if len(m.graph.Selected()) > 0 {
		return true
	}
	n := m.current()
	if n == nil {
		return false
	}
	m.graph.Select(n)
	return true
}

func (m *canvasModel) nudge(dir geom.Point) {
	if !m.ensureSelection() {
		return
	}
	moved := m.engine.Nudge(graph.SelectedGroup, dir.Scale(m.step))
	if moved > 0 {
		m.dirty = true
	}
	m.status = fmt.Sprintf("Nudged %d node(s)", moved)
}

func (m *canvasModel) startDrag() {
	if !m.ensureSelection() {
		return
	}
	m.graph.SetCursor(geom.Point{})
	m.drag = m.engine.Start(graph.SelectedGroup)
	m.status = ""
}

// cancelDrag puts the dragged nodes back where the drag found them.
func (m *canvasModel) cancelDrag() {
	if m.drag == nil {
		return
	}
	for _, n := range m.drag.Nodes() {
		if p, ok := m.drag.InitialPosition(n.ID()); ok {
			n.SetPosition(p)
		}
	}
	m.drag.Stop()
	m.graph.SetCursor(m.drag.InitialCursor())
	m.drag = nil
}

func (m *canvasModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// keyDirection maps a direction key to a unit vector. Screen y grows down.
func keyDirection(key string) geom.Point {
	switch key {
	case "up", "k", "K":
		return geom.Pt(0, -1)
	case "down", "j", "J":
		return geom.Pt(0, 1)
	case "left", "h", "H":
		return geom.Pt(-1, 0)
	case "right", "l", "L":
		return geom.Pt(1, 0)
	}
	return geom.Point{}
}

func (m canvasModel) View() string {
	var b strings.Builder

	title := "Canvas " + m.graph.ID()
	if m.dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	if m.drag != nil {
		b.WriteString(listDimStyle.Render("arrows/hjkl move  ⏎ drop  esc cancel"))
	} else {
		b.WriteString(listDimStyle.Render("↑/↓ navigate  space select  HJKL nudge  d drag  w save  q quit"))
	}
	b.WriteString("\n\n")

	nodes := m.graph.Nodes()
	sel, _ := m.graph.Group(graph.SelectedGroup)
	end := min(m.offset+m.height, len(nodes))

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		n := nodes[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		mark := ""
		if sel.Has(n) {
			mark = iconSuccess
		}
		p := n.Position()
		rows = append(rows, []string{cursor, mark, n.ID(), n.Label(), fmt.Sprintf("%g,%g", p.X, p.Y), n.Group(), nodeState(n)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Sel", "Node", "Label", "Position", "Group", "State").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tableHeaderStyle
			}
			idx := m.offset + row
			if idx >= len(nodes) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.cursor:
				return listSelectedStyle
			case nodes[idx].Locked():
				return listDimStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	b.WriteString(t.Render())
	b.WriteString("\n\n")

	if m.drag != nil {
		c := m.graph.Cursor().Sub(m.drag.InitialCursor())
		b.WriteString(StyleHighlight.Render(fmt.Sprintf("dragging %d node(s) · frame %d · %+g,%+g", len(m.drag.Nodes()), m.drag.Frames(), c.X, c.Y)))
	} else if m.status != "" {
		b.WriteString(listDimStyle.Render(m.status))
	} else {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.cursor+1, len(nodes)), len(nodes))))
	}
	return b.String()
}

func nodeState(n *graph.Node) string {
	switch {
	case n.Moving():
		return "moving"
	case n.Locked():
		return "locked"
	case n.Collapsed():
		return "collapsed"
	}
	return ""
}
