package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pmwhite/gexf-viewer/pkg/layout"
	"github.com/pmwhite/gexf-viewer/pkg/scheduler"
	"github.com/pmwhite/gexf-viewer/pkg/watch"
)

// viewCommand creates the view command, which animates the layout in the
// terminal.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		sim     simFlags
		fps     int
		watchIn bool
	)

	cmd := &cobra.Command{
		Use:   "view [graph.gexf]",
		Short: "Animate the layout in the terminal",
		Long: `Animate the layout in the terminal.

Nodes are drawn as dots coloured by height with edges between them. The
simulation can be paused, restarted with a new seed, panned and zoomed.
With --watch the graph is reloaded whenever the input file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := sim.resolve(cmd)
			if err != nil {
				return err
			}
			return c.runView(cmd.Context(), args[0], cfg, fps, watchIn)
		},
	}

	sim.register(cmd)
	cmd.Flags().IntVar(&fps, "fps", scheduler.DefaultFPS, "frames per second")
	cmd.Flags().BoolVarP(&watchIn, "watch", "w", false, "reload when the input file changes")

	return cmd
}

// runView loads input and runs the terminal UI until the user quits.
func (c *CLI) runView(ctx context.Context, input string, cfg layout.Config, fps int, watchIn bool) error {
	// The alternate screen owns the terminal; logs would tear it.
	quiet := log.New(io.Discard)
	ctx = withLogger(ctx, quiet)
	c.Logger.SetOutput(io.Discard)

	e, err := loadEngine(ctx, input, cfg)
	if err != nil {
		return err
	}
	sched := scheduler.New(e, scheduler.WithFPS(fps), scheduler.WithLogger(quiet))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newViewModel(sched, input)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if watchIn {
		reload := reloader(sched, input, quiet)
		w := watch.New(input, watch.WithLogger(quiet))
		go func() {
			_ = w.Run(ctx, func() {
				p.Send(reloadMsg{err: reload(ctx)})
			})
		}()
	}

	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil || errors.Is(err, tea.ErrProgramKilled) {
			return context.Canceled
		}
		return fmt.Errorf("terminal UI: %w", err)
	}
	return nil
}

// =============================================================================
// Key Bindings
// =============================================================================

type viewKeyMap struct {
	Pause   key.Binding
	Restart key.Binding
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Fit     key.Binding
	Labels  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var viewKeys = viewKeyMap{
	Pause: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "pause"),
	),
	Restart: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "restart"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "pan up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "pan down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "pan left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "pan right"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "zoom out"),
	),
	Fit: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "fit"),
	),
	Labels: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "labels"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q", "esc"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k viewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Restart, k.ZoomIn, k.ZoomOut, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k viewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Restart, k.Labels},
		{k.Up, k.Down, k.Left, k.Right},
		{k.ZoomIn, k.ZoomOut, k.Fit},
		{k.Help, k.Quit},
	}
}

// =============================================================================
// Model
// =============================================================================

// panStep is the number of cells one arrow key press moves the view.
const panStep = 4

type frameMsg time.Time

type reloadMsg struct{ err error }

type viewModel struct {
	sched  *scheduler.Scheduler
	input  string
	keys   viewKeyMap
	help   help.Model
	vp     viewport
	labels bool

	width, height int
	snap          layout.Snapshot
	stats         layout.Stats
	status        string
}

func newViewModel(sched *scheduler.Scheduler, input string) viewModel {
	return viewModel{
		sched:  sched,
		input:  input,
		keys:   viewKeys,
		help:   help.New(),
		vp:     newViewport(),
		labels: true,
		snap:   sched.Latest(),
		stats:  sched.Stats(),
	}
}

func (m viewModel) Init() tea.Cmd {
	return m.nextFrame()
}

func (m viewModel) nextFrame() tea.Cmd {
	return tea.Tick(m.sched.Interval(), func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.sched.Tick()
		m.refresh()
		return m, m.nextFrame()

	case reloadMsg:
		if msg.err != nil {
			m.status = "reload failed: " + msg.err.Error()
		} else {
			m.status = "reloaded " + m.input
			m.vp = newViewport()
		}
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m viewModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Pause):
		m.sched.Toggle()
	case key.Matches(msg, m.keys.Restart):
		seed := m.sched.Stats().Seed + 1
		if err := m.sched.Restart(seed); err != nil {
			m.status = "restart failed: " + err.Error()
		} else {
			m.status = fmt.Sprintf("restarted with seed %d", seed)
		}
	case key.Matches(msg, m.keys.Up):
		m.vp.panY += panStep
	case key.Matches(msg, m.keys.Down):
		m.vp.panY -= panStep
	case key.Matches(msg, m.keys.Left):
		m.vp.panX += panStep
	case key.Matches(msg, m.keys.Right):
		m.vp.panX -= panStep
	case key.Matches(msg, m.keys.ZoomIn):
		m.vp = m.vp.zoomIn()
	case key.Matches(msg, m.keys.ZoomOut):
		m.vp = m.vp.zoomOut()
	case key.Matches(msg, m.keys.Fit):
		m.vp = newViewport()
	case key.Matches(msg, m.keys.Labels):
		m.labels = !m.labels
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	m.refresh()
	return m, nil
}

func (m *viewModel) refresh() {
	m.snap = m.sched.Latest()
	m.stats = m.sched.Stats()
}

func (m viewModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	footer := m.help.View(m.keys)
	h := m.height - 1 - strings.Count(footer, "\n") - 1
	if m.status != "" {
		h--
	}

	var b strings.Builder
	b.WriteString(m.statusLine())
	b.WriteByte('\n')
	b.WriteString(draw(m.snap, m.vp, m.width, max(h, 0), m.labels).String())
	b.WriteByte('\n')
	if m.status != "" {
		b.WriteString(StyleWarning.Render(m.status))
		b.WriteByte('\n')
	}
	b.WriteString(footer)
	return b.String()
}

func (m viewModel) statusLine() string {
	parts := []string{
		StyleTitle.Render(appName),
		StyleDim.Render(fmt.Sprintf("tick %d", m.snap.Tick)),
		StyleDim.Render(fmt.Sprintf("%d nodes", m.stats.Nodes)),
		StyleDim.Render(fmt.Sprintf("%d edges", m.stats.Edges)),
		StyleDim.Render(fmt.Sprintf("energy %.3g", m.stats.Energy)),
		StyleDim.Render(fmt.Sprintf("seed %d", m.stats.Seed)),
	}
	if m.stats.Flattened {
		parts = append(parts, StyleWarning.Render("cyclic"))
	}
	if m.sched.Paused() {
		parts = append(parts, stylePaused.Render("PAUSED"))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}
