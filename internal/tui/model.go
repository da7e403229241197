// Package tui provides the Bubble Tea live monitor interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/staccato/internal/analyzer"
	"github.com/verte-zerg/staccato/internal/capture"
	"github.com/verte-zerg/staccato/internal/keys"
	"github.com/verte-zerg/staccato/internal/model"
	"github.com/verte-zerg/staccato/internal/session"
	"github.com/verte-zerg/staccato/internal/store"
	"github.com/verte-zerg/staccato/internal/timeline"
	"github.com/verte-zerg/staccato/internal/tracker"
)

const (
	maxLogLines = 8

	minWindowSeconds = 2.0
	maxWindowSeconds = 60.0
	minBlocks        = 20
	maxBlocks        = 200
	blocksStep       = 10
)

type frameMsg time.Time

type statsMsg time.Time

type captureDoneMsg struct {
	err error
}

// Model implements the Bubble Tea live monitor UI.
type Model struct {
	cfg      model.MonitorConfig
	source   capture.Source
	queue    *capture.Queue
	track    *tracker.Tracker
	engine   *timeline.Engine
	an       *analyzer.Analyzer
	sessions *session.Manager
	st       *store.Store

	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int
	help   help.Model
	keymap keyMap

	events   []model.KeyEvent
	logLines []string
	lastSeen float64

	recording   bool
	recordStart float64
	recordWall  time.Time
	recorded    []model.KeyEvent

	rows       []timeline.Row
	metrics    model.SessionMetrics
	hotspots   []model.KeyInteraction
	recent     *model.KeyInteraction
	keysPerSec float64

	status     string
	captureErr error
}

// NewModel constructs a live monitor model. The store may be nil, in which
// case saved sessions are not summarized into history.
func NewModel(cfg model.MonitorConfig, source capture.Source, st *store.Store, sessions *session.Manager) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	tick := 0.0
	if cfg.RenderFPS > 0 {
		tick = 1.0 / float64(cfg.RenderFPS)
	}
	return &Model{
		cfg:      cfg,
		source:   source,
		queue:    capture.NewQueue(cfg.QueueSize),
		track:    tracker.New(),
		engine:   timeline.NewEngine(cfg.WindowSeconds, cfg.TimelineBlocks, tick),
		an:       analyzer.New(analyzerConfig(cfg)),
		sessions: sessions,
		st:       st,
		ctx:      ctx,
		cancel:   cancel,
		help:     help.New(),
		keymap:   defaultKeyMap,
	}
}

func analyzerConfig(cfg model.MonitorConfig) analyzer.Config {
	out := analyzer.DefaultConfig()
	if cfg.MinorMs > 0 {
		out.MinorThreshold = time.Duration(cfg.MinorMs * float64(time.Millisecond))
	}
	if cfg.ModerateMs > 0 {
		out.ModerateThreshold = time.Duration(cfg.ModerateMs * float64(time.Millisecond))
	}
	if cfg.SevereMs > 0 {
		out.SevereThreshold = time.Duration(cfg.SevereMs * float64(time.Millisecond))
	}
	out.Weights = analyzer.Weights{
		Clean:    cfg.WeightClean,
		Minor:    cfg.WeightMinor,
		Moderate: cfg.WeightModerate,
		Severe:   cfg.WeightSevere,
	}
	return out
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startCapture(), m.frameTick(), m.statsTick())
}

// startCapture runs the event source until the context is cancelled,
// offering every event to the bounded queue. Events that arrive while the
// queue is full are dropped rather than stalling the source.
func (m *Model) startCapture() tea.Cmd {
	return func() tea.Msg {
		err := m.source.Stream(m.ctx, func(ev model.KeyEvent) {
			m.queue.Offer(ev)
		})
		return captureDoneMsg{err: err}
	}
}

func (m *Model) frameTick() tea.Cmd {
	fps := m.cfg.RenderFPS
	if fps <= 0 {
		fps = 30
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *Model) statsTick() tea.Cmd {
	interval := m.cfg.StatsInterval
	if interval <= 0 {
		interval = 1.0
	}
	return tea.Tick(time.Duration(interval*float64(time.Second)), func(t time.Time) tea.Msg {
		return statsMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case frameMsg:
		m.consumeEvents()
		m.rows = m.engine.Render(m.events, m.track.Active(), capture.Now())
		return m, m.frameTick()
	case statsMsg:
		m.recompute()
		return m, m.statsTick()
	case captureDoneMsg:
		if msg.err != nil && m.ctx.Err() == nil {
			m.captureErr = msg.err
			m.cancel()
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Record):
		m.toggleRecording()
	case key.Matches(msg, m.keymap.Save):
		m.saveRecording()
	case key.Matches(msg, m.keymap.Clear):
		m.clearAll()
	case key.Matches(msg, m.keymap.WindowUp):
		m.adjustWindow(1)
	case key.Matches(msg, m.keymap.WindowDown):
		m.adjustWindow(-1)
	case key.Matches(msg, m.keymap.BlocksUp):
		m.adjustBlocks(blocksStep)
	case key.Matches(msg, m.keymap.BlocksDown):
		m.adjustBlocks(-blocksStep)
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// consumeEvents drains the queue, feeds the tracker, and prunes the rolling
// window buffer.
func (m *Model) consumeEvents() {
	for _, ev := range m.queue.Drain(0) {
		ev.Key = keys.Normalize(ev.Key)
		accepted := m.track.Process(ev)
		m.lastSeen = ev.Timestamp
		m.appendLog(ev, accepted)
		if !accepted {
			continue
		}
		m.events = append(m.events, ev)
		if m.recording {
			m.recorded = append(m.recorded, ev)
		}
	}
	m.pruneEvents()
}

// pruneEvents keeps a margin past the view window so a release just outside
// the window can still pair with a press inside it.
func (m *Model) pruneEvents() {
	cutoff := capture.Now() - m.engine.Window()*2
	i := 0
	for i < len(m.events) && m.events[i].Timestamp < cutoff {
		i++
	}
	if i > 0 {
		m.events = append(m.events[:0], m.events[i:]...)
	}
}

func (m *Model) appendLog(ev model.KeyEvent, accepted bool) {
	icon := "⬇"
	if ev.Type == model.Release {
		icon = "⬆"
	}
	line := fmt.Sprintf("%9.3f %s %s", ev.Timestamp, icon, strings.ToUpper(ev.Key))
	if !accepted {
		line += " (repeat)"
	}
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
}

func (m *Model) recompute() {
	metrics := m.an.Analyze(m.events)
	m.metrics = m.an.SessionMetrics(metrics)
	m.hotspots = m.an.FindHotspots(metrics, m.cfg.TopOffenders)
	m.recent = m.an.MostRecentOverlap(metrics)
	m.keysPerSec = m.an.KeysPerSecond(m.events, m.engine.Window())
}

func (m *Model) toggleRecording() {
	if m.recording {
		m.recording = false
		m.status = fmt.Sprintf("recording stopped (%d events, press s to save)", len(m.recorded))
		return
	}
	m.recording = true
	m.recordStart = capture.Now()
	m.recordWall = time.Now()
	m.recorded = nil
	m.status = "recording..."
}

func (m *Model) saveRecording() {
	if m.recording {
		m.toggleRecording()
	}
	if len(m.recorded) == 0 {
		m.status = "nothing recorded yet (press r to record)"
		return
	}
	s := model.Session{
		StartTime: m.recordStart,
		EndTime:   capture.Now(),
		Meta:      map[string]string{"started_at": m.recordWall.Format(time.RFC3339)},
		Events:    m.recorded,
	}
	path, err := m.sessions.Save(s)
	if err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return
	}
	m.summarize(s, path)
	m.recorded = nil
	m.status = fmt.Sprintf("saved %s", path)
}

// summarize persists the aggregate metrics of a saved session to history.
func (m *Model) summarize(s model.Session, path string) {
	if m.st == nil {
		return
	}
	sum := Summarize(m.an, s, m.recordWall, path)
	if _, err := m.st.InsertSummary(context.Background(), sum); err != nil {
		logErrf("failed to save session summary: %v\n", err)
	}
}

func (m *Model) clearAll() {
	m.events = nil
	m.logLines = nil
	m.rows = nil
	m.track.Clear()
	m.engine.Clear()
	m.metrics = model.SessionMetrics{}
	m.hotspots = nil
	m.recent = nil
	m.keysPerSec = 0
	m.status = "cleared"
}

func (m *Model) adjustWindow(delta float64) {
	w := m.engine.Window() + delta
	if w < minWindowSeconds {
		w = minWindowSeconds
	}
	if w > maxWindowSeconds {
		w = maxWindowSeconds
	}
	m.engine.SetWindow(w)
	m.status = fmt.Sprintf("window %.0fs", w)
}

func (m *Model) adjustBlocks(delta int) {
	b := m.engine.Blocks() + delta
	if b < minBlocks {
		b = minBlocks
	}
	if b > maxBlocks {
		b = maxBlocks
	}
	m.engine.SetBlocks(b)
	m.status = fmt.Sprintf("%d blocks", b)
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	header := titleStyle.Render("STACCATO") + dimStyle.Render("  typing hygiene monitor  ") +
		textStyle.Render(fmt.Sprintf("%.1f keys/s", m.keysPerSec)) +
		dimStyle.Render(fmt.Sprintf("  held %d  dropped %d", m.track.ActiveCount(), m.queue.Dropped()))
	if m.recording {
		header += "  " + recordStyle.Render(fmt.Sprintf("● REC %d", len(m.recorded)))
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	lastActivity := 0.0
	if m.lastSeen > 0 {
		lastActivity = capture.Now() - m.lastSeen
	}
	b.WriteString(renderPianoRoll(m.rows, m.engine.Window(), m.engine.Blocks(), lastActivity, m.lastSeen > 0))
	b.WriteString("\n\n")

	b.WriteString(renderDashboard(m.metrics, m.hotspots, m.recent, m.an))
	b.WriteString("\n")

	if len(m.logLines) > 0 {
		b.WriteString(dimStyle.Render("EVENTS"))
		b.WriteString("\n")
		for _, line := range m.logLines {
			b.WriteString(dimStyle.Render(line))
			b.WriteString("\n")
		}
	}

	if m.status != "" {
		b.WriteString(textStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keymap))

	out := b.String()
	if m.width > 0 {
		out = lipgloss.NewStyle().MaxWidth(m.width).Render(out)
	}
	return out
}

// Summarize computes the persisted aggregate for one recorded session.
func Summarize(an *analyzer.Analyzer, s model.Session, startedAt time.Time, eventsFile string) model.SessionSummary {
	metrics := an.Analyze(s.Events)
	sm := an.SessionMetrics(metrics)
	hotspots := an.FindHotspots(metrics, 1)

	duration := s.EndTime - s.StartTime
	if duration < 0 {
		duration = 0
	}
	worst := ""
	if len(hotspots) > 0 {
		worst = keys.PairKey(hotspots[0].Key1, hotspots[0].Key2)
	}
	return model.SessionSummary{
		StartedAt:             startedAt.Format(time.RFC3339),
		EndedAt:               startedAt.Add(time.Duration(duration * float64(time.Second))).Format(time.RFC3339),
		DurationSeconds:       duration,
		TotalKeypresses:       sm.TotalKeypresses,
		CleanKeypresses:       sm.CleanKeypresses,
		OverlappingKeypresses: sm.OverlappingKeypresses,
		HygieneScore:          sm.HygieneScore,
		AdhesionRate:          sm.AdhesionRate,
		TotalOverlapMs:        sm.TotalOverlapDuration * 1000,
		MinorAdhesions:        sm.MinorAdhesions,
		ModerateAdhesions:     sm.ModerateAdhesions,
		SevereAdhesions:       sm.SevereAdhesions,
		WorstPair:             worst,
		EventsFile:            eventsFile,
	}
}

// Run drives the monitor UI until quit or a capture failure.
func Run(cfg model.MonitorConfig, source capture.Source, st *store.Store, sessions *session.Manager) error {
	m := NewModel(cfg, source, st, sessions)
	defer m.cancel()
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if m.captureErr != nil && m.captureErr != context.Canceled {
		return fmt.Errorf("capture failed: %w", m.captureErr)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
