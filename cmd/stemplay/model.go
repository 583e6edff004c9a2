// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/decred/slog"

	"github.com/ik5/stemmix/mixer"
)

// pollInterval is how often the host checks for the end-of-session
// request and refreshes the screen.
const pollInterval = 100 * time.Millisecond

const (
	gainStep  = 0.05
	seekStep  = 5.0 // seconds
	meterCols = 20
)

// device is what the model needs from the output; tests use a fake.
type device interface {
	Start()
	Pause()
}

type tickMsg time.Time

type model struct {
	engine *mixer.Engine
	dev    device
	log    slog.Logger

	selected int
	err      error

	keys keyMap
	help help.Model

	title    lipgloss.Style
	rowStyle lipgloss.Style
	selStyle lipgloss.Style
	dimStyle lipgloss.Style
	errStyle lipgloss.Style
}

func newModel(e *mixer.Engine, dev device, log slog.Logger) *model {
	return &model{
		engine:   e,
		dev:      dev,
		log:      log,
		keys:     newKeyMap(),
		help:     help.New(),
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		rowStyle: lipgloss.NewStyle().PaddingLeft(2),
		selStyle: lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("11")).Bold(true),
		dimStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		errStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *model) Init() tea.Cmd {
	return tick()
}

func (m *model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		m.poll()
		return m, tick()

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.KeyMsg:
		m.err = nil
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.dev.Pause()
			m.engine.Stop()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Play):
			m.togglePlay()
		case key.Matches(msg, m.keys.Stop):
			m.dev.Pause()
			m.engine.Stop()
		case key.Matches(msg, m.keys.Back):
			m.seekBy(-seekStep)
		case key.Matches(msg, m.keys.Forward):
			m.seekBy(seekStep)
		case key.Matches(msg, m.keys.Up):
			m.selected = max(m.selected-1, 0)
		case key.Matches(msg, m.keys.Down):
			m.selected = max(min(m.selected+1, len(m.engine.Tracks())-1), 0)
		case key.Matches(msg, m.keys.GainUp):
			m.nudgeGain(gainStep)
		case key.Matches(msg, m.keys.GainDown):
			m.nudgeGain(-gainStep)
		case key.Matches(msg, m.keys.Mute):
			if st, ok := m.selectedTrack(); ok {
				m.err = m.engine.Mute(st.Index, !st.Muted)
			}
		case key.Matches(msg, m.keys.Solo):
			if st, ok := m.selectedTrack(); ok {
				m.err = m.engine.Solo(st.Index, !st.Soloed)
			}
		case key.Matches(msg, m.keys.ClearSolo):
			m.engine.ClearSolo()
		case key.Matches(msg, m.keys.MasterUp):
			target, _ := m.engine.MasterGain()
			m.engine.SetMasterGain(target + gainStep)
		case key.Matches(msg, m.keys.MasterDn):
			target, _ := m.engine.MasterGain()
			m.engine.SetMasterGain(target - gainStep)
		}
	}

	return m, nil
}

// poll runs on the host side of the stop handshake: render only raises the
// request, the device is torn down here.
func (m *model) poll() {
	if !m.engine.TakeStopRequest() {
		return
	}

	m.dev.Pause()
	m.engine.Stop()
	m.log.Infof("Playback finished")
}

func (m *model) togglePlay() {
	if m.engine.TransportState() == mixer.Playing {
		m.err = m.engine.Pause()
		return
	}

	if m.err = m.engine.Play(); m.err == nil {
		m.dev.Start()
	}
}

// seekBy moves the playhead. The engine refuses to seek while playing, so
// playback is paused around the jump.
func (m *model) seekBy(seconds float64) {
	playing := m.engine.TransportState() == mixer.Playing
	if playing {
		if m.err = m.engine.Pause(); m.err != nil {
			return
		}
	}

	m.err = m.engine.SeekSeconds(m.engine.PositionSeconds() + seconds)

	if playing {
		if err := m.engine.Play(); err != nil && m.err == nil {
			m.err = err
		}
	}
}

func (m *model) selectedTrack() (mixer.TrackStatus, bool) {
	tracks := m.engine.Tracks()
	if m.selected < 0 || m.selected >= len(tracks) {
		return mixer.TrackStatus{}, false
	}

	return tracks[m.selected], true
}

func (m *model) nudgeGain(delta float32) {
	if st, ok := m.selectedTrack(); ok {
		m.err = m.engine.SetGain(st.Index, st.Gain+delta)
	}
}

func meter(v float32) string {
	n := int(v*meterCols + 0.5)
	return strings.Repeat("█", n) + strings.Repeat("░", meterCols-n)
}

func clock(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func (m *model) View() string {
	var b strings.Builder

	pos := time.Duration(m.engine.PositionSeconds() * float64(time.Second))
	fmt.Fprintf(&b, "%s  %s / %s  %d Hz\n\n",
		m.title.Render("stemplay "+m.engine.TransportState().String()),
		clock(pos), clock(m.engine.Duration()), m.engine.SampleRate())

	for _, st := range m.engine.Tracks() {
		flags := "  "
		if st.Muted {
			flags = "M "
		}
		if st.Soloed {
			flags = flags[:1] + "S"
		}

		row := fmt.Sprintf("%-16.16s %s %s %3.0f%%", st.Name, flags, meter(st.SmoothedGain), st.Gain*100)
		switch {
		case st.Index == m.selected:
			b.WriteString(m.selStyle.Render("> " + row))
		case !st.Audible:
			b.WriteString(m.rowStyle.Render(m.dimStyle.Render("  " + row)))
		default:
			b.WriteString(m.rowStyle.Render("  " + row))
		}
		b.WriteByte('\n')
	}

	target, smoothed := m.engine.MasterGain()
	fmt.Fprintf(&b, "\n  %-16s    %s %3.0f%%\n", "master", meter(smoothed), target*100)

	if s := m.engine.LatencyStats(); !s.Empty() {
		b.WriteString(m.dimStyle.Render("  "+s.String()) + "\n")
	}
	if m.err != nil {
		b.WriteString(m.errStyle.Render("  "+m.err.Error()) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))

	return b.String()
}
