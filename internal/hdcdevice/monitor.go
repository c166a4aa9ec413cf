// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hdcdevice

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kiksotik/hdc/pkg/hdc/demo"
	"github.com/kiksotik/hdc/pkg/hdc/engine"
	"github.com/kiksotik/hdc/pkg/hdc/transport"
	"github.com/kiksotik/hdc/pkg/hdc/wire"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Serves the demo device with a live TUI of decoded frames",
	Long: `monitor runs the same device loop as serve, but taps the transport
and decodes every frame crossing it, rendering a scrolling feed of requests,
replies and events instead of plain log lines.`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().BoolVar(&serveDemoLoopback, "demo", false, "run a self-contained in-process demo instead of opening a transport")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	dev := demo.NewDevice(engine.VersionString, maxReq, deviceID)

	var connInfo string
	var tap *tapTransport
	if serveDemoLoopback {
		devSide, proberSide := transport.NewPipeTransportPair()
		tap = newTapTransport(devSide)
		connInfo = "in-process demo loopback"
		go runLoopbackProber(proberSide)
	} else {
		t, info, err := openTransport()
		if err != nil {
			return err
		}
		tap = newTapTransport(t)
		connInfo = info
	}
	defer tap.Close()

	eng, err := engine.New(engine.Config{Device: dev, Transport: tap, Logger: logger})
	if err != nil {
		return fmt.Errorf("hdc-device: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Work(ctx)

	p := tea.NewProgram(initialMonitorModel(connInfo), tea.WithAltScreen())
	go pumpTaps(p, tap.taps)

	_, err = p.Run()
	return err
}

type frameEntry struct {
	at   time.Time
	dir  tapDirection
	data []byte
}

type monitorModel struct {
	connInfo string
	frames   []frameEntry
	maxLines int
	width    int
	height   int
}

func initialMonitorModel(connInfo string) monitorModel {
	return monitorModel{connInfo: connInfo, maxLines: 500, width: 80, height: 24}
}

type frameMsg frameEntry

// pumpTaps decodes raw byte chunks off a tapTransport into whole messages
// and forwards each as a tea.Msg, one stream per direction so an in-flight
// request on one side never gets mixed with a reply mid-packet on the
// other. TX (device-to-host replies and events) is reassembled across
// however many packets it takes — an IDL-JSON reply routinely spans many —
// while RX (host-to-device requests) is always exactly one packet.
func pumpTaps(p *tea.Program, taps <-chan tappedChunk) {
	var rxBuf, txBuf []byte
	for chunk := range taps {
		if chunk.dir == tapRX {
			rxBuf = append(rxBuf, chunk.data...)
			for {
				message, _ := wire.DecodeMessage(rxBuf, wire.MaxSingleRequestSize)
				if message == nil {
					break
				}
				p.Send(frameMsg{at: time.Now(), dir: chunk.dir, data: message})
				rxBuf = nil
			}
			continue
		}

		txBuf = append(txBuf, chunk.data...)
		for {
			message, _ := wire.DecodeReplyMessage(txBuf, 0)
			if message == nil {
				break
			}
			p.Send(frameMsg{at: time.Now(), dir: chunk.dir, data: message})
			txBuf = nil
		}
	}
}

func (m monitorModel) Init() tea.Cmd { return nil }

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case frameMsg:
		m.frames = append(m.frames, frameEntry(msg))
		if len(m.frames) > m.maxLines {
			m.frames = m.frames[len(m.frames)-m.maxLines:]
		}
	}
	return m, nil
}

func (m monitorModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	rxStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	txStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14"))

	var s strings.Builder
	s.WriteString(titleStyle.Render("HDC DEVICE MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | press 'q' to quit", m.connInfo)))
	s.WriteString("\n\n")

	start := 0
	visible := m.height - 5
	if visible < 1 {
		visible = 1
	}
	if len(m.frames) > visible {
		start = len(m.frames) - visible
	}
	for _, f := range m.frames[start:] {
		arrow, style := "<-", rxStyle
		if f.dir == tapTX {
			arrow, style = "->", txStyle
		}
		s.WriteString(style.Render(fmt.Sprintf("%s %s % x\n", f.at.Format("15:04:05.000"), arrow, f.data)))
	}
	return s.String()
}
