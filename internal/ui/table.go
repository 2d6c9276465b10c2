package ui

import (
	"fmt"
	"io"
	"strconv"

	prettytable "github.com/jedib0t/go-pretty/v6/table"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Alaminislam-stack/wash2gather/internal/relay"
	"github.com/Alaminislam-stack/wash2gather/internal/session"
	"github.com/Alaminislam-stack/wash2gather/internal/utils"
)

// Output formats accepted by WriteStats.
const (
	FormatTable    = "table"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

func metricTable(rows [][]string) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers("Metric", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case row%2 == 0:
				return TableRowStyle
			default:
				return TableRowAltStyle
			}
		})

	return tbl.Render()
}

// StatsView renders relay counters for the terminal.
func StatsView(server string, stats relay.Stats) string {
	return metricTable([][]string{
		{"Server", BoldStyle.Render(server)},
		{"Rooms", strconv.Itoa(stats.Rooms)},
		{"Connections", strconv.Itoa(stats.Connections)},
	})
}

// SnapshotView renders a session snapshot, used by /status.
func SnapshotView(snap session.Snapshot) string {
	channel := IconWaiting + " waiting for peer"
	if snap.ChannelOpen {
		channel = fmt.Sprintf("open (%s)", snap.Codec)
	}
	video := "-"
	if snap.VideoID != "" {
		video = snap.VideoID
	}

	return metricTable([][]string{
		{"Role", snap.Role.String()},
		{"Negotiation", string(snap.State)},
		{"Channel", channel},
		{"Video", video},
		{"Player", snap.PlayerState.String()},
		{"Position", utils.FormatPosition(snap.Position)},
	})
}

// WriteStats writes relay counters in a machine-friendly format for scripts
// and dashboards.
func WriteStats(w io.Writer, format, server string, stats relay.Stats) error {
	t := prettytable.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(prettytable.Row{"Server", "Rooms", "Connections"})
	t.AppendRow(prettytable.Row{server, stats.Rooms, stats.Connections})

	switch format {
	case FormatTable:
		t.SetStyle(prettytable.StyleLight)
		t.Render()
	case FormatCSV:
		t.RenderCSV()
	case FormatMarkdown:
		t.RenderMarkdown()
	default:
		return fmt.Errorf("unsupported format %q (want %s, %s or %s)", format, FormatTable, FormatCSV, FormatMarkdown)
	}
	return nil
}
