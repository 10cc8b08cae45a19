package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/qroute/pkg/device"
)

// devicePicker is the bubbletea model behind "device pick".
type devicePicker struct {
	Devices  []*device.Device
	Cursor   int
	Offset   int
	Height   int
	Selected *device.Device

	sizes [][2]int // nodes and links per device, computed once
}

func newDevicePicker(ds []*device.Device) devicePicker {
	sizes := make([][2]int, len(ds))
	for i, d := range ds {
		if t, err := d.Topology(); err == nil {
			sizes[i] = [2]int{t.NodeCount(), t.EdgeCount()}
		}
	}
	return devicePicker{Devices: ds, Height: 10, sizes: sizes}
}

func (m devicePicker) Init() tea.Cmd { return nil }

func (m devicePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.Offset = min(m.Offset, m.Cursor)
			}
		case "down", "j":
			if m.Cursor < len(m.Devices)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Devices) > 0 {
				m.Selected = m.Devices[m.Cursor]
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 3)
	}
	return m, nil
}

func (m devicePicker) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Device"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Devices))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		d := m.Devices[i]
		rows = append(rows, []string{
			cursor, d.Name,
			strconv.Itoa(m.sizes[i][0]), strconv.Itoa(m.sizes[i][1]),
			d.Description,
		})
	}

	t := newTable([]string{"", "Device", "Nodes", "Links", "Description"}, rows).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleTableHeader
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Devices))))
	return b.String()
}
