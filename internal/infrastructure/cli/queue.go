package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/intakerouter/pkg/application"
	"github.com/spf13/cobra"
)

var queuePlain bool

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Review queue of intakes waiting for approval",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := workspaceServices(cmd)
		if err != nil {
			return err
		}
		items, err := services.Intakes.Queue()
		if err != nil {
			return MapError(err)
		}

		if queuePlain || os.Getenv("INTAKE_SKIP_TUI") == "true" {
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No intakes are waiting for approval.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), staticTable(queueColumns, queueRows(items)))
			return nil
		}

		p := tea.NewProgram(newQueueModel(items))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("queue run failed: %w", err)
		}
		return nil
	},
}

func init() {
	queueCmd.Flags().BoolVar(&queuePlain, "plain", false, "Print the queue without the interactive view")
	RootCmd.AddCommand(queueCmd)
}

var (
	queueBaseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
	queueHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#7D56F4")).
				PaddingLeft(1).
				PaddingRight(1)
)

var queueColumns = []table.Column{
	{Title: "ID", Width: 14},
	{Title: "Path", Width: 14},
	{Title: "Score", Width: 5},
	{Title: "Missing", Width: 28},
	{Title: "Title", Width: 34},
}

func queueRows(items []application.QueueItem) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, item := range items {
		path, score, missing := "-", "-", "-"
		if item.Routing != nil {
			path = string(item.Routing.Result.Path)
			score = strconv.Itoa(item.Routing.Result.Score)
		}
		if item.Evaluation != nil && len(item.Evaluation.Missing) > 0 {
			missing = joinRoles(item.Evaluation.Missing)
		}
		rows = append(rows, table.Row{item.Intake.ID, path, score, missing, item.Intake.Title})
	}
	return rows
}

type queueModel struct {
	table table.Model
	items []application.QueueItem
}

func newQueueModel(items []application.QueueItem) queueModel {
	t := table.New(
		table.WithColumns(queueColumns),
		table.WithRows(queueRows(items)),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.Foreground(lipgloss.Color("229"))
	t.SetStyles(s)
	return queueModel{table: t, items: items}
}

func (m queueModel) Init() tea.Cmd { return nil }

func (m queueModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// selected returns the queue item under the cursor.
func (m queueModel) selected() *application.QueueItem {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.items) {
		return nil
	}
	return &m.items[i]
}

func (m queueModel) View() string {
	header := queueHeaderStyle.Render(fmt.Sprintf("Review queue (%d pending)", len(m.items)))
	detail := dimStyle.Render("Nothing selected.")
	if item := m.selected(); item != nil && item.Routing != nil {
		detail = fmt.Sprintf("%s %s  score %d\n%s", pathBadge(item.Routing.Result.Path),
			item.Routing.Result.Path.Label(), item.Routing.Result.Score, item.Routing.Result.Rule)
		for _, w := range item.Routing.Result.Warnings {
			detail += "\n" + warnStyle.Render("Warning: "+w)
		}
	}
	return queueBaseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			m.table.View(),
			detail,
			"\n[q] Quit  [Up/Down] Navigate",
		),
	) + "\n"
}
