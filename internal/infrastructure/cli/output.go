package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
)

var pathColors = map[routing.DeliveryPath]lipgloss.Color{
	routing.PathBuy:          lipgloss.Color("42"),
	routing.PathConfig:       lipgloss.Color("39"),
	routing.PathAIDisposable: lipgloss.Color("141"),
	routing.PathProductGrade: lipgloss.Color("208"),
	routing.PathCritical:     lipgloss.Color("196"),
}

var (
	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			PaddingLeft(1).
			PaddingRight(1)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func pathBadge(p routing.DeliveryPath) string {
	color, ok := pathColors[p]
	if !ok {
		color = lipgloss.Color("240")
	}
	return badgeStyle.Background(color).Render(string(p))
}

func staticTable(columns []table.Column, rows []table.Row) string {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Bold(true)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
	return t.View()
}

// renderResult prints the recommendation, the factor table and any warnings.
func renderResult(w io.Writer, res *routing.Result) {
	fmt.Fprintf(w, "%s %s  score %d/100\n\n", pathBadge(res.Path), res.Path.Label(), res.Score)

	rows := make([]table.Row, 0, 7)
	for _, f := range res.Breakdown.Factors() {
		rows = append(rows, table.Row{f.Label, strconv.Itoa(f.Score), f.Level})
	}
	rows = append(rows, table.Row{"Time to Market", strconv.Itoa(res.Breakdown.TimeToMarket), "input"})
	fmt.Fprintln(w, staticTable([]table.Column{
		{Title: "Factor", Width: 26},
		{Title: "Score", Width: 6},
		{Title: "Level", Width: 8},
	}, rows))

	fmt.Fprintf(w, "\nRule: %s\n", res.Rule)
	for _, r := range res.Reasons {
		fmt.Fprintf(w, "  - %s\n", r)
	}
	for _, warn := range res.Warnings {
		fmt.Fprintln(w, warnStyle.Render("Warning: "+warn))
	}
	if res.SpecHash != "" {
		fmt.Fprintln(w, dimStyle.Render("spec "+shortHash(res.SpecHash)))
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
