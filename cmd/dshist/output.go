package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshist/dshist/internal/database"
	"github.com/dshist/dshist/internal/usecase"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func checkFormat(format string) error {
	switch format {
	case formatTable, formatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
	}
}

func outputJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func getTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// sqlWidth is how much of a row the SQL column may take once the fixed
// columns are laid out.
func sqlWidth(fixed int) int {
	w := getTerminalWidth() - fixed
	if w < 20 {
		w = 20
	}
	return w
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func newTable(cmd *cobra.Command) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	return t
}

func outputVersion(cmd *cobra.Command, v usecase.VersionView) {
	t := newTable(cmd)
	t.AppendRow(table.Row{"Path", v.Path})
	t.AppendRow(table.Row{"Version", v.Version})
	t.AppendRow(table.Row{"Name", v.Name})
	t.AppendRow(table.Row{"Named", v.Named})
	t.AppendRow(table.Row{"Derivation", v.Derivation})
	t.AppendRow(table.Row{"SQL", runewidth.Truncate(oneLine(v.SQL), sqlWidth(20), "...")})
	if len(v.Context) > 0 {
		t.AppendRow(table.Row{"Context", strings.Join(v.Context, ".")})
	}
	if v.Previous != "" {
		t.AppendRow(table.Row{"Previous", v.Previous})
	}
	if len(v.Parents) > 0 {
		t.AppendRow(table.Row{"Parents", strings.Join(v.Parents, ", ")})
	}
	if len(v.Columns) > 0 {
		t.AppendRow(table.Row{"Columns", strings.Join(v.Columns, ", ")})
	}
	t.AppendRow(table.Row{"Owner", v.Owner})
	t.AppendRow(table.Row{"Created", v.CreatedAt})
	t.AppendRow(table.Row{"Last transform", v.LastTransform})
	t.Render()
}

func outputHistory(cmd *cobra.Command, h usecase.HistoryView) {
	t := newTable(cmd)
	t.AppendHeader(table.Row{"", "Path", "Version", "State", "Description", "User", "Created"})

	descWidth := sqlWidth(90)
	for _, item := range h.Items {
		marker := ""
		if item.Selected {
			marker = "*"
		}
		t.AppendRow(table.Row{
			marker,
			item.Path,
			item.Version,
			item.State,
			runewidth.Truncate(item.Description, descWidth, "..."),
			item.User,
			item.CreatedAt,
		})
	}
	t.Render()

	edited := ""
	if h.Edited {
		edited = " (edited)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "current version: %s%s\n", h.CurrentVersion, edited)
}

func outputList(cmd *cobra.Command, views []usecase.VersionView) {
	t := newTable(cmd)
	t.AppendHeader(table.Row{"Path", "Version", "Derivation", "Owner", "SQL"})

	width := sqlWidth(80)
	for _, v := range views {
		t.AppendRow(table.Row{
			v.Path,
			v.Version,
			v.Derivation,
			v.Owner,
			runewidth.Truncate(oneLine(v.SQL), width, "..."),
		})
	}
	t.Render()
}

type jobView struct {
	ID          string `json:"id"`
	QueryType   string `json:"queryType"`
	State       string `json:"state"`
	SubmittedAt string `json:"submittedAt"`
	Error       string `json:"error,omitempty"`
}

func newJobViews(jobs []database.JobRecord) []jobView {
	views := make([]jobView, 0, len(jobs))
	for _, j := range jobs {
		views = append(views, jobView{
			ID:          j.ID,
			QueryType:   j.QueryType,
			State:       j.State,
			SubmittedAt: j.SubmittedAt.Format("2006-01-02 15:04:05"),
			Error:       j.ErrorMessage,
		})
	}
	return views
}

func outputJobs(cmd *cobra.Command, jobs []jobView) {
	if len(jobs) == 0 {
		return
	}
	t := newTable(cmd)
	t.AppendHeader(table.Row{"Job", "Type", "State", "Submitted", "Error"})
	for _, j := range jobs {
		t.AppendRow(table.Row{j.ID, j.QueryType, j.State, j.SubmittedAt, runewidth.Truncate(j.Error, 40, "...")})
	}
	t.Render()
}
