package engine

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/molnia/dbatch/core"
)

// Report renders a terminal execution result as a human readable table.
func Report(result *core.ExecutionResult) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"run", "state", "read", "written", "skipped", "chunks", "elapsed"})
	t.AppendRow(table.Row{
		string(result.ID),
		result.State.String(),
		result.RecordsRead,
		result.RecordsWritten,
		result.RecordsSkipped,
		result.LastChunkSeq + 1,
		result.Elapsed.Round(time.Millisecond).String(),
	})
	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	t.Style().Options.DrawBorder = false

	return t.Render()
}
