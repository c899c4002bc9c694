// Package history renders daily usage as a table and an optional line chart.
package history

import (
	"fmt"
	"io"
	"sort"

	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
)

const missing = "-"

var (
	header        = []string{"Date", "Total"}
	verboseHeader = []string{"Date", "Metered Up", "Metered Down", "Unmetered Up", "Unmetered Down", "Total"}
)

// WriteTable prints one row per day in the order given. Verbose adds the
// metered and unmetered columns.
func WriteTable(w io.Writer, history domain.History, verbose bool) {
	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	if verbose {
		table.SetHeader(verboseHeader)
	} else {
		table.SetHeader(header)
	}

	var sum int64
	for _, day := range history {
		sum += day.TotalOrZero()
		if !verbose {
			table.Append([]string{day.Date, formatBytes(day.Total)})
			continue
		}

		table.Append([]string{
			day.Date,
			splitUp(day.Metered),
			splitDown(day.Metered),
			splitUp(day.Unmetered),
			splitDown(day.Unmetered),
			formatBytes(day.Total),
		})
	}

	table.Render()
	_, _ = fmt.Fprintf(w, "\n%d days, %s total\n", len(history), humanize.Bytes(nonNegative(sum)))
}

// Chart plots daily totals in megabytes, oldest day first.
func Chart(history domain.History, width, height int) string {
	if len(history) == 0 {
		return "No history available."
	}

	days := make(domain.History, len(history))
	copy(days, history)
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})

	data := make([]float64, 0, len(days))
	for _, day := range days {
		data = append(data, float64(day.TotalOrZero())/1e6)
	}

	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("daily total (MB), %s to %s", days[0].Date, days[len(days)-1].Date)),
	)
}

func formatBytes(v *int64) string {
	if v == nil {
		return missing
	}
	return humanize.Bytes(nonNegative(*v))
}

func splitUp(s *domain.TrafficSplit) string {
	if s == nil {
		return missing
	}
	return formatBytes(s.Up)
}

func splitDown(s *domain.TrafficSplit) string {
	if s == nil {
		return missing
	}
	return formatBytes(s.Down)
}

func nonNegative(v int64) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}
