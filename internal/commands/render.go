package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bix-dev/bixdash/internal/filter"
	"github.com/bix-dev/bixdash/internal/id"
	"github.com/bix-dev/bixdash/internal/model"
)

var (
	headingStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	depositStyle  = cellStyle.Foreground(lipgloss.Color("2"))
	withdrawStyle = cellStyle.Foreground(lipgloss.Color("1"))
	noteStyle     = lipgloss.NewStyle().Faint(true)
)

func renderHeading(w io.Writer, title string) {
	fmt.Fprintln(w, headingStyle.Render(title))
}

func renderNote(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, noteStyle.Render(fmt.Sprintf(format, args...)))
}

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func renderSummary(w io.Writer, s model.TransactionSummary) {
	renderTable(w, []string{"Total Balance", "Total Revenue", "Total Expenses", "Pending"}, [][]string{{
		filter.FormatCurrency(s.TotalBalance),
		filter.FormatCurrency(s.TotalRevenue),
		filter.FormatCurrency(s.TotalExpenses),
		fmt.Sprint(s.PendingTransactions),
	}})
}

func renderMonthly(w io.Writer, points []filter.MonthPoint) {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Month, filter.FormatCurrency(p.Revenue), filter.FormatCurrency(p.Expenses)})
	}
	renderTable(w, []string{"Month", "Revenue", "Expenses"}, rows)
}

// maxBalanceDays bounds the balance evolution shown on the dashboard.
const maxBalanceDays = 10

func renderBalance(w io.Writer, points []filter.BalancePoint) {
	if len(points) > maxBalanceDays {
		points = points[len(points)-maxBalanceDays:]
	}
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Day, filter.FormatCurrency(p.Balance)})
	}
	renderTable(w, []string{"Day", "Balance"}, rows)
}

func renderTransactions(w io.Writer, page filter.Page, loc *time.Location) {
	rows := make([][]string, 0, len(page.Items))
	for i, t := range page.Items {
		rows = append(rows, []string{
			id.FormatRowKey(t.Date, page.Offset+i),
			filter.FormatDate(t.Date, loc),
			t.Account,
			t.Industry,
			t.State,
			string(t.Type),
			filter.FormatAmount(t.Amount),
		})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Key", "Date", "Account", "Industry", "State", "Type", "Amount").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 6 && row >= 0 && row < len(page.Items) {
				if page.Items[row].Type == model.TypeDeposit {
					return depositStyle
				}
				return withdrawStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, tbl.Render())
	renderNote(w, "Page %d of %d (%d transactions)", page.Number, max(page.TotalPages, 1), page.Total)
}

func renderFilters(w io.Writer, f model.TransactionFilters) {
	show := func(s *string) string {
		if s == nil {
			return "any"
		}
		return *s
	}
	day := func(t *time.Time) string {
		if t == nil {
			return "any"
		}
		return t.In(time.Local).Format(dayFlagLayout)
	}
	renderTable(w, []string{"From", "To", "Account", "Industry", "State"}, [][]string{{
		day(f.DateRange.From), day(f.DateRange.To), show(f.Account), show(f.Industry), show(f.State),
	}})
}
