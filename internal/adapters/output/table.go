// internal/adapters/output/table.go
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"newsrake/internal/core/domain"
)

// RenderTable imprime el informe en terminal: prólogo, tabla del top
// de noticias, estado de quota por tier y advertencias.
func RenderTable(report *domain.Report) error {
	pterm.DefaultSection.Printf("News Report: %s\n", report.Topic)

	if report.Prologue != "" {
		pterm.DefaultParagraph.Println(report.Prologue)
		pterm.Println()
	}

	if len(report.TopNews) > 0 {
		rows := pterm.TableData{{"#", "TITLE", "SOURCE", "DATE"}}
		for i, entry := range report.TopNews {
			rows = append(rows, []string{
				fmt.Sprintf("%d", i+1),
				truncateCell(entry.Title, 60),
				entry.Source,
				entry.Date,
			})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
	} else {
		pterm.Println("No news items collected.")
	}

	// Quota por tier
	if len(report.Quota) > 0 {
		pterm.Println()
		for _, q := range report.Quota {
			line := fmt.Sprintf("tier %-10s %d/%d (%s)", q.Tier, q.Delivered, q.Minimum, q.Outcome)
			switch q.Outcome {
			case domain.QuotaShort:
				pterm.Warning.Println(line)
			default:
				pterm.Success.Println(line)
			}
		}
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintf(os.Stdout, "\nWarnings (%d):\n", len(report.Warnings))
		for i, warning := range report.Warnings {
			fmt.Fprintf(os.Stdout, "  %d. %s\n", i+1, warning)
		}
	}

	pterm.Println()
	pterm.Printf("run %s: %d items from %d sources in %s (%d rounds)\n",
		report.ID,
		report.Metadata.FinalItems,
		len(report.Metadata.SourcesUsed),
		report.Metadata.Duration,
		report.Metadata.Rounds,
	)
	return nil
}

func truncateCell(s string, max int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max-1]) + "…"
}
