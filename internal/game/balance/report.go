package balance

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// FormatReport renders a summary as the human-readable text the CLI prints:
// a headline, the per-scenario table, progression markers, and warnings.
func FormatReport(sum Summary) string {
	var b strings.Builder

	var iterations, warnings int
	for _, r := range sum.Results {
		iterations += r.Iterations
	}
	warnings = len(sum.Warnings)
	fmt.Fprintf(&b, "%d scenarios, %d combats simulated, %d warning(s)\n\n",
		len(sum.Results), iterations, warnings)

	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tWIN%\tSTALL\tTURNS\tHP%\tMISS%\tENEMY MISS%\tCRUSH%\tDMG OUT\tDMG IN")
	for _, r := range sum.Results {
		fmt.Fprintf(tw, "%s\t%.1f\t%d\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%.0f\t%.0f\n",
			r.Scenario.Name,
			r.WinRate*100,
			r.Stalls,
			r.AvgTurns,
			r.AvgPlayerHPPercent*100,
			r.PlayerMissRate*100,
			r.EnemyMissRate*100,
			r.CrushingRate*100,
			r.AvgPlayerDamage,
			r.AvgEnemyDamage,
		)
	}
	tw.Flush()

	b.WriteString("\n")
	if sum.FirstDominantLevel != nil {
		fmt.Fprintf(&b, "player first dominates an equal-level duel at level %d\n", *sum.FirstDominantLevel)
	} else {
		b.WriteString("player dominates no equal-level duel\n")
	}
	if sum.FirstHopelessLevel != nil {
		fmt.Fprintf(&b, "player first loses every equal-level duel at level %d\n", *sum.FirstHopelessLevel)
	} else {
		b.WriteString("no equal-level duel is hopeless\n")
	}

	if warnings > 0 {
		b.WriteString("\nwarnings:\n")
		for _, w := range sum.Warnings {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", w.Rule, w.Scenario, w.Message)
		}
	}
	return b.String()
}
