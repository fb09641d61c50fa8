package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/fredricj/SingleCellProteogenomics/internal/config"
	"github.com/fredricj/SingleCellProteogenomics/models"
)

// The figures-of-merit blocks are markdown summaries stored alongside
// each run so they can be rendered from the report endpoint.

func transcriptFiguresOfMerit(rows []models.GeneResult, cfg config.AnalysisConfig) string {
	total := len(rows)
	var bulkBH, bulkBonf, ccd int
	for _, r := range rows {
		if r.BulkPhaseRejectBH {
			bulkBH++
		}
		if r.BulkPhaseRejectB {
			bulkBonf++
		}
		if r.CCDTranscript {
			ccd++
		}
	}

	var b strings.Builder
	b.WriteString("# Transcript regulation\n\n")
	fmt.Fprintf(&b, "- %d genes analyzed\n", total)
	fmt.Fprintf(&b, "- %d (%s) significant by bulk phase (Kruskal-Wallis, BH at %g)\n",
		bulkBH, percent(bulkBH, total), cfg.Alpha)
	fmt.Fprintf(&b, "- %d (%s) significant by bulk phase (Bonferroni at %g)\n",
		bulkBonf, percent(bulkBonf, total), cfg.Alpha)
	fmt.Fprintf(&b, "- %d (%s) CCD transcripts (%d permutations, mean diff > %g, alpha %g)\n",
		ccd, percent(ccd, total), cfg.Permutations, cfg.MeanDiffThreshold, cfg.AlphaCCD)
	return b.String()
}

func proteinFiguresOfMerit(rows []models.ProteinResult, cfg config.AnalysisConfig) string {
	total := len(rows)
	var tested, ccd int
	genes := map[string]bool{}
	ccdGenes := map[string]bool{}
	for _, r := range rows {
		if !isFinite(r.LeveneP) {
			continue
		}
		tested++
		genes[r.Gene] = true
		if r.CCDProtein {
			ccd++
			ccdGenes[r.Gene] = true
		}
	}

	var b strings.Builder
	b.WriteString("# Protein pseudotime\n\n")
	fmt.Fprintf(&b, "- %d wells, %d testable, %d unique genes\n", total, tested, len(genes))
	fmt.Fprintf(&b, "- %d (%s) CCD wells (Levene vs microtubule, BH at %g, percent variance >= %g)\n",
		ccd, percent(ccd, tested), cfg.AlphaCCD, cfg.PercentVarCutoff)
	fmt.Fprintf(&b, "- %d (%s) CCD genes\n", len(ccdGenes), percent(len(ccdGenes), len(genes)))
	return b.String()
}

func stabilityFiguresOfMerit(rows []models.StabilityComparison) string {
	var b strings.Builder
	b.WriteString("# Protein stability\n\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "- %s (n=%d, median %.2f) vs %s (n=%d, median %.2f): t-test p=%.3g, Kruskal-Wallis p=%.3g\n",
			r.GroupA, r.SizeA, r.MedianA, r.GroupB, r.SizeB, r.MedianB, r.TTestP, r.KruskalP)
	}
	return b.String()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func percent(part, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(part)/float64(total))
}
