package flatfile

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/fredricj/SingleCellProteogenomics/internal/errors"
	"github.com/fredricj/SingleCellProteogenomics/models"
)

// WriteTranscriptRegulation writes the per-gene transcript table as CSV.
func WriteTranscriptRegulation(path string, rows []models.GeneResult) error {
	records := [][]string{{
		"gene", "name", "pvalue", "pvaladj_BH", "reject_BH", "pvaladj_B", "reject_B",
		"percent_variance", "total_variance", "gini", "mean_diff_from_rng",
		"permutation_p", "permutation_adj_p", "ccd_transcript",
	}}
	for _, r := range rows {
		records = append(records, []string{
			r.Gene, r.Name,
			formatFloat(r.BulkPhaseP), formatFloat(r.BulkPhaseAdjBH), strconv.FormatBool(r.BulkPhaseRejectBH),
			formatFloat(r.BulkPhaseAdjBonf), strconv.FormatBool(r.BulkPhaseRejectB),
			formatFloat(r.PercentVariance), formatFloat(r.TotalVariance), formatFloat(r.Gini),
			formatFloat(r.MeanDiffFromRandom), formatFloat(r.PermutationP), formatFloat(r.PermutationAdjP),
			strconv.FormatBool(r.CCDTranscript),
		})
	}
	return writeCSV(path, records)
}

// WriteProteinSummary writes the per-well protein table as CSV.
func WriteProteinSummary(path string, rows []models.ProteinResult) error {
	records := [][]string{{
		"well_plate", "ENSG", "antibody", "compartment", "cell_count",
		"perc_var_comp", "levene_p", "pvaladj_BH", "ccd_protein",
	}}
	for _, r := range rows {
		records = append(records, []string{
			r.WellPlate, r.Gene, r.Antibody, r.Compartment, strconv.Itoa(r.CellCount),
			formatFloat(r.PercentVariance), formatFloat(r.LeveneP), formatFloat(r.AdjustedP),
			strconv.FormatBool(r.CCDProtein),
		})
	}
	return writeCSV(path, records)
}

// WriteGeneList writes a single-column gene list, one identifier per row.
func WriteGeneList(path string, genes []string) error {
	records := [][]string{{"gene"}}
	for _, g := range genes {
		records = append(records, []string{g})
	}
	return writeCSV(path, records)
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
