// Package excel exports the cell-cycle variation summary as a workbook
// for collaborators who review the calls by hand.
package excel

import (
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/fredricj/SingleCellProteogenomics/internal/errors"
	"github.com/fredricj/SingleCellProteogenomics/models"
)

// SummaryWriter builds the CellCycleVariationSummary workbook with one
// sheet per result table.
type SummaryWriter struct {
	geneRows    []models.GeneResult
	proteinRows []models.ProteinResult
}

// NewSummaryWriter creates a writer over the final result tables
func NewSummaryWriter(genes []models.GeneResult, proteins []models.ProteinResult) *SummaryWriter {
	return &SummaryWriter{geneRows: genes, proteinRows: proteins}
}

// Save writes the workbook to path
func (w *SummaryWriter) Save(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeTranscripts(f); err != nil {
		return err
	}
	if err := w.writeProteins(f); err != nil {
		return err
	}
	// the default Sheet1 is replaced by the named sheets
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "save workbook %s", path)
	}
	return nil
}

func (w *SummaryWriter) writeTranscripts(f *excelize.File) error {
	const sheet = "Transcripts"
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.Wrap(err, "create transcript sheet")
	}
	headers := []string{"gene", "name", "percent_variance", "gini", "mean_diff_from_rng", "permutation_adj_p", "ccd_transcript"}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}
	for i, r := range w.geneRows {
		row := []string{
			r.Gene, r.Name,
			floatCell(r.PercentVariance), floatCell(r.Gini), floatCell(r.MeanDiffFromRandom),
			floatCell(r.PermutationAdjP), strconv.FormatBool(r.CCDTranscript),
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *SummaryWriter) writeProteins(f *excelize.File) error {
	const sheet = "Proteins"
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.Wrap(err, "create protein sheet")
	}
	headers := []string{"well_plate", "ENSG", "antibody", "compartment", "perc_var_comp", "pvaladj_BH", "ccd_protein"}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}
	for i, r := range w.proteinRows {
		row := []string{
			r.WellPlate, r.Gene, r.Antibody, r.Compartment,
			floatCell(r.PercentVariance), floatCell(r.AdjustedP), strconv.FormatBool(r.CCDProtein),
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowIdx int, values []string) error {
	for c, v := range values {
		cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return errors.Wrapf(err, "set cell %s!%s", sheet, cell)
		}
	}
	return nil
}

func floatCell(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
