package analysis

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/fredricj/SingleCellProteogenomics/domain/cellcycle"
	"github.com/fredricj/SingleCellProteogenomics/domain/core"
	"github.com/fredricj/SingleCellProteogenomics/domain/stats"
	"github.com/fredricj/SingleCellProteogenomics/internal"
	"github.com/fredricj/SingleCellProteogenomics/internal/config"
	"github.com/fredricj/SingleCellProteogenomics/internal/errors"
	"github.com/fredricj/SingleCellProteogenomics/models"
)

// CellIntensity is one cell's immunofluorescence reading within a well.
type CellIntensity struct {
	Pseudotime  float64
	Cell        float64
	Nucleus     float64
	Cytosol     float64
	Microtubule float64
}

// Well groups the stained cells of one well with its annotation.
type Well struct {
	WellPlate   string
	Gene        string
	Antibody    string
	Compartment cellcycle.Compartment
	Cells       []CellIntensity
}

// ProteinOutcome bundles the protein pipeline results.
type ProteinOutcome struct {
	Run  models.AnalysisRun
	Rows []models.ProteinResult
}

// ProteinAnalyzer runs the immunofluorescence pseudotime analysis: per
// well, intensities are log-scaled, ordered by pseudotime, and smoothed;
// the antibody's moving average is tested against the microtubule
// control with Levene's test, corrected with BH, and gated on the
// percent-variance cutoff in the annotated compartment.
type ProteinAnalyzer struct {
	cfg    config.AnalysisConfig
	logger *internal.Logger
}

// NewProteinAnalyzer creates the protein pipeline
func NewProteinAnalyzer(cfg config.AnalysisConfig, logger *internal.Logger) *ProteinAnalyzer {
	return &ProteinAnalyzer{cfg: cfg, logger: logger}
}

// Run executes the protein pipeline over all wells
func (a *ProteinAnalyzer) Run(_ context.Context, wells []Well) (*ProteinOutcome, error) {
	if len(wells) == 0 {
		return nil, errors.ValidationError("protein input must have at least one well")
	}
	a.logger.Info("protein analysis: %d wells, window %d", len(wells), a.cfg.ProteinWindow)

	percVarCell := make([]float64, len(wells))
	percVarNuc := make([]float64, len(wells))
	percVarCyto := make([]float64, len(wells))
	levenePCell := make([]float64, len(wells))
	levenePNuc := make([]float64, len(wells))
	levenePCyto := make([]float64, len(wells))
	compartments := make([]cellcycle.Compartment, len(wells))

	for i := range wells {
		w := &wells[i]
		compartments[i] = w.Compartment
		ws := a.analyzeWell(w)
		percVarCell[i] = ws.percVar[0]
		percVarNuc[i] = ws.percVar[1]
		percVarCyto[i] = ws.percVar[2]
		levenePCell[i] = ws.leveneP[0]
		levenePNuc[i] = ws.leveneP[1]
		levenePCyto[i] = ws.leveneP[2]
	}

	percVarComp, err := cellcycle.SelectByCompartment(percVarCell, percVarNuc, percVarCyto, compartments)
	if err != nil {
		return nil, err
	}
	levenePComp, err := cellcycle.SelectByCompartment(levenePCell, levenePNuc, levenePCyto, compartments)
	if err != nil {
		return nil, err
	}

	corrected, err := stats.BenjaminiHochberg(a.cfg.AlphaCCD, levenePComp)
	if err != nil {
		return nil, errors.Wrap(err, "levene BH correction")
	}
	calls, err := cellcycle.ProteinCalls(percVarComp, corrected.Reject, a.cfg.PercentVarCutoff)
	if err != nil {
		return nil, err
	}

	rows := make([]models.ProteinResult, len(wells))
	for i := range wells {
		rows[i] = models.ProteinResult{
			WellPlate:       wells[i].WellPlate,
			Gene:            wells[i].Gene,
			Antibody:        wells[i].Antibody,
			Compartment:     wells[i].Compartment.String(),
			CellCount:       len(wells[i].Cells),
			PercentVariance: percVarComp[i],
			LeveneP:         levenePComp[i],
			AdjustedP:       corrected.Adjusted[i],
			CCDProtein:      calls[i],
		}
	}

	run := models.AnalysisRun{
		ID:        core.NewRunID().String(),
		Kind:      "protein",
		Alpha:     a.cfg.AlphaCCD,
		Seed:      a.cfg.Seed,
		CreatedAt: time.Now().UTC(),
	}
	run.FiguresOfMerit = proteinFiguresOfMerit(rows, a.cfg)
	for i := range rows {
		rows[i].RunID = run.ID
	}

	return &ProteinOutcome{Run: run, Rows: rows}, nil
}

type wellStats struct {
	percVar [3]float64 // cell, nucleus, cytosol
	leveneP [3]float64
}

// analyzeWell computes per-compartment percent variance and the
// antibody-vs-microtubule Levene p-values for one well. Wells with fewer
// cells than the smoothing window produce NaN throughout, which the
// correction step coerces to non-significant.
func (a *ProteinAnalyzer) analyzeWell(w *Well) wellStats {
	out := wellStats{
		percVar: [3]float64{math.NaN(), math.NaN(), math.NaN()},
		leveneP: [3]float64{math.NaN(), math.NaN(), math.NaN()},
	}
	if len(w.Cells) < a.cfg.ProteinWindow+1 {
		a.logger.Warn("well %s has %d cells, below window %d; skipping", w.WellPlate, len(w.Cells), a.cfg.ProteinWindow)
		return out
	}

	cells := make([]CellIntensity, len(w.Cells))
	copy(cells, w.Cells)
	sort.SliceStable(cells, func(x, y int) bool { return cells[x].Pseudotime < cells[y].Pseudotime })

	series := [4][]float64{} // cell, nucleus, cytosol, microtubule
	for _, c := range cells {
		series[0] = append(series[0], math.Log10(c.Cell))
		series[1] = append(series[1], math.Log10(c.Nucleus))
		series[2] = append(series[2], math.Log10(c.Cytosol))
		series[3] = append(series[3], math.Log10(c.Microtubule))
	}
	for i := range series {
		normalizeByMax(series[i])
	}

	_, mtAvg, err := cellcycle.PercentVariance(series[3], a.cfg.ProteinWindow)
	if err != nil {
		return out
	}

	for compartment := 0; compartment < 3; compartment++ {
		percVar, avg, err := cellcycle.PercentVariance(series[compartment], a.cfg.ProteinWindow)
		if err != nil {
			continue
		}
		out.percVar[compartment] = percVar

		// antibody variation over pseudotime vs the microtubule control,
		// doubled one-tailed p as in the published analysis
		res, err := stats.Levene(stats.LeveneMean, avg, mtAvg)
		if err != nil {
			continue
		}
		out.leveneP[compartment] = 2 * res.PValue
	}
	return out
}

func normalizeByMax(vals []float64) {
	maxVal := math.Inf(-1)
	for _, v := range vals {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 || math.IsInf(maxVal, -1) || math.IsNaN(maxVal) {
		return
	}
	for i := range vals {
		vals[i] /= maxVal
	}
}
