package analysis

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/fredricj/SingleCellProteogenomics/domain/cellcycle"
	"github.com/fredricj/SingleCellProteogenomics/domain/core"
	"github.com/fredricj/SingleCellProteogenomics/domain/stats"
	"github.com/fredricj/SingleCellProteogenomics/internal"
	"github.com/fredricj/SingleCellProteogenomics/internal/config"
	"github.com/fredricj/SingleCellProteogenomics/internal/errors"
	"github.com/fredricj/SingleCellProteogenomics/models"
)

// Cell cycle phase labels in the annotation files
const (
	PhaseG1  = "G1"
	PhaseS   = "S-ph"
	PhaseG2M = "G2M"
)

// TranscriptInput is the expression data needed for the RNA pipeline.
// Expression is gene-major: Expression[g][c] is gene g in cell c.
type TranscriptInput struct {
	Genes      []string
	Names      map[string]string // gene id -> display name, optional
	Expression [][]float64
	Phase      []string  // per cell
	Pseudotime []float64 // per cell
}

// TranscriptOutcome bundles everything the RNA pipeline produced.
type TranscriptOutcome struct {
	Run         models.AnalysisRun
	Rows        []models.GeneResult
	Profile     *cellcycle.Profile
	Permutation *stats.PermutationResult
}

// TranscriptAnalyzer runs the single-cell RNA cell-cycle analysis:
// bulk-phase Kruskal-Wallis testing with BH and Bonferroni corrections,
// pseudotime percent-variance profiling, and permutation significance
// gating of the CCD transcript calls.
type TranscriptAnalyzer struct {
	cfg    config.AnalysisConfig
	runner *PermutationRunner
	logger *internal.Logger
}

// NewTranscriptAnalyzer creates the RNA pipeline
func NewTranscriptAnalyzer(cfg config.AnalysisConfig, runner *PermutationRunner, logger *internal.Logger) *TranscriptAnalyzer {
	return &TranscriptAnalyzer{cfg: cfg, runner: runner, logger: logger}
}

// Run executes the full transcript pipeline
func (a *TranscriptAnalyzer) Run(ctx context.Context, in *TranscriptInput) (*TranscriptOutcome, error) {
	if err := a.validate(in); err != nil {
		return nil, err
	}
	a.logger.Info("transcript analysis: %d genes, %d cells, %d permutations",
		len(in.Genes), len(in.Pseudotime), a.cfg.Permutations)

	bulkP, err := a.bulkPhasePValues(in)
	if err != nil {
		return nil, err
	}
	bh, err := stats.BenjaminiHochberg(a.cfg.Alpha, bulkP)
	if err != nil {
		return nil, errors.Wrap(err, "bulk-phase BH correction")
	}
	bonf, err := stats.Bonferroni(a.cfg.Alpha, bulkP)
	if err != nil {
		return nil, errors.Wrap(err, "bulk-phase Bonferroni correction")
	}

	profile, err := cellcycle.ProfileFeatures(in.Pseudotime, in.Expression, a.cfg.RNAWindow)
	if err != nil {
		return nil, errors.Wrap(err, "pseudotime profile")
	}

	null, err := a.runner.NullPercentVariance(ctx, in.Expression, a.cfg.RNAWindow, a.cfg.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "permutation null")
	}

	permTest := &stats.PermutationTest{
		Alpha:             a.cfg.AlphaCCD,
		MeanDiffThreshold: a.cfg.MeanDiffThreshold,
		Correction:        stats.CorrectBonferroni,
	}
	perm, err := permTest.Evaluate(profile.PercentVariance, null)
	if err != nil {
		return nil, errors.Wrap(err, "permutation significance")
	}

	rows := make([]models.GeneResult, len(in.Genes))
	for g, gene := range in.Genes {
		rows[g] = models.GeneResult{
			Gene:               gene,
			Name:               in.Names[gene],
			BulkPhaseP:         bulkP[g],
			BulkPhaseAdjBH:     bh.Adjusted[g],
			BulkPhaseRejectBH:  bh.Reject[g],
			BulkPhaseAdjBonf:   bonf.Adjusted[g],
			BulkPhaseRejectB:   bonf.Reject[g],
			PercentVariance:    profile.PercentVariance[g],
			TotalVariance:      profile.TotalVariance[g],
			Gini:               profile.Gini[g],
			MeanDiffFromRandom: perm.MeanDiff[g],
			PermutationP:       perm.PValues[g],
			PermutationAdjP:    perm.Adjusted[g],
			CCDTranscript:      perm.Significant[g],
		}
	}

	run := models.AnalysisRun{
		ID:           core.NewRunID().String(),
		Kind:         "transcript",
		Alpha:        a.cfg.AlphaCCD,
		Permutations: a.cfg.Permutations,
		Seed:         a.cfg.Seed,
		CreatedAt:    time.Now().UTC(),
	}
	run.FiguresOfMerit = transcriptFiguresOfMerit(rows, a.cfg)
	for g := range rows {
		rows[g].RunID = run.ID
	}

	return &TranscriptOutcome{Run: run, Rows: rows, Profile: profile, Permutation: perm}, nil
}

// bulkPhasePValues splits each gene's normalized expression by phase and
// tests for stage-dependent shifts with Kruskal-Wallis. Genes where the
// test cannot run (a degenerate phase group) get NaN, which the
// corrections coerce to 1.
func (a *TranscriptAnalyzer) bulkPhasePValues(in *TranscriptInput) ([]float64, error) {
	byPhase := map[string][]int{}
	for c, phase := range in.Phase {
		byPhase[phase] = append(byPhase[phase], c)
	}
	g1, s, g2m := byPhase[PhaseG1], byPhase[PhaseS], byPhase[PhaseG2M]
	if len(g1) == 0 || len(s) == 0 || len(g2m) == 0 {
		return nil, errors.New("MISSING_PHASE",
			fmt.Sprintf("need cells in all of %s/%s/%s", PhaseG1, PhaseS, PhaseG2M))
	}

	// normalize by the global max so scales match across genes
	maxVal := math.Inf(-1)
	for _, row := range in.Expression {
		for _, v := range row {
			if v > maxVal {
				maxVal = v
			}
		}
	}

	pvals := make([]float64, len(in.Expression))
	for g, row := range in.Expression {
		res, err := stats.KruskalWallis(take(row, g1, maxVal), take(row, s, maxVal), take(row, g2m, maxVal))
		if err != nil {
			pvals[g] = math.NaN()
			continue
		}
		pvals[g] = res.PValue
	}
	return pvals, nil
}

func (a *TranscriptAnalyzer) validate(in *TranscriptInput) error {
	if in == nil || len(in.Genes) == 0 || len(in.Expression) == 0 {
		return errors.ValidationError("transcript input must have at least one gene")
	}
	if len(in.Genes) != len(in.Expression) {
		return errors.ValidationError("gene list and expression matrix disagree")
	}
	numCells := len(in.Pseudotime)
	if numCells == 0 || len(in.Phase) != numCells {
		return errors.ValidationError("phase and pseudotime vectors must cover every cell")
	}
	for g, row := range in.Expression {
		if len(row) != numCells {
			return errors.ValidationError(fmt.Sprintf("gene %s has %d cells, expected %d", in.Genes[g], len(row), numCells))
		}
	}
	return nil
}

func take(row []float64, indices []int, maxVal float64) []float64 {
	out := make([]float64, len(indices))
	for i, idx := range indices {
		if maxVal != 0 && !math.IsInf(maxVal, -1) {
			out[i] = row[idx] / maxVal
		} else {
			out[i] = row[idx]
		}
	}
	return out
}
