package analysis

import (
	"context"
	"math"
	"time"

	mstats "github.com/montanaflynn/stats"

	"github.com/fredricj/SingleCellProteogenomics/domain/core"
	"github.com/fredricj/SingleCellProteogenomics/domain/stats"
	"github.com/fredricj/SingleCellProteogenomics/internal"
	"github.com/fredricj/SingleCellProteogenomics/internal/config"
	"github.com/fredricj/SingleCellProteogenomics/internal/errors"
	"github.com/fredricj/SingleCellProteogenomics/models"
)

// StabilityGroup is a named set of genes to compare by melting behavior,
// e.g. cell-cycle-dependent transcripts vs the non-dependent remainder.
type StabilityGroup struct {
	Name  string
	Genes []string
}

// StabilityOutcome bundles the melting point comparison results.
type StabilityOutcome struct {
	Run     models.AnalysisRun
	Rows    []models.StabilityComparison
	Medians map[string]float64 // per-gene aggregated melting point
}

// StabilityAnalyzer compares protein thermal stability between gene
// groups. Melting points are aggregated to a single median per gene
// across cell lines, then each pair of groups is compared with both a
// two-sided t-test and Kruskal-Wallis.
type StabilityAnalyzer struct {
	cfg    config.AnalysisConfig
	logger *internal.Logger
}

func NewStabilityAnalyzer(cfg config.AnalysisConfig, logger *internal.Logger) *StabilityAnalyzer {
	return &StabilityAnalyzer{cfg: cfg, logger: logger}
}

// Run aggregates melting points per gene and compares every pair of groups
func (a *StabilityAnalyzer) Run(_ context.Context, points map[string][]float64, groups []StabilityGroup) (*StabilityOutcome, error) {
	if len(points) == 0 {
		return nil, errors.ValidationError("stability input must have at least one melting point")
	}
	if len(groups) < 2 {
		return nil, errors.ValidationError("stability comparison needs at least two groups")
	}

	medians := make(map[string]float64, len(points))
	for gene, temps := range points {
		m, err := mstats.Median(temps)
		if err != nil {
			continue
		}
		medians[gene] = m
	}
	a.logger.Info("stability analysis: %d genes with melting points, %d groups", len(medians), len(groups))

	var rows []models.StabilityComparison
	for x := 0; x < len(groups); x++ {
		for y := x + 1; y < len(groups); y++ {
			row, err := a.compare(medians, groups[x], groups[y])
			if err != nil {
				a.logger.Warn("skipping comparison %s vs %s: %v", groups[x].Name, groups[y].Name, err)
				continue
			}
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, errors.ValidationError("no group pair had enough melting points to compare")
	}

	run := models.AnalysisRun{
		ID:        core.NewRunID().String(),
		Kind:      "stability",
		Alpha:     a.cfg.Alpha,
		Seed:      a.cfg.Seed,
		CreatedAt: time.Now().UTC(),
	}
	run.FiguresOfMerit = stabilityFiguresOfMerit(rows)
	for i := range rows {
		rows[i].RunID = run.ID
	}

	return &StabilityOutcome{Run: run, Rows: rows, Medians: medians}, nil
}

func (a *StabilityAnalyzer) compare(medians map[string]float64, ga, gb StabilityGroup) (models.StabilityComparison, error) {
	va := collectMedians(medians, ga.Genes)
	vb := collectMedians(medians, gb.Genes)
	if len(va) < 2 || len(vb) < 2 {
		return models.StabilityComparison{}, errors.ValidationError("group too small after filtering")
	}

	tt, err := stats.TTestInd(va, vb)
	if err != nil {
		return models.StabilityComparison{}, err
	}
	kw, err := stats.KruskalWallis(va, vb)
	if err != nil {
		return models.StabilityComparison{}, err
	}

	meanA, _ := mstats.Mean(va)
	meanB, _ := mstats.Mean(vb)
	medA, _ := mstats.Median(va)
	medB, _ := mstats.Median(vb)

	return models.StabilityComparison{
		GroupA:   ga.Name,
		GroupB:   gb.Name,
		SizeA:    len(va),
		SizeB:    len(vb),
		MeanA:    meanA,
		MeanB:    meanB,
		MedianA:  medA,
		MedianB:  medB,
		TTestP:   tt.PValue,
		KruskalP: kw.PValue,
	}, nil
}

func collectMedians(medians map[string]float64, genes []string) []float64 {
	var out []float64
	for _, g := range genes {
		if m, ok := medians[g]; ok && !math.IsNaN(m) {
			out = append(out, m)
		}
	}
	return out
}
