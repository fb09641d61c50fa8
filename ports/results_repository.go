package ports

import (
	"context"

	"github.com/fredricj/SingleCellProteogenomics/models"
)

// ResultsRepository persists analysis runs and their per-feature results
type ResultsRepository interface {
	SaveRun(ctx context.Context, run *models.AnalysisRun) error
	GetRun(ctx context.Context, runID string) (*models.AnalysisRun, error)
	ListRuns(ctx context.Context) ([]models.AnalysisRun, error)

	SaveGeneResults(ctx context.Context, runID string, rows []models.GeneResult) error
	GeneResults(ctx context.Context, runID string) ([]models.GeneResult, error)

	SaveProteinResults(ctx context.Context, runID string, rows []models.ProteinResult) error
	ProteinResults(ctx context.Context, runID string) ([]models.ProteinResult, error)

	SaveStabilityComparisons(ctx context.Context, runID string, rows []models.StabilityComparison) error
	StabilityComparisons(ctx context.Context, runID string) ([]models.StabilityComparison, error)
}
