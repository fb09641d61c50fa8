package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/fredricj/SingleCellProteogenomics/internal/errors"
	"github.com/fredricj/SingleCellProteogenomics/models"
	"github.com/fredricj/SingleCellProteogenomics/ports"
)

// ResultsRepositoryImpl implements ports.ResultsRepository for PostgreSQL
type ResultsRepositoryImpl struct {
	db *sqlx.DB
}

// NewResultsRepository creates a new PostgreSQL results repository
func NewResultsRepository(db *sqlx.DB) ports.ResultsRepository {
	return &ResultsRepositoryImpl{db: db}
}

// Connect opens a postgres connection and ensures the schema exists
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "connect to postgres")
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id UUID PRIMARY KEY,
		kind TEXT NOT NULL,
		alpha DOUBLE PRECISION NOT NULL,
		permutations INTEGER NOT NULL,
		seed BIGINT NOT NULL,
		figures_of_merit TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE TABLE IF NOT EXISTS gene_results (
		run_id UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
		gene TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		bulk_phase_p DOUBLE PRECISION,
		bulk_phase_adj_bh DOUBLE PRECISION,
		bulk_phase_reject_bh BOOLEAN,
		bulk_phase_adj_bonf DOUBLE PRECISION,
		bulk_phase_reject_b BOOLEAN,
		percent_variance DOUBLE PRECISION,
		total_variance DOUBLE PRECISION,
		gini DOUBLE PRECISION,
		mean_diff_from_random DOUBLE PRECISION,
		permutation_p DOUBLE PRECISION,
		permutation_adj_p DOUBLE PRECISION,
		ccd_transcript BOOLEAN,
		PRIMARY KEY (run_id, gene)
	);
	CREATE TABLE IF NOT EXISTS protein_results (
		run_id UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
		well_plate TEXT NOT NULL,
		gene TEXT NOT NULL DEFAULT '',
		antibody TEXT NOT NULL DEFAULT '',
		compartment TEXT NOT NULL DEFAULT 'cell',
		cell_count INTEGER,
		percent_variance DOUBLE PRECISION,
		levene_p DOUBLE PRECISION,
		adjusted_p DOUBLE PRECISION,
		ccd_protein BOOLEAN,
		PRIMARY KEY (run_id, well_plate)
	);
	CREATE TABLE IF NOT EXISTS stability_comparisons (
		run_id UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
		group_a TEXT NOT NULL,
		group_b TEXT NOT NULL,
		size_a INTEGER,
		size_b INTEGER,
		mean_a DOUBLE PRECISION,
		mean_b DOUBLE PRECISION,
		median_a DOUBLE PRECISION,
		median_b DOUBLE PRECISION,
		ttest_p DOUBLE PRECISION,
		kruskal_p DOUBLE PRECISION,
		PRIMARY KEY (run_id, group_a, group_b)
	);`
	if _, err := db.Exec(schema); err != nil {
		return errors.Wrap(err, "ensure schema")
	}
	return nil
}

// SaveRun inserts or updates a run record
func (r *ResultsRepositoryImpl) SaveRun(ctx context.Context, run *models.AnalysisRun) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analysis_runs (id, kind, alpha, permutations, seed, figures_of_merit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			figures_of_merit = EXCLUDED.figures_of_merit`,
		run.ID, run.Kind, run.Alpha, run.Permutations, run.Seed, run.FiguresOfMerit, run.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "save run")
	}
	return nil
}

// GetRun retrieves a run by ID
func (r *ResultsRepositoryImpl) GetRun(ctx context.Context, runID string) (*models.AnalysisRun, error) {
	var run models.AnalysisRun
	err := r.db.GetContext(ctx, &run, `SELECT * FROM analysis_runs WHERE id = $1`, runID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("run " + runID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "get run")
	}
	return &run, nil
}

// ListRuns returns all runs, newest first
func (r *ResultsRepositoryImpl) ListRuns(ctx context.Context) ([]models.AnalysisRun, error) {
	var runs []models.AnalysisRun
	err := r.db.SelectContext(ctx, &runs, `SELECT * FROM analysis_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	return runs, nil
}

// SaveGeneResults bulk-inserts the transcript table for a run
func (r *ResultsRepositoryImpl) SaveGeneResults(ctx context.Context, runID string, rows []models.GeneResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin gene results tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO gene_results (
			run_id, gene, name, bulk_phase_p, bulk_phase_adj_bh, bulk_phase_reject_bh,
			bulk_phase_adj_bonf, bulk_phase_reject_b, percent_variance, total_variance,
			gini, mean_diff_from_random, permutation_p, permutation_adj_p, ccd_transcript
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (run_id, gene) DO NOTHING`)
	if err != nil {
		return errors.Wrap(err, "prepare gene results insert")
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			runID, row.Gene, row.Name, row.BulkPhaseP, row.BulkPhaseAdjBH, row.BulkPhaseRejectBH,
			row.BulkPhaseAdjBonf, row.BulkPhaseRejectB, row.PercentVariance, row.TotalVariance,
			row.Gini, row.MeanDiffFromRandom, row.PermutationP, row.PermutationAdjP, row.CCDTranscript,
		); err != nil {
			return errors.Wrapf(err, "insert gene result %s", row.Gene)
		}
	}
	return tx.Commit()
}

// GeneResults retrieves the transcript table for a run
func (r *ResultsRepositoryImpl) GeneResults(ctx context.Context, runID string) ([]models.GeneResult, error) {
	var rows []models.GeneResult
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM gene_results WHERE run_id = $1 ORDER BY gene`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "select gene results")
	}
	return rows, nil
}

// SaveProteinResults bulk-inserts the protein well table for a run
func (r *ResultsRepositoryImpl) SaveProteinResults(ctx context.Context, runID string, rows []models.ProteinResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin protein results tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO protein_results (
			run_id, well_plate, gene, antibody, compartment, cell_count,
			percent_variance, levene_p, adjusted_p, ccd_protein
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (run_id, well_plate) DO NOTHING`)
	if err != nil {
		return errors.Wrap(err, "prepare protein results insert")
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			runID, row.WellPlate, row.Gene, row.Antibody, row.Compartment, row.CellCount,
			row.PercentVariance, row.LeveneP, row.AdjustedP, row.CCDProtein,
		); err != nil {
			return errors.Wrapf(err, "insert protein result %s", row.WellPlate)
		}
	}
	return tx.Commit()
}

// ProteinResults retrieves the protein table for a run
func (r *ResultsRepositoryImpl) ProteinResults(ctx context.Context, runID string) ([]models.ProteinResult, error) {
	var rows []models.ProteinResult
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM protein_results WHERE run_id = $1 ORDER BY well_plate`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "select protein results")
	}
	return rows, nil
}

// SaveStabilityComparisons inserts the melting-point comparisons for a run
func (r *ResultsRepositoryImpl) SaveStabilityComparisons(ctx context.Context, runID string, rows []models.StabilityComparison) error {
	for _, row := range rows {
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO stability_comparisons (
				run_id, group_a, group_b, size_a, size_b,
				mean_a, mean_b, median_a, median_b, ttest_p, kruskal_p
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			ON CONFLICT (run_id, group_a, group_b) DO NOTHING`,
			runID, row.GroupA, row.GroupB, row.SizeA, row.SizeB,
			row.MeanA, row.MeanB, row.MedianA, row.MedianB, row.TTestP, row.KruskalP,
		); err != nil {
			return errors.Wrapf(err, "insert stability comparison %s vs %s", row.GroupA, row.GroupB)
		}
	}
	return nil
}

// StabilityComparisons retrieves the melting-point comparisons for a run
func (r *ResultsRepositoryImpl) StabilityComparisons(ctx context.Context, runID string) ([]models.StabilityComparison, error) {
	var rows []models.StabilityComparison
	err := r.db.SelectContext(ctx, &rows, `SELECT * FROM stability_comparisons WHERE run_id = $1 ORDER BY group_a, group_b`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "select stability comparisons")
	}
	return rows, nil
}
