package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fredricj/SingleCellProteogenomics/adapters/excel"
	"github.com/fredricj/SingleCellProteogenomics/adapters/flatfile"
	"github.com/fredricj/SingleCellProteogenomics/adapters/postgres"
	"github.com/fredricj/SingleCellProteogenomics/adapters/rng"
	"github.com/fredricj/SingleCellProteogenomics/domain/cellcycle"
	"github.com/fredricj/SingleCellProteogenomics/internal"
	"github.com/fredricj/SingleCellProteogenomics/internal/analysis"
	"github.com/fredricj/SingleCellProteogenomics/internal/config"
	"github.com/fredricj/SingleCellProteogenomics/models"
	"github.com/fredricj/SingleCellProteogenomics/ports"
)

func main() {
	runTranscript := flag.Bool("transcript", true, "run the RNA cell-cycle analysis")
	runProtein := flag.Bool("protein", true, "run the protein pseudotime analysis")
	runStability := flag.Bool("stability", true, "run the melting point comparison (needs -transcript)")
	flag.Parse()

	// .env is optional, env vars win either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	logger := internal.NewDefaultLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repo ports.ResultsRepository
	if cfg.Database.Enabled {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			fmt.Fprintln(os.Stderr, "database:", err)
			os.Exit(1)
		}
		defer db.Close()
		repo = postgres.NewResultsRepository(db)
	}

	if err := os.MkdirAll(cfg.Outputs.Dir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "output dir:", err)
		os.Exit(1)
	}

	var geneRows []models.GeneResult
	var proteinRows []models.ProteinResult

	if *runTranscript {
		out, err := transcriptAnalysis(ctx, cfg, logger, repo)
		if err != nil {
			fmt.Fprintln(os.Stderr, "transcript analysis:", err)
			os.Exit(1)
		}
		geneRows = out.Rows

		if *runStability {
			if err := stabilityAnalysis(ctx, cfg, logger, repo, out.Rows); err != nil {
				fmt.Fprintln(os.Stderr, "stability analysis:", err)
				os.Exit(1)
			}
		}
	}

	if *runProtein {
		out, err := proteinAnalysis(ctx, cfg, logger, repo)
		if err != nil {
			fmt.Fprintln(os.Stderr, "protein analysis:", err)
			os.Exit(1)
		}
		proteinRows = out.Rows
	}

	if len(geneRows) > 0 || len(proteinRows) > 0 {
		xlsxPath := filepath.Join(cfg.Outputs.Dir, "CellCycleSummary.xlsx")
		if err := excel.NewSummaryWriter(geneRows, proteinRows).Save(xlsxPath); err != nil {
			fmt.Fprintln(os.Stderr, "excel summary:", err)
			os.Exit(1)
		}
		logger.Info("wrote %s", xlsxPath)
	}
}

func transcriptAnalysis(ctx context.Context, cfg *config.Config, logger *internal.Logger, repo ports.ResultsRepository) (*analysis.TranscriptOutcome, error) {
	expr, err := flatfile.ReadExpressionMatrix(cfg.Inputs.ExpressionFile)
	if err != nil {
		return nil, err
	}
	ann, err := flatfile.ReadCellAnnotations(cfg.Inputs.PhasesFile)
	if err != nil {
		return nil, err
	}
	if len(ann.Phase) != len(expr.Cells) {
		return nil, fmt.Errorf("phases file covers %d cells, expression matrix has %d", len(ann.Phase), len(expr.Cells))
	}

	runner := analysis.NewPermutationRunner(rng.New(), cfg.Analysis.Permutations, cfg.Analysis.Workers, logger)
	analyzer := analysis.NewTranscriptAnalyzer(cfg.Analysis, runner, logger)
	out, err := analyzer.Run(ctx, &analysis.TranscriptInput{
		Genes:      expr.Genes,
		Expression: expr.Values,
		Phase:      ann.Phase,
		Pseudotime: ann.Pseudotime,
	})
	if err != nil {
		return nil, err
	}

	if err := flatfile.WriteTranscriptRegulation(filepath.Join(cfg.Outputs.Dir, "transcript_regulation.csv"), out.Rows); err != nil {
		return nil, err
	}
	var ccd []string
	for _, r := range out.Rows {
		if r.CCDTranscript {
			ccd = append(ccd, r.Gene)
		}
	}
	if err := flatfile.WriteGeneList(filepath.Join(cfg.Outputs.Dir, "ccd_transcripts.csv"), ccd); err != nil {
		return nil, err
	}

	if repo != nil {
		if err := repo.SaveRun(ctx, &out.Run); err != nil {
			return nil, err
		}
		if err := repo.SaveGeneResults(ctx, out.Run.ID, out.Rows); err != nil {
			return nil, err
		}
	}
	logger.Info("transcript run %s: %d genes", out.Run.ID, len(out.Rows))
	return out, nil
}

func proteinAnalysis(ctx context.Context, cfg *config.Config, logger *internal.Logger, repo ports.ResultsRepository) (*analysis.ProteinOutcome, error) {
	wells, err := loadWells(cfg.Inputs)
	if err != nil {
		return nil, err
	}

	analyzer := analysis.NewProteinAnalyzer(cfg.Analysis, logger)
	out, err := analyzer.Run(ctx, wells)
	if err != nil {
		return nil, err
	}

	if err := flatfile.WriteProteinSummary(filepath.Join(cfg.Outputs.Dir, "protein_pseudotime.csv"), out.Rows); err != nil {
		return nil, err
	}

	if repo != nil {
		if err := repo.SaveRun(ctx, &out.Run); err != nil {
			return nil, err
		}
		if err := repo.SaveProteinResults(ctx, out.Run.ID, out.Rows); err != nil {
			return nil, err
		}
	}
	logger.Info("protein run %s: %d wells", out.Run.ID, len(out.Rows))
	return out, nil
}

// loadWells joins the per-cell intensities with the well annotations
func loadWells(inputs config.InputConfig) ([]analysis.Well, error) {
	annotations, err := flatfile.ReadWellAnnotations(inputs.AnnotationsFile)
	if err != nil {
		return nil, err
	}
	intensities, err := flatfile.ReadIntensities(inputs.IntensitiesFile)
	if err != nil {
		return nil, err
	}

	byWell := map[string][]analysis.CellIntensity{}
	for _, m := range intensities {
		byWell[m.WellPlate] = append(byWell[m.WellPlate], analysis.CellIntensity{
			Pseudotime:  m.Pseudotime,
			Cell:        m.Cell,
			Nucleus:     m.Nucleus,
			Cytosol:     m.Cytosol,
			Microtubule: m.Microtubule,
		})
	}

	var wells []analysis.Well
	for _, a := range annotations {
		cells, ok := byWell[a.WellPlate]
		if !ok {
			continue
		}
		compartment, err := cellcycle.ParseCompartment(a.Compartment)
		if err != nil {
			continue
		}
		wells = append(wells, analysis.Well{
			WellPlate:   a.WellPlate,
			Gene:        a.Gene,
			Antibody:    a.Antibody,
			Compartment: compartment,
			Cells:       cells,
		})
	}
	return wells, nil
}

func stabilityAnalysis(ctx context.Context, cfg *config.Config, logger *internal.Logger, repo ports.ResultsRepository, geneRows []models.GeneResult) error {
	points, err := flatfile.ReadMeltingPoints(cfg.Inputs.MeltingFile)
	if err != nil {
		return err
	}
	byGene := map[string][]float64{}
	for _, p := range points {
		byGene[p.Gene] = append(byGene[p.Gene], p.Temp)
	}

	var transregCCD, nonTransregCCD, nonCCD []string
	for _, r := range geneRows {
		name := r.Name
		if name == "" {
			name = r.Gene
		}
		switch {
		case r.CCDTranscript && r.BulkPhaseRejectBH:
			transregCCD = append(transregCCD, name)
		case r.CCDTranscript:
			nonTransregCCD = append(nonTransregCCD, name)
		default:
			nonCCD = append(nonCCD, name)
		}
	}

	analyzer := analysis.NewStabilityAnalyzer(cfg.Analysis, logger)
	out, err := analyzer.Run(ctx, byGene, []analysis.StabilityGroup{
		{Name: "transreg-ccd", Genes: transregCCD},
		{Name: "nontransreg-ccd", Genes: nonTransregCCD},
		{Name: "non-ccd", Genes: nonCCD},
	})
	if err != nil {
		return err
	}

	if repo != nil {
		if err := repo.SaveRun(ctx, &out.Run); err != nil {
			return err
		}
		if err := repo.SaveStabilityComparisons(ctx, out.Run.ID, out.Rows); err != nil {
			return err
		}
	}
	logger.Info("stability run %s: %d comparisons", out.Run.ID, len(out.Rows))
	return nil
}
