package config

import (
	"os"
	"strconv"

	"github.com/fredricj/SingleCellProteogenomics/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Inputs   InputConfig
	Outputs  OutputConfig
	Analysis AnalysisConfig
	Database DatabaseConfig
	Server   ServerConfig
}

// InputConfig holds paths to the flat-file inputs
type InputConfig struct {
	ExpressionFile  string // genes x cells TPM matrix, CSV
	PhasesFile      string // per-cell phase and pseudotime annotations, CSV
	IntensitiesFile string // per-cell immunofluorescence intensities, CSV
	AnnotationsFile string // well_plate -> ENSG/antibody/compartment, CSV
	MeltingFile     string // per-protein melting points, gzipped CSV
}

// OutputConfig holds output destinations
type OutputConfig struct {
	Dir string
}

// AnalysisConfig holds the statistical cutoffs and permutation settings
type AnalysisConfig struct {
	Alpha             float64 // FDR for the bulk-phase corrections
	AlphaCCD          float64 // alpha for the permutation gating
	PercentVarCutoff  float64 // min fraction of variance explained by the cell cycle
	MeanDiffThreshold float64 // min mean percvar difference from random
	ProteinWindow     int     // moving-average window for protein wells
	RNAWindow         int     // moving-average window for transcripts
	Permutations      int
	Seed              int64
	Workers           int
}

// DatabaseConfig holds optional postgres settings for result persistence
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// ServerConfig holds the results API settings
type ServerConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Inputs: InputConfig{
			ExpressionFile:  getEnvOrDefault("EXPRESSION_FILE", "input/Tpms.protein_coding.csv"),
			PhasesFile:      getEnvOrDefault("PHASES_FILE", "input/WellPlatePhasesLogNormIntensities.csv"),
			IntensitiesFile: getEnvOrDefault("INTENSITIES_FILE", "input/IFIntensities.csv"),
			AnnotationsFile: getEnvOrDefault("ANNOTATIONS_FILE", "input/FucciStainingSummary.csv"),
			MeltingFile:     getEnvOrDefault("MELTING_FILE", "input/ProteinStability/human.csv.gz"),
		},
		Outputs: OutputConfig{
			Dir: getEnvOrDefault("OUTPUT_DIR", "output"),
		},
		Analysis: AnalysisConfig{
			Alpha:             getEnvFloatOrDefault("ALPHA", 0.05),
			AlphaCCD:          getEnvFloatOrDefault("ALPHA_CCD", 0.01),
			PercentVarCutoff:  getEnvFloatOrDefault("PERCVAR_CUTOFF", 0.1),
			MeanDiffThreshold: getEnvFloatOrDefault("MEANDIFF_THRESHOLD", 0.08),
			ProteinWindow:     getEnvIntOrDefault("PROTEIN_WINDOW", 20),
			RNAWindow:         getEnvIntOrDefault("RNA_WINDOW", 100),
			Permutations:      getEnvIntOrDefault("PERMUTATIONS", 10000),
			Seed:              int64(getEnvIntOrDefault("SEED", 0)),
			Workers:           getEnvIntOrDefault("WORKERS", 4),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
	}
	config.Database.Enabled = config.Database.URL != ""

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(c *Config) error {
	if c.Analysis.Alpha <= 0 || c.Analysis.Alpha >= 1 {
		return errors.ConfigInvalid("ALPHA must be in (0,1)")
	}
	if c.Analysis.AlphaCCD <= 0 || c.Analysis.AlphaCCD >= 1 {
		return errors.ConfigInvalid("ALPHA_CCD must be in (0,1)")
	}
	if c.Analysis.ProteinWindow < 1 || c.Analysis.RNAWindow < 1 {
		return errors.ConfigInvalid("moving-average windows must be positive")
	}
	if c.Analysis.Permutations < 1 {
		return errors.ConfigInvalid("PERMUTATIONS must be positive")
	}
	if c.Analysis.Workers < 1 {
		return errors.ConfigInvalid("WORKERS must be positive")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloatOrDefault(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
