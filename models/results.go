package models

import "time"

// AnalysisRun records one execution of an analysis pipeline
type AnalysisRun struct {
	ID             string    `db:"id" json:"id"`
	Kind           string    `db:"kind" json:"kind"` // transcript, protein, stability
	Alpha          float64   `db:"alpha" json:"alpha"`
	Permutations   int       `db:"permutations" json:"permutations"`
	Seed           int64     `db:"seed" json:"seed"`
	FiguresOfMerit string    `db:"figures_of_merit" json:"figures_of_merit"` // markdown summary
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// GeneResult is one row of the transcript regulation table
type GeneResult struct {
	RunID              string  `db:"run_id" json:"run_id"`
	Gene               string  `db:"gene" json:"gene"`
	Name               string  `db:"name" json:"name"`
	BulkPhaseP         float64 `db:"bulk_phase_p" json:"bulk_phase_p"`
	BulkPhaseAdjBH     float64 `db:"bulk_phase_adj_bh" json:"bulk_phase_adj_bh"`
	BulkPhaseRejectBH  bool    `db:"bulk_phase_reject_bh" json:"bulk_phase_reject_bh"`
	BulkPhaseAdjBonf   float64 `db:"bulk_phase_adj_bonf" json:"bulk_phase_adj_bonf"`
	BulkPhaseRejectB   bool    `db:"bulk_phase_reject_b" json:"bulk_phase_reject_b"`
	PercentVariance    float64 `db:"percent_variance" json:"percent_variance"`
	TotalVariance      float64 `db:"total_variance" json:"total_variance"`
	Gini               float64 `db:"gini" json:"gini"`
	MeanDiffFromRandom float64 `db:"mean_diff_from_random" json:"mean_diff_from_random"`
	PermutationP       float64 `db:"permutation_p" json:"permutation_p"`
	PermutationAdjP    float64 `db:"permutation_adj_p" json:"permutation_adj_p"`
	CCDTranscript      bool    `db:"ccd_transcript" json:"ccd_transcript"`
}

// ProteinResult is one row of the protein well table
type ProteinResult struct {
	RunID           string  `db:"run_id" json:"run_id"`
	WellPlate       string  `db:"well_plate" json:"well_plate"`
	Gene            string  `db:"gene" json:"gene"`
	Antibody        string  `db:"antibody" json:"antibody"`
	Compartment     string  `db:"compartment" json:"compartment"`
	CellCount       int     `db:"cell_count" json:"cell_count"`
	PercentVariance float64 `db:"percent_variance" json:"percent_variance"`
	LeveneP         float64 `db:"levene_p" json:"levene_p"`
	AdjustedP       float64 `db:"adjusted_p" json:"adjusted_p"`
	CCDProtein      bool    `db:"ccd_protein" json:"ccd_protein"`
}

// StabilityComparison is one melting-point group comparison
type StabilityComparison struct {
	RunID     string  `db:"run_id" json:"run_id"`
	GroupA    string  `db:"group_a" json:"group_a"`
	GroupB    string  `db:"group_b" json:"group_b"`
	SizeA     int     `db:"size_a" json:"size_a"`
	SizeB     int     `db:"size_b" json:"size_b"`
	MeanA     float64 `db:"mean_a" json:"mean_a"`
	MeanB     float64 `db:"mean_b" json:"mean_b"`
	MedianA   float64 `db:"median_a" json:"median_a"`
	MedianB   float64 `db:"median_b" json:"median_b"`
	TTestP    float64 `db:"ttest_p" json:"ttest_p"`
	KruskalP  float64 `db:"kruskal_p" json:"kruskal_p"`
}
