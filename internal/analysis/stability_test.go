package analysis

import (
	"context"
	"testing"

	"github.com/fredricj/SingleCellProteogenomics/internal"
)

func TestStabilityAnalyzer_Run(t *testing.T) {
	points := map[string][]float64{
		"CDK1":  {49.5, 50.5, 50.0},
		"CCNB1": {51.0, 51.2},
		"AURKA": {52.0},
		"GAPDH": {60.0, 60.4},
		"ACTB":  {61.0, 61.5, 60.5},
		"TUBB":  {62.2},
	}
	groups := []StabilityGroup{
		{Name: "ccd", Genes: []string{"CDK1", "CCNB1", "AURKA", "MISSING"}},
		{Name: "non-ccd", Genes: []string{"GAPDH", "ACTB", "TUBB"}},
	}

	analyzer := NewStabilityAnalyzer(testAnalysisConfig(), internal.NewLogger(internal.LogLevelError))
	out, err := analyzer.Run(context.Background(), points, groups)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Run.Kind != "stability" {
		t.Errorf("run kind = %q, want stability", out.Run.Kind)
	}
	if len(out.Rows) != 1 {
		t.Fatalf("got %d comparisons, want 1", len(out.Rows))
	}

	row := out.Rows[0]
	if row.GroupA != "ccd" || row.GroupB != "non-ccd" {
		t.Errorf("comparison pairs %q vs %q", row.GroupA, row.GroupB)
	}
	// the unknown gene drops out of the group
	if row.SizeA != 3 || row.SizeB != 3 {
		t.Errorf("group sizes %d and %d, want 3 and 3", row.SizeA, row.SizeB)
	}
	if row.MeanA >= row.MeanB {
		t.Errorf("ccd group should melt lower: %v vs %v", row.MeanA, row.MeanB)
	}
	if row.TTestP >= 0.05 {
		t.Errorf("clearly separated groups should be significant, t-test p=%v", row.TTestP)
	}
	if row.KruskalP <= 0 || row.KruskalP >= 1 {
		t.Errorf("kruskal p out of range: %v", row.KruskalP)
	}

	// per-gene medians aggregate across cell lines
	if out.Medians["CDK1"] != 50.0 {
		t.Errorf("CDK1 median = %v, want 50", out.Medians["CDK1"])
	}
	if out.Medians["GAPDH"] != 60.2 {
		t.Errorf("GAPDH median = %v, want 60.2", out.Medians["GAPDH"])
	}
}

func TestStabilityAnalyzer_Validation(t *testing.T) {
	analyzer := NewStabilityAnalyzer(testAnalysisConfig(), internal.NewLogger(internal.LogLevelError))

	if _, err := analyzer.Run(context.Background(), nil, []StabilityGroup{{Name: "a"}, {Name: "b"}}); err == nil {
		t.Error("empty melting points should error")
	}

	points := map[string][]float64{"CDK1": {50}}
	if _, err := analyzer.Run(context.Background(), points, []StabilityGroup{{Name: "only"}}); err == nil {
		t.Error("one group should error")
	}

	// groups that collapse below two members cannot be compared
	groups := []StabilityGroup{
		{Name: "a", Genes: []string{"CDK1"}},
		{Name: "b", Genes: []string{"UNKNOWN"}},
	}
	if _, err := analyzer.Run(context.Background(), points, groups); err == nil {
		t.Error("degenerate groups should error")
	}
}
