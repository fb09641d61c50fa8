package analysis

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/fredricj/SingleCellProteogenomics/adapters/rng"
	"github.com/fredricj/SingleCellProteogenomics/internal"
)

func testFeatures(numFeatures, numCells int, seed int64) [][]float64 {
	r := rand.New(rand.NewSource(seed))
	features := make([][]float64, numFeatures)
	for f := range features {
		features[f] = make([]float64, numCells)
		for c := range features[f] {
			features[f][c] = r.Float64()
		}
	}
	return features
}

func TestNullPercentVariance_Deterministic(t *testing.T) {
	features := testFeatures(5, 60, 1)
	logger := internal.NewLogger(internal.LogLevelError)

	sequential := NewPermutationRunner(rng.New(), 20, 1, logger)
	parallel := NewPermutationRunner(rng.New(), 20, 8, logger)

	a, err := sequential.NullPercentVariance(context.Background(), features, 10, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := parallel.NullPercentVariance(context.Background(), features, 10, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range a {
		for f := range a[i] {
			if a[i][f] != b[i][f] {
				t.Fatalf("row %d feature %d differs between worker counts: %v vs %v", i, f, a[i][f], b[i][f])
			}
		}
	}
}

func TestNullPercentVariance_SeedChangesMatrix(t *testing.T) {
	features := testFeatures(3, 50, 2)
	logger := internal.NewLogger(internal.LogLevelError)
	runner := NewPermutationRunner(rng.New(), 10, 4, logger)

	a, err := runner.NullPercentVariance(context.Background(), features, 10, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := runner.NullPercentVariance(context.Background(), features, 10, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	same := true
	for i := range a {
		for f := range a[i] {
			if a[i][f] != b[i][f] {
				same = false
			}
		}
	}
	if same {
		t.Error("different seeds produced identical null matrices")
	}
}

func TestNullPercentVariance_Shape(t *testing.T) {
	features := testFeatures(4, 40, 3)
	logger := internal.NewLogger(internal.LogLevelError)
	runner := NewPermutationRunner(rng.New(), 15, 4, logger)

	null, err := runner.NullPercentVariance(context.Background(), features, 8, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(null) != 15 {
		t.Fatalf("got %d rows, want 15", len(null))
	}
	for i, row := range null {
		if len(row) != 4 {
			t.Fatalf("row %d has %d features, want 4", i, len(row))
		}
		for f, v := range row {
			if math.IsNaN(v) || v < 0 || v > 1 {
				t.Errorf("row %d feature %d out of range: %v", i, f, v)
			}
		}
	}
}

func TestNullPercentVariance_EmptyFeatures(t *testing.T) {
	logger := internal.NewLogger(internal.LogLevelError)
	runner := NewPermutationRunner(rng.New(), 5, 2, logger)
	if _, err := runner.NullPercentVariance(context.Background(), nil, 8, 7); err == nil {
		t.Error("empty feature matrix should error")
	}
}
