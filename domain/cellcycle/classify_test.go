package cellcycle

import (
	"math"
	"testing"
)

func TestParseCompartment(t *testing.T) {
	cases := map[string]Compartment{
		"cell":    CompartmentCell,
		"Cell":    CompartmentCell,
		"nucleus": CompartmentNucleus,
		"nuc":     CompartmentNucleus,
		"Cytosol": CompartmentCytosol,
		"cyto":    CompartmentCytosol,
	}
	for in, want := range cases {
		got, err := ParseCompartment(in)
		if err != nil {
			t.Errorf("ParseCompartment(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseCompartment(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseCompartment("mitochondria"); err == nil {
		t.Error("unknown compartment should error")
	}
}

func TestSelectByCompartment(t *testing.T) {
	cell := []float64{1, 2, 3}
	nuc := []float64{10, 20, 30}
	cyto := []float64{100, 200, 300}
	ann := []Compartment{CompartmentCell, CompartmentNucleus, CompartmentCytosol}

	got, err := SelectByCompartment(cell, nuc, cyto, ann)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{1, 20, 300}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSelectByCompartment_ShapeMismatch(t *testing.T) {
	_, err := SelectByCompartment([]float64{1}, []float64{1, 2}, []float64{1, 2}, []Compartment{CompartmentCell, CompartmentCell})
	if err == nil {
		t.Error("mismatched vectors should error")
	}
}

func TestProteinCalls_ConjunctiveGate(t *testing.T) {
	percVar := []float64{0.5, 0.5, 0.05, 0.1, math.NaN()}
	reject := []bool{true, false, true, true, true}

	calls, err := ProteinCalls(percVar, reject, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []bool{true, false, false, true, false}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %v, want %v", i, calls[i], want[i])
		}
	}
}
