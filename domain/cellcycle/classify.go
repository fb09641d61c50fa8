package cellcycle

import (
	"fmt"

	"github.com/fredricj/SingleCellProteogenomics/internal/errors"
)

// Compartment is the subcellular location a protein was annotated in.
type Compartment int

const (
	CompartmentCell Compartment = iota
	CompartmentNucleus
	CompartmentCytosol
)

func (c Compartment) String() string {
	switch c {
	case CompartmentNucleus:
		return "nucleus"
	case CompartmentCytosol:
		return "cytosol"
	default:
		return "cell"
	}
}

// ParseCompartment maps annotation strings to a Compartment.
func ParseCompartment(s string) (Compartment, error) {
	switch s {
	case "cell", "Cell":
		return CompartmentCell, nil
	case "nucleus", "Nucleus", "nuc":
		return CompartmentNucleus, nil
	case "cytosol", "Cytosol", "cyto":
		return CompartmentCytosol, nil
	}
	return CompartmentCell, errors.New("INVALID_COMPARTMENT", fmt.Sprintf("unknown compartment %q", s))
}

// SelectByCompartment picks, for each well, the value measured in its
// annotated compartment. The three value vectors and the annotation
// vector must be parallel.
func SelectByCompartment(cell, nuc, cyto []float64, annotated []Compartment) ([]float64, error) {
	n := len(annotated)
	if len(cell) != n || len(nuc) != n || len(cyto) != n {
		return nil, errors.New("SHAPE_MISMATCH", "compartment value vectors must be parallel to annotations")
	}
	out := make([]float64, n)
	for i, comp := range annotated {
		switch comp {
		case CompartmentNucleus:
			out[i] = nuc[i]
		case CompartmentCytosol:
			out[i] = cyto[i]
		default:
			out[i] = cell[i]
		}
	}
	return out, nil
}

// ProteinCalls returns the conjunctive CCD decision per well: the
// percent variance explained by the cell cycle must reach the cutoff AND
// the corrected variance test must reject.
func ProteinCalls(percVar []float64, reject []bool, cutoff float64) ([]bool, error) {
	if len(percVar) != len(reject) {
		return nil, errors.New("SHAPE_MISMATCH", "percent variance and reject vectors must be parallel")
	}
	calls := make([]bool, len(percVar))
	for i := range percVar {
		calls[i] = percVar[i] >= cutoff && reject[i]
	}
	return calls, nil
}
