// Package flatfile reads the analysis inputs from CSV tables and writes
// the result tables back out. All numeric parsing maps empty or
// unparseable fields to NaN so the statistical core's NaN policy applies
// uniformly.
package flatfile

import (
	"compress/gzip"
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/fredricj/SingleCellProteogenomics/internal/errors"
)

// ExpressionMatrix is a gene-major expression table: Values[g][c] is
// gene g in cell c.
type ExpressionMatrix struct {
	Genes  []string
	Cells  []string
	Values [][]float64
}

// ReadExpressionMatrix reads a CSV with a header row of cell identifiers
// and one row per gene, first column the gene identifier.
func ReadExpressionMatrix(path string) (*ExpressionMatrix, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.DataFormatError(path, errors.New("EMPTY_INPUT", "expression matrix needs a header and at least one gene row"))
	}

	m := &ExpressionMatrix{Cells: rows[0][1:]}
	for _, row := range rows[1:] {
		if len(row) != len(rows[0]) {
			return nil, errors.DataFormatError(path, errors.New("SHAPE_MISMATCH", "ragged expression row"))
		}
		m.Genes = append(m.Genes, row[0])
		vals := make([]float64, len(row)-1)
		for i, field := range row[1:] {
			vals[i] = parseFloat(field)
		}
		m.Values = append(m.Values, vals)
	}
	return m, nil
}

// CellAnnotations carries the per-cell phase call and fucci pseudotime,
// parallel to the expression matrix's cell order.
type CellAnnotations struct {
	CellID     []string
	Phase      []string // G1, S-ph, G2M
	Pseudotime []float64
}

// ReadCellAnnotations reads the phases table (Well_Plate, Stage,
// fucci_time columns).
func ReadCellAnnotations(path string) (*CellAnnotations, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	idx, err := headerIndex(path, rows, "Well_Plate", "Stage", "fucci_time")
	if err != nil {
		return nil, err
	}

	ann := &CellAnnotations{}
	for _, row := range rows[1:] {
		ann.CellID = append(ann.CellID, row[idx["Well_Plate"]])
		ann.Phase = append(ann.Phase, row[idx["Stage"]])
		ann.Pseudotime = append(ann.Pseudotime, parseFloat(row[idx["fucci_time"]]))
	}
	return ann, nil
}

// WellAnnotation maps a stained well to its gene, antibody, and
// annotated compartment.
type WellAnnotation struct {
	WellPlate   string
	Gene        string
	Antibody    string
	Compartment string
}

// ReadWellAnnotations reads the staining summary (well_plate, ENSG,
// Antibody, Compartment columns).
func ReadWellAnnotations(path string) ([]WellAnnotation, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	idx, err := headerIndex(path, rows, "well_plate", "ENSG", "Antibody", "Compartment")
	if err != nil {
		return nil, err
	}

	var out []WellAnnotation
	for _, row := range rows[1:] {
		out = append(out, WellAnnotation{
			WellPlate:   row[idx["well_plate"]],
			Gene:        row[idx["ENSG"]],
			Antibody:    row[idx["Antibody"]],
			Compartment: row[idx["Compartment"]],
		})
	}
	return out, nil
}

// IntensityMeasurement is one cell's immunofluorescence reading in a
// well: antibody intensity per compartment plus the microtubule control,
// with the cell's pseudotime position.
type IntensityMeasurement struct {
	WellPlate   string
	Pseudotime  float64
	Cell        float64
	Nucleus     float64
	Cytosol     float64
	Microtubule float64
}

// ReadIntensities reads the per-cell intensity table (well_plate,
// fucci_time, ab_cell, ab_nuc, ab_cyto, mt_cell columns).
func ReadIntensities(path string) ([]IntensityMeasurement, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	idx, err := headerIndex(path, rows, "well_plate", "fucci_time", "ab_cell", "ab_nuc", "ab_cyto", "mt_cell")
	if err != nil {
		return nil, err
	}

	var out []IntensityMeasurement
	for _, row := range rows[1:] {
		out = append(out, IntensityMeasurement{
			WellPlate:   row[idx["well_plate"]],
			Pseudotime:  parseFloat(row[idx["fucci_time"]]),
			Cell:        parseFloat(row[idx["ab_cell"]]),
			Nucleus:     parseFloat(row[idx["ab_nuc"]]),
			Cytosol:     parseFloat(row[idx["ab_cyto"]]),
			Microtubule: parseFloat(row[idx["mt_cell"]]),
		})
	}
	return out, nil
}

// MeltingPoint is one proteomic melting-point measurement.
type MeltingPoint struct {
	Gene     string
	CellLine string
	Temp     float64
}

// ReadMeltingPoints reads the melting-point table (gene_name,
// cell_line_or_type, quan_norm_meltPoint columns), transparently
// decompressing .gz files. Rows without a measurement are dropped, the
// way the original analysis filters NaN before taking medians.
func ReadMeltingPoints(path string) ([]MeltingPoint, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	idx, err := headerIndex(path, rows, "gene_name", "cell_line_or_type", "quan_norm_meltPoint")
	if err != nil {
		return nil, err
	}

	var out []MeltingPoint
	for _, row := range rows[1:] {
		temp := parseFloat(row[idx["quan_norm_meltPoint"]])
		if math.IsNaN(temp) {
			continue
		}
		out = append(out, MeltingPoint{
			Gene:     row[idx["gene_name"]],
			CellLine: row[idx["cell_line_or_type"]],
			Temp:     temp,
		})
	}
	return out, nil
}

// readCSV loads a whole CSV file, gunzipping when the path ends in .gz.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.DataFormatError(path, err)
		}
		defer gz.Close()
		reader = gz
	}

	rows, err := csv.NewReader(reader).ReadAll()
	if err != nil {
		return nil, errors.DataFormatError(path, err)
	}
	if len(rows) == 0 {
		return nil, errors.DataFormatError(path, errors.New("EMPTY_INPUT", "file has no rows"))
	}
	return rows, nil
}

// headerIndex locates the required columns in the header row.
func headerIndex(path string, rows [][]string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, errors.DataFormatError(path, errors.New("MISSING_COLUMN", "missing column "+name))
		}
	}
	return idx, nil
}

func parseFloat(field string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
