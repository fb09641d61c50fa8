package excel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fredricj/SingleCellProteogenomics/models"
)

func TestSummaryWriter_Save(t *testing.T) {
	genes := []models.GeneResult{
		{Gene: "ENSG1", Name: "CDK1", PercentVariance: 0.42, CCDTranscript: true},
		{Gene: "ENSG2", Name: "GAPDH", PercentVariance: 0.03, CCDTranscript: false},
	}
	proteins := []models.ProteinResult{
		{WellPlate: "A1_p1", Gene: "ENSG1", Antibody: "HPA042", Compartment: "nucleus", CCDProtein: true},
	}

	path := filepath.Join(t.TempDir(), "summary.xlsx")
	require.NoError(t, NewSummaryWriter(genes, proteins).Save(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Transcripts", "Proteins"}, f.GetSheetList())

	gene, err := f.GetCellValue("Transcripts", "A2")
	require.NoError(t, err)
	assert.Equal(t, "ENSG1", gene)

	name, err := f.GetCellValue("Transcripts", "B3")
	require.NoError(t, err)
	assert.Equal(t, "GAPDH", name)

	ccd, err := f.GetCellValue("Transcripts", "G2")
	require.NoError(t, err)
	assert.Equal(t, "true", ccd)

	well, err := f.GetCellValue("Proteins", "A2")
	require.NoError(t, err)
	assert.Equal(t, "A1_p1", well)
}

func TestSummaryWriter_EmptyTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, NewSummaryWriter(nil, nil).Save(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Transcripts")
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
	assert.Equal(t, "gene", rows[0][0])
}
