package refdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/eligibility-cli/internal/model"
)

const extractHeader = "InsurancePolicyPatientEligibilityId,CarrierName,IsInNetwork,LifetimeMax,LifetimeRemaining,PatientFirstName"

func TestLoadCSVTranscodesLatin1(t *testing.T) {
	// "José" with the é encoded as ISO-8859-1 byte 0xE9, the way the
	// upstream export tool writes it.
	body := []byte(extractHeader + "\n101,MetLife,1,1500,1000,Jos")
	body = append(body, 0xE9, '\n')

	path := filepath.Join(t.TempDir(), "extract.csv")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	tab, err := Load(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, 1, tab.NumRows())
	assert.Equal(t, "José", tab.Get(0, "PatientFirstName").Str)
	assert.Equal(t, "MetLife", tab.Get(0, model.ColCarrierName).Str)
}

func TestLoadCSVToleratesBareQuotes(t *testing.T) {
	// The export tool does not escape embedded quotes.
	body := extractHeader + "\n102,MetLife,0,2000,2000,Annie \"Ann\"\n"

	path := filepath.Join(t.TempDir(), "extract.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	tab, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 1, tab.NumRows())
	assert.Equal(t, `Annie "Ann"`, tab.Get(0, "PatientFirstName").Str)
}

func TestLoadCSVEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extract.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestLoadCSVMissingRequiredColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extract.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), model.ColCarrierName)
}

func TestLoadXLSX(t *testing.T) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Export")
	require.NoError(t, err)

	header := []string{
		model.ColPolicyEligibilityID,
		model.ColCarrierName,
		model.ColIsInNetwork,
		model.ColLifetimeMaxRef,
		model.ColLifetimeRemRef,
	}
	row := sheet.AddRow()
	for _, h := range header {
		row.AddCell().Value = h
	}
	row = sheet.AddRow()
	for _, v := range []string{"101", "MetLife", "1", "1500", "1000"} {
		row.AddCell().Value = v
	}

	path := filepath.Join(t.TempDir(), "extract.xlsx")
	require.NoError(t, file.Save(path))

	tab, err := Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 1, tab.NumRows())
	assert.Equal(t, "1500", tab.Get(0, model.ColLifetimeMaxRef).Str)
}
