package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVSource_Read(t *testing.T) {
	path := writeTestCSV(t, "Nome_Compania,Regiao,Ano\nAcme,Europa,2020\nBeta,Ásia,2021\n")

	header, rows, err := NewCSVSource(path).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Nome_Compania", "Regiao", "Ano"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Beta", "Ásia", "2021"}, rows[1])
}

func TestCSVSource_CustomDelimiter(t *testing.T) {
	path := writeTestCSV(t, "Nome_Compania;Regiao\nAcme;Europa\n")

	src := NewCSVSource(path)
	src.Comma = ';'
	header, rows, err := src.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Nome_Compania", "Regiao"}, header)
	assert.Equal(t, []string{"Acme", "Europa"}, rows[0])
}

func TestCSVSource_EmptyFile(t *testing.T) {
	path := writeTestCSV(t, "")
	_, _, err := NewCSVSource(path).Read(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestCSVSource_MissingFile(t *testing.T) {
	_, _, err := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv")).Read(context.Background())
	require.Error(t, err)
}

func TestCSVSource_EndToEndLoad(t *testing.T) {
	lines := []string{
		strings.Join(RequiredColumns, ","),
		"Acme,Europa,2020,100,10,340,50,40,55,60",
		"Semesg,Europa,2020,100,10,340,,40,55,60",
	}
	path := writeTestCSV(t, strings.Join(lines, "\n")+"\n")

	table, err := NewLoader(NewCSVSource(path), 0).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "Acme", table.At(0).Company)
}
