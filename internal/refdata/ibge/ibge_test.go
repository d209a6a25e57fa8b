package ibge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedTable(t *testing.T) {
	table, err := Load("")
	require.NoError(t, err)
	assert.Positive(t, table.Len())

	code, ok := table.Code("sp", "  SÃO PAULO ")
	require.True(t, ok)
	assert.Equal(t, "3550308", code)

	code, ok = table.Code("RJ", "niteroi")
	require.True(t, ok)
	assert.Equal(t, "3303302", code)

	_, ok = table.Code("SP", "Atlantis")
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "PR-sao jose dos pinhais", Key(" pr", "São José dos Pinhais"))
}

func TestLoadOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"uf":"PR","nome":"São José dos Pinhais","codigo":"4125506"},
		{"uf":"PR","nome":"Araucária","codigo":"4101804"}
	]`), 0o600))

	table, err := Load(path)
	require.NoError(t, err)

	code, ok := table.Code("PR", "sao jose dos pinhais")
	require.True(t, ok)
	assert.Equal(t, "4125506", code)
	assert.Equal(t, []string{"ARAUCÁRIA", "SÃO JOSÉ DOS PINHAIS"}, table.Cities("pr"))

	_, ok = table.Code("SP", "São Paulo")
	assert.False(t, ok)
}

func TestLoadRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cities.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"SP-sao paulo":`), 0o600))

	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
