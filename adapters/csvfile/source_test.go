package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itsa/internal/testkit"
)

func TestRoundTrip(t *testing.T) {
	ds, err := testkit.Generate(testkit.DefaultConfig())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, WriteFile(path, ds))

	loaded, err := NewSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, ds.Len(), loaded.Len())
	assert.Equal(t, ds.Observations, loaded.Observations)
}

func TestLoadAcceptsAliasHeaders(t *testing.T) {
	content := "Year,Month,time_index,count,indicator,pop,stdpop\n" +
		"2018,1,1,150,0,400000,380000\n" +
		"2018,2,2,160,1,400000,380000\n"
	path := writeTemp(t, content)

	ds, err := NewSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, 150, ds.Observations[0].OutcomeCount)
	assert.Equal(t, 1, ds.Observations[1].Intervention)
	assert.Equal(t, 380000.0, ds.Observations[0].StdPop)
}

func TestLoadRejectsMissingColumn(t *testing.T) {
	content := "year,month,time,outcome,intervention,population\n" +
		"2018,1,1,150,0,400000\n"
	path := writeTemp(t, content)

	_, err := NewSource(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "std_population")
}

func TestLoadRejectsNegativeCount(t *testing.T) {
	content := "year,month,time,outcome,intervention,population,std_population\n" +
		"2018,1,1,-5,0,400000,380000\n"
	path := writeTemp(t, content)

	_, err := NewSource(path).Load(context.Background())
	require.Error(t, err)
}

func TestLoadRejectsRevertingIndicator(t *testing.T) {
	content := "year,month,time,outcome,intervention,population,std_population\n" +
		"2018,1,1,150,1,400000,380000\n" +
		"2018,2,2,140,0,400000,380000\n"
	path := writeTemp(t, content)

	_, err := NewSource(path).Load(context.Background())
	require.Error(t, err)
}

func TestLoadRejectsHeaderOnly(t *testing.T) {
	path := writeTemp(t, "year,month,time,outcome,intervention,population,std_population\n")
	_, err := NewSource(path).Load(context.Background())
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewSource(filepath.Join(t.TempDir(), "absent.csv")).Load(context.Background())
	require.Error(t, err)
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
