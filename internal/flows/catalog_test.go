package flows

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `[
	{
		"name": "CollectFiles",
		"friendly_name": "Collect files",
		"category": "Filesystem",
		"block_fleet_runs": false,
		"default_args": {"action": "stat", "max_file_size": 10485760},
		"args_schema": {
			"type": "object",
			"required": ["paths"],
			"properties": {
				"paths": {"type": "array", "items": {"type": "string"}, "minItems": 1},
				"action": {"enum": ["stat", "hash", "download"]},
				"max_file_size": {"type": "integer", "minimum": 0}
			}
		}
	},
	{
		"name": "Interrogate",
		"friendly_name": "Interrogate endpoint",
		"category": "Administrative",
		"block_fleet_runs": true
	}
]`

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))
	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	return catalog
}

func TestCatalog_LoadAndLookup(t *testing.T) {
	catalog := loadTestCatalog(t)

	flows := catalog.Flows()
	require.Len(t, flows, 2)
	assert.Equal(t, "CollectFiles", flows[0].Name)

	d, err := catalog.Flow("Interrogate")
	require.NoError(t, err)
	assert.True(t, d.BlockFleetRuns)

	_, err = catalog.Flow("DoesNotExist")
	assert.ErrorIs(t, err, ErrUnknownFlow)
}

func TestCatalog_RegisterForm(t *testing.T) {
	catalog := loadTestCatalog(t)

	require.NoError(t, catalog.RegisterForm(FileCollectorForm{}))
	form, err := catalog.Form("CollectFiles")
	require.NoError(t, err)
	require.NotNil(t, form)

	// Interrogate takes no arguments: known flow, nil form.
	form, err = catalog.Form("Interrogate")
	require.NoError(t, err)
	assert.Nil(t, form)

	// A form for a flow the catalog does not know is a wiring mistake.
	assert.ErrorIs(t, catalog.RegisterForm(ArtifactCollectorForm{}), ErrUnknownFlow)
}

func TestCatalog_ValidateArgs(t *testing.T) {
	catalog := loadTestCatalog(t)

	violations, err := catalog.ValidateArgs("CollectFiles", Args{
		"paths":         []string{"/etc/hosts"},
		"action":        "stat",
		"max_file_size": 1024,
	})
	require.NoError(t, err)
	assert.Empty(t, violations)

	violations, err = catalog.ValidateArgs("CollectFiles", Args{
		"action": "explode",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, violations)

	// No schema means any arguments pass.
	violations, err = catalog.ValidateArgs("Interrogate", Args{"whatever": 1})
	require.NoError(t, err)
	assert.Empty(t, violations)

	_, err = catalog.ValidateArgs("DoesNotExist", Args{})
	assert.ErrorIs(t, err, ErrUnknownFlow)
}
