package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	c1, err := ReadOrCreate(dir)
	require.NoError(t, err)
	require.NotNil(t, c1)
	assert.Equal(t, "sqlite", c1.Driver)
	assert.Equal(t, 20, c1.Scorecard.NBins)

	c1.Driver = "postgres"
	c1.DSN = "postgres://localhost/sctl"
	c1.Scorecard.PDO = 40

	require.NoError(t, Save(dir, c1))

	c2, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, c1.Driver, c2.Driver)
	assert.Equal(t, c1.DSN, c2.DSN)
	assert.Equal(t, c1.Scorecard.PDO, c2.Scorecard.PDO)
}

func TestConfig_Validation(t *testing.T) {
	assert.Error(t, Save("", getDefaultConfig()))
	assert.Error(t, Save(t.TempDir(), nil))

	_, err := ReadOrCreate("")
	assert.Error(t, err)
}

func TestGetOrCreateHomeDir_EmptyName(t *testing.T) {
	_, _, err := GetOrCreateHomeDir("")
	assert.Error(t, err)
}
