package config

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wire.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	order, err := cfg.Codec.Order()
	require.NoError(t, err)
	assert.Equal(t, binary.BigEndian, order)
	assert.True(t, cfg.Board.CopyOnDelivery)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[board]
copy_on_delivery = false

[codec]
byte_order = "little"

[poll]
max_delay = "10ms"

[log]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Board.CopyOnDelivery)
	order, err := cfg.Codec.Order()
	require.NoError(t, err)
	assert.Equal(t, binary.LittleEndian, order)

	backoff, err := cfg.Poll.Backoff()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, backoff.MaxDelay)
	assert.Equal(t, 100*time.Microsecond, backoff.InitialDelay, "omitted key keeps default")

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Logging().Format)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"parse", "[board\n", "config parse failed"},
		{"byte order", "[codec]\nbyte_order = \"middle\"\n", "byte_order"},
		{"duration", "[poll]\ninitial_delay = \"soon\"\n", "initial_delay"},
		{"delay order", "[poll]\ninitial_delay = \"1s\"\nmax_delay = \"1ms\"\n", "below initial_delay"},
		{"multiplier", "[poll]\nmultiplier = 0.5\n", "multiplier"},
		{"level", "[log]\nlevel = \"loud\"\n", "log level"},
		{"format", "[log]\nformat = \"xml\"\n", "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Codec.ByteOrder = "little"

	data, err := Encode(cfg)
	require.NoError(t, err)

	got, err := Load(writeConfig(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
