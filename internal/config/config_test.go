package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("STORAGE_USE_SSL", "true")
	t.Setenv("CONVERTER_TIMEOUT", "15s")
	t.Setenv("STAMP_MEDIC_SIGNATURE", "2,10,20,30,40")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Storage.UseSSL)
	assert.Equal(t, 15*time.Minute, cfg.Storage.LinkExpiry)
	assert.Equal(t, 15*time.Second, cfg.Generator.ConverterTimeout)
	assert.Equal(t, 1, cfg.Generator.MaxConcurrentConvs)
	assert.Equal(t, OverlayPreset{Page: "2", X: 10, Y: 20, Width: 30, Height: 40}, cfg.Stamp.Presets[PresetMedicSignature])
	assert.Equal(t, OverlayPreset{Page: "first", X: 195, Y: 570, Width: 67, Height: 67}, cfg.Stamp.Presets[PresetPsychometricQR])
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{TimeZone: "Not/AZone"}
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.TimeZone = "UTC"
	assert.Equal(t, "UTC", cfg.Location().String())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvPreset(t *testing.T) {
	key := "TEST_PRESET_VAR"
	def := OverlayPreset{Page: "last", X: 1, Y: 2, Width: 3, Height: 4}

	os.Setenv(key, "first, 5, 6, 7, 8")
	assert.Equal(t, OverlayPreset{Page: "first", X: 5, Y: 6, Width: 7, Height: 8}, getEnvPreset(key, def))

	os.Setenv(key, "first,5,6")
	assert.Equal(t, def, getEnvPreset(key, def))

	os.Setenv(key, "first,a,6,7,8")
	assert.Equal(t, def, getEnvPreset(key, def))

	os.Unsetenv(key)
	assert.Equal(t, def, getEnvPreset(key, def))
}
