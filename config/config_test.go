package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/megascan/lock-engine/chain"
	"github.com/megascan/lock-engine/locks"
)

func defaultViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(defaultViper())
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, chain.DefaultAddresses(), cfg.Addresses)
	assert.Equal(t, uint64(locks.DefaultScanLimit), cfg.ScanLimit)
	assert.Equal(t, 10*time.Minute, cfg.RefreshInterval)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	// GIVEN: values set explicitly, as flags or the config file would
	v := defaultViper()
	v.Set("port", 9000)
	v.Set("scan-limit", 250)
	v.Set("refresh-interval", "0s")
	v.Set("allowed-origins", "https://megascan.xyz, http://localhost:3000,")
	v.Set("lock-address", "0x00000000000000000000000000000000000000aa")

	cfg, err := Load(v)

	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, uint64(250), cfg.ScanLimit)
	assert.Zero(t, cfg.RefreshInterval, "0 disables the refresher")
	assert.Equal(t, []string{"https://megascan.xyz", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "0x00000000000000000000000000000000000000AA", cfg.Addresses.Lock.Hex())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("MEGASCAN_SCAN_LIMIT", "7")
	t.Setenv("MEGASCAN_DB", ":memory:")

	v := defaultViper()
	BindEnv(v)
	cfg, err := Load(v)

	require.NoError(t, err)
	assert.Equal(t, uint64(7), cfg.ScanLimit)
	assert.Equal(t, ":memory:", cfg.DBPath)
}

func TestValidate_Rejects(t *testing.T) {
	base := RawInput{
		Port:        8080,
		DB:          "x.db",
		RPCURL:      "https://rpc.example",
		ExplorerURL: "https://explorer.example/api/v2",
		PriceURL:    "https://price.example",
		LockAddress: "0x00000000000000000000000000000000000000aa",
		BurnAddress: "0x00000000000000000000000000000000000000bb",
	}
	_, err := Validate(base)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(r *RawInput)
	}{
		{"port", func(r *RawInput) { r.Port = 0 }},
		{"db", func(r *RawInput) { r.DB = " " }},
		{"rpc url", func(r *RawInput) { r.RPCURL = "localhost" }},
		{"lock address", func(r *RawInput) { r.LockAddress = "0x12" }},
		{"burn address", func(r *RawInput) { r.BurnAddress = "" }},
		{"scan limit", func(r *RawInput) { r.ScanLimit = -1 }},
		{"interval", func(r *RawInput) { r.RefreshInterval = "soon" }},
		{"negative interval", func(r *RawInput) { r.RefreshInterval = "-1m" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := base
			tt.mutate(&raw)
			_, err := Validate(raw)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
