// Package config turns raw settings from flags, MEGASCAN_* environment
// variables and an optional .megascan.yaml into a validated Config.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"github.com/megascan/lock-engine/chain"
	"github.com/megascan/lock-engine/explorer"
	"github.com/megascan/lock-engine/locks"
)

// Defaults for settings that have no natural zero value.
const (
	DefaultPort            = 8080
	DefaultDBPath          = "megascan.db"
	DefaultRefreshInterval = "10m"
	EnvPrefix              = "MEGASCAN"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// RawInput holds the unvalidated settings. Viper unmarshals into it.
type RawInput struct {
	Port            int    `mapstructure:"port"`
	DB              string `mapstructure:"db"`
	RPCURL          string `mapstructure:"rpc-url"`
	ExplorerURL     string `mapstructure:"explorer-url"`
	PriceURL        string `mapstructure:"price-url"`
	LockAddress     string `mapstructure:"lock-address"`
	BurnAddress     string `mapstructure:"burn-address"`
	ScanLimit       int    `mapstructure:"scan-limit"`
	RefreshInterval string `mapstructure:"refresh-interval"`
	AllowedOrigins  string `mapstructure:"allowed-origins"`
}

// Config is the validated, typed configuration.
type Config struct {
	Port        int
	DBPath      string
	RPCURL      string
	ExplorerURL string
	PriceURL    string
	Addresses   chain.Addresses
	ScanLimit   uint64

	// RefreshInterval of 0 disables the background refresher.
	RefreshInterval time.Duration
	AllowedOrigins  []string
}

// SetDefaults registers the defaults of every key on v.
func SetDefaults(v *viper.Viper) {
	addrs := chain.DefaultAddresses()
	v.SetDefault("port", DefaultPort)
	v.SetDefault("db", DefaultDBPath)
	v.SetDefault("rpc-url", chain.DefaultRPCURL)
	v.SetDefault("explorer-url", explorer.DefaultBaseURL)
	v.SetDefault("price-url", explorer.DefaultPriceURL)
	v.SetDefault("lock-address", addrs.Lock.Hex())
	v.SetDefault("burn-address", addrs.Burn.Hex())
	v.SetDefault("scan-limit", locks.DefaultScanLimit)
	v.SetDefault("refresh-interval", DefaultRefreshInterval)
	v.SetDefault("allowed-origins", "")
}

// BindEnv makes v read MEGASCAN_* variables, with dashes as underscores.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load unmarshals v and validates the result.
func Load(v *viper.Viper) (Config, error) {
	var raw RawInput
	if err := v.Unmarshal(&raw); err != nil {
		return Config{}, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return Validate(raw)
}

// Validate checks raw and converts it into a Config.
func Validate(raw RawInput) (Config, error) {
	cfg := Config{
		Port:        raw.Port,
		DBPath:      strings.TrimSpace(raw.DB),
		RPCURL:      strings.TrimSpace(raw.RPCURL),
		ExplorerURL: strings.TrimSpace(raw.ExplorerURL),
		PriceURL:    strings.TrimSpace(raw.PriceURL),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, raw.Port)
	}
	if cfg.DBPath == "" {
		return Config{}, fmt.Errorf("%w: db path is empty", ErrInvalidConfig)
	}
	for name, u := range map[string]string{"rpc-url": cfg.RPCURL, "explorer-url": cfg.ExplorerURL, "price-url": cfg.PriceURL} {
		if err := validateURL(u); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
	}

	lock, err := parseAddress("lock-address", raw.LockAddress)
	if err != nil {
		return Config{}, err
	}
	burn, err := parseAddress("burn-address", raw.BurnAddress)
	if err != nil {
		return Config{}, err
	}
	cfg.Addresses = chain.Addresses{Lock: lock, Burn: burn}

	if raw.ScanLimit < 0 {
		return Config{}, fmt.Errorf("%w: scan-limit must not be negative", ErrInvalidConfig)
	}
	cfg.ScanLimit = uint64(raw.ScanLimit)

	if s := strings.TrimSpace(raw.RefreshInterval); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("%w: refresh-interval %q", ErrInvalidConfig, raw.RefreshInterval)
		}
		cfg.RefreshInterval = d
	}

	for _, o := range strings.Split(raw.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	return cfg, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", raw)
	}
	return nil
}

func parseAddress(name, raw string) (common.Address, error) {
	raw = strings.TrimSpace(raw)
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("%w: %s %q is not an address", ErrInvalidConfig, name, raw)
	}
	return common.HexToAddress(raw), nil
}
