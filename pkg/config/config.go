// Package config loads SDK configuration from a YAML or JSON file with
// environment variable fallbacks for credentials.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/betbot/gosdk/pkg/logger"
	"github.com/betbot/gosdk/pkg/sdk"
	sdkhttp "github.com/betbot/gosdk/pkg/sdk/http"
	"github.com/betbot/gosdk/pkg/sdk/types"
)

// File mirrors the configuration file layout. All sections are
// optional; zero values fall back to production defaults.
type File struct {
	MetaBaseURL    string `yaml:"meta_base_url" json:"meta_base_url"`
	ClobBaseURL    string `yaml:"clob_base_url" json:"clob_base_url"`
	WSBaseURL      string `yaml:"ws_base_url" json:"ws_base_url"`
	RelayerBaseURL string `yaml:"relayer_base_url" json:"relayer_base_url"`

	Debug bool   `yaml:"debug" json:"debug"`
	Proxy string `yaml:"proxy" json:"proxy"`

	Log struct {
		Level      string `yaml:"level" json:"level"`
		File       string `yaml:"file" json:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups" json:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"`
		Compress   bool   `yaml:"compress" json:"compress"`
	} `yaml:"log" json:"log"`

	HTTP struct {
		TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
		RetryCount     int `yaml:"retry_count" json:"retry_count"`
		RetryWaitMS    int `yaml:"retry_wait_ms" json:"retry_wait_ms"`
		RetryMaxWaitMS int `yaml:"retry_max_wait_ms" json:"retry_max_wait_ms"`
	} `yaml:"http" json:"http"`

	Trading *TradingFile `yaml:"trading" json:"trading"`
	Relayer *RelayerFile `yaml:"relayer" json:"relayer"`
}

// TradingFile is the trading section of the config file. The private
// key, mnemonic and API credentials can also come from the environment
// so they stay out of checked-in files.
type TradingFile struct {
	ChainID        int64  `yaml:"chain_id" json:"chain_id"`
	PrivateKey     string `yaml:"private_key" json:"private_key"`
	Mnemonic       string `yaml:"mnemonic" json:"mnemonic"`
	DerivationPath string `yaml:"derivation_path" json:"derivation_path"`
	APIKey         string `yaml:"api_key" json:"api_key"`
	APISecret      string `yaml:"api_secret" json:"api_secret"`
	APIPassphrase  string `yaml:"api_passphrase" json:"api_passphrase"`
	FunderAddress  string `yaml:"funder_address" json:"funder_address"`
	SignatureType  int    `yaml:"signature_type" json:"signature_type"`
}

// RelayerFile is the relayer section of the config file.
type RelayerFile struct {
	ChainID             int64  `yaml:"chain_id" json:"chain_id"`
	PrivateKey          string `yaml:"private_key" json:"private_key"`
	Mnemonic            string `yaml:"mnemonic" json:"mnemonic"`
	DerivationPath      string `yaml:"derivation_path" json:"derivation_path"`
	SafeAddress         string `yaml:"safe_address" json:"safe_address"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds" json:"poll_interval_seconds"`
	PollTimeoutSeconds  int    `yaml:"poll_timeout_seconds" json:"poll_timeout_seconds"`
}

// Load reads a configuration file. YAML and JSON are selected by file
// extension. After parsing, credential fields that are still empty are
// filled from the environment.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrapf(err, "parse yaml config %s", path)
		}
	case ".json":
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrapf(err, "parse json config %s", path)
		}
	default:
		return nil, errors.Errorf("unsupported config format %s (want .yaml, .yml or .json)", ext)
	}

	f.applyEnv()
	return &f, nil
}

func (f *File) applyEnv() {
	if f.Trading != nil {
		overlay(&f.Trading.PrivateKey, "WALLET_PRIVATE_KEY")
		overlay(&f.Trading.Mnemonic, "WALLET_MNEMONIC")
		overlay(&f.Trading.APIKey, "CLOB_API_KEY")
		overlay(&f.Trading.APISecret, "CLOB_API_SECRET")
		overlay(&f.Trading.APIPassphrase, "CLOB_API_PASSPHRASE")
		overlay(&f.Trading.FunderAddress, "WALLET_FUNDER_ADDRESS")
	}
	if f.Relayer != nil {
		overlay(&f.Relayer.PrivateKey, "WALLET_PRIVATE_KEY")
		overlay(&f.Relayer.Mnemonic, "WALLET_MNEMONIC")
		overlay(&f.Relayer.SafeAddress, "SAFE_ADDRESS")
	}
	if v := os.Getenv("HTTP_PROXY_URL"); v != "" && f.Proxy == "" {
		f.Proxy = v
	}
	if v := os.Getenv("DEBUG"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			f.Debug = parsed
		}
	}
}

// overlay fills an empty field from the environment.
func overlay(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

// SDKConfig converts the file into the configuration sdk.New accepts.
func (f *File) SDKConfig() (*sdk.Config, error) {
	cfg := &sdk.Config{
		MetaBaseURL:    f.MetaBaseURL,
		ClobBaseURL:    f.ClobBaseURL,
		WSBaseURL:      f.WSBaseURL,
		RelayerBaseURL: f.RelayerBaseURL,
		Debug:          f.Debug,
		Proxy:          f.Proxy,
	}

	if f.Log.Level != "" || f.Log.File != "" {
		log, err := logger.New(logger.Config{
			Level:      f.Log.Level,
			OutputFile: f.Log.File,
			MaxSize:    f.Log.MaxSizeMB,
			MaxBackups: f.Log.MaxBackups,
			MaxAge:     f.Log.MaxAgeDays,
			Compress:   f.Log.Compress,
		})
		if err != nil {
			return nil, errors.Wrap(err, "build logger")
		}
		cfg.Logger = log
	}

	if f.HTTP.TimeoutSeconds > 0 || f.HTTP.RetryCount > 0 {
		cfg.HTTP = &sdkhttp.Options{
			Timeout:      time.Duration(f.HTTP.TimeoutSeconds) * time.Second,
			RetryCount:   f.HTTP.RetryCount,
			RetryWait:    time.Duration(f.HTTP.RetryWaitMS) * time.Millisecond,
			RetryMaxWait: time.Duration(f.HTTP.RetryMaxWaitMS) * time.Millisecond,
		}
	}

	if f.Trading != nil {
		t := &sdk.TradingConfig{
			ChainID: types.Chain(f.Trading.ChainID),
			Wallet: sdk.WalletConfig{
				PrivateKey:     f.Trading.PrivateKey,
				Mnemonic:       f.Trading.Mnemonic,
				DerivationPath: f.Trading.DerivationPath,
			},
			FunderAddress: f.Trading.FunderAddress,
			SignatureType: types.SignatureType(f.Trading.SignatureType),
		}
		if f.Trading.APIKey != "" {
			t.Creds = &types.APICreds{
				Key:        f.Trading.APIKey,
				Secret:     f.Trading.APISecret,
				Passphrase: f.Trading.APIPassphrase,
			}
		}
		cfg.Trading = t
	}

	if f.Relayer != nil {
		cfg.Relayer = &sdk.RelayerConfig{
			ChainID: types.Chain(f.Relayer.ChainID),
			Wallet: sdk.WalletConfig{
				PrivateKey:     f.Relayer.PrivateKey,
				Mnemonic:       f.Relayer.Mnemonic,
				DerivationPath: f.Relayer.DerivationPath,
			},
			SafeAddress:  f.Relayer.SafeAddress,
			PollInterval: time.Duration(f.Relayer.PollIntervalSeconds) * time.Second,
			PollTimeout:  time.Duration(f.Relayer.PollTimeoutSeconds) * time.Second,
		}
	}

	return cfg, nil
}
