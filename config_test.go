package main

import (
	"flag"
	"os"
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr []string
	}{
		{
			name: "valid config",
			cfg: Config{
				Watchlist:   []string{"AAPL", "GOOG"},
				FMPAPIKey:   "apikey",
				DBEndpoint:  "http://localhost:4001",
				Capital:     100000,
				RiskPercent: 2,
			},
			wantErr: nil,
		},
		{
			name: "missing watchlist",
			cfg: Config{
				Watchlist:   []string{},
				FMPAPIKey:   "apikey",
				DBEndpoint:  "http://localhost:4001",
				Capital:     100000,
				RiskPercent: 2,
			},
			wantErr: []string{"no symbols provided for paper trading service"},
		},
		{
			name: "missing FMPAPIKey",
			cfg: Config{
				Watchlist:   []string{"AAPL"},
				FMPAPIKey:   "",
				DBEndpoint:  "http://localhost:4001",
				Capital:     100000,
				RiskPercent: 2,
			},
			wantErr: []string{"fmp api key cannot be an empty string"},
		},
		{
			name: "missing database endpoint",
			cfg: Config{
				Watchlist:   []string{"AAPL"},
				FMPAPIKey:   "apikey",
				Capital:     100000,
				RiskPercent: 2,
			},
			wantErr: []string{"database endpoint cannot be an empty string"},
		},
		{
			name: "non-positive capital and risk out of range",
			cfg: Config{
				Watchlist:   []string{"AAPL"},
				FMPAPIKey:   "apikey",
				DBEndpoint:  "http://localhost:4001",
				Capital:     0,
				RiskPercent: 101,
			},
			wantErr: []string{
				"capital must be positive",
				"risk percent must be in (0, 100]",
			},
		},
		{
			name: "missing everything",
			cfg:  Config{},
			wantErr: []string{
				"no symbols provided for paper trading service",
				"fmp api key cannot be an empty string",
				"database endpoint cannot be an empty string",
				"capital must be positive",
				"risk percent must be in (0, 100]",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("expected no error, got: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("expected error(s) %v, got none", tt.wantErr)
					return
				}
				for _, want := range tt.wantErr {
					if !strings.Contains(err.Error(), want) {
						t.Errorf("expected error to contain %q, got %v", want, err)
					}
				}
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	// Save and restore original os.Args and environment
	origArgs := os.Args
	origEnv := os.Environ()
	defer func() {
		os.Args = origArgs
		for _, kv := range origEnv {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) == 2 {
				os.Setenv(parts[0], parts[1])
			}
		}
	}()

	tests := []struct {
		name        string
		env         map[string]string
		args        []string
		expectErr   bool
		expectInErr []string
		expectCfg   Config
	}{
		{
			name: "all from env",
			env: map[string]string{
				"watchlist":   "AAPL,GOOG",
				"fmpapikey":   "apikey",
				"dbendpoint":  "http://localhost:4001",
				"capital":     "100000",
				"riskpercent": "2",
			},
			args:      []string{"cmd"},
			expectErr: false,
			expectCfg: Config{
				Watchlist:   []string{"AAPL", "GOOG"},
				FMPAPIKey:   "apikey",
				DBEndpoint:  "http://localhost:4001",
				Capital:     100000,
				RiskPercent: 2,
			},
		},
		{
			name: "all from flags",
			env:  map[string]string{},
			args: []string{"cmd", "-watchlist=AAPL,GOOG", "-fmpapikey=apikey",
				"-dbendpoint=http://localhost:4001", "-capital=100000", "-riskpercent=2"},
			expectErr: false,
			expectCfg: Config{
				Watchlist:   []string{"AAPL", "GOOG"},
				FMPAPIKey:   "apikey",
				DBEndpoint:  "http://localhost:4001",
				Capital:     100000,
				RiskPercent: 2,
			},
		},
		{
			name:      "missing watchlist and fmpapikey",
			env:       map[string]string{},
			args:      []string{"cmd", "-dbendpoint=http://localhost:4001", "-capital=100000", "-riskpercent=2"},
			expectErr: true,
			expectInErr: []string{
				"no symbols provided for paper trading service",
				"fmp api key cannot be an empty string",
			},
		},
		{
			name: "flags override env",
			env: map[string]string{
				"watchlist":   "AAPL",
				"fmpapikey":   "apikey",
				"dbendpoint":  "http://localhost:4001",
				"capital":     "50000",
				"riskpercent": "2",
			},
			args:      []string{"cmd", "-capital=100000"},
			expectErr: false,
			expectCfg: Config{
				Watchlist:   []string{"AAPL"},
				FMPAPIKey:   "apikey",
				DBEndpoint:  "http://localhost:4001",
				Capital:     100000,
				RiskPercent: 2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset flags for each test
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			// Set environment variables
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			// Set command-line arguments
			os.Args = tt.args

			var cfg Config
			err := loadConfig(&cfg, "") // don't load .env file

			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				for _, want := range tt.expectInErr {
					if !strings.Contains(err.Error(), want) {
						t.Errorf("expected error to contain %q, got %v", want, err)
					}
				}
			} else {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if len(tt.expectCfg.Watchlist) != len(cfg.Watchlist) {
					t.Errorf("Watchlist: got %v, want %v", cfg.Watchlist, tt.expectCfg.Watchlist)
				}
				if cfg.FMPAPIKey != tt.expectCfg.FMPAPIKey {
					t.Errorf("FMPAPIKey: got %v, want %v", cfg.FMPAPIKey, tt.expectCfg.FMPAPIKey)
				}
				if cfg.DBEndpoint != tt.expectCfg.DBEndpoint {
					t.Errorf("DBEndpoint: got %v, want %v", cfg.DBEndpoint, tt.expectCfg.DBEndpoint)
				}
				if cfg.Capital != tt.expectCfg.Capital {
					t.Errorf("Capital: got %v, want %v", cfg.Capital, tt.expectCfg.Capital)
				}
				if cfg.RiskPercent != tt.expectCfg.RiskPercent {
					t.Errorf("RiskPercent: got %v, want %v", cfg.RiskPercent, tt.expectCfg.RiskPercent)
				}
			}

			// Clean up env
			for k := range tt.env {
				os.Unsetenv(k)
			}
		})
	}
}
