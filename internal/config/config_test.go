package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Port != 8080 || cfg.AdminServer.Port != 8081 {
		t.Errorf("unexpected default ports: %d / %d", cfg.Server.Port, cfg.AdminServer.Port)
	}
	if cfg.Checkout.FreeShippingThreshold != 50000 {
		t.Errorf("free shipping threshold = %d, want 50000", cfg.Checkout.FreeShippingThreshold)
	}
	if cfg.Checkout.ShippingFee != 3000 {
		t.Errorf("shipping fee = %d, want 3000", cfg.Checkout.ShippingFee)
	}
	if cfg.Payment.TimeoutSeconds != 10 {
		t.Errorf("payment timeout = %d, want 10", cfg.Payment.TimeoutSeconds)
	}
}

func TestAddrDefaultsHost(t *testing.T) {
	s := ServerConfig{Port: 9000}
	if got := s.Addr(); got != "0.0.0.0:9000" {
		t.Errorf("Addr() = %s, want 0.0.0.0:9000", got)
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default config, got port %d", cfg.Server.Port)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("server:\n  port: 9090\ncheckout:\n  freeshippingthreshold: 30000\n  shippingfee: 2500\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Checkout.FreeShippingThreshold != 30000 {
		t.Errorf("threshold = %d, want 30000", cfg.Checkout.FreeShippingThreshold)
	}
	if cfg.Checkout.ShippingFee != 2500 {
		t.Errorf("fee = %d, want 2500", cfg.Checkout.ShippingFee)
	}
	// 未覆盖的项保留默认值
	if cfg.Redis.Addr != "127.0.0.1:6379" {
		t.Errorf("redis addr = %s, want default", cfg.Redis.Addr)
	}
}
