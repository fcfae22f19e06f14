package config

import "testing"

func TestValidatePorts(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.validate(); err != nil {
		t.Fatalf("default config should be valid, got %v", err)
	}

	cfg = defaultConfig()
	cfg.Server.HTTPPort = 0
	if err := cfg.validate(); err == nil {
		t.Fatalf("expected error for http_port=0")
	}

	cfg = defaultConfig()
	cfg.Server.GRPCPort = 70000
	if err := cfg.validate(); err == nil {
		t.Fatalf("expected error for grpc_port out of range")
	}

	cfg = defaultConfig()
	cfg.Server.GRPCPort = cfg.Server.HTTPPort
	if err := cfg.validate(); err == nil {
		t.Fatalf("expected error when http and grpc ports collide")
	}
}
