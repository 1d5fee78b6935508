package connector

import (
	"testing"
	"time"
)

func TestEtcdConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *EtcdConfig
		expectError bool
	}{
		{
			name:        "missing endpoints",
			cfg:         &EtcdConfig{},
			expectError: true,
		},
		{
			name:        "valid",
			cfg:         &EtcdConfig{Endpoints: []string{"127.0.0.1:2379"}},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.expectError && err == nil {
				t.Errorf("expected error")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestEtcdConfigDefaults(t *testing.T) {
	cfg := &EtcdConfig{Endpoints: []string{"127.0.0.1:2379"}}
	if err := cfg.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Name != "default" {
		t.Errorf("Name = %q, want default", cfg.Name)
	}
	if cfg.DialTimeout != 5*time.Second {
		t.Errorf("DialTimeout = %v, want 5s", cfg.DialTimeout)
	}
}

func TestRedisConfigValidate(t *testing.T) {
	if err := (&RedisConfig{}).validate(); err == nil {
		t.Errorf("empty addr should fail validation")
	}
	if err := (&RedisConfig{Addr: "127.0.0.1:6379", DB: -1}).validate(); err == nil {
		t.Errorf("negative db should fail validation")
	}

	cfg := &RedisConfig{Addr: "127.0.0.1:6379"}
	if err := cfg.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PoolSize != 10 {
		t.Errorf("PoolSize = %d, want 10", cfg.PoolSize)
	}
}

func TestNATSConfigValidate(t *testing.T) {
	if err := (&NATSConfig{}).validate(); err == nil {
		t.Errorf("empty url should fail validation")
	}

	cfg := &NATSConfig{URL: "nats://127.0.0.1:4222"}
	if err := cfg.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxReconnects != 60 {
		t.Errorf("MaxReconnects = %d, want 60", cfg.MaxReconnects)
	}
	if cfg.ReconnectWait != 2*time.Second {
		t.Errorf("ReconnectWait = %v, want 2s", cfg.ReconnectWait)
	}
}

func TestNewWithNilConfig(t *testing.T) {
	if _, err := NewEtcd(nil); err == nil {
		t.Errorf("NewEtcd(nil) should fail")
	}
	if _, err := NewRedis(nil); err == nil {
		t.Errorf("NewRedis(nil) should fail")
	}
	if _, err := NewNATS(nil); err == nil {
		t.Errorf("NewNATS(nil) should fail")
	}
}
