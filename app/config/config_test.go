package config

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Quota.DailyLimit < 1 {
		t.Fatalf("expected a positive daily limit, got %d", cfg.Quota.DailyLimit)
	}
	if cfg.AI.TimeoutSeconds != 60 {
		t.Fatalf("expected default timeout 60, got %d", cfg.AI.TimeoutSeconds)
	}
	if cfg.Batch.ChunkSize != 5 {
		t.Fatalf("expected default chunk size 5, got %d", cfg.Batch.ChunkSize)
	}
}

func TestLoadConfigClampsDailyLimit(t *testing.T) {
	for _, v := range []string{"0", "-3", "garbage"} {
		t.Setenv("ANALYSIS_DAILY_LIMIT", v)
		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", v, err)
		}
		if cfg.Quota.DailyLimit != 1 {
			t.Fatalf("expected limit clamped to 1 for %q, got %d", v, cfg.Quota.DailyLimit)
		}
	}
}

func TestLoadConfigReadsDailyLimit(t *testing.T) {
	t.Setenv("ANALYSIS_DAILY_LIMIT", "3")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Quota.DailyLimit != 3 {
		t.Fatalf("expected limit 3, got %d", cfg.Quota.DailyLimit)
	}
}
