package config

import (
	"testing"

	"gopermute/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Engine.MaxExactCombinations != 200000 {
		t.Errorf("expected default ceiling 200000, got %d", cfg.Engine.MaxExactCombinations)
	}
	if cfg.Engine.MaxExactPermutationN != 10 {
		t.Errorf("expected default permutation ceiling 10, got %d", cfg.Engine.MaxExactPermutationN)
	}
	if cfg.Engine.DefaultDraws != 10000 {
		t.Errorf("expected default draws 10000, got %d", cfg.Engine.DefaultDraws)
	}
	if cfg.Database.Enabled {
		t.Error("expected persistence disabled without DATABASE_URL")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MAX_EXACT_COMBINATIONS", "5000")
	t.Setenv("DEFAULT_DRAWS", "2500")
	t.Setenv("ENGINE_WORKERS", "2")
	t.Setenv("DATABASE_URL", "postgres://localhost/permute")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Engine.MaxExactCombinations != 5000 {
		t.Errorf("expected 5000, got %d", cfg.Engine.MaxExactCombinations)
	}
	if cfg.Engine.DefaultDraws != 2500 {
		t.Errorf("expected 2500, got %d", cfg.Engine.DefaultDraws)
	}
	if cfg.Engine.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.Engine.Workers)
	}
	if !cfg.Database.Enabled {
		t.Error("expected persistence enabled with DATABASE_URL set")
	}
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	t.Setenv("DEFAULT_DRAWS", "-5")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for negative draw count")
	}
	if errors.GetCode(err) != errors.CodeConfigInvalid {
		t.Errorf("expected CONFIG_INVALID, got %s", errors.GetCode(err))
	}
}

func TestLoad_MalformedIntFallsBackToDefault(t *testing.T) {
	t.Setenv("ENGINE_CHUNK_SIZE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Engine.ChunkSize != DefaultEngineConfig().ChunkSize {
		t.Errorf("expected default chunk size, got %d", cfg.Engine.ChunkSize)
	}
}
