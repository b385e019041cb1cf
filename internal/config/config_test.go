package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Enabled {
		t.Error("database should be disabled by default")
	}
	if !cfg.Quiz.ShuffleChoices || cfg.Quiz.ExcludeReferences {
		t.Errorf("unexpected quiz defaults: %+v", cfg.Quiz)
	}
	if cfg.Generator.Mode != "mock" {
		t.Errorf("generator mode = %q, want mock", cfg.Generator.Mode)
	}
}

func TestLoad_QuizDirectory(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(root, "quizzes"); cfg.Quiz.Directory != want {
		t.Errorf("directory = %q, want %q", cfg.Quiz.Directory, want)
	}

	abs := filepath.Join(t.TempDir(), "shared")
	t.Setenv("QUIZDECK_QUIZ_DIRECTORY", abs)
	cfg, err = Load(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Quiz.Directory != abs {
		t.Errorf("directory = %q, want %q", cfg.Quiz.Directory, abs)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "server:\n  port: \"9000\"\nquiz:\n  exclude_references: true\n"
	if err := os.WriteFile(filepath.Join(root, "config", "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("QUIZDECK_GENERATOR_MODE", "cli")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("port = %q, want 9000", cfg.Server.Port)
	}
	if !cfg.Quiz.ExcludeReferences {
		t.Error("expected exclude_references from file")
	}
	if cfg.Generator.Mode != "cli" {
		t.Errorf("generator mode = %q, want cli from env", cfg.Generator.Mode)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "q", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=q sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
