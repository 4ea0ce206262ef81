package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// testConfig writes a config pointing at a fresh database
func testConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := writeFile(t, dir, "wavenation.yaml", `
server:
  base_url: https://wavenation.example
database:
  path: `+filepath.Join(dir, "test.db")+`
auth:
  password: test-password
polls:
  salt: test-salt
`)
	return cfg, dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "wavenation dev\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestImportSchedule(t *testing.T) {
	cfg, dir := testConfig(t)
	file := writeFile(t, dir, "schedule.yaml", `shows:
  - title: Morning Flow
    hosts: [DJ One]
    days: [Monday]
    start: "06:00"
    end: "10:00"
    slots:
      - days: [Monday]
`)

	out, err := execute(t, "--config", cfg, "import-schedule", "--file", file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Shows created: 1, updated: 0, slots: 1") {
		t.Errorf("unexpected output %q", out)
	}

	out, err = execute(t, "--config", cfg, "import-schedule", "--file", file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "updated: 1") {
		t.Errorf("expected re-import to update, got %q", out)
	}
}

func TestImportChart_Errors(t *testing.T) {
	cfg, dir := testConfig(t)
	csv := writeFile(t, dir, "chart.csv", "title,artist\nGolden,Jill Scott\n")

	if _, err := execute(t, "--config", cfg, "import-chart", "--file", csv); err == nil {
		t.Error("expected missing --chart-id to fail")
	}
	if _, err := execute(t, "--config", cfg, "import-chart", "--chart-id", "1", "--file", filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("expected missing file to fail")
	}
	if _, err := execute(t, "--config", cfg, "import-chart", "--chart-id", "42", "--file", csv); err == nil {
		t.Error("expected unknown chart to fail")
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bad.yaml", "schedule:\n  timezone: Mars/Olympus\n")

	if _, err := execute(t, "--config", cfg, "import-schedule", "--file", cfg); err == nil {
		t.Error("expected invalid timezone to fail")
	}
}

func TestPrintBanner(t *testing.T) {
	var out bytes.Buffer
	printBanner(&out)
	if strings.Count(out.String(), "\n") != 8 {
		t.Errorf("unexpected banner:\n%s", out.String())
	}
}
