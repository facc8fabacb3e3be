package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const andProject = `
name = "and2"

[[signal]]
name = "A"
pin = 2
kind = "input"

[[signal]]
name = "B"
pin = %B%
kind = "input"

[[signal]]
name = "OUT"
pin = 19
kind = "output"

[[expression]]
name = "OUT"
expr = "A & B"
`

const smallDevice = `
[[device]]
name = "TINY4"
description = "four inputs, two cells"
package_pins = 8
clock_pin = 1
inputs = [2, 3, 4, 5]

[[device.cell]]
pin = 7
terms = 2
registrable = true

[[device.cell]]
pin = 6
terms = 2
`

func writeProject(t *testing.T, dir, name, bPin string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	body := strings.Replace(andProject, "%B%", bPin, 1)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with fresh flag values.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	verbose = false
	configPath = filepath.Join(t.TempDir(), "missing.toml")
	catalogDir = ""
	targetName = ""
	outputPath = ""
	outputDir = ""
	watchMode = false
	normalize = false
	verifyProject = ""
	verifyDevice = ""

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestTargetsE2E(t *testing.T) {
	out, _, err := run(t, "targets")
	if err != nil {
		t.Fatalf("targets: %v", err)
	}
	for _, want := range []string{"tt2", "jed-pla16v8", "jed-pla22v10", ".jed", "Berkeley PLA"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing expected string: %q\nGot:\n%s", want, out)
		}
	}
}

func TestDevicesE2E(t *testing.T) {
	catalogPath := t.TempDir()
	if err := os.WriteFile(filepath.Join(catalogPath, "tiny.toml"), []byte(smallDevice), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "list",
			args:        []string{"devices"},
			wantContain: []string{"PLA16V8", "PLA22V10", "FUSES"},
		},
		{
			name:        "detail",
			args:        []string{"devices", "pla16v8"},
			wantContain: []string{"Device: PLA16V8", "Clock pin:    1", "Fuses:", "FIRST ROW"},
		},
		{
			name:        "catalog",
			args:        []string{"devices", "--catalog", catalogPath},
			wantContain: []string{"TINY4", "four inputs, two cells", "PLA22V10"},
		},
		{
			name:    "unknown device",
			args:    []string{"devices", "GAL99"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, tt.args...)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v\nOutput: %s", err, out)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(out, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, out)
				}
			}
		})
	}
}

func TestExportAndVerifyE2E(t *testing.T) {
	dir := t.TempDir()
	project := writeProject(t, dir, "and2.toml", "3")

	out, _, err := run(t, "export", project)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	tt2File := filepath.Join(dir, "and2.tt2")
	if !strings.Contains(out, "Wrote "+tt2File) {
		t.Errorf("unexpected output: %s", out)
	}
	data, err := os.ReadFile(tt2File)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "#$ PINS 3 A:2 B:3 OUT:19") {
		t.Errorf("unexpected file:\n%s", data)
	}

	out, _, err = run(t, "verify", tt2File, "--project", project)
	if err != nil {
		t.Fatalf("verify tt2: %v", err)
	}
	if !strings.Contains(out, "matches") {
		t.Errorf("unexpected verify output: %s", out)
	}

	build := filepath.Join(dir, "build")
	if _, _, err := run(t, "export", project, "-t", "jed-pla16v8", "--out-dir", build); err != nil {
		t.Fatalf("export jed: %v", err)
	}
	jedFile := filepath.Join(build, "and2.jed")
	if _, _, err := run(t, "verify", jedFile, "-p", project); err != nil {
		t.Fatalf("verify jed: %v", err)
	}

	// verifying against a different project must fail
	other := filepath.Join(dir, "or2.toml")
	body := strings.Replace(strings.Replace(andProject, "%B%", "3", 1), "A & B", "A | B", 1)
	if err := os.WriteFile(other, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err = run(t, "verify", jedFile, "-p", other)
	if err == nil {
		t.Fatalf("expected mismatch, got: %s", out)
	}
	if !strings.Contains(out, "OUT: want true, got false") {
		t.Errorf("mismatch not listed: %s", out)
	}
}

func TestExportDiagnosticsE2E(t *testing.T) {
	dir := t.TempDir()

	t.Run("pin without number", func(t *testing.T) {
		project := writeProject(t, dir, "pinless.toml", "0")
		_, errOut, err := run(t, "export", project, "-o", filepath.Join(dir, "pinless.out"))
		if err != nil {
			t.Fatalf("export: %v", err)
		}
		if !strings.Contains(errOut, "signals without pin number: B") {
			t.Errorf("missing warning: %s", errOut)
		}
	})

	t.Run("pin collision", func(t *testing.T) {
		project := writeProject(t, dir, "clash.toml", "2")
		_, errOut, err := run(t, "export", project)
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(errOut, "pin map error") {
			t.Errorf("error kind not reported: %s", errOut)
		}
		if _, err := os.Stat(filepath.Join(dir, "clash.tt2")); !os.IsNotExist(err) {
			t.Errorf("clash.tt2 written despite failure")
		}
	})

	t.Run("glob", func(t *testing.T) {
		sub := filepath.Join(dir, "many")
		if err := os.MkdirAll(sub, 0o755); err != nil {
			t.Fatal(err)
		}
		writeProject(t, sub, "one.toml", "3")
		writeProject(t, sub, "two.toml", "4")
		out, _, err := run(t, "export", filepath.Join(sub, "*.toml"))
		if err != nil {
			t.Fatalf("export: %v", err)
		}
		if strings.Count(out, "Wrote ") != 2 {
			t.Errorf("expected two files: %s", out)
		}
	})

	t.Run("unknown target", func(t *testing.T) {
		project := writeProject(t, dir, "t.toml", "3")
		if _, _, err := run(t, "export", project, "-t", "jed-gal99"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("output with many projects", func(t *testing.T) {
		a := writeProject(t, dir, "a.toml", "3")
		b := writeProject(t, dir, "b.toml", "3")
		if _, _, err := run(t, "export", a, b, "-o", filepath.Join(dir, "x.tt2")); err == nil {
			t.Error("expected error")
		}
	})
}
