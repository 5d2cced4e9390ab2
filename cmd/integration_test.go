package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const patientsCSV = `id,age,group,mmse
1,70,A,27
2,80,A,24
2,80,A,24
3,65,B,
4,72,B,29
`

// resetFlags clears values and Changed state that cobra keeps between
// invocations of the same command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns stdout, stderr and the error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// runCmd is a helper to execute the root command with args; it fails the test on error.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := execute(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\nstderr: %s", args, err, errOut)
	}
	return out
}

// setup isolates HOME and writes the sample dataset.
func setup(t *testing.T) (home, data string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	data = filepath.Join(home, "patients.csv")
	if err := os.WriteFile(data, []byte(patientsCSV), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	return home, data
}

func TestCLI_ViewExportCSV(t *testing.T) {
	home, data := setup(t)
	out := filepath.Join(home, "out", "filtered_data.csv")
	runCmd(t, "view", data, "--columns", "id,age,group", "--dedup", "--limit", "2", "--export", out)

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if got, want := string(b), "id,age,group\n1,70,A\n2,80,A\n"; got != want {
		t.Fatalf("export = %q, want %q", got, want)
	}
}

func TestCLI_ViewGroupedJSON(t *testing.T) {
	_, data := setup(t)
	out := runCmd(t, "view", data, "--group-by", "group", "--agg", "age", "--format", "json")
	if !strings.Contains(out, `"group": "A"`) || !strings.Contains(out, `"age": 76.666`) {
		t.Fatalf("unexpected grouped output:\n%s", out)
	}
	if strings.Contains(out, `"id"`) {
		t.Fatalf("grouped view should hold only keys and aggregate:\n%s", out)
	}
}

func TestCLI_ViewEmptySelectionWarns(t *testing.T) {
	_, data := setup(t)
	out, errOut, err := execute(t, "view", data, "--columns", "")
	if err != nil {
		t.Fatalf("empty selection should not fail: %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
	if !strings.Contains(errOut, "⚠") {
		t.Fatalf("expected warning, got %q", errOut)
	}
}

func TestCLI_ViewMissingFileFails(t *testing.T) {
	home, _ := setup(t)
	_, _, err := execute(t, "view", filepath.Join(home, "nope.csv"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestCLI_ViewChartErrorKeepsTable(t *testing.T) {
	home, data := setup(t)
	img := filepath.Join(home, "c.png")
	out, errOut, err := execute(t, "view", data, "--columns", "id,group", "--format", "csv",
		"--kind", "bar", "--x", "group", "--y", "age", "--chart-out", img)
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if !strings.HasPrefix(out, "id,group\n") {
		t.Fatalf("table missing: %q", out)
	}
	if !strings.Contains(errOut, "Chart skipped") || !strings.Contains(errOut, "age") {
		t.Fatalf("expected inline chart error, got %q", errOut)
	}
	if _, err := os.Stat(img); !os.IsNotExist(err) {
		t.Fatalf("chart should not be written")
	}
}

func TestCLI_ChartPNG(t *testing.T) {
	home, data := setup(t)
	img := filepath.Join(home, "hist.png")
	runCmd(t, "chart", data, "--kind", "histogram", "--x", "age", "--bins", "5", "-o", img)
	b, err := os.ReadFile(img)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Fatalf("not a png")
	}

	svg := filepath.Join(home, "overview.svg")
	runCmd(t, "chart", data, "-o", svg)
	b, err = os.ReadFile(svg)
	if err != nil || !bytes.Contains(b, []byte("<svg")) {
		t.Fatalf("overview svg: %v", err)
	}

	if _, _, err := execute(t, "chart", data, "--kind", "scatter", "--x", "age", "--y", "weight"); err == nil {
		t.Fatalf("expected unknown column error")
	}
}

func TestCLI_DescribeWritesMarkdown(t *testing.T) {
	home, data := setup(t)
	out := filepath.Join(home, "summary.md")
	runCmd(t, "describe", data, "-o", out, "--sample-rows", "2")
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	md := string(b)
	if !strings.Contains(md, "[DATASET SUMMARY]") || !strings.Contains(md, "[SCHEMA]") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
}

func TestCLI_SessionFlow(t *testing.T) {
	home, data := setup(t)
	runCmd(t, "session", "new", "study", "--file", data)
	if _, _, err := execute(t, "session", "new", "study"); err == nil {
		t.Fatalf("expected error creating duplicate session")
	}
	runCmd(t, "session", "select", "study", "id", "age,group")
	runCmd(t, "session", "set", "study", "--dedup", "--limit", "2")
	runCmd(t, "session", "chart", "study", "--kind", "bar", "--x", "group", "--y", "age")

	if _, err := os.Stat(filepath.Join(home, ".tabview", "sessions", "study", "session.json")); err != nil {
		t.Fatalf("session.json not written: %v", err)
	}
	show := runCmd(t, "session", "show", "study", "--yaml")
	for _, want := range []string{"name: study", "drop_duplicates: true", "row_limit: 2", "kind: bar"} {
		if !strings.Contains(show, want) {
			t.Fatalf("session yaml missing %q:\n%s", want, show)
		}
	}

	out := runCmd(t, "view", "--session", "study", "--format", "csv")
	if out != "id,age,group\n1,70,A\n2,80,A\n" {
		t.Fatalf("session view = %q", out)
	}
	// flags override the session
	out = runCmd(t, "view", "--session", "study", "--format", "csv", "--limit", "0", "--columns", "group")
	if out != "group\nA\nB\n" {
		t.Fatalf("override view = %q", out)
	}

	list := runCmd(t, "session", "list")
	if !strings.Contains(list, "- study: 3 columns") || !strings.Contains(list, "bar chart") {
		t.Fatalf("list = %q", list)
	}
	runCmd(t, "session", "chart", "study", "--clear")
	if show := runCmd(t, "session", "show", "study"); strings.Contains(show, `"chart"`) {
		t.Fatalf("chart not cleared:\n%s", show)
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	setup(t)
	runCmd(t, "config", "set", "histogram_bins", "12")
	runCmd(t, "config", "set", "clean_scope", "source")
	if _, _, err := execute(t, "config", "set", "clean_scope", "everywhere"); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, _, err := execute(t, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "histogram_bins: 12") || !strings.Contains(out, "clean_scope: source") {
		t.Fatalf("config show = %q", out)
	}
}
