package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

const diabetesCSV = `Pregnancies,Glucose,BloodPressure,BMI,Outcome
6,148,72,33.6,1
1,85,66,26.6,0
8,183,64,23.3,1
1,89,66,28.1,0
0,137,40,43.1,1
5,116,74,25.6,0
3,78,50,31.0,1
10,115,,35.3,0
`

// resetFlags restores flag defaults; cobra keeps values and Changed state between Execute calls.
func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

// runCmd is a helper to execute the root command with args and return its output.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func execCmd(args ...string) (string, error) {
	resetFlags(rootCmd.PersistentFlags())
	for _, c := range rootCmd.Commands() {
		resetFlags(c.Flags())
	}
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// setupHome isolates config and output under a temp HOME and writes the dataset.
func setupHome(t *testing.T) (home, data string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DATALOOM_OUTPUT_DIR", filepath.Join(home, "out"))
	data = filepath.Join(home, "diabetes.csv")
	if err := os.WriteFile(data, []byte(diabetesCSV), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	return home, data
}

func TestCLI_Intro(t *testing.T) {
	_, data := setupHome(t)
	out := runCmd(t, "--data", data, "intro", "--rows", "5", "--describe", "--format", "csv")
	if !strings.Contains(out, "Pregnancies,Glucose,BloodPressure,BMI,Outcome") {
		t.Fatalf("missing header in output:\n%s", out)
	}
	if !strings.Contains(out, "You have missing values") {
		t.Fatalf("missing status in output:\n%s", out)
	}
	if !strings.Contains(out, "count,8.000000,8.000000,7.000000") {
		t.Fatalf("missing describe counts in output:\n%s", out)
	}

	if _, err := execCmd("--data", data, "intro", "--rows", "51"); err == nil {
		t.Fatalf("expected rows out of range error")
	}
}

func TestCLI_ChartWritesPNG(t *testing.T) {
	home, data := setupHome(t)
	for _, kind := range []string{"scatter", "line", "bar", "heatmap"} {
		runCmd(t, "--data", data, "chart", kind, "--x", "Glucose", "--y", "BMI")
	}
	entries, err := os.ReadDir(filepath.Join(home, "out"))
	if err != nil {
		t.Fatalf("read out dir: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 charts, got %d", len(entries))
	}
	b, err := os.ReadFile(filepath.Join(home, "out", "scatter-glucose-vs-bmi.png"))
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Fatalf("not a PNG")
	}

	if _, err := execCmd("--data", data, "chart", "line", "--x", "Insulin"); err == nil {
		t.Fatalf("expected column not found error")
	}
}

func TestCLI_CorrJSON(t *testing.T) {
	_, data := setupHome(t)
	out := runCmd(t, "--data", data, "corr", "--json", "--top", "2")
	var got struct {
		Columns []string    `json:"columns"`
		Values  [][]float64 `json:"values"`
		Top     []struct{ A, B string }
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if len(got.Columns) != 5 || len(got.Values) != 5 || got.Values[0][0] != 1 {
		t.Fatalf("unexpected matrix: %+v", got)
	}
	if len(got.Top) != 2 {
		t.Fatalf("top = %+v", got.Top)
	}

	out = runCmd(t, "--data", data, "corr", "--format", "markdown", "--top", "0")
	if !strings.Contains(out, "| Glucose |") || strings.Contains(out, "Top Correlations") {
		t.Fatalf("unexpected markdown:\n%s", out)
	}
}

func TestCLI_Report(t *testing.T) {
	home, data := setupHome(t)
	out := runCmd(t, "--data", data, "report")
	path := filepath.Join(home, "out", "diabetes_report.html")
	if !strings.Contains(out, path) {
		t.Fatalf("unexpected output: %s", out)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("data:image/png;base64,")) {
		t.Fatalf("report lacks embedded heatmap")
	}

	md := runCmd(t, "--data", data, "report", "--format", "md", "-o", "-")
	if !strings.Contains(md, "[DATASET SUMMARY]") {
		t.Fatalf("markdown report:\n%s", md)
	}

	if _, err := execCmd("--data", filepath.Join(home, "nope.csv"), "report"); err == nil {
		t.Fatalf("expected data source error")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home, _ := setupHome(t)
	runCmd(t, "config", "set", "hue_column", "Group")
	runCmd(t, "config", "set", "rows_default", "20")
	if _, err := os.Stat(filepath.Join(home, ".dataloom", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "hue_column: Group") || !strings.Contains(out, "rows_default: 20") {
		t.Fatalf("unexpected config:\n%s", out)
	}

	if _, err := execCmd("config", "set", "rows_default", "99"); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := execCmd("config", "set", "colour", "red"); err == nil {
		t.Fatalf("expected unknown key error")
	}
}
