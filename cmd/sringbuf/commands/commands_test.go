package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/reb0und/sringbuf/pkg/cli"
)

const overwriteScript = `name: overwrite on full
capacity: 3
ops:
  - {op: write, value: 1}
  - {op: write, value: 2}
  - {op: write, value: 3}
  - {op: write, value: 4}
  - {op: write, value: 5}
  - {op: write, value: 6}
  - {op: read, want: 4}
  - {op: read, want: 5}
expect:
  slots: [null, null, 6]
  read_index: 2
  write_index: 0
`

const failingScript = `name: wrong guess
capacity: 2
ops:
  - {op: write, value: a}
  - {op: read, want: b}
`

// setupTestEnv points the CLI at a config file in a temp dir and returns
// its path.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(configEnv, path)
	return path
}

func runCmd(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	verbose = false
	formatOutput = ""
	outputFile = ""
	configFile = ""
	jqExpr = ""

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	wOut.Close()
	wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	var outBuf, errBuf bytes.Buffer
	outBuf.ReadFrom(rOut)
	errBuf.ReadFrom(rErr)

	stdout = outBuf.String()
	stderr = errBuf.String()
	if err != nil {
		exitCode = 1
		stderr += err.Error()
	}

	resetFlags(rootCmd)
	return
}

// runCmdStdin runs the command with stdin fed from input.
func runCmdStdin(t *testing.T, input string, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteString(input); err != nil {
		t.Fatal(err)
	}
	w.Close()

	oldStdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = oldStdin }()

	return runCmd(t, args...)
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Changed = false
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
			return
		}
		f.Value.Set(f.DefValue)
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// writeTestYAML writes a YAML file to a temp dir and returns its path.
func writeTestYAML(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func TestVersion(t *testing.T) {
	setupTestEnv(t)

	stdout, _, code := runCmd(t, "version")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(stdout, "sringbuf") {
		t.Fatalf("expected 'sringbuf', got: %s", stdout)
	}
}

func TestVersionVerbose(t *testing.T) {
	path := setupTestEnv(t)

	stdout, _, code := runCmd(t, "version", "-v")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(stdout, path) {
		t.Fatalf("expected config path %s, got: %s", path, stdout)
	}
}

func TestVersionJSON(t *testing.T) {
	setupTestEnv(t)

	stdout, _, code := runCmd(t, "version", "--format", "json")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(stdout, `"version"`) {
		t.Fatalf("expected JSON, got: %s", stdout)
	}
}

// ---------------------------------------------------------------------------
// replay
// ---------------------------------------------------------------------------

func TestReplay(t *testing.T) {
	setupTestEnv(t)
	path := writeTestYAML(t, "overwrite.yaml", overwriteScript)

	stdout, stderr, code := runCmd(t, "replay", "-f", path)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	for _, want := range []string{"name: overwrite on full", "evictions: 3", "read_index: 2"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("missing %q in:\n%s", want, stdout)
		}
	}
}

func TestReplayTable(t *testing.T) {
	setupTestEnv(t)
	path := writeTestYAML(t, "overwrite.yaml", overwriteScript)

	// Writing to a file drops the colors.
	out := filepath.Join(t.TempDir(), "report.txt")
	_, stderr, code := runCmd(t, "replay", "-f", path, "-o", "table", "--output", out)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"overwrite on full", "(evicted 3)", "[_ _ 6] r=2 w=0", "R", "W", "ok"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("missing %q in:\n%s", want, data)
		}
	}
}

func TestReplayJQ(t *testing.T) {
	setupTestEnv(t)
	path := writeTestYAML(t, "overwrite.yaml", overwriteScript)

	stdout, stderr, code := runCmd(t, "replay", "-f", path, "-o", "json", "--jq", ".final.slots")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var got []any
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", stdout, err)
	}
	if len(got) != 3 || got[0] != nil || got[1] != nil || got[2] != float64(6) {
		t.Errorf("slots=%v, want [<nil> <nil> 6]", got)
	}
}

func TestReplayMultiple(t *testing.T) {
	setupTestEnv(t)
	a := writeTestYAML(t, "a.yaml", overwriteScript)
	b := writeTestYAML(t, "b.yaml", "capacity: 1\nops:\n  - {op: read, want_empty: true}\n")

	stdout, stderr, code := runCmd(t, "replay", "-f", a, "-f", b, "-o", "json", "--jq", "[.[].capacity]")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var got []float64
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", stdout, err)
	}
	if len(got) != 2 || got[0] != 3 || got[1] != 1 {
		t.Errorf("capacities=%v, want [3 1]", got)
	}
}

func TestReplayStdin(t *testing.T) {
	setupTestEnv(t)

	stdout, stderr, code := runCmdStdin(t, overwriteScript, "replay", "-f", "-", "--jq", ".evictions", "-o", "json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if strings.TrimSpace(stdout) != "3" {
		t.Errorf("stdout=%q, want 3", stdout)
	}
}

func TestReplayFailure(t *testing.T) {
	setupTestEnv(t)
	path := writeTestYAML(t, "bad.yaml", failingScript)

	stdout, stderr, code := runCmd(t, "replay", "-f", path)
	if code == 0 {
		t.Fatal("expected non-zero exit")
	}
	if !strings.Contains(stderr, "1 of 1 scripts failed") {
		t.Errorf("stderr=%s", stderr)
	}
	if !strings.Contains(stderr, "wrong guess: 1 failed expectations") {
		t.Errorf("stderr has no per-script warning: %s", stderr)
	}
	if strings.Contains(stdout, "failed expectations") {
		t.Errorf("warning leaked into stdout: %s", stdout)
	}
	// The report is still printed.
	if !strings.Contains(stdout, "read a, want b") {
		t.Errorf("stdout=%s", stdout)
	}
}

func TestReplayErrors(t *testing.T) {
	setupTestEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no file", []string{"replay"}, "no script given"},
		{"missing file", []string{"replay", "-f", filepath.Join(t.TempDir(), "nope.yaml")}, "nope.yaml"},
		{"invalid script", []string{"replay", "-f", writeTestYAML(t, "zero.yaml", "capacity: 0\n")}, "invalid script"},
		{"bad format", []string{"replay", "-f", writeTestYAML(t, "ok.yaml", overwriteScript), "-o", "xml"}, "unsupported output format"},
		{"bad jq", []string{"replay", "-f", writeTestYAML(t, "ok.yaml", overwriteScript), "--jq", ".["}, "jq"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := runCmd(t, tt.args...)
			if code == 0 {
				t.Fatal("expected non-zero exit")
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("stderr=%q, want %q", stderr, tt.want)
			}
		})
	}
}

func TestReplayVerboseLogs(t *testing.T) {
	setupTestEnv(t)
	path := writeTestYAML(t, "overwrite.yaml", overwriteScript)

	_, stderr, code := runCmd(t, "replay", "-f", path, "-v")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if !strings.Contains(stderr, "level=DEBUG") || !strings.Contains(stderr, "replay done") {
		t.Errorf("stderr=%s", stderr)
	}
}

// ---------------------------------------------------------------------------
// schema
// ---------------------------------------------------------------------------

func TestSchemaCmd(t *testing.T) {
	setupTestEnv(t)

	stdout, stderr, code := runCmd(t, "schema", "-o", "json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	props, _ := got["properties"].(map[string]any)
	for _, key := range []string{"name", "capacity", "ops", "expect"} {
		if _, ok := props[key]; !ok {
			t.Errorf("schema missing property %q", key)
		}
	}
}

// ---------------------------------------------------------------------------
// config
// ---------------------------------------------------------------------------

func TestConfigSetView(t *testing.T) {
	setupTestEnv(t)

	_, stderr, code := runCmd(t, "config", "set", "format", "json")
	if code != 0 {
		t.Fatalf("set: exit %d: %s", code, stderr)
	}

	// No --format: the configured format applies.
	stdout, stderr, code := runCmd(t, "config", "view")
	if code != 0 {
		t.Fatalf("view: exit %d: %s", code, stderr)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("view output is not JSON: %q", stdout)
	}
	if got["format"] != "json" {
		t.Errorf("format=%v", got["format"])
	}
}

func TestConfigSetInvalid(t *testing.T) {
	setupTestEnv(t)

	for _, args := range [][]string{
		{"config", "set", "format", "xml"},
		{"config", "set", "log_level", "loud"},
		{"config", "set", "color", "red"},
	} {
		if _, _, code := runCmd(t, args...); code == 0 {
			t.Errorf("%v: expected non-zero exit", args)
		}
	}
}

func TestConfigPath(t *testing.T) {
	path := setupTestEnv(t)

	stdout, _, code := runCmd(t, "config", "path")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if strings.TrimSpace(stdout) != path {
		t.Errorf("path=%q, want %q", stdout, path)
	}

	// --config beats the environment.
	other := filepath.Join(t.TempDir(), "other.yaml")
	stdout, _, code = runCmd(t, "config", "path", "--config", other)
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if strings.TrimSpace(stdout) != other {
		t.Errorf("path=%q, want %q", stdout, other)
	}
}

func TestConfigDefaultPath(t *testing.T) {
	setupTestEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(configEnv, "")

	stdout, stderr, code := runCmd(t, "config", "path")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	want := filepath.Join(home, cli.DefaultBaseDir, appName, cli.DefaultConfigFile)
	if strings.TrimSpace(stdout) != want {
		t.Errorf("path=%q, want %q", stdout, want)
	}
}

func TestConfigHelpKeys(t *testing.T) {
	for _, key := range []string{"format", "log_level", "no_color", "store_dir"} {
		if !strings.Contains(configCmd.Long, "  "+key+" ") {
			t.Errorf("config help does not list %s", key)
		}
	}
}

func TestBrokenConfig(t *testing.T) {
	path := setupTestEnv(t)
	if err := os.WriteFile(path, []byte("format: xml\n"), 0600); err != nil {
		t.Fatal(err)
	}

	// Commands that do not need the config still run.
	if _, _, code := runCmd(t, "version"); code != 0 {
		t.Fatalf("version: exit %d", code)
	}
	_, stderr, code := runCmd(t, "config", "view")
	if code == 0 {
		t.Fatal("expected non-zero exit")
	}
	if !strings.Contains(stderr, "config not available") {
		t.Errorf("stderr=%s", stderr)
	}
}

// ---------------------------------------------------------------------------
// reports
// ---------------------------------------------------------------------------

func TestReportsLifecycle(t *testing.T) {
	setupTestEnv(t)
	a := writeTestYAML(t, "a.yaml", overwriteScript)
	b := writeTestYAML(t, "b.yaml", failingScript)

	_, stderr, code := runCmd(t, "replay", "-f", a, "--save")
	if code != 0 {
		t.Fatalf("replay a: exit %d: %s", code, stderr)
	}
	if !strings.Contains(stderr, "saved report") || !strings.Contains(stderr, "overwrite on full") {
		t.Errorf("stderr=%s", stderr)
	}
	if _, _, code := runCmd(t, "replay", "-f", b, "--save"); code == 0 {
		t.Fatal("replay b: expected non-zero exit")
	}

	stdout, stderr, code := runCmd(t, "reports", "list", "-o", "json")
	if code != 0 {
		t.Fatalf("list: exit %d: %s", code, stderr)
	}
	var list []reportSummary
	if err := json.Unmarshal([]byte(stdout), &list); err != nil {
		t.Fatalf("unmarshal %q: %v", stdout, err)
	}
	if len(list) != 2 {
		t.Fatalf("listed %d reports, want 2", len(list))
	}
	if list[0].Name != "overwrite on full" || !list[0].OK || list[0].Evictions != 3 {
		t.Errorf("list[0]=%+v", list[0])
	}
	if list[1].Name != "wrong guess" || list[1].OK || list[1].Failures != 1 {
		t.Errorf("list[1]=%+v", list[1])
	}

	stdout, stderr, code = runCmd(t, "reports", "get", list[0].ID, "--jq", ".final.read_index", "-o", "json")
	if code != 0 {
		t.Fatalf("get: exit %d: %s", code, stderr)
	}
	if strings.TrimSpace(stdout) != "2" {
		t.Errorf("read_index=%q, want 2", stdout)
	}

	table := filepath.Join(t.TempDir(), "reports.txt")
	if _, _, code := runCmd(t, "reports", "list", "-o", "table", "--output", table); code != 0 {
		t.Fatalf("list table: exit %d", code)
	}
	if data, err := os.ReadFile(table); err != nil || !strings.Contains(string(data), list[0].ID) {
		t.Errorf("table=%q err=%v", data, err)
	}

	if _, stderr, code := runCmd(t, "reports", "delete", list[0].ID); code != 0 {
		t.Fatalf("delete: exit %d: %s", code, stderr)
	}
	if _, stderr, code := runCmd(t, "reports", "get", list[0].ID); code == 0 || !strings.Contains(stderr, "not found") {
		t.Errorf("get deleted: exit %d: %s", code, stderr)
	}
	if _, _, code := runCmd(t, "reports", "delete", list[0].ID); code == 0 {
		t.Error("delete twice: expected non-zero exit")
	}
}

func TestReportsListEmpty(t *testing.T) {
	setupTestEnv(t)

	stdout, stderr, code := runCmd(t, "reports", "list", "-o", "json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if strings.TrimSpace(stdout) != "[]" {
		t.Errorf("stdout=%q, want []", stdout)
	}
}

func TestSummaryTable(t *testing.T) {
	out := summaryList{
		{ID: "id-1", Name: "good", Capacity: 3, Steps: 8, Evictions: 3, OK: true},
		{ID: "id-2", Name: "bad", Capacity: 2, Steps: 2, Failures: 1},
	}.RenderTable(cli.PlainStyles())

	for _, want := range []string{"ID", "id-1", "good", "ok", "id-2", "1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if got := (summaryList{}).RenderTable(cli.PlainStyles()); got != "no saved reports" {
		t.Errorf("empty=%q", got)
	}
}
