package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPreviewCommand(t *testing.T) {
	path := writeTemp(t, "people.csv", "name,age\nAlice,30\nBob,25\n")

	out, err := run(t, "preview", path)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	for _, want := range []string{"people.csv (25 B, text/csv)", "columns: name, age", "rows:    3", `"name": "Alice"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output misses %q:\n%s", want, out)
		}
	}
}

func TestChartCommand(t *testing.T) {
	path := writeTemp(t, "people.csv", "name,age\nAlice,30\nBob,25\n")

	out, err := run(t, "chart", path, "--x", "name", "--y", "age")
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	var got struct {
		Type   string `json:"type"`
		Points []struct {
			Name  string  `json:"name"`
			Value float64 `json:"value"`
		} `json:"points"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got.Type != "bar" || len(got.Points) != 2 || got.Points[0].Name != "Alice" || got.Points[1].Value != 25 {
		t.Fatalf("unexpected chart: %+v", got)
	}

	out, err = run(t, "chart", path, "--x", "name")
	if err != nil {
		t.Fatalf("chart without --y: %v", err)
	}
	got.Points = nil
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got.Points) != 2 || got.Points[0].Name != "Alice" || got.Points[0].Value != 0 {
		t.Fatalf("a missing value column maps every row to 0: %+v", got)
	}
}

func TestPromptCommand(t *testing.T) {
	path := writeTemp(t, "people.json", `[{"name":"Alice","age":30}]`)

	out, err := run(t, "prompt", path, "-m", "who is oldest?", "--name", "staff")
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}
	for _, want := range []string{`dataset called "staff"`, "COLUMNS: name, age", "TOTAL ROWS: 1", "--- user ---\nwho is oldest?"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output misses %q:\n%s", want, out)
		}
	}
}

func TestPreviewCommand_MalformedJSON(t *testing.T) {
	path := writeTemp(t, "broken.json", `{"a":`)
	if _, err := run(t, "preview", path); err == nil || !strings.Contains(err.Error(), "parse application/json failed") {
		t.Fatalf("expected a parse error, got %v", err)
	}
}
