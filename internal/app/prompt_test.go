package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"gopherai-insight/internal/model"
)

func datasetWithRows(n int) *model.Dataset {
	rows := make([]*model.Row, 0, n)
	for i := 0; i < n; i++ {
		row := model.NewRow()
		row.Set("employee", fmt.Sprintf("e%02d", i))
		row.Set("salary", fmt.Sprintf("%d", 1000+i))
		rows = append(rows, row)
	}
	count := 120
	return &model.Dataset{
		Name:       "payroll",
		Columns:    []string{"employee", "salary"},
		SampleRows: rows,
		RowCount:   &count,
	}
}

func embeddedRows(t *testing.T, system string) []map[string]any {
	t.Helper()
	start := strings.Index(system, "[")
	end := strings.Index(system, "\n\nTOTAL ROWS:")
	if start < 0 || end < start {
		t.Fatalf("no embedded sample data in prompt:\n%s", system)
	}
	var rows []map[string]any
	if err := json.Unmarshal([]byte(system[start:end]), &rows); err != nil {
		t.Fatalf("embedded sample data is not JSON: %v", err)
	}
	return rows
}

func TestComposePrompt_General(t *testing.T) {
	msg := "  what is the weather?  "
	for _, tc := range []struct {
		mode ChatMode
		ds   *model.Dataset
	}{
		{ModeGeneral, nil},
		{ModeGeneral, datasetWithRows(3)},
		{ModeDataAnalysis, nil},
	} {
		got := ComposePrompt(msg, tc.mode, tc.ds)
		if got.System != generalSystemPrompt {
			t.Fatalf("mode %s: unexpected system prompt %q", tc.mode, got.System)
		}
		if got.User != msg {
			t.Fatalf("mode %s: user prompt must be verbatim, got %q", tc.mode, got.User)
		}
	}
}

func TestComposePrompt_DataAnalysis(t *testing.T) {
	got := ComposePrompt("average salary?", ModeDataAnalysis, datasetWithRows(3))

	for _, want := range []string{
		`dataset called "payroll"`,
		"COLUMNS: employee, salary",
		"TOTAL ROWS: 120",
		"calculate and mention actual values",
	} {
		if !strings.Contains(got.System, want) {
			t.Fatalf("system prompt misses %q:\n%s", want, got.System)
		}
	}
	if got.User != "average salary?" {
		t.Fatalf("unexpected user prompt %q", got.User)
	}

	rows := embeddedRows(t, got.System)
	if len(rows) != 3 || rows[0]["employee"] != "e00" {
		t.Fatalf("unexpected embedded rows: %v", rows)
	}
	if !strings.Contains(got.System, "{\n    \"employee\": \"e00\",\n    \"salary\": \"1000\"\n  }") {
		t.Fatalf("sample rows must be pretty printed in column order:\n%s", got.System)
	}
}

func TestComposePrompt_CapsSampleRows(t *testing.T) {
	for _, n := range []int{8, 12} {
		got := ComposePrompt("q", ModeDataAnalysis, datasetWithRows(n))
		rows := embeddedRows(t, got.System)
		if len(rows) != MaxPromptSampleRows {
			t.Fatalf("%d rows: expected %d embedded rows, got %d", n, MaxPromptSampleRows, len(rows))
		}
		if rows[7]["employee"] != "e07" {
			t.Fatalf("%d rows: expected the first rows in order, got %v", n, rows[7])
		}
	}
}

func TestComposePrompt_Placeholders(t *testing.T) {
	got := ComposePrompt("q", ModeDataAnalysis, &model.Dataset{Name: "empty"})
	for _, want := range []string{
		"COLUMNS: " + noColumnsPlaceholder,
		noSampleDataPlaceholder,
		"TOTAL ROWS: " + unknownRowCount,
	} {
		if !strings.Contains(got.System, want) {
			t.Fatalf("system prompt misses %q:\n%s", want, got.System)
		}
	}
}

func TestParseChatMode(t *testing.T) {
	if mode, err := ParseChatMode(""); err != nil || mode != ModeGeneral {
		t.Fatalf("empty mode: %s, %v", mode, err)
	}
	if mode, err := ParseChatMode("data_analysis"); err != nil || mode != ModeDataAnalysis {
		t.Fatalf("data_analysis: %s, %v", mode, err)
	}
	if _, err := ParseChatMode("poetry"); err != ErrInvalidMode {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
}
