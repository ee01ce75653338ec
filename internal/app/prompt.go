package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopherai-insight/internal/ai"
	"gopherai-insight/internal/model"
)

// MaxPromptSampleRows caps the sample rows embedded in a data analysis prompt.
const MaxPromptSampleRows = 8

type ChatMode string

const (
	ModeGeneral      ChatMode = "general"
	ModeDataAnalysis ChatMode = "data_analysis"
)

// ParseChatMode defaults to general.
func ParseChatMode(raw string) (ChatMode, error) {
	switch mode := ChatMode(strings.TrimSpace(raw)); mode {
	case "":
		return ModeGeneral, nil
	case ModeGeneral, ModeDataAnalysis:
		return mode, nil
	default:
		return "", ErrInvalidMode
	}
}

const (
	generalSystemPrompt = "You are a helpful AI assistant."

	noColumnsPlaceholder    = "No columns available"
	noSampleDataPlaceholder = "No sample data available"
	unknownRowCount         = "Unknown"

	dataAnalysisTemplate = `You are a data analysis expert. You have access to a dataset called "%s" with the following structure:

COLUMNS: %s

SAMPLE DATA (first %d rows):
%s

TOTAL ROWS: %s

INSTRUCTIONS:
- Analyze the actual data provided above
- Reference specific values, names, numbers, and trends from the sample data
- Provide concrete insights based on the data, not generic statements
- If asked about specific metrics (salary, performance, etc.), calculate and mention actual values
- If asked about comparisons, use the actual data to make comparisons
- Be specific and quantitative in your analysis
- If the data shows patterns or outliers, point them out with specific examples

When analyzing this data, always reference the actual values and provide specific insights rather than generic observations.`
)

type PromptPair struct {
	System string `json:"system"`
	User   string `json:"user"`
}

// Messages renders the pair as a completion message list.
func (p PromptPair) Messages() []ai.ChatMessage {
	return []ai.ChatMessage{
		{Role: ai.RoleSystem, Content: p.System},
		{Role: ai.RoleUser, Content: p.User},
	}
}

// ComposePrompt builds the prompt for one chat turn. The message is passed
// through verbatim. A dataset only shapes the system prompt in data
// analysis mode.
func ComposePrompt(message string, mode ChatMode, dataset *model.Dataset) PromptPair {
	if mode != ModeDataAnalysis || dataset == nil {
		return PromptPair{System: generalSystemPrompt, User: message}
	}

	columns := strings.Join(dataset.Columns, ", ")
	if columns == "" {
		columns = noColumnsPlaceholder
	}

	rowCount := unknownRowCount
	if dataset.RowCount != nil && *dataset.RowCount > 0 {
		rowCount = strconv.Itoa(*dataset.RowCount)
	}

	system := fmt.Sprintf(dataAnalysisTemplate,
		dataset.Name,
		columns,
		MaxPromptSampleRows,
		renderSampleRows(dataset.SampleRows),
		rowCount,
	)
	return PromptPair{System: system, User: message}
}

func renderSampleRows(rows []*model.Row) string {
	if len(rows) == 0 {
		return noSampleDataPlaceholder
	}
	if len(rows) > MaxPromptSampleRows {
		rows = rows[:MaxPromptSampleRows]
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return noSampleDataPlaceholder
	}
	return strings.TrimRight(buf.String(), "\n")
}
