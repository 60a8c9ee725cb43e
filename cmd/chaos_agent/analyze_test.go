package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/chaos-engine/internal/humanize"
)

func setAnalyzeFlags(t *testing.T, in string, asJSON bool) {
	t.Helper()
	analyzeInputFile, analyzeJSON = in, asJSON
	t.Cleanup(func() { analyzeInputFile, analyzeJSON = "", false })
}

func TestRunAnalyze_PrintsReport(t *testing.T) {
	useTestConfig(t)
	setAnalyzeFlags(t, writeTempFile(t, "post.txt", "We leverage plain plain plain plain words here."), false)

	cmd, stdout, _ := testCommand("")
	require.NoError(t, runAnalyze(cmd, nil))

	out := stdout.String()
	assert.Contains(t, out, "DETECTION RISK")
	assert.Contains(t, out, "98/100 (LOW)")
	assert.Contains(t, out, "Marked terms: 1")
}

func TestRunAnalyze_JSON(t *testing.T) {
	useTestConfig(t)
	setAnalyzeFlags(t, "-", true)

	text := "We like red, green, and blue. We like cats, dogs, and birds. We like tea, coffee, and milk. We like one, two, and three."
	cmd, stdout, _ := testCommand(text)
	require.NoError(t, runAnalyze(cmd, nil))

	var report humanize.RiskReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, 75, report.Score)
	assert.Equal(t, humanize.RiskMedium, report.RiskLevel)
	assert.Len(t, report.Issues, 2)
}

func TestRunAnalyze_EmptyInput(t *testing.T) {
	useTestConfig(t)
	setAnalyzeFlags(t, "-", true)

	cmd, stdout, _ := testCommand("")
	require.NoError(t, runAnalyze(cmd, nil))

	var report humanize.RiskReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, 100, report.Score)
	assert.Empty(t, report.Issues)
}
