package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/chaos-engine/internal/humanize"
)

const draftSentence = "I think you should leverage your network to delve into new opportunities. Furthermore, this is crucial."

var markedWords = regexp.MustCompile(`(?i)\b(leverage|delve|furthermore|crucial)\b`)

func TestRunHumanize_WritesText(t *testing.T) {
	useTestConfig(t)
	in := writeTempFile(t, "draft.html", draftSentence)
	out := filepath.Join(t.TempDir(), "nested", "out.html")
	setHumanizeFlags(t, in, out, 1, 7, false)

	cmd, stdout, _ := testCommand("")
	require.NoError(t, runHumanize(cmd, nil))
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	text := strings.TrimSpace(string(data))
	assert.NotEmpty(t, text)
	assert.False(t, markedWords.MatchString(text), text)
}

func TestRunHumanize_JSONFromStdin(t *testing.T) {
	useTestConfig(t)
	setHumanizeFlags(t, "-", "", 1, 7, true)

	cmd, stdout, _ := testCommand(draftSentence)
	require.NoError(t, runHumanize(cmd, nil))

	var result humanize.Result
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	assert.Equal(t, 1, result.PassesApplied)
	assert.Equal(t, []string{humanize.StageVocabulary}, result.Stages)
	assert.Equal(t, 4, result.Replacements)
	assert.False(t, markedWords.MatchString(result.Text), result.Text)
}

func TestRunHumanize_SeedIsReproducible(t *testing.T) {
	useTestConfig(t)

	run := func() string {
		setHumanizeFlags(t, "-", "", 3, 42, false)
		cmd, stdout, _ := testCommand("<p>" + draftSentence + "</p>\n\n<p>" + draftSentence + "</p>")
		require.NoError(t, runHumanize(cmd, nil))
		return stdout.String()
	}
	assert.Equal(t, run(), run())
}

func TestRunHumanize_Verbose(t *testing.T) {
	useTestConfig(t)
	setHumanizeFlags(t, "-", "", 1, 1, false)
	verbose = true
	t.Cleanup(func() { verbose = false })

	cmd, _, stderr := testCommand(draftSentence)
	require.NoError(t, runHumanize(cmd, nil))
	assert.Contains(t, stderr.String(), "HUMANIZE RESULT")
	assert.Contains(t, stderr.String(), "BURSTINESS")
}

func TestRunHumanize_Errors(t *testing.T) {
	useTestConfig(t)

	t.Run("missing input file", func(t *testing.T) {
		setHumanizeFlags(t, filepath.Join(t.TempDir(), "missing.html"), "", 0, 1, false)
		cmd, _, _ := testCommand("")
		err := runHumanize(cmd, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read input")
	})

	t.Run("passes out of range", func(t *testing.T) {
		setHumanizeFlags(t, "-", "", 4, 1, false)
		cmd, _, _ := testCommand(draftSentence)
		err := runHumanize(cmd, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "humanize failed")
	})
}

func TestHumanizeCommand_FlagsValidation(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "humanize")
	output, err := cmd.CombinedOutput()
	assert.Error(t, err)
	assert.Contains(t, string(output), "required")
}
