package quiz

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/JustJay7/courtdle-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSelector(t *testing.T) {
	sel, err := DefaultSelector().Select(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultTheme, sel.Theme)
	assert.Equal(t, DefaultCases, sel.Cases)

	// Callers may not mutate the shared default.
	sel.Cases[0].Docket = "changed"
	assert.Equal(t, "249us47", DefaultCases[0].Docket)
}

func writeCasesFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestFileSelector(t *testing.T) {
	path := writeCasesFile(t, `
theme: Establishment Clause
cases:
  - term: "1962"
    docket: "468"
  - term: "1971"
    docket: "89"
`)

	sel, err := FileSelector{Path: path}.Select(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Establishment Clause", sel.Theme)
	assert.Equal(t, []models.CaseID{
		{Term: "1962", Docket: "468"},
		{Term: "1971", Docket: "89"},
	}, sel.Cases)
}

func TestFileSelectorDefaultsTheme(t *testing.T) {
	path := writeCasesFile(t, "cases:\n  - term: \"1968\"\n    docket: \"492\"\n")

	sel, err := FileSelector{Path: path}.Select(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultTheme, sel.Theme)
}

func TestFileSelectorErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no cases", body: "theme: Empty\n"},
		{name: "missing docket", body: "cases:\n  - term: \"1968\"\n"},
		{name: "invalid yaml", body: "cases: [unterminated\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FileSelector{Path: writeCasesFile(t, tt.body)}.Select(context.Background())
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := FileSelector{Path: filepath.Join(t.TempDir(), "absent.yaml")}.Select(context.Background())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("missing docket is an invalid case id", func(t *testing.T) {
		_, err := FileSelector{Path: writeCasesFile(t, "cases:\n  - term: \"1968\"\n")}.Select(context.Background())
		assert.ErrorIs(t, err, models.ErrInvalidCaseID)
	})
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		reply string
		want  models.Verdict
	}{
		{"Correct", models.VerdictCorrect},
		{"correct.", models.VerdictCorrect},
		{"  \"Correct\"", models.VerdictCorrect},
		{"**Correct**, the government prevailed.", models.VerdictCorrect},
		{"Incorrect", models.VerdictIncorrect},
		{"INCORRECT - the petitioner lost", models.VerdictIncorrect},
		{"", models.VerdictIndeterminate},
		{"The answer is correct", models.VerdictIndeterminate},
		{"Not sure", models.VerdictIndeterminate},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseVerdict(tt.reply))
		})
	}
}

func TestFormatParties(t *testing.T) {
	assert.Equal(t, `["Charles T. Schenck", "United States"]`, formatParties([]string{"Charles T. Schenck", "United States"}))
	assert.Equal(t, "[]", formatParties(nil))
}
