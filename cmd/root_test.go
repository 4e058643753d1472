package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliQuestions = `[
  {"id": "j1", "category_id": "journal-entries", "difficulty": 1, "tags": ["現金過不足"], "question_text": "Record a cash shortage"},
  {"id": "j2", "category_id": "journal-entries", "difficulty": 2, "tags": ["商品売買"]},
  {"id": "l1", "category_id": "ledgers", "difficulty": 3, "tags": ["総勘定元帳"]}
]`

type cli struct {
	db  string
	dir string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("BOKI_DB", "")
	t.Setenv("BOKI_LOG_LEVEL", "")
	return &cli{db: filepath.Join(dir, "boki.db"), dir: dir}
}

func (c *cli) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--db", c.db}, args...))
	err := root.Execute()
	return out.String(), err
}

func (c *cli) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := c.run(t, args...)
	require.NoError(t, err, out)
	return out
}

func (c *cli) importQuestions(t *testing.T) {
	t.Helper()
	path := filepath.Join(c.dir, "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(cliQuestions), 0o644))
	out := c.mustRun(t, "questions", "import", path)
	assert.Contains(t, out, "Imported 3 questions")
}

func TestVersion(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun(t, "version")
	assert.Contains(t, out, "boki (devel)")
}

func TestQuestionsImportAndList(t *testing.T) {
	c := newCLI(t)
	c.importQuestions(t)

	out := c.mustRun(t, "questions", "list")
	assert.Contains(t, out, "j1")
	assert.Contains(t, out, "l1")
	assert.Contains(t, out, "3 questions")

	out = c.mustRun(t, "questions", "list", "--category", "ledgers")
	assert.Contains(t, out, "l1")
	assert.NotContains(t, out, "j2")
	assert.Contains(t, out, "1 questions")

	_, err := c.run(t, "questions", "import", filepath.Join(c.dir, "missing.json"))
	assert.Error(t, err)
}

func TestAnswerAndReview(t *testing.T) {
	c := newCLI(t)
	c.importQuestions(t)

	out := c.mustRun(t, "review")
	assert.Contains(t, out, "Review queue is empty")

	out = c.mustRun(t, "answer", "j1", "--wrong", "--time", "30s")
	assert.Contains(t, out, "Incorrect")
	assert.Contains(t, out, "added to review")

	out = c.mustRun(t, "answer", "j2", "--correct")
	assert.Contains(t, out, "not in review")

	out = c.mustRun(t, "review")
	assert.Contains(t, out, "j1")
	assert.NotContains(t, out, "j2")
	assert.Contains(t, out, "1 items")

	out = c.mustRun(t, "review", "--category", "cash_deposit")
	assert.Contains(t, out, "j1")

	out = c.mustRun(t, "review", "--category", "trial-balance")
	assert.Contains(t, out, "Review queue is empty")

	out = c.mustRun(t, "review", "--min-status", "priority_review")
	assert.Contains(t, out, "Review queue is empty")

	out = c.mustRun(t, "review", "--skip-recent", "1h")
	assert.Contains(t, out, "Review queue is empty")

	_, err := c.run(t, "review", "--min-status", "mastered")
	assert.Error(t, err)
	_, err = c.run(t, "review", "--level", "urgent")
	assert.Error(t, err)
}

func TestAnswerFlags(t *testing.T) {
	c := newCLI(t)
	c.importQuestions(t)

	_, err := c.run(t, "answer", "j1")
	assert.Error(t, err)
	_, err = c.run(t, "answer", "j1", "--correct", "--wrong")
	assert.Error(t, err)
	_, err = c.run(t, "answer", "nope", "--wrong")
	assert.Error(t, err)
}

func TestNextStatsProfile(t *testing.T) {
	c := newCLI(t)
	c.importQuestions(t)

	out := c.mustRun(t, "next", "--max", "2")
	assert.Contains(t, out, "selected")

	_, err := c.run(t, "next", "--max=-1")
	assert.Error(t, err)

	c.mustRun(t, "answer", "j1", "--wrong")
	out = c.mustRun(t, "stats")
	assert.Contains(t, out, "journal-entries")
	assert.Contains(t, out, "Weak areas")

	out = c.mustRun(t, "profile")
	assert.Contains(t, out, "beginner")
	assert.Contains(t, out, "not saved yet")

	out = c.mustRun(t, "profile", "--level", "advanced", "--master", "ledgers")
	assert.Contains(t, out, "advanced")
	assert.Contains(t, out, "ledgers")
	assert.NotContains(t, out, "not saved yet")

	_, err = c.run(t, "profile", "--level", "expert")
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	c := newCLI(t)
	c.importQuestions(t)
	c.mustRun(t, "answer", "j1", "--wrong")

	_, err := c.run(t, "reset")
	assert.Error(t, err)

	out := c.mustRun(t, "reset", "--yes")
	assert.Contains(t, out, "Deleted 1 review items and 1 answers")

	out = c.mustRun(t, "questions", "list")
	assert.Contains(t, out, "3 questions")
}
