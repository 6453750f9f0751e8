package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const level2Input = `{
	"articles": [{"id": 1, "name": "water", "price": 100}, {"id": 2, "name": "honey", "price": 200}],
	"carts": [
		{"id": 1, "items": [{"article_id": 1, "quantity": 6}, {"article_id": 2, "quantity": 2}]},
		{"id": 2, "items": []}
	],
	"delivery_fees": [
		{"eligible_transaction_volume": {"min_price": 0, "max_price": 1000}, "price": 800},
		{"eligible_transaction_volume": {"min_price": 1000, "max_price": 2000}, "price": 400},
		{"eligible_transaction_volume": {"min_price": 2000, "max_price": null}, "price": 0}
	]
}`

func TestRunStdinToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"level2", "-", "-"}, strings.NewReader(level2Input), &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Empty(t, stderr.String())
	assert.JSONEq(t, `{"carts":[{"id":1,"total":1400},{"id":2,"total":800}]}`, stdout.String())
	assert.True(t, strings.HasSuffix(stdout.String(), "}\n"))
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "data.json")
	out := filepath.Join(dir, "output.json")
	require.NoError(t, os.WriteFile(in, []byte(level2Input), 0o600))

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"level1", in, out}, nil, &stdout, &stderr), stderr.String())
	assert.Empty(t, stdout.String())

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"carts":[{"id":1,"total":1000},{"id":2,"total":0}]}`, string(written))
}

func TestRunPricingFailure(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output.json")

	var stdout, stderr bytes.Buffer
	code := run([]string{"1", "-", out}, strings.NewReader(`{"articles": [], "carts": [{"id": 1, "items": [{"article_id": 3, "quantity": 1}]}]}`), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "undefined article reference")
	assert.Equal(t, 1, strings.Count(stderr.String(), "\n"))
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "no output is written on failure")
}

func TestRunUsageErrors(t *testing.T) {
	cases := [][]string{
		nil,
		{"level1", "-"},
		{"level4", "-", "-"},
		{"-unknown", "level1", "-", "-"},
	}
	for _, args := range cases {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 2, run(args, strings.NewReader("{}"), &stdout, &stderr), "args %v", args)
		assert.Empty(t, stdout.String())
	}
}

func TestRunMissingInputFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"level3", filepath.Join(t.TempDir(), "missing.json"), "-"}, nil, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "read input")
}

func TestRunVerboseLogsToStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-v", "level3", "-", "-"}, strings.NewReader(`{}`), &stdout, &stderr)
	require.Equal(t, 0, code)
	assert.JSONEq(t, `{"carts":[]}`, stdout.String())
	assert.Contains(t, stderr.String(), "carts priced")
}
