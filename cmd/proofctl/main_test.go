package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upb/proof-layer/config"
)

const testTraceID = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"

func setupEnv(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "proof.db")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", dbPath)
	t.Setenv("EMBEDDING_MODE", "fake")
	t.Setenv("EMBEDDING_DIMENSION", "16")
	t.Setenv("CONFIG_FILE", "")
	return dbPath
}

func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestChunkCommand(t *testing.T) {
	p := writeFile(t, "notes.txt", strings.Repeat("a", 25))

	out, err := execute(t, nil, "chunk", "--size", "10", "--overlap", "0", p)
	require.NoError(t, err)

	var chunks []struct {
		Index int    `json:"index"`
		Text  string `json:"text"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &chunks))
	require.Len(t, chunks, 3)
	assert.Equal(t, 2, chunks[2].Index)
	assert.Equal(t, "aaaaa", chunks[2].Text)
}

func TestChunkCommandEmptyFile(t *testing.T) {
	p := writeFile(t, "empty.txt", "   ")

	out, err := execute(t, nil, "chunk", p)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestChunkCommandInvalidSize(t *testing.T) {
	p := writeFile(t, "notes.txt", "text")

	_, err := execute(t, nil, "chunk", "--size", "0", p)
	assert.Error(t, err)
}

func TestIngestAskTrace(t *testing.T) {
	setupEnv(t)
	const text = "Support is available Monday to Friday."
	p := writeFile(t, "support.txt", text)
	key := "uploads/2024/03/04/" + testTraceID + "/support.txt"

	out, err := execute(t, nil, "ingest", "--bucket", "docs", "--key", key, p)
	require.NoError(t, err)

	var res map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, testTraceID, res["trace_id"])
	assert.Equal(t, float64(1), res["chunks"])

	out, err = execute(t, nil, "ask", "--top-k", "3", text)
	require.NoError(t, err)
	var outcome map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &outcome))
	assert.Equal(t, false, outcome["refused"])
	assert.Equal(t, text, outcome["answer"])

	out, err = execute(t, nil, "trace", testTraceID)
	require.NoError(t, err)
	assert.Contains(t, out, `"source_bucket": "docs"`)
	assert.Contains(t, out, `"filename": "support.txt"`)
}

func TestIngestGeneratesUploadKey(t *testing.T) {
	setupEnv(t)
	p := writeFile(t, "my notes.txt", "Some content.")

	out, err := execute(t, nil, "ingest", p)
	require.NoError(t, err)

	var res map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, localBucket, res["bucket"])
	assert.True(t, strings.HasPrefix(res["key"].(string), "uploads/"))
	assert.True(t, strings.HasSuffix(res["key"].(string), "/my_notes.txt"))
	assert.Contains(t, res["key"], res["trace_id"])
}

func TestAskEmptyStoreRefuses(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, nil, "ask", "is", "anything", "there?")
	require.NoError(t, err)
	assert.Contains(t, out, `"refused": true`)
	assert.Contains(t, out, "No chunks found in knowledge base")
}

func TestAskInvalidTopK(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, nil, "ask", "--top-k", "0", "question")
	assert.Error(t, err)
}

func TestTraceCommandErrors(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, nil, "trace", "not-a-uuid")
	assert.ErrorContains(t, err, "invalid UUID format")

	_, err = execute(t, nil, "trace", testTraceID)
	assert.Error(t, err)
}

func TestProcessEventFromStdin(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, strings.NewReader(`{"Records":[]}`), "process-event", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"statusCode": 200`)

	_, err = execute(t, strings.NewReader(`not json`), "process-event", "-")
	assert.ErrorContains(t, err, "malformed S3 event")
}

func TestAcquireStoreLock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "proof.db")
	cfg := &config.Config{Storage: config.StorageConfig{
		Backend:    config.StoreBackendSQLite,
		SQLitePath: dbPath,
	}}

	unlock, err := acquireStoreLock(cfg, 0)
	require.NoError(t, err)

	_, err = acquireStoreLock(cfg, 0)
	assert.ErrorContains(t, err, "another ingest is in progress")

	unlock()
	unlock2, err := acquireStoreLock(cfg, 0)
	require.NoError(t, err)
	unlock2()

	cfg.Storage.Backend = config.StoreBackendPostgres
	noop, err := acquireStoreLock(cfg, 0)
	require.NoError(t, err)
	noop()
}
