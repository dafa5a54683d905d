package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	j "github.com/goccy/go-json"
)

const schemaDoc = `
root: Board
models:
  User:
    props:
      id: identifier
      name: primitive
  Task:
    props:
      title: primitive
      owner: {ref: User}
  Board:
    props:
      tasks: {list: {object: Task}}
      users: {list: {object: User}}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestRun_DeserializePrintsGraph(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", schemaDoc)
	in := writeFile(t, dir, "board.json", `{"tasks":[{"title":"t","owner":"u1"}],"users":[{"id":"u1","name":"Ada"}]}`)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"deserialize", "-schema", schema, "-in", in, "-v"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	var out map[string]any
	if err := j.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}
	task := out["tasks"].([]any)[0].(map[string]any)
	if task["owner"] != "u1" {
		t.Fatalf("unexpected output: %v", out)
	}
	if !strings.Contains(stderr.String(), "settled") {
		t.Fatalf("verbose log missing: %s", stderr.String())
	}
}

func TestRun_CheckReportsIssues(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", schemaDoc)
	in := writeFile(t, dir, "board.yaml", "tasks:\n  - title: t\n    owner: ghost\n")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"check", "-schema", schema, "-in", in}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if stdout.Len() != 0 {
		t.Fatalf("check must not print the graph: %s", stdout.String())
	}
	var line map[string]any
	if err := j.Unmarshal(bytes.TrimSpace(stderr.Bytes()), &line); err != nil {
		t.Fatalf("issue line is not JSON: %v\n%s", err, stderr.String())
	}
	if line["code"] != "unresolved_reference" || line["path"] != "/tasks/0/owner" {
		t.Fatalf("unexpected issue: %v", line)
	}
}

func TestRun_ModelFlagAndUsage(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", schemaDoc)
	in := writeFile(t, dir, "user.json", `{"id":"u1","name":"Ada"}`)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"check", "-schema", schema, "-in", in, "-model", "User"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if code := run([]string{"check", "-schema", schema, "-in", in, "-model", "Nope"}, &stdout, &stderr); code != 1 {
		t.Fatalf("unknown model: exit %d", code)
	}
	if code := run(nil, &stdout, &stderr); code != 2 {
		t.Fatalf("no args: exit %d", code)
	}
	if code := run([]string{"deserialize"}, &stdout, &stderr); code != 2 {
		t.Fatalf("missing flags: exit %d", code)
	}
	if code := run([]string{"frobnicate"}, &stdout, &stderr); code != 2 {
		t.Fatalf("unknown command: exit %d", code)
	}
}

func TestRun_ParseError(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", schemaDoc)
	in := writeFile(t, dir, "bad.json", `{"tasks": [`)
	var stdout, stderr bytes.Buffer
	if code := run([]string{"check", "-schema", schema, "-in", in}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "parse_error") {
		t.Fatalf("expected a parse_error line: %s", stderr.String())
	}
}
