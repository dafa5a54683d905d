package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	j "github.com/goccy/go-json"

	serializr "github.com/reoring/serializr"
	"github.com/reoring/serializr/i18n"
	"github.com/reoring/serializr/schemafile"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "serializr CLI\n\nUsage:\n  serializr deserialize -schema schema.yaml -in data.json [-model Name] [-fail-fast] [-lang en|ja] [-v]\n  serializr check -schema schema.yaml -in data.json [-model Name] [-fail-fast] [-lang en|ja] [-v]\n\nNotes:\n  - Input may be JSON or YAML (chosen by file extension; '-' reads JSON from stdin).\n  - deserialize prints the re-serialized object graph; check only reports issues.")
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "deserialize":
		return deserializeCmd(args[1:], stdout, stderr, true)
	case "check":
		return deserializeCmd(args[1:], stdout, stderr, false)
	default:
		usage(stderr)
		return 2
	}
}

func deserializeCmd(args []string, stdout, stderr io.Writer, printGraph bool) int {
	fs := flag.NewFlagSet("deserialize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var schemaPath, inPath, model, lang string
	var failFast, verbose bool
	fs.StringVar(&schemaPath, "schema", "", "schema document (YAML or JSON)")
	fs.StringVar(&inPath, "in", "", "input document ('-' for stdin)")
	fs.StringVar(&model, "model", "", "model name (defaults to the document root)")
	fs.StringVar(&lang, "lang", "en", "message language (en|ja)")
	fs.BoolVar(&failFast, "fail-fast", false, "stop at the first issue")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if schemaPath == "" || inPath == "" {
		fs.Usage()
		return 2
	}

	logf := func(format string, a ...any) {
		if verbose {
			fmt.Fprintf(stderr, format+"\n", a...)
		}
	}
	i18n.SetLanguage(lang)

	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: reading schema: %v\n", err)
		return 1
	}
	set, err := schemafile.Load(schemaData)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	var s *serializr.ModelSchema
	if model != "" {
		m, ok := set.Model(model)
		if !ok {
			fmt.Fprintf(stderr, "error: model %q is not declared\n", model)
			return 1
		}
		s = m
	} else if s, err = set.RootModel(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	logf("schema: %s models=%d model=%s", schemaPath, len(set.Models), s.Name())

	input, err := decodeInput(inPath)
	if err != nil {
		writeIssues(stderr, err)
		return 1
	}
	logf("input: %s", inPath)

	ctx := context.Background()
	fut := serializr.DeserializeAsync(ctx, s, input, serializr.WithFailFast(failFast))
	v, err := fut.Wait(ctx)
	if err != nil {
		writeIssues(stderr, err)
		return 1
	}
	logf("settled: no issues")
	if !printGraph {
		return 0
	}
	out, err := serializr.Serialize(ctx, s, v)
	if err != nil {
		writeIssues(stderr, err)
		return 1
	}
	b, err := j.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "error: encoding output: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, string(b))
	return 0
}

func decodeInput(path string) (any, error) {
	if path == "-" {
		return serializr.DecodeJSON(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return serializr.DecodeYAML(data)
	default:
		return serializr.DecodeJSON(bytes.NewReader(data))
	}
}

type issueLine struct {
	Path    string         `json:"path"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

func writeIssues(w io.Writer, err error) {
	iss, ok := serializr.AsIssues(err)
	if !ok {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	enc := j.NewEncoder(w)
	for _, it := range iss {
		_ = enc.Encode(issueLine{Path: it.Path, Code: it.Code, Message: it.Message, Params: it.Params})
	}
}
