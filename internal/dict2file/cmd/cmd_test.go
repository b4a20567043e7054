package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"dict2file/internal/config"
	"dict2file/internal/dictionary"
	"dict2file/internal/ui/colorize"
)

const moduleLL = `source_filename = "proto.c"

@.str = private unnamed_addr constant [6 x i8] c"HELO \00", align 1
@.str.1 = private unnamed_addr constant [10 x i8] c"MAIL FROM\00", align 1
@.str.2 = private unnamed_addr constant [2 x i8] c"Q\00", align 1

define i32 @handle(i8* %line) {
entry:
  %0 = call i32 @strncmp(i8* %line, i8* getelementptr inbounds ([6 x i8], [6 x i8]* @.str, i64 0, i64 0), i64 5)
  %1 = call i32 @strcasecmp(i8* %line, i8* getelementptr inbounds ([10 x i8], [10 x i8]* @.str.1, i64 0, i64 0))
  %2 = call i32 @strcmp(i8* %line, i8* getelementptr inbounds ([2 x i8], [2 x i8]* @.str.2, i64 0, i64 0))
  ret i32 %0
}

declare i32 @strncmp(i8*, i8*, i64)

declare i32 @strcasecmp(i8*, i8*)

declare i32 @strcmp(i8*, i8*)
`

const emptyLL = `define void @noop() {
entry:
  ret void
}
`

func writeModule(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testSession(buf *bytes.Buffer) session {
	return session{
		stderr: buf,
		logger: log.NewWithOptions(buf, log.Options{Level: log.InfoLevel}),
	}
}

func testConfig(out string) config.Config {
	c := config.Default()
	c.OutputPath = out
	return c
}

func TestRunModulesWritesDictionary(t *testing.T) {
	dir := t.TempDir()
	mod := writeModule(t, dir, "proto.ll", moduleLL)
	out := filepath.Join(dir, "proto.dict")

	var stderr bytes.Buffer
	res, err := runModules(testConfig(out), []string{mod}, testSession(&stderr))
	if err != nil {
		t.Fatal(err)
	}
	if res.Entries != 2 || res.OutOfBounds != 1 || res.Comparisons != 3 {
		t.Errorf("result = %+v", res)
	}

	entries, err := dictionary.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]byte{[]byte("HELO "), []byte("MAIL FROM")}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("dictionary (-want +got):\n%s", diff)
	}

	text := colorize.StripANSI(stderr.String())
	for _, line := range []string{
		`strncmp: length 6/6 "HELO\x20"`,
		`strcasecmp: length 10/10 "MAIL\x20FROM"`,
		"[+] Wrote 2 dictionary entries to " + out,
	} {
		if !strings.Contains(text, line) {
			t.Errorf("stderr missing %q:\n%s", line, text)
		}
	}
	if strings.Contains(text, "extracting comparison constants") {
		t.Error("banner shown without a terminal")
	}
}

func TestRunModulesAppends(t *testing.T) {
	dir := t.TempDir()
	mod := writeModule(t, dir, "proto.ll", moduleLL)
	out := filepath.Join(dir, "proto.dict")

	for i := 0; i < 2; i++ {
		var stderr bytes.Buffer
		if _, err := runModules(testConfig(out), []string{mod, mod}, testSession(&stderr)); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := dictionary.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 8 {
		t.Errorf("entries = %d, want 8 (no deduplication)", len(entries))
	}
}

func TestRunModulesQuietAndDebug(t *testing.T) {
	dir := t.TempDir()
	mod := writeModule(t, dir, "proto.ll", moduleLL)

	var stderr bytes.Buffer
	cfg := testConfig(filepath.Join(dir, "quiet.dict"))
	cfg.Quiet = true
	if _, err := runModules(cfg, []string{mod}, session{stderr: &stderr, logger: log.New(&stderr), terminal: true}); err != nil {
		t.Fatal(err)
	}
	if stderr.Len() != 0 {
		t.Errorf("quiet run wrote %q", stderr.String())
	}

	stderr.Reset()
	cfg = testConfig(filepath.Join(dir, "debug.dict"))
	cfg.Quiet, cfg.Debug = true, true
	if _, err := runModules(cfg, []string{mod}, session{stderr: &stderr, logger: log.New(&stderr)}); err != nil {
		t.Fatal(err)
	}
	text := colorize.StripANSI(stderr.String())
	if !strings.Contains(text, "dict2file") || !strings.Contains(text, "Comparison site") {
		t.Errorf("debug run should show banner and traces:\n%s", text)
	}
}

func TestRunModulesNoEntries(t *testing.T) {
	dir := t.TempDir()
	mod := writeModule(t, dir, "empty.ll", emptyLL)
	out := filepath.Join(dir, "empty.dict")

	var stderr bytes.Buffer
	res, err := runModules(testConfig(out), []string{mod}, testSession(&stderr))
	if err != nil {
		t.Fatal(err)
	}
	if res.Entries != 0 {
		t.Errorf("Entries = %d", res.Entries)
	}
	if !strings.Contains(colorize.StripANSI(stderr.String()), "No entries found") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("dictionary should be created even when empty: %v", err)
	}
}

func TestRunModulesOpenFailure(t *testing.T) {
	dir := t.TempDir()
	var stderr bytes.Buffer
	_, err := runModules(testConfig(filepath.Join(dir, "missing", "x.dict")),
		[]string{filepath.Join(dir, "never-read.ll")}, testSession(&stderr))

	var ioErr *dictionary.IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "open" {
		t.Fatalf("err = %v, want open IOError", err)
	}
}

func TestRunModulesParseFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeModule(t, dir, "good.ll", moduleLL)
	bad := writeModule(t, dir, "bad.ll", "define i32 @f( {")
	out := filepath.Join(dir, "partial.dict")

	var stderr bytes.Buffer
	res, err := runModules(testConfig(out), []string{good, bad}, testSession(&stderr))
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if res.Entries != 2 {
		t.Errorf("entries before failure = %d, want 2", res.Entries)
	}
	entries, err := dictionary.ReadFile(out)
	if err != nil || len(entries) != 2 {
		t.Errorf("flushed entries = %d, err = %v", len(entries), err)
	}
}

func TestRunRejectsRelativeOutput(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"run", "-o", "relative.dict", "x.ll"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	var cfgErr *config.Error
	if !errors.As(err, &cfgErr) || cfgErr.Field != "output" {
		t.Fatalf("err = %v, want output config error", err)
	}
	if _, statErr := os.Stat("relative.dict"); statErr == nil {
		t.Error("dictionary created despite configuration error")
	}
}

func TestDictionaryMarkdown(t *testing.T) {
	md := dictionaryMarkdown("x.dict", [][]byte{[]byte("a|b"), []byte("GET ")})
	for _, want := range []string{"# x.dict", "**2** entries", "| 1 | `\"a\\|b\"` | 3 |", "| 2 | `\"GET\\x20\"` | 4 |"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if md := dictionaryMarkdown("e.dict", nil); !strings.Contains(md, "No entries") {
		t.Errorf("empty markdown = %q", md)
	}
}

func TestWritePlain(t *testing.T) {
	var buf bytes.Buffer
	if err := writePlain(&buf, [][]byte{[]byte("abc"), []byte("x\x00y")}); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "\"abc\"\n\"x\\x00y\"\n"; got != want {
		t.Errorf("writePlain = %q, want %q", got, want)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFollowFromStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.dict")
	if err := os.WriteFile(path, []byte("# header\n\"HELO\"\nnot an entry\n\"\\x01\\x02\\x03\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- follow(ctx, path, followOptions{fromStart: true, poll: true}, &out)
	}()

	want := "\"HELO\"\t4\n\"\\x01\\x02\\x03\"\t3\n"
	deadline := time.Now().Add(5 * time.Second)
	for out.String() != want && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not stop after cancel")
	}
	if got := out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestSchemaCommand(t *testing.T) {
	var out bytes.Buffer
	schemaCmd.SetOut(&out)
	if err := schemaCmd.RunE(schemaCmd, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"output"`) {
		t.Errorf("schema = %s", out.String())
	}
}
