package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string
}

func (f *fakeExec) record(format string, args ...any) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return nil
}

func (f *fakeExec) Register(_ context.Context, user string) error {
	return f.record("register %s", user)
}
func (f *fakeExec) Unregister(_ context.Context, user string) error {
	return f.record("unregister %s", user)
}
func (f *fakeExec) Connect(_ context.Context, user string, port int) error {
	return f.record("connect %s %d", user, port)
}
func (f *fakeExec) Disconnect(_ context.Context, user string) error {
	return f.record("disconnect %s", user)
}
func (f *fakeExec) Publish(_ context.Context, filename, description string) error {
	return f.record("publish %s [%s]", filename, description)
}
func (f *fakeExec) Delete(_ context.Context, filename string) error {
	return f.record("delete %s", filename)
}
func (f *fakeExec) ListUsers(context.Context) error { return f.record("list_users") }
func (f *fakeExec) ListContent(_ context.Context, target string) error {
	return f.record("list_content %s", target)
}
func (f *fakeExec) GetFile(_ context.Context, target, filename string) error {
	return f.record("get_file %s %s", target, filename)
}

func run(lines ...string) (*fakeExec, string) {
	f := &fakeExec{}
	var out bytes.Buffer
	scanner := bufio.NewScanner(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	runREPL(context.Background(), f, false, scanner, &out)
	return f, out.String()
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	f, out := run(
		"REGISTER alice",
		"connect alice 9000",
		"",
		"publish song.mp3 a demo   track",
		"delete song.mp3",
		"list_users",
		"LIST_CONTENT bob",
		"get_file bob notes.txt",
		"disconnect alice",
		"unregister alice",
		"quit",
		"register never",
	)

	assert.Equal(t, []string{
		"register alice",
		"connect alice 9000",
		"publish song.mp3 [a demo track]",
		"delete song.mp3",
		"list_users",
		"list_content bob",
		"get_file bob notes.txt",
		"disconnect alice",
		"unregister alice",
	}, f.calls)
	assert.Contains(t, out, "Bye!")
	assert.NotContains(t, out, "c> ", "no prompt when not interactive")
}

func TestRunREPL_SyntaxErrors(t *testing.T) {
	f, out := run(
		"register",
		"connect alice",
		"connect alice port",
		"publish onlyname",
		"list_users extra",
		"get_file bob",
		"frobnicate",
	)

	assert.Empty(t, f.calls)
	assert.Contains(t, out, "Syntax error. Usage: REGISTER <userName>")
	assert.Contains(t, out, "Syntax error. Usage: CONNECT <userName> <port>")
	assert.Contains(t, out, "Syntax error. Usage: PUBLISH <fileName> <description>")
	assert.Contains(t, out, "Syntax error. Usage: LIST_USERS")
	assert.Contains(t, out, "Syntax error. Usage: GET_FILE <userName> <fileName>")
	assert.Contains(t, out, "Error: command frobnicate not valid.")
}

func TestRunREPL_PromptAndHelp(t *testing.T) {
	f := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), f, true, bufio.NewScanner(strings.NewReader("help\n")), &out)

	assert.True(t, strings.HasPrefix(out.String(), "c> "))
	assert.Contains(t, out.String(), helpText)
}
