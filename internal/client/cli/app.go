package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/peerdir/internal/client/client"
	"github.com/dmitrijs2005/peerdir/internal/client/config"
	"github.com/dmitrijs2005/peerdir/internal/protocol"
	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// App is the interactive client. user is the session opened by connect.
type App struct {
	client *client.Client
	user   string
	in     io.Reader
	out    io.Writer
}

func NewApp(c *config.Config) *App {
	opts := []client.Option{client.WithTimeout(c.RequestTimeout)}
	if c.TimeServiceURL != "" {
		opts = append(opts, client.WithTimeService(c.TimeServiceURL))
	}
	return newApp(client.New(c.ServerAddr(), opts...), os.Stdin, os.Stdout)
}

func newApp(cl *client.Client, in io.Reader, out io.Writer) *App {
	return &App{client: cl, in: in, out: out}
}

// Run blocks until quit or end of input. An open session is closed with
// DISCONNECT on the way out.
func (a *App) Run(ctx context.Context) {
	prompt := false
	if f, ok := a.in.(*os.File); ok {
		prompt = isTerminal(int(f.Fd()))
	}

	if prompt {
		fmt.Fprintln(a.out, "Peer directory client (type 'help' for commands)")
	}
	runREPL(ctx, a, prompt, bufio.NewScanner(a.in), a.out)

	if a.user != "" {
		_ = a.Disconnect(ctx, a.user)
	}
}

func (a *App) say(op protocol.Operation, err error) error {
	fmt.Fprintln(a.out, describe(op, err))
	return err
}

func (a *App) Register(ctx context.Context, user string) error {
	return a.say(protocol.OpRegister, a.client.Register(ctx, user))
}

func (a *App) Unregister(ctx context.Context, user string) error {
	err := a.client.Unregister(ctx, user)
	if err == nil && user == a.user {
		a.user = ""
	}
	return a.say(protocol.OpUnregister, err)
}

func (a *App) Connect(ctx context.Context, user string, port int) error {
	err := a.client.Connect(ctx, user, port)
	if err == nil {
		a.user = user
	}
	return a.say(protocol.OpConnect, err)
}

func (a *App) Disconnect(ctx context.Context, user string) error {
	err := a.client.Disconnect(ctx, user)
	if err == nil && user == a.user {
		a.user = ""
	}
	return a.say(protocol.OpDisconnect, err)
}

func (a *App) Publish(ctx context.Context, filename, description string) error {
	if a.user == "" {
		return a.say(protocol.OpPublish, errNoSession)
	}
	return a.say(protocol.OpPublish, a.client.Publish(ctx, a.user, filename, description))
}

func (a *App) Delete(ctx context.Context, filename string) error {
	if a.user == "" {
		return a.say(protocol.OpDelete, errNoSession)
	}
	return a.say(protocol.OpDelete, a.client.Delete(ctx, a.user, filename))
}

func (a *App) ListUsers(ctx context.Context) error {
	if a.user == "" {
		return a.say(protocol.OpListUsers, errNoSession)
	}
	peers, err := a.client.ListUsers(ctx, a.user)
	if err != nil {
		return a.say(protocol.OpListUsers, err)
	}

	fmt.Fprintln(a.out, "CONNECTED USERS:")
	for _, p := range peers {
		fmt.Fprintf(a.out, "\t%s\t%s\t%d\n", p.Name, p.IP, p.Port)
	}
	return nil
}

func (a *App) ListContent(ctx context.Context, target string) error {
	if a.user == "" {
		return a.say(protocol.OpListContent, errNoSession)
	}
	files, err := a.client.ListContent(ctx, a.user, target)
	if err != nil {
		return a.say(protocol.OpListContent, err)
	}

	fmt.Fprintf(a.out, "CONTENT OF %s:\n", target)
	for _, f := range files {
		fmt.Fprintf(a.out, "\t%s\n", f)
	}
	return nil
}

func (a *App) GetFile(ctx context.Context, target, filename string) error {
	if a.user == "" {
		return a.say(protocol.OpGetFile, errNoSession)
	}
	addr, err := a.client.GetFile(ctx, a.user, target, filename)
	if err != nil {
		return a.say(protocol.OpGetFile, err)
	}

	fmt.Fprintf(a.out, "GET_FILE OK, %s serves %s at %s\n", target, filename, addr)
	return nil
}
