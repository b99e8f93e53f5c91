package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// execIface is the command surface the REPL drives. App implements it;
// tests use a stub.
type execIface interface {
	Register(ctx context.Context, user string) error
	Unregister(ctx context.Context, user string) error
	Connect(ctx context.Context, user string, port int) error
	Disconnect(ctx context.Context, user string) error
	Publish(ctx context.Context, filename, description string) error
	Delete(ctx context.Context, filename string) error
	ListUsers(ctx context.Context) error
	ListContent(ctx context.Context, target string) error
	GetFile(ctx context.Context, target, filename string) error
}

const helpText = "Available commands: register, unregister, connect, disconnect, publish, delete, list_users, list_content, get_file, quit"

// runREPL reads commands from scanner until EOF or quit. Handler errors are
// already reported by the handlers and are ignored here.
func runREPL(ctx context.Context, a execIface, prompt bool, scanner *bufio.Scanner, w io.Writer) {
	usage := func(u string) { fmt.Fprintln(w, "Syntax error. Usage: "+u) }

	for {
		if prompt {
			fmt.Fprint(w, "c> ")
		}
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(w, helpText)

		case "register":
			if len(args) != 1 {
				usage("REGISTER <userName>")
				continue
			}
			_ = a.Register(ctx, args[0])

		case "unregister":
			if len(args) != 1 {
				usage("UNREGISTER <userName>")
				continue
			}
			_ = a.Unregister(ctx, args[0])

		case "connect":
			if len(args) != 2 {
				usage("CONNECT <userName> <port>")
				continue
			}
			port, err := strconv.Atoi(args[1])
			if err != nil {
				usage("CONNECT <userName> <port>")
				continue
			}
			_ = a.Connect(ctx, args[0], port)

		case "disconnect":
			if len(args) != 1 {
				usage("DISCONNECT <userName>")
				continue
			}
			_ = a.Disconnect(ctx, args[0])

		case "publish":
			if len(args) < 2 {
				usage("PUBLISH <fileName> <description>")
				continue
			}
			_ = a.Publish(ctx, args[0], strings.Join(args[1:], " "))

		case "delete":
			if len(args) != 1 {
				usage("DELETE <fileName>")
				continue
			}
			_ = a.Delete(ctx, args[0])

		case "list_users":
			if len(args) != 0 {
				usage("LIST_USERS")
				continue
			}
			_ = a.ListUsers(ctx)

		case "list_content":
			if len(args) != 1 {
				usage("LIST_CONTENT <userName>")
				continue
			}
			_ = a.ListContent(ctx, args[0])

		case "get_file":
			if len(args) != 2 {
				usage("GET_FILE <userName> <fileName>")
				continue
			}
			_ = a.GetFile(ctx, args[0], args[1])

		case "quit", "exit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintf(w, "Error: command %s not valid.\n", parts[0])
		}
	}
}
