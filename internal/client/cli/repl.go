package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App satisfies
// it; tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	Password(ctx context.Context) error
	Notifications(ctx context.Context) error
	Dismiss(ctx context.Context, arg string) error
	Clear(ctx context.Context) error
	Status(ctx context.Context) error
	afterCommand()
}

const (
	helpSignedOut = "Available commands: register, login, notifications, dismiss <n>, clear, status, exit"
	helpSignedIn  = "Available commands: whoami, profile, password, refresh, logout, notifications, dismiss <n>, clear, status, exit"
)

// runREPL reads one command per line from scanner and dispatches it to a
// until EOF, "exit" or "quit". Handler errors are reported by the handlers
// themselves, so they are dropped here. After every command the live
// notifications are rendered through a.afterCommand.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("nk%s> ", prefixed(statusFn())))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}
		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "refresh":
			_ = a.Refresh(ctx)
		case "whoami":
			_ = a.WhoAmI(ctx)
		case "profile":
			_ = a.Profile(ctx)
		case "password":
			_ = a.Password(ctx)
		case "notifications", "n":
			_ = a.Notifications(ctx)
		case "dismiss":
			if len(args) == 0 {
				printlnFn("Usage: dismiss <n>")
				continue
			}
			_ = a.Dismiss(ctx, args[0])
		case "clear":
			_ = a.Clear(ctx)
		case "status":
			_ = a.Status(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
			continue
		}
		a.afterCommand()
	}
}

func prefixed(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}
