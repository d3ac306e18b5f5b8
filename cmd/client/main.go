package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chat-relay/client"
	"chat-relay/domain"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config is read from CHAT_* variables.
type Config struct {
	ServerURL string `envconfig:"SERVER_URL" default:"http://localhost:8080"`
	Username  string `envconfig:"USERNAME" required:"true"`
	Password  string `envconfig:"PASSWORD" required:"true"`
	Color     string `envconfig:"COLOR" default:"#2aa198"`
	History   int    `envconfig:"HISTORY" default:"1"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.Red.Sprintf("Client error: %v", err))
	}
	os.Exit(code)
}

func run() (int, error) {
	var config Config
	if err := envconfig.Process("CHAT", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relay, err := client.New(config.ServerURL, nil)
	if err != nil {
		return exitConfig, err
	}
	if _, err := relay.Login(ctx, config.Username, config.Password); err != nil {
		return exitRuntime, fmt.Errorf("login failed: %w", err)
	}

	if err := printHistory(ctx, relay, config.History); err != nil {
		return exitRuntime, err
	}

	conn, err := relay.Connect(ctx)
	if err != nil {
		return exitRuntime, err
	}
	defer func() { _ = conn.Close() }()

	if err := conn.Join(config.Username); err != nil {
		return exitRuntime, err
	}
	color.Green.Printf(">>> Connected to %s as %s (/help for commands, Ctrl+C to quit)\n", config.ServerURL, config.Username)

	received := make(chan error, 1)
	go func() { received <- receive(conn) }()

	typed := make(chan error, 1)
	go func() { typed <- readInput(ctx, os.Stdin, relay, conn, config) }()

	select {
	case <-ctx.Done():
		return exitOK, nil
	case err := <-typed:
		if err != nil {
			return exitRuntime, err
		}
		return exitOK, nil
	case err := <-received:
		if ctx.Err() != nil {
			return exitOK, nil
		}
		return exitRuntime, fmt.Errorf("connection lost: %w", err)
	}
}

func receive(conn *client.Conn) error {
	for {
		event, err := conn.Next()
		if err != nil {
			return err
		}
		printEvent(event)
	}
}

func readInput(ctx context.Context, in io.Reader, relay *client.Client, conn *client.Conn, config Config) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			if err := conn.Broadcast(line, config.Color); err != nil {
				return err
			}
			continue
		}
		fields := strings.SplitN(line, " ", 3)
		switch fields[0] {
		case "/quit":
			return nil
		case "/help":
			fmt.Println("/w <user> <text>   private message\n/online            present users\n/history [user]    public history or conversation\n/search <text>     full-text search\n/typing            notify typing\n/quit")
		case "/w":
			if len(fields) < 3 {
				color.Red.Println("usage: /w <user> <text>")
				continue
			}
			if err := conn.Private(fields[1], fields[2], config.Color); err != nil {
				return err
			}
		case "/typing":
			if err := conn.Typing(); err != nil {
				return err
			}
		case "/online":
			usernames, err := relay.OnlineUsers(ctx)
			if err != nil {
				color.Red.Println(err)
				continue
			}
			table := newTable("Online")
			for _, username := range usernames {
				table.Append([]string{username})
			}
			table.Render()
		case "/history":
			if len(fields) == 1 {
				if err := printHistory(ctx, relay, 1); err != nil {
					color.Red.Println(err)
				}
				continue
			}
			messages, err := relay.PrivateHistory(ctx, config.Username, fields[1])
			if err != nil {
				color.Red.Println(err)
				continue
			}
			printMessages(messages)
		case "/search":
			if len(fields) < 2 {
				color.Red.Println("usage: /search <text>")
				continue
			}
			messages, err := relay.Search(ctx, strings.Join(fields[1:], " "))
			if err != nil {
				color.Red.Println(err)
				continue
			}
			printMessages(messages)
		default:
			color.Red.Printf("unknown command %s\n", fields[0])
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// printHistory prints up to pages pages of public history, oldest first.
func printHistory(ctx context.Context, relay *client.Client, pages int) error {
	var all []domain.Message
	var cursor *string
	for i := 0; i < pages; i++ {
		messages, next, err := relay.PublicHistory(ctx, cursor)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		all = append(all, messages...)
		if next == nil {
			break
		}
		cursor = next
	}
	// Pages come newest first; print oldest first.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	printMessages(all)
	return nil
}

func printMessages(messages []domain.Message) {
	if len(messages) == 0 {
		color.Gray.Println("(no messages)")
		return
	}
	table := newTable("Time", "From", "To", "Content")
	for _, msg := range messages {
		table.Append([]string{msg.Timestamp.Local().Format(time.DateTime), msg.Sender, msg.Receiver, msg.Content})
	}
	table.Render()
}

func printEvent(event client.Event) {
	switch {
	case event.Error != "":
		color.Red.Printf("! %s\n", event.Error)
	case event.Outcome != "":
		color.Yellow.Printf("! %s: %s\n", event.Action, event.Outcome)
	case event.Message != nil:
		printMessage(*event.Message)
	}
}

func printMessage(msg domain.Message) {
	at := msg.Timestamp.Local().Format(time.TimeOnly)
	switch msg.Kind {
	case domain.KindJoin:
		color.Gray.Printf("[%s] %s joined\n", at, msg.Sender)
	case domain.KindLeave:
		color.Gray.Printf("[%s] %s left\n", at, msg.Sender)
	case domain.KindTyping:
		color.Gray.Printf("%s is typing...\n", msg.Sender)
	case domain.KindPrivateMessage:
		color.Magenta.Printf("[%s] %s -> %s: %s\n", at, msg.Sender, msg.Receiver, msg.Content)
	default:
		sender := msg.Sender
		if msg.Color != "" {
			sender = color.HEX(msg.Color).Sprint(msg.Sender)
		}
		fmt.Printf("[%s] %s: %s\n", at, sender, msg.Content)
	}
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
