// Command-line chat client for the starlit backend
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"starlit/starlit/client"
	"starlit/starlit/types"
	"starlit/starlit/utils/logging"

	"go.uber.org/zap"
)

const defaultModel = "llama-3.1-8b-instant"

func main() {
	logging.InitLogger()

	args := os.Args[1:]
	if len(args) < 2 || args[0] != "chat" {
		fmt.Println("starlit CLI usage:")
		fmt.Println("  starlit chat <username> [server-url]")
		os.Exit(1)
	}
	username := args[1]
	baseURL := "http://localhost:5000"
	if len(args) >= 3 {
		baseURL = args[2]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	token, err := client.Login(ctx, baseURL, username)
	cancel()
	if err != nil {
		logging.ErrorLogger.Error("login error", zap.Error(err))
		fmt.Println("login failed:", err)
		os.Exit(1)
	}

	c := client.NewChatClient(baseURL, token)
	c.Notify = func(note types.Notification) {
		fmt.Printf("\n%s\n%s> ", note.Answer, username)
	}
	if err := c.Connect(context.Background()); err != nil {
		logging.ErrorLogger.Error("socket connect error", zap.Error(err))
		fmt.Println("could not subscribe to notifications:", err)
		os.Exit(1)
	}
	defer c.Close()

	if err := c.LoadHistory(context.Background()); err != nil {
		fmt.Println("could not load history:", err)
	}
	for _, e := range c.Transcript().Entries() {
		fmt.Println(">", e.Query)
		if e.Answer != nil {
			fmt.Println(*e.Answer)
		}
	}

	fmt.Printf("\nConnected as %s. Type your question or 'exit' to quit.\n\n", username)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("%s> ", username)
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			break
		}
		if line == "" {
			continue
		}

		// the answer is printed by the notification hook; Send only
		// surfaces failures
		if _, err := c.Send(context.Background(), line, defaultModel); err != nil {
			fmt.Println("send failed:", err)
		}
	}
}
