// streamtest connects to a running sentry's stream port and prints the
// frames it broadcasts. Useful for eyeballing alert flow without a
// presentation client.
//
// Usage: go run ./cmd/streamtest --url ws://localhost:8091/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	url := flag.String("url", "ws://localhost:8091/", "sentry stream URL")
	verbose := flag.Bool("verbose", false, "print full frame JSON")
	mode := flag.String("mode", "", "switch delivery mode on connect (AUTO or MANUAL)")
	filter := flag.String("filter", "", "set a symbol filter on connect")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, *url, nil)
	if err != nil {
		logger.Error("failed to connect", "url", *url, "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	logger.Info("connected", "url", *url)

	if *mode != "" {
		send(conn, map[string]any{"type": "set_mode", "mode": *mode})
	}
	if *filter != "" {
		send(conn, map[string]any{"type": "set_filter", "symbol": *filter})
	}

	go func() {
		<-ctx.Done()
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ctx.Done():
				logger.Info("disconnected")
				return
			default:
				logger.Error("read failed", "error", err)
				os.Exit(1)
			}
		}

		if *verbose {
			fmt.Println(string(data))
			continue
		}
		printFrame(data)
	}
}

func send(conn *websocket.Conn, frame map[string]any) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	conn.WriteMessage(websocket.TextMessage, data)
}

// printFrame renders a one-line summary per frame type.
func printFrame(data []byte) {
	var frame map[string]any
	if err := json.Unmarshal(data, &frame); err != nil {
		fmt.Println(string(data))
		return
	}

	switch frame["type"] {
	case "alert_ready":
		fmt.Printf("[%s] %s  %s  %s\n",
			frame["impact"], frame["symbol"], frame["headline"], frame["verdict"])
	case "queue_depth":
		fmt.Printf("queue depth: %v\n", frame["depth"])
	case "universe_sync":
		fmt.Printf("universe synced: %v symbols\n", frame["symbols"])
	case "price":
		fmt.Printf("%s %v (prev %v)\n", frame["symbol"], frame["price"], frame["prev_price"])
	default:
		fmt.Println(string(data))
	}
}
