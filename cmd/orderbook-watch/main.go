package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/betbot/gosdk/pkg/sdk"
	"github.com/betbot/gosdk/pkg/sdk/stream"
	"github.com/betbot/gosdk/pkg/sdk/types"
)

func main() {
	assetID := flag.String("asset", "", "CLOB token id to watch")
	slug := flag.String("slug", "", "resolve token ids from a market slug and watch the first outcome")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	_ = godotenv.Load()

	cfg := &sdk.Config{Debug: *debug}
	if v := os.Getenv("WS_BASE_URL"); v != "" {
		cfg.WSBaseURL = v
	}
	client := sdk.New(cfg)

	target := *assetID
	if target == "" && *slug != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		market, err := client.GetMarketBySlug(ctx, *slug)
		cancel()
		if err != nil {
			log.Fatalf("resolve market %s: %v", *slug, err)
		}
		tokenIDs, err := parseTokenIDs(market.ClobTokenIDs)
		if err != nil {
			log.Fatalf("parse token ids: %v", err)
		}
		target = tokenIDs[0]
		fmt.Printf("watching %s (%s)\n", market.Question, target)
	}
	if target == "" {
		log.Fatal("pass -asset or -slug")
	}

	done := make(chan struct{})
	unsubscribe, err := client.OnOrderbook(target,
		func(u types.OrderbookUpdate) {
			switch u.Type {
			case types.UpdateSnapshot:
				fmt.Printf("[%s] snapshot: %d bids / %d asks\n",
					time.Now().Format("15:04:05"), len(u.Snapshot.Bids), len(u.Snapshot.Asks))
				printTop(u.Snapshot)
			case types.UpdateDelta:
				for _, ch := range u.Delta.Changes {
					fmt.Printf("[%s] %s %s @ %s\n",
						time.Now().Format("15:04:05"), ch.Side, ch.Size, ch.Price)
				}
			}
		},
		stream.WithOnOpen(func() {
			fmt.Println("connected")
		}),
		stream.WithOnError(func(err error) {
			// Fires per decode error as well as on the fatal socket
			// error, so it must not drive shutdown on its own.
			log.Printf("stream error: %v", err)
		}),
		stream.WithOnClose(func() {
			fmt.Println("disconnected")
			close(done)
		}),
	)
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		fmt.Println("shutting down")
	case <-done:
	}
}

// parseTokenIDs decodes the gamma clobTokenIds field, a JSON array
// serialized into a string.
func parseTokenIDs(raw string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("market has no token ids")
	}
	return ids, nil
}

func printTop(book *types.BookSnapshot) {
	if len(book.Bids) > 0 {
		best := book.Bids[len(book.Bids)-1]
		fmt.Printf("  best bid %s x %s\n", best.Price, best.Size)
	}
	if len(book.Asks) > 0 {
		best := book.Asks[len(book.Asks)-1]
		fmt.Printf("  best ask %s x %s\n", best.Price, best.Size)
	}
}
