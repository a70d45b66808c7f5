package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/betbot/gosdk/pkg/config"
	"github.com/betbot/gosdk/pkg/sdk"
)

func main() {
	configPath := flag.String("config", "", "path to a yaml/json config file")
	marketID := flag.String("id", "", "fetch one market by id")
	slug := flag.String("slug", "", "fetch one market by slug")
	flag.Parse()

	// .env is optional, used for base URL overrides during development.
	_ = godotenv.Load()

	cfg := &sdk.Config{}
	if *configPath != "" {
		file, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg, err = file.SDKConfig()
		if err != nil {
			log.Fatalf("build config: %v", err)
		}
	}
	if v := os.Getenv("META_BASE_URL"); v != "" {
		cfg.MetaBaseURL = v
	}

	client := sdk.New(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch {
	case *marketID != "":
		market, err := client.GetMarket(ctx, *marketID)
		if err != nil {
			log.Fatalf("get market: %v", err)
		}
		printMarket(market.Question, market.Slug, market.BestBid, market.BestAsk, market.Volume)
	case *slug != "":
		market, err := client.GetMarketBySlug(ctx, *slug)
		if err != nil {
			log.Fatalf("get market by slug: %v", err)
		}
		printMarket(market.Question, market.Slug, market.BestBid, market.BestAsk, market.Volume)
	default:
		markets, err := client.GetMarkets(ctx)
		if err != nil {
			log.Fatalf("list markets: %v", err)
		}
		fmt.Printf("%d active markets\n\n", len(markets))
		for _, m := range markets {
			printMarket(m.Question, m.Slug, m.BestBid, m.BestAsk, m.Volume)
		}
	}
}

func printMarket(question, slug string, bestBid, bestAsk float64, volume string) {
	fmt.Printf("%s\n", question)
	fmt.Printf("  slug=%s bid=%.3f ask=%.3f volume=%s\n", slug, bestBid, bestAsk, volume)
}
