package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"FuelPricer/internal/di"
	"FuelPricer/internal/domain/models"
	"FuelPricer/pkg/config"
)

// One-shot CLI: reads a decision context JSON file, prices it against
// the configured history and model service, and prints the
// recommendation to stdout.
func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config/config.yaml", "config file path")
	todayPath := flag.String("today", "data/today_example.json", "decision context JSON file")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	req, err := readToday(*todayPath)
	if err != nil {
		log.Fatalf("read decision context: %v", err)
	}

	rec, err := di.InitializeRecommender(cfg)
	if err != nil {
		log.Fatalf("initialization failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := rec.Refresh(ctx); err != nil {
		log.Fatalf("load history: %v", err)
	}

	result, err := rec.RecommendToday(ctx, req)
	if err != nil {
		log.Fatalf("recommend: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("encode result: %v", err)
	}
	fmt.Println(string(out))
}

func readToday(path string) (*models.RecommendRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var req models.RecommendRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &req, nil
}
