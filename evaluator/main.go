// Command evaluator downloads real games from the public engine and
// measures how often the heuristic engine agrees with the moves strong
// snakes actually play.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finhall/snakemind/evaluator/discovery"
	"github.com/finhall/snakemind/evaluator/download"
	"github.com/finhall/snakemind/store"
)

func main() {
	resultsPath := flag.String("results-db", getEnvOrDefault("RESULTS_DB", "data/results.db"), "SQLite database for results and dedupe")
	maxPlayers := flag.Int("max-players", getEnvIntOrDefault("MAX_PLAYERS", 50), "Maximum number of players to check per leaderboard")
	maxGames := flag.Int("max-games", getEnvIntOrDefault("MAX_GAMES", 0), "If > 0, stop after evaluating this many games")
	requestDelay := flag.Duration("delay", getEnvDurationOrDefault("DELAY", 500*time.Millisecond), "Delay between HTTP requests")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := store.OpenResultsDB(*resultsPath)
	if err != nil {
		log.Fatalf("Failed to open results db: %v", err)
	}
	defer results.Close()

	existingIDs, err := results.KnownGameIDs()
	if err != nil {
		log.Fatalf("Failed to load known game ids: %v", err)
	}
	log.Printf("Starting evaluator: results=%s known_games=%d max_players=%d", *resultsPath, len(existingIDs), *maxPlayers)

	discConfig := discovery.DefaultConfig()
	discConfig.MaxPlayers = *maxPlayers
	discConfig.RequestDelay = *requestDelay
	crawler := discovery.NewCrawler(discConfig, existingIDs)

	gameIDChan := make(chan string, 1000)
	go func() {
		defer close(gameIDChan)
		if err := crawler.Crawl(ctx, gameIDChan); err != nil && ctx.Err() == nil {
			log.Printf("Discovery error: %v", err)
		}
	}()

	dlConfig := download.DefaultConfig()

	var evaluated, skipped, failed int
	for gameID := range gameIDChan {
		if ctx.Err() != nil {
			break
		}

		info, frames, err := download.DownloadGame(gameID, dlConfig)
		if err != nil {
			failed++
			if failed%50 == 1 {
				log.Printf("Download failures=%d (latest %s: %v)", failed, gameID, err)
			}
			continue
		}
		if len(frames) < 2 {
			skipped++
			continue
		}

		evals := scoreAgreement(gameID, frames, int32(info.Width), int32(info.Height))
		result := store.GameResult{
			ID:     gameID,
			Winner: download.Winner(frames),
			Turns:  len(frames) - 1,
			Source: "scraped",
		}
		if err := results.RecordEvaluations(result, evals); err != nil {
			log.Printf("Failed to record %s: %v", gameID, err)
			continue
		}

		evaluated++
		if evaluated%20 == 0 {
			log.Printf("Progress: evaluated=%d skipped=%d failed=%d", evaluated, skipped, failed)
		}
		if *maxGames > 0 && evaluated >= *maxGames {
			break
		}
	}

	turns, agreed, err := results.AgreementRate()
	if err != nil {
		log.Fatalf("Failed to read agreement totals: %v", err)
	}

	log.Printf("Evaluation complete:")
	log.Printf("  Games evaluated: %d (skipped=%d failed=%d)", evaluated, skipped, failed)
	log.Printf("  Turns scored:    %d", turns)
	if turns > 0 {
		log.Printf("  Agreement:       %.1f%% (%d/%d)", 100*float64(agreed)/float64(turns), agreed, turns)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		var i int
		if _, err := fmt.Sscanf(val, "%d", &i); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
