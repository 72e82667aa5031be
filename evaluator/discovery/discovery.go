// Package discovery crawls the public leaderboard pages for ids of
// recently played games.
package discovery

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "snakemind-evaluator/1.0"

var (
	gameIDRe = regexp.MustCompile(`/game/([a-f0-9-]+)`)
	// Player stats pages live at /leaderboard/{arena}/{username}/stats.
	playerRe = regexp.MustCompile(`/leaderboard/[^/]+/([^/]+)/stats`)
	arenaRe  = regexp.MustCompile(`/leaderboard/([^/]+)/?$`)
)

type Config struct {
	LeaderboardURLs []string
	// RequestDelay paces page fetches so the crawl stays polite.
	RequestDelay time.Duration
	// MaxPlayers per leaderboard, 0 for unlimited.
	MaxPlayers int
}

func DefaultConfig() Config {
	return Config{
		LeaderboardURLs: []string{
			"https://play.battlesnake.com/leaderboard/standard",
			"https://play.battlesnake.com/leaderboard/standard-duels",
		},
		RequestDelay: 500 * time.Millisecond,
		MaxPlayers:   50,
	}
}

// Crawler walks leaderboards and player stats pages, emitting game ids
// it has not seen before.
type Crawler struct {
	config  Config
	client  *http.Client
	knownID map[string]bool
}

// NewCrawler seeds the dedupe set with existingIDs; nil means none.
func NewCrawler(config Config, existingIDs map[string]bool) *Crawler {
	if existingIDs == nil {
		existingIDs = make(map[string]bool)
	}
	return &Crawler{
		config:  config,
		client:  &http.Client{Timeout: 30 * time.Second},
		knownID: existingIDs,
	}
}

// Crawl visits every configured leaderboard and sends unseen game ids to
// out. It returns early when ctx is cancelled.
func (c *Crawler) Crawl(ctx context.Context, out chan<- string) error {
	totalNew := 0

	for _, leaderboardURL := range c.config.LeaderboardURLs {
		players, arena, err := c.leaderboardPlayers(leaderboardURL)
		if err != nil {
			log.Printf("[discovery] Error fetching leaderboard %s: %v", leaderboardURL, err)
			continue
		}
		log.Printf("[discovery] Found %d players on %s leaderboard", len(players), arena)

		if c.config.MaxPlayers > 0 && len(players) > c.config.MaxPlayers {
			players = players[:c.config.MaxPlayers]
		}

		for i, p := range players {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			gameIDs, err := c.playerGames(p.statsURL)
			if err != nil {
				log.Printf("[discovery] Error fetching games for %s: %v", p.username, err)
				continue
			}

			newGames := 0
			for _, id := range gameIDs {
				if c.knownID[id] {
					continue
				}
				c.knownID[id] = true

				select {
				case out <- id:
					newGames++
					totalNew++
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			if newGames > 0 {
				log.Printf("[discovery] [%s] player %d/%d %s: %d new games", arena, i+1, len(players), p.username, newGames)
			}

			time.Sleep(c.config.RequestDelay)
		}
	}

	log.Printf("[discovery] Crawl complete, %d new games", totalNew)
	return nil
}

type playerInfo struct {
	username string
	statsURL string
}

func (c *Crawler) fetchDocument(url string) (*goquery.Document, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

func (c *Crawler) leaderboardPlayers(leaderboardURL string) ([]playerInfo, string, error) {
	doc, err := c.fetchDocument(leaderboardURL)
	if err != nil {
		return nil, "", err
	}

	arena := "unknown"
	if matches := arenaRe.FindStringSubmatch(leaderboardURL); len(matches) >= 2 {
		arena = matches[1]
	}

	var players []playerInfo
	seen := make(map[string]bool)

	doc.Find("a[href*='/leaderboard/']").Each(func(i int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}
		matches := playerRe.FindStringSubmatch(href)
		if len(matches) < 2 {
			return
		}
		username := matches[1]
		if seen[username] {
			return
		}
		seen[username] = true
		players = append(players, playerInfo{
			username: username,
			statsURL: "https://play.battlesnake.com" + href,
		})
	})

	return players, arena, nil
}

func (c *Crawler) playerGames(statsURL string) ([]string, error) {
	doc, err := c.fetchDocument(statsURL)
	if err != nil {
		return nil, err
	}

	var gameIDs []string
	seen := make(map[string]bool)

	doc.Find("a[href*='/game/']").Each(func(i int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}
		matches := gameIDRe.FindStringSubmatch(href)
		if len(matches) < 2 {
			return
		}
		id := matches[1]
		if seen[id] {
			return
		}
		seen[id] = true
		gameIDs = append(gameIDs, id)
	})

	return gameIDs, nil
}
