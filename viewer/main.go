// Command viewer serves aggregate statistics over the arena's parquet
// archives, querying them in place with DuckDB.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type server struct {
	cache *DBCache
}

func main() {
	listen := flag.String("listen", ":8090", "HTTP listen address")
	roots := flag.String("roots", "data/arena", "Comma-separated parquet root directories")
	refresh := flag.Duration("refresh", 30*time.Second, "How often to re-glob the parquet roots")
	flag.Parse()

	rootList := strings.Split(*roots, ",")
	cache := NewDBCache(rootList, *refresh)
	defer cache.Close()

	s := &server{cache: cache}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/games", s.handleGames)

	log.Printf("Viewer listening on %s (roots=%v)", *listen, rootList)
	httpServer := &http.Server{
		Addr:              *listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	games, err := s.cache.GetGamesIndex(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, buildStats(games))
}

func (s *server) handleGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.cache.GetGamesIndex(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	limit := queryInt(r, "limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	page := paginateGames(games, limit, offset, r.URL.Query().Get("sort"), r.URL.Query().Get("dir"))
	writeJSON(w, GamesResponse{Total: len(games), Games: page})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
