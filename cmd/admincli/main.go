// Package main provides the admin CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/moodbox/internal/api/connect"
)

var (
	app     = kingpin.New("moodbox-admincli", "moodbox admin client")
	server  = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token   = app.Flag("token", "Admin token (or set ADMIN_TOKEN env)").Envar("ADMIN_TOKEN").String()
	timeout = app.Flag("timeout", "Request timeout").Default("10s").Duration()

	// stats command
	statsCmd = app.Command("stats", "Show cache statistics").Default()

	// flush command
	flushCmd   = app.Command("flush", "Flush caches")
	flushNames = flushCmd.Arg("names", "Cache names (default: all)").Strings()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if *token == "" {
		fmt.Println("Error: admin token is required (use --token or ADMIN_TOKEN env)")
		os.Exit(1)
	}

	client := apiconnect.NewAdminClient(http.DefaultClient, *server, *token)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch command {
	case statsCmd.FullCommand():
		stats(ctx, client)
	case flushCmd.FullCommand():
		flush(ctx, client, *flushNames)
	}
}

func stats(ctx context.Context, client *apiconnect.AdminClient) {
	resp, err := client.CacheStats(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n=== CACHES ===")
	fmt.Printf("%-20s %10s %10s %10s %8s\n", "NAME", "ENTRIES", "HITS", "MISSES", "HIT%")
	for _, c := range resp.Caches {
		if c.Error != "" {
			fmt.Printf("%-20s error: %s\n", c.Name, c.Error)
			continue
		}
		fmt.Printf("%-20s %10d %10d %10d %7.1f%%\n", c.Name, c.Entries, c.Hits, c.Misses, hitRate(c.Hits, c.Misses))
	}
	fmt.Println()
}

func flush(ctx context.Context, client *apiconnect.AdminClient, names []string) {
	resp, err := client.FlushCaches(ctx, names)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if !resp.Success {
		fmt.Printf("✗ %s (flushed before failure: %v)\n", resp.Message, resp.Flushed)
		os.Exit(1)
	}
	fmt.Printf("✓ %s: %v\n", resp.Message, resp.Flushed)
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}
