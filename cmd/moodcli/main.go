// Package main provides the recommendation CLI.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/moodbox/internal/api/connect"
	"github.com/osa030/moodbox/internal/api/wire"
)

var (
	app       = kingpin.New("moodbox-moodcli", "moodbox recommendation client")
	server    = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	userToken = app.Flag("user-token", "Listener access token for personalization").Envar("MOODBOX_USER_TOKEN").String()
	timeout   = app.Flag("timeout", "Request timeout").Default("30s").Duration()

	// recommend command
	recommendCmd = app.Command("recommend", "Get a playlist for a mood").Default()
	moodFlag     = recommendCmd.Flag("mood", "Mood (Happy, Sad, Chill, Energetic, Romantic, Focus)").Short('m').String()
	languageFlag = recommendCmd.Flag("language", "Language class (any, en, hi, ...)").Short('l').Default("any").String()
	limitFlag    = recommendCmd.Flag("limit", "Number of tracks").Short('n').Int()
	excludeFlag  = recommendCmd.Flag("exclude", "Track ID, URL or \"Title - Artist\" to leave out (repeatable)").Short('x').Strings()
	promptArg    = recommendCmd.Arg("prompt", "Free-text description of the mood").Strings()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	client := apiconnect.NewRecommendClient(http.DefaultClient, *server)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch command {
	case recommendCmd.FullCommand():
		recommend(ctx, client, &wire.RecommendRequest{
			Mood:     *moodFlag,
			Prompt:   strings.Join(*promptArg, " "),
			Language: *languageFlag,
			Limit:    *limitFlag,
			Exclude:  *excludeFlag,
		})
	}
}

func recommend(ctx context.Context, client *apiconnect.RecommendClient, req *wire.RecommendRequest) {
	resp, err := client.Recommend(ctx, req, *userToken)
	if err != nil {
		switch connect.CodeOf(err) {
		case connect.CodeInvalidArgument:
			fmt.Printf("Invalid request: %v\n", err)
		case connect.CodeUnauthenticated:
			fmt.Printf("Catalog authentication failed: %v\n", err)
		default:
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("\n=== %s ===\n", strings.ToUpper(resp.Mood))
	if resp.Meta != nil {
		if resp.Meta.Confirmation != "" {
			fmt.Println(resp.Meta.Confirmation)
		}
		if resp.Meta.Comfort != "" {
			fmt.Println(resp.Meta.Comfort)
		}
		fmt.Printf("source=%s language=%s request_id=%s\n", resp.Meta.Source, resp.Meta.Language, resp.Meta.RequestID)
	}
	fmt.Println()

	if len(resp.Tracks) == 0 {
		fmt.Println("No tracks found.")
		return
	}
	for i, t := range resp.Tracks {
		fmt.Printf("%2d. %s - %s\n", i+1, t.Name, strings.Join(t.Artists, ", "))
		if t.Reason != "" {
			fmt.Printf("    %s\n", t.Reason)
		}
		if t.URL != "" {
			fmt.Printf("    %s\n", t.URL)
		}
	}
	fmt.Println()
}
