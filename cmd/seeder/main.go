package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/poiesic/recallit"
	"github.com/poiesic/recallit/core"
)

// Seed conversations, two speakers each. Odd entries are the reply.
var conversations = map[string][]string{
	"Release planning": {
		"When is the next release going out?",
		"We cut the release branch Thursday and ship Friday after the review.",
		"Is the migration script included?",
		"Yes, it runs automatically before the rollout.",
	},
	"Oncall handoff": {
		"Anything I should watch this week?",
		"The ingestion queue backed up twice last week, keep an eye on the lag dashboard.",
		"Did we find a root cause?",
		"A slow downstream embedder. There is a retry with backoff in place now.",
	},
	"Database sizing": {
		"How big is the vector index getting?",
		"About two million units. Badger handles it fine but compaction pauses are visible.",
		"Should we move to Postgres?",
		"The pgvector backend is ready, we just need a migration window.",
	},
	"Standup notes": {
		"What did you finish yesterday?",
		"The citation renumbering and the snippet fallback for when the generator is down.",
		"What is next?",
		"Wiring the reembed command so model upgrades do not require a reingest.",
	},
	"Weekend plans": {
		"Are you around Saturday?",
		"Heading to the lake with the kids, back Sunday evening.",
		"Nice, bring a jacket, the forecast looks windy.",
		"Will do. See you Monday.",
	},
}

var (
	seedFileName = flag.String("src", "", "chat export JSON file to ingest instead of the built-in seed data")
	dbPath       = flag.String("db", "./recallit_db", "BadgerDB index directory")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// seedTranscripts builds transcripts from the built-in conversations,
// alternating the two speakers turn by turn. Titles are sorted so each
// chat_id always names the same conversation across runs.
func seedTranscripts() []core.Transcript {
	transcripts := make([]core.Transcript, 0, len(conversations))
	created := time.Now().UTC().Format(time.RFC3339)

	titles := make([]string, 0, len(conversations))
	for title := range conversations {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	for i, title := range titles {
		lines := conversations[title]
		t := core.Transcript{
			ChatEngine:  "seeder",
			ChatAccount: "seed@example.com",
			ChatID:      fmt.Sprintf("seed-%03d", i+1),
			Title:       title,
			Created:     created,
		}
		for j, line := range lines {
			speaker := "alice"
			if j%2 == 1 {
				speaker = "bob"
			}
			t.Turns = append(t.Turns, core.Turn{
				TurnID:  fmt.Sprintf("t%d", j+1),
				Speaker: speaker,
				Text:    line,
			})
		}
		transcripts = append(transcripts, t)
	}
	return transcripts
}

func main() {
	flag.Parse()
	service, err := recallit.NewService(*dbPath)
	if err != nil {
		panic(err)
	}
	defer service.Close()

	ctx := context.Background()

	if *seedFileName != "" {
		f, err := os.Open(*seedFileName)
		if err != nil {
			panic(err)
		}
		defer f.Close()

		reports, err := service.IngestDocument(ctx, f)
		if err != nil {
			panic(err)
		}
		for _, report := range reports {
			slog.Info("ingested", "chat", report.ChatID, "label", report.Label, "units", report.UnitsWritten)
		}
		return
	}

	pipeline, err := service.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	for _, t := range seedTranscripts() {
		report, err := pipeline.IngestTranscript(ctx, t)
		if err != nil {
			panic(err)
		}
		slog.Info("ingested", "chat", report.ChatID, "label", report.Label, "units", report.UnitsWritten)
	}
}
