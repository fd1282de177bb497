// seed_schemes.go — standalone script to load a scheme knowledge-base
// export, embed each scheme, and upsert the rows into Postgres.
//
// Usage:
//
//	go run scripts/seed_schemes.go -file knowledge_base.json -db postgres://localhost/matchengine
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/schemesetu/matchengine/internal/retrieval"
	"github.com/schemesetu/matchengine/internal/store"
)

type schemeExport struct {
	SchemeID       string          `json:"scheme_id"`
	SchemeName     string          `json:"scheme_name"`
	DescriptionRaw string          `json:"description_raw"`
	SourceURL      string          `json:"source_url"`
	Eligibility    json.RawMessage `json:"eligibility_structured"`
	EligibilityRaw string          `json:"eligibility_raw"`
	LastUpdated    string          `json:"last_updated"`
}

func main() {
	filePath := flag.String("file", "knowledge_base.json", "path to scheme export JSON")
	dbURL := flag.String("db", os.Getenv("MATCHENGINE_DATABASE_URL"), "Postgres connection URL")
	embedHost := flag.String("embed-host", "http://localhost:11434/v1", "embedding API base URL")
	embedModel := flag.String("embed-model", "nomic-embed-text", "embedding model name")
	embedToken := flag.String("embed-token", "", "embedding API token")
	dryRun := flag.Bool("dry-run", false, "print schemes without writing")
	flag.Parse()

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("read export: %v", err)
	}

	var exports []schemeExport
	if err := json.Unmarshal(data, &exports); err != nil {
		log.Fatalf("parse export: %v", err)
	}
	log.Printf("parsed %d schemes from %s", len(exports), *filePath)

	if *dryRun {
		for i, e := range exports {
			fmt.Printf("[%d] %s %s (updated=%s)\n", i+1, e.SchemeID, e.SchemeName, e.LastUpdated)
		}
		return
	}

	ctx := context.Background()

	db, err := store.NewPostgresStore(ctx, *dbURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer db.Close()

	embedder, err := retrieval.NewOpenAIEmbedder(*embedHost, *embedModel, *embedToken)
	if err != nil {
		log.Fatalf("init embedder: %v", err)
	}

	seeded, skipped := 0, 0
	for _, e := range exports {
		if e.SchemeID == "" || e.SchemeName == "" {
			log.Printf("skip %q: missing scheme_id or scheme_name", e.SchemeName)
			skipped++
			continue
		}

		doc := buildSchemeDoc(e)
		vec, err := embedder.EmbedText(ctx, doc)
		if err != nil {
			log.Printf("skip %s: embed failed: %v", e.SchemeID, err)
			skipped++
			continue
		}

		sc := &store.Scheme{
			SchemeID:       e.SchemeID,
			SchemeName:     e.SchemeName,
			DescriptionRaw: e.DescriptionRaw,
			SourceURL:      e.SourceURL,
			Eligibility:    e.Eligibility,
			EligibilityRaw: e.EligibilityRaw,
			Embedding:      toFloat64(vec),
		}
		if e.LastUpdated != "" {
			t, err := time.Parse("2006-01-02", e.LastUpdated)
			if err != nil {
				log.Printf("scheme %s: bad last_updated %q, storing without date", e.SchemeID, e.LastUpdated)
			} else {
				sc.LastUpdated = &t
			}
		}

		if err := db.UpsertScheme(ctx, sc); err != nil {
			log.Printf("skip %s: upsert failed: %v", e.SchemeID, err)
			skipped++
			continue
		}
		seeded++
	}

	log.Printf("done: %d seeded, %d skipped", seeded, skipped)
}

// buildSchemeDoc assembles the text that gets embedded for retrieval:
// name, description, and the raw eligibility text.
func buildSchemeDoc(e schemeExport) string {
	var b strings.Builder
	b.WriteString(e.SchemeName)
	if e.DescriptionRaw != "" {
		b.WriteString("\n\n")
		b.WriteString(e.DescriptionRaw)
	}
	if e.EligibilityRaw != "" {
		b.WriteString("\n\nEligibility: ")
		b.WriteString(e.EligibilityRaw)
	}
	return b.String()
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
