package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/Mohamadaloreibi/matchai-talent-finder/app"
	"github.com/Mohamadaloreibi/matchai-talent-finder/app/config"
	"github.com/Mohamadaloreibi/matchai-talent-finder/app/models"
)

// Runs a single CV match from the command line, bypassing HTTP and the
// usage ledger. Handy for iterating on prompts.
func main() {
	cvPath := flag.String("cv", "", "path to a CV text file")
	jobPath := flag.String("job", "", "path to a job description text file")
	flag.Parse()

	if *cvPath == "" || *jobPath == "" {
		log.Fatal("usage: match-local -cv cv.txt -job job.txt")
	}

	cvText, err := os.ReadFile(*cvPath)
	if err != nil {
		log.Fatalf("failed to read CV file: %v", err)
	}
	jobText, err := os.ReadFile(*jobPath)
	if err != nil {
		log.Fatalf("failed to read job description file: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.AI.TimeoutSeconds)*time.Second)
	defer cancel()

	assistant, err := app.NewGeminiAssistant(ctx, cfg.AI.APIKey, cfg.AI.Model)
	if err != nil {
		log.Fatalf("failed to init gemini assistant: %v", err)
	}

	analysis, err := assistant.MatchCV(ctx, models.MatchRequest{
		CVText:         string(cvText),
		JobDescription: string(jobText),
	})
	if err != nil {
		log.Fatalf("match failed: %v", err)
	}

	out, _ := json.MarshalIndent(analysis, "", "  ")
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))
	log.Printf("Took %s", time.Since(start))
}
