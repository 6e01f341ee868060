package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/johnquangdev/yt-rag-engine/internal/adapter/repository"
	"github.com/johnquangdev/yt-rag-engine/internal/domain/entities"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/cache"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/database"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/embedding"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/llm"
	"github.com/johnquangdev/yt-rag-engine/internal/infrastructure/external/vectorstore"
	"github.com/johnquangdev/yt-rag-engine/internal/usecase/retrieval"
	"github.com/johnquangdev/yt-rag-engine/pkg/config"
)

func main() {
	app := &cli.App{
		Name:  "ytragctl",
		Usage: "Operate the YouTube RAG ingestion and retrieval pipeline",
		Commands: []*cli.Command{
			{
				Name:      "submit",
				Usage:     "Queue a YouTube URL for ingestion",
				ArgsUsage: "<youtube-url>",
				Action:    submitCommand,
			},
			{
				Name:      "status",
				Usage:     "Show a submission's current pipeline stage",
				ArgsUsage: "<submission-id>",
				Action:    statusCommand,
			},
			{
				Name:  "list",
				Usage: "List recent submissions, optionally filtered by status",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Value: ""},
					&cli.IntFlag{Name: "limit", Value: 20},
				},
				Action: listCommand,
			},
			{
				Name:      "query",
				Usage:     "Ask a question against the indexed transcripts",
				ArgsUsage: "<question>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "variant", Value: string(entities.VariantHybrid), Usage: "retrieval variant: semantic, hybrid, hybrid+rerank, rewrite+hybrid+rerank"},
				},
				Action: queryCommand,
			},
			{
				Name:  "evaluate",
				Usage: "Print feedback-driven satisfaction scores per retrieval variant",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "since", Value: 7 * 24 * time.Hour, Usage: "lookback window"},
				},
				Action: evaluateCommand,
			},
			{
				Name:      "evaluate-retrieval",
				Usage:     "Score retrieval variants against a curated (query, expected-chunk-id) set",
				ArgsUsage: "<ground-truth.json>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "k", Value: 3, Usage: "cutoff for hit-rate@k"},
				},
				Action: evaluateRetrievalCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadDB() (*config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, func() { database.CloseDB(db) }, nil
}

func submitCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: submit <youtube-url>")
	}
	url := c.Args().First()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	submissions := repository.NewSubmissionRepository(db)
	sub := entities.NewSubmission(entities.SourceYouTubeURL, url, "", "cli")
	if err := submissions.Create(c.Context, sub); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}

	fmt.Printf("submitted %s (id=%s)\n", url, sub.ID)
	return nil
}

func statusCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: status <submission-id>")
	}
	id, err := parseUUID(c.Args().First())
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	submissions := repository.NewSubmissionRepository(db)
	sub, err := submissions.GetByID(c.Context, id)
	if err != nil {
		return fmt.Errorf("lookup submission: %w", err)
	}

	fmt.Printf("id:       %s\n", sub.ID)
	fmt.Printf("source:   %s (%s)\n", sub.Source, sub.SourceURL)
	fmt.Printf("stage:    %s\n", sub.Stage)
	fmt.Printf("status:   %s\n", sub.Status)
	fmt.Printf("attempts: %d\n", sub.AttemptCount)
	if sub.LastError != "" {
		fmt.Printf("error:    %s\n", sub.LastError)
	}
	return nil
}

func listCommand(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	submissions := repository.NewSubmissionRepository(db)
	status := entities.StatusPending
	if s := c.String("status"); s != "" {
		status = entities.SubmissionStatus(s)
	}

	subs, err := submissions.ListByStatus(c.Context, status, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tSTAGE\tSTATUS\tATTEMPTS")
	for _, s := range subs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", s.ID, s.Source, s.Stage, s.Status, s.AttemptCount)
	}
	return w.Flush()
}

func queryCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: query <question>")
	}
	question := c.Args().First()

	cfg, cleanup, err := loadDB()
	if err != nil {
		return err
	}
	defer cleanup()

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	vectorStore, err := vectorstore.Open(cfg.Storage.DataRoot + "/vectors")
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer vectorStore.Close()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	chunkRepo := repository.NewChunkRepository(db)
	queryRepo := repository.NewQueryRepository(db)
	embeddingClient := embedding.NewClient(&cfg.Embedding)
	llmClient := llm.NewClient(&cfg.LLM)

	searcher := retrieval.NewHybridSearcher(vectorStore, embeddingClient, chunkRepo, &cfg.Retrieval)
	reranker := retrieval.NewReranker()
	rewriter := retrieval.NewQueryRewriter(llmClient, cfg.Retrieval.RewriteCount)
	engine := retrieval.NewEngine(rewriter, searcher, reranker, llmClient, queryRepo, redisClient, &cfg.Retrieval)

	answer, err := engine.Answer(c.Context, question, "cli", entities.RetrievalVariant(c.String("variant")))
	if err != nil {
		return fmt.Errorf("answer query: %w", err)
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, s := range answer.Sources {
			fmt.Printf("  - submission %s [%.0fs-%.0fs]\n", s.SubmissionID, s.StartSecs, s.EndSecs)
		}
	}
	return nil
}

func evaluateCommand(c *cli.Context) error {
	cfg, cleanup, err := loadDB()
	if err != nil {
		return err
	}
	defer cleanup()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	queries := repository.NewQueryRepository(db)
	feedbacks := repository.NewFeedbackRepository(db)
	evaluator := retrieval.NewEvaluator(queries, feedbacks, nil)

	since := time.Now().Add(-c.Duration("since"))
	scores, err := evaluator.ScoreWindow(c.Context, since)
	if err != nil {
		return fmt.Errorf("score window: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tASKED\tPOSITIVE\tNEGATIVE\tREFUSAL RATE\tSATISFACTION")
	for _, s := range scores {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.2f\t%.2f\n", s.Variant, s.QueriesAsked, s.Positive, s.Negative, s.RefusalRate, s.SatisfactionRate)
	}
	return w.Flush()
}

func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// groundTruthFile is the curated (query, expected-chunk-id) set an operator
// hand-maintains and feeds to evaluate-retrieval, one entry per test case.
type groundTruthFile struct {
	Cases []struct {
		Query            string   `json:"query"`
		ExpectedChunkIDs []string `json:"expected_chunk_ids"`
	} `json:"cases"`
}

func evaluateRetrievalCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: evaluate-retrieval <ground-truth.json>")
	}

	raw, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("read ground-truth file: %w", err)
	}
	var gt groundTruthFile
	if err := json.Unmarshal(raw, &gt); err != nil {
		return fmt.Errorf("parse ground-truth file: %w", err)
	}
	cases := make([]retrieval.GroundTruthCase, len(gt.Cases))
	for i, tc := range gt.Cases {
		cases[i] = retrieval.GroundTruthCase{Query: tc.Query, ExpectedChunkIDs: tc.ExpectedChunkIDs}
	}

	cfg, cleanup, err := loadDB()
	if err != nil {
		return err
	}
	defer cleanup()

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	vectorStore, err := vectorstore.Open(cfg.Storage.DataRoot + "/vectors")
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer vectorStore.Close()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	chunkRepo := repository.NewChunkRepository(db)
	queryRepo := repository.NewQueryRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	embeddingClient := embedding.NewClient(&cfg.Embedding)
	llmClient := llm.NewClient(&cfg.LLM)

	searcher := retrieval.NewHybridSearcher(vectorStore, embeddingClient, chunkRepo, &cfg.Retrieval)
	reranker := retrieval.NewReranker()
	rewriter := retrieval.NewQueryRewriter(llmClient, cfg.Retrieval.RewriteCount)
	engine := retrieval.NewEngine(rewriter, searcher, reranker, llmClient, queryRepo, redisClient, &cfg.Retrieval)
	evaluator := retrieval.NewEvaluator(queryRepo, feedbackRepo, engine)

	variants := []entities.RetrievalVariant{
		entities.VariantSemantic,
		entities.VariantHybrid,
		entities.VariantHybridRerank,
		entities.VariantRewriteHybridRerank,
	}
	report, err := evaluator.EvaluateRetrieval(c.Context, cases, variants, c.Int("k"))
	if err != nil {
		return fmt.Errorf("evaluate retrieval: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tCASES\tHIT-RATE@K\tMRR")
	for _, m := range report {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\n", m.Variant, m.Cases, m.HitRateAtK, m.MRR)
	}
	return w.Flush()
}
