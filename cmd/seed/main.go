package main

import (
	"context"
	"flag"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"bookdoc/internal/book"
	"bookdoc/internal/config"
	"bookdoc/internal/ingest"
	"bookdoc/internal/platform/openlibrary"
	"bookdoc/internal/platform/postgres"
)

func main() {
	var (
		source      = flag.String("source", "fake", "Where books come from: fake or openlibrary")
		count       = flag.Int("books", 100, "Number of fake books to insert")
		maxComments = flag.Int("comments", 3, "Maximum fake comments per book")
		seed        = flag.Int64("seed", 0, "Random seed, 0 for a random one")
		subjects    = flag.String("subjects", "science_fiction,classics", "Open Library subjects, comma separated")
		perSubject  = flag.Int("per-subject", 50, "Open Library results per subject")
	)
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	repo := book.NewPostgresRepo(pool, cfg.DBTimeout)
	start := time.Now()

	switch *source {
	case "fake":
		gofakeit.Seed(*seed)
		seedFake(ctx, logger, repo, *count, *maxComments)
	case "openlibrary":
		client := openlibrary.NewClient("bookdoc-seed/1.0", 1, 3)
		svc := ingest.NewService(client, repo, logger, ingest.Config{
			Subjects:   config.SplitList(*subjects),
			PerSubject: *perSubject,
		})
		res, err := svc.Run(ctx)
		if err != nil {
			logger.Fatal("import failed", zap.Int("imported", res.Imported), zap.Error(err))
		}
		logger.Info("import complete", zap.Int("found", res.Found), zap.Int("imported", res.Imported), zap.Int("skipped", res.Skipped))
	default:
		logger.Fatal("unknown source", zap.String("source", *source))
	}

	total, err := repo.Count(ctx)
	if err != nil {
		logger.Fatal("count books", zap.Error(err))
	}
	logger.Info("seed complete", zap.Int("total_books", total), zap.Duration("took", time.Since(start)))
}

func seedFake(ctx context.Context, logger *zap.Logger, repo *book.PostgresRepo, count, maxComments int) {
	comments := 0
	logger.Info("generating books", zap.Int("count", count))
	for i := 0; i < count; i++ {
		b := book.Book{
			Title:  gofakeit.BookTitle(),
			Author: gofakeit.BookAuthor(),
			Year:   gofakeit.Number(1850, time.Now().Year()),
		}
		if _, err := repo.Create(ctx, &b); err != nil {
			logger.Fatal("failed to insert book", zap.Int("index", i), zap.Error(err))
		}

		for j := gofakeit.Number(0, maxComments); j > 0; j-- {
			c := book.Comment{BookID: b.ID, Body: gofakeit.Sentence(12)}
			if err := repo.CreateComment(ctx, &c); err != nil {
				logger.Fatal("failed to insert comment", zap.String("book_id", b.ID), zap.Error(err))
			}
			comments++
		}

		if (i+1)%100 == 0 {
			logger.Info("progress", zap.Int("inserted", i+1), zap.Int("total", count))
		}
	}
	logger.Info("fake data inserted", zap.Int("books", count), zap.Int("comments", comments))
}
