package ingest

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"bookdoc/internal/book"
	"bookdoc/internal/platform/openlibrary"
)

type Service struct {
	client Searcher
	books  BookCreator
	logger *zap.Logger
	cfg    Config
}

func NewService(client Searcher, books BookCreator, logger *zap.Logger, cfg Config) *Service {
	return &Service{client: client, books: books, logger: logger, cfg: cfg}
}

// Run searches every configured subject and stores each work once. Works
// without a title, author or publication year are skipped. A failed search
// stops the run; a failed insert does too, since it means storage is down.
func (s *Service) Run(ctx context.Context) (Result, error) {
	var res Result
	seen := make(map[string]bool)

	for _, subject := range s.cfg.Subjects {
		found, err := s.client.SearchBooks(ctx, subject, s.cfg.PerSubject)
		if err != nil {
			return res, err
		}
		s.logger.Info("subject searched", zap.String("subject", subject), zap.Int("docs", len(found.Docs)))

		for _, doc := range found.Docs {
			res.Found++
			b, ok := toBook(doc)
			if !ok || seen[dedupKey(b)] {
				res.Skipped++
				continue
			}
			seen[dedupKey(b)] = true

			if _, err := s.books.Create(ctx, &b); err != nil {
				return res, err
			}
			res.Imported++
		}
	}
	return res, nil
}

func toBook(doc openlibrary.Doc) (book.Book, bool) {
	title := strings.TrimSpace(doc.Title)
	if title == "" || len(doc.AuthorNames) == 0 || doc.FirstPublishYear <= 0 {
		return book.Book{}, false
	}
	author := strings.TrimSpace(doc.AuthorNames[0])
	if author == "" {
		return book.Book{}, false
	}
	return book.Book{Title: title, Author: author, Year: doc.FirstPublishYear}, true
}

func dedupKey(b book.Book) string {
	return strings.ToLower(b.Title) + "\x00" + strings.ToLower(b.Author)
}
