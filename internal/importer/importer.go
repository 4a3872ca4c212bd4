// Package importer loads markdown flashcards from a directory or a git
// repository into a deck.
package importer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/conorfennell/brainstack/internal/deck"
	"github.com/conorfennell/brainstack/internal/domain"
	"github.com/conorfennell/brainstack/internal/gitsource"
	"github.com/conorfennell/brainstack/internal/parser"
)

// CardImporter stores parsed cards in a deck.
type CardImporter interface {
	ImportCards(ctx context.Context, deckID string, cards []domain.CardContent) (deck.ImportResult, error)
}

// Result describes one import run.
type Result struct {
	deck.ImportResult
	Source      string `json:"source"`
	Files       int    `json:"files"`
	FailedFiles int    `json:"failed_files"`
}

// Importer resolves sources and hands their cards to a CardImporter.
type Importer struct {
	cards    CardImporter
	reposDir string
	log      *zap.Logger
}

// New creates an Importer that checks git sources out under reposDir.
func New(cards CardImporter, reposDir string, log *zap.Logger) *Importer {
	return &Importer{cards: cards, reposDir: reposDir, log: log}
}

// Import reads every .md file under source into the deck. A git URL is
// cloned, or pulled if already present, before it is read.
func (im *Importer) Import(ctx context.Context, deckID, source string) (Result, error) {
	dir := source
	if gitsource.IsGitURL(source) {
		localPath, err := gitsource.LocalPath(im.reposDir, source)
		if err != nil {
			return Result{}, fmt.Errorf("resolving checkout: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(localPath), os.ModePerm); err != nil {
			return Result{}, fmt.Errorf("failed to create repos directory: %w", err)
		}
		if err := gitsource.Sync(ctx, im.log, source, localPath); err != nil {
			return Result{}, err
		}
		dir = localPath
	}

	res, cards, err := im.collect(dir)
	if err != nil {
		return Result{}, err
	}
	res.Source = source

	res.ImportResult, err = im.cards.ImportCards(ctx, deckID, cards)
	if err != nil {
		return Result{}, err
	}

	im.log.Info("import complete",
		zap.String("source", source),
		zap.Int("files", res.Files),
		zap.Int("failed_files", res.FailedFiles),
		zap.Int("added", res.Added),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// collect parses every markdown file under dir. Unreadable files are logged
// and counted, not fatal.
func (im *Importer) collect(dir string) (Result, []domain.CardContent, error) {
	var res Result
	var cards []domain.CardContent

	info, err := os.Stat(dir)
	if err != nil {
		return res, nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return res, nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		res.Files++
		fileCards, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			res.FailedFiles++
			im.log.Warn("failed to parse file", zap.String("path", path), zap.Error(parseErr))
			return nil
		}
		cards = append(cards, fileCards...)
		return nil
	})
	if walkErr != nil {
		return res, nil, fmt.Errorf("failed to walk %s: %w", dir, walkErr)
	}
	return res, cards, nil
}
