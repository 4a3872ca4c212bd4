package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // Registers the postgres driver
	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/conorfennell/brainstack/internal/domain"
)

// Supported values for the database driver setting.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// DB is a Gateway backed by a SQL database. The whole state is rewritten
// inside one transaction on every save.
type DB struct {
	conn *sqlx.DB
}

// Open connects to the database and ensures the schema is up to date.
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// One writer at a time; also keeps ":memory:" databases on a single connection.
		conn.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

type userRow struct {
	ID                 string `db:"id"`
	Name               string `db:"name"`
	CreatedAt          string `db:"created_at"`
	TotalCardsStudied  int    `db:"total_cards_studied"`
	TotalCorrect       int    `db:"total_correct"`
	TotalStudySessions int    `db:"total_study_sessions"`
}

type deckRow struct {
	ID          string `db:"id"`
	Seq         int    `db:"seq"`
	Name        string `db:"name"`
	Description string `db:"description"`
	CreatedAt   string `db:"created_at"`
}

type cardRow struct {
	ID           string `db:"id"`
	DeckID       string `db:"deck_id"`
	Seq          int    `db:"seq"`
	Front        string `db:"front"`
	Back         string `db:"back"`
	CreatedAt    string `db:"created_at"`
	TimesStudied int    `db:"times_studied"`
	TimesCorrect int    `db:"times_correct"`
}

type testRow struct {
	ID          string          `db:"id"`
	Seq         int             `db:"seq"`
	DeckID      string          `db:"deck_id"`
	DeckName    string          `db:"deck_name"`
	IsCompleted bool            `db:"is_completed"`
	Score       sql.NullFloat64 `db:"score"`
	CreatedAt   string          `db:"created_at"`
	CompletedAt sql.NullString  `db:"completed_at"`
}

type questionRow struct {
	ID            string         `db:"id"`
	TestID        string         `db:"test_id"`
	Seq           int            `db:"seq"`
	Question      string         `db:"question"`
	CorrectAnswer string         `db:"correct_answer"`
	UserAnswer    sql.NullString `db:"user_answer"`
	IsCorrect     sql.NullBool   `db:"is_correct"`
}

// LoadAll reads every entity inside one transaction so the snapshot is consistent.
func (db *DB) LoadAll(ctx context.Context) (*domain.State, error) {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin load: %w", domain.ErrIO, err)
	}
	defer tx.Rollback()

	state, err := loadState(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIO, err)
	}
	return state, nil
}

func loadState(ctx context.Context, tx *sqlx.Tx) (*domain.State, error) {
	state := &domain.State{}

	var u userRow
	err := tx.GetContext(ctx, &u, `
		SELECT id, name, created_at, total_cards_studied, total_correct, total_study_sessions
		FROM users ORDER BY id LIMIT 1
	`)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		state.User = domain.NewUser()
	case err != nil:
		return nil, fmt.Errorf("failed to load user: %w", err)
	default:
		createdAt, err := parseTime(u.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse user created_at: %w", err)
		}
		state.User = domain.User{
			ID:                 u.ID,
			Name:               u.Name,
			CreatedAt:          createdAt,
			TotalCardsStudied:  u.TotalCardsStudied,
			TotalCorrect:       u.TotalCorrect,
			TotalStudySessions: u.TotalStudySessions,
		}
	}

	var decks []deckRow
	if err := tx.SelectContext(ctx, &decks, `
		SELECT id, seq, name, description, created_at FROM decks ORDER BY seq
	`); err != nil {
		return nil, fmt.Errorf("failed to load decks: %w", err)
	}
	var cards []cardRow
	if err := tx.SelectContext(ctx, &cards, `
		SELECT id, deck_id, seq, front, back, created_at, times_studied, times_correct
		FROM cards ORDER BY deck_id, seq
	`); err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}

	cardsByDeck := make(map[string][]*domain.Flashcard)
	for _, c := range cards {
		createdAt, err := parseTime(c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at of card %s: %w", c.ID, err)
		}
		cardsByDeck[c.DeckID] = append(cardsByDeck[c.DeckID], &domain.Flashcard{
			ID:           c.ID,
			Front:        c.Front,
			Back:         c.Back,
			CreatedAt:    createdAt,
			TimesStudied: c.TimesStudied,
			TimesCorrect: c.TimesCorrect,
		})
	}
	for _, d := range decks {
		createdAt, err := parseTime(d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at of deck %s: %w", d.ID, err)
		}
		state.Decks = append(state.Decks, &domain.Deck{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			CreatedAt:   createdAt,
			Cards:       cardsByDeck[d.ID],
		})
	}

	var tests []testRow
	if err := tx.SelectContext(ctx, &tests, `
		SELECT id, seq, deck_id, deck_name, is_completed, score, created_at, completed_at
		FROM practice_tests ORDER BY seq
	`); err != nil {
		return nil, fmt.Errorf("failed to load practice tests: %w", err)
	}
	var questions []questionRow
	if err := tx.SelectContext(ctx, &questions, `
		SELECT id, test_id, seq, question, correct_answer, user_answer, is_correct
		FROM questions ORDER BY test_id, seq
	`); err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	questionsByTest := make(map[string][]*domain.Question)
	for _, q := range questions {
		question := &domain.Question{
			ID:            q.ID,
			Question:      q.Question,
			CorrectAnswer: q.CorrectAnswer,
		}
		if q.UserAnswer.Valid {
			answer := q.UserAnswer.String
			question.UserAnswer = &answer
		}
		if q.IsCorrect.Valid {
			correct := q.IsCorrect.Bool
			question.IsCorrect = &correct
		}
		questionsByTest[q.TestID] = append(questionsByTest[q.TestID], question)
	}
	for _, t := range tests {
		createdAt, err := parseTime(t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at of test %s: %w", t.ID, err)
		}
		test := &domain.PracticeTest{
			ID:          t.ID,
			DeckID:      t.DeckID,
			DeckName:    t.DeckName,
			IsCompleted: t.IsCompleted,
			CreatedAt:   createdAt,
			Questions:   questionsByTest[t.ID],
		}
		if t.Score.Valid {
			score := t.Score.Float64
			test.Score = &score
		}
		if t.CompletedAt.Valid {
			completedAt, err := parseTime(t.CompletedAt.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse completed_at of test %s: %w", t.ID, err)
			}
			test.CompletedAt = &completedAt
		}
		state.Tests = append(state.Tests, test)
	}

	return state, nil
}

// SaveAll replaces the stored state with state in a single transaction.
func (db *DB) SaveAll(ctx context.Context, state *domain.State) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin save: %w", domain.ErrIO, err)
	}
	defer tx.Rollback()

	if err := saveState(ctx, tx, state); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIO, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit state: %w", domain.ErrIO, err)
	}
	return nil
}

func saveState(ctx context.Context, tx *sqlx.Tx, state *domain.State) error {
	// Children first so foreign keys hold at every step.
	for _, table := range []string{"questions", "practice_tests", "cards", "decks", "users"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	u := state.User
	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO users (id, name, created_at, total_cards_studied, total_correct, total_study_sessions)
		VALUES (:id, :name, :created_at, :total_cards_studied, :total_correct, :total_study_sessions)
	`, userRow{
		ID:                 u.ID,
		Name:               u.Name,
		CreatedAt:          formatTime(u.CreatedAt),
		TotalCardsStudied:  u.TotalCardsStudied,
		TotalCorrect:       u.TotalCorrect,
		TotalStudySessions: u.TotalStudySessions,
	}); err != nil {
		return fmt.Errorf("failed to insert user %s: %w", u.ID, err)
	}

	for i, d := range state.Decks {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO decks (id, seq, name, description, created_at)
			VALUES (:id, :seq, :name, :description, :created_at)
		`, deckRow{
			ID:          d.ID,
			Seq:         i,
			Name:        d.Name,
			Description: d.Description,
			CreatedAt:   formatTime(d.CreatedAt),
		}); err != nil {
			return fmt.Errorf("failed to insert deck %s: %w", d.ID, err)
		}
		for j, c := range d.Cards {
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO cards (id, deck_id, seq, front, back, created_at, times_studied, times_correct)
				VALUES (:id, :deck_id, :seq, :front, :back, :created_at, :times_studied, :times_correct)
			`, cardRow{
				ID:           c.ID,
				DeckID:       d.ID,
				Seq:          j,
				Front:        c.Front,
				Back:         c.Back,
				CreatedAt:    formatTime(c.CreatedAt),
				TimesStudied: c.TimesStudied,
				TimesCorrect: c.TimesCorrect,
			}); err != nil {
				return fmt.Errorf("failed to insert card %s: %w", c.ID, err)
			}
		}
	}

	for i, t := range state.Tests {
		row := testRow{
			ID:          t.ID,
			Seq:         i,
			DeckID:      t.DeckID,
			DeckName:    t.DeckName,
			IsCompleted: t.IsCompleted,
			CreatedAt:   formatTime(t.CreatedAt),
		}
		if t.Score != nil {
			row.Score = sql.NullFloat64{Float64: *t.Score, Valid: true}
		}
		if t.CompletedAt != nil {
			row.CompletedAt = sql.NullString{String: formatTime(*t.CompletedAt), Valid: true}
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO practice_tests (id, seq, deck_id, deck_name, is_completed, score, created_at, completed_at)
			VALUES (:id, :seq, :deck_id, :deck_name, :is_completed, :score, :created_at, :completed_at)
		`, row); err != nil {
			return fmt.Errorf("failed to insert practice test %s: %w", t.ID, err)
		}
		for j, q := range t.Questions {
			qr := questionRow{
				ID:            q.ID,
				TestID:        t.ID,
				Seq:           j,
				Question:      q.Question,
				CorrectAnswer: q.CorrectAnswer,
			}
			if q.UserAnswer != nil {
				qr.UserAnswer = sql.NullString{String: *q.UserAnswer, Valid: true}
			}
			if q.IsCorrect != nil {
				qr.IsCorrect = sql.NullBool{Bool: *q.IsCorrect, Valid: true}
			}
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO questions (id, test_id, seq, question, correct_answer, user_answer, is_correct)
				VALUES (:id, :test_id, :seq, :question, :correct_answer, :user_answer, :is_correct)
			`, qr); err != nil {
				return fmt.Errorf("failed to insert question %s: %w", q.ID, err)
			}
		}
	}

	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
