package storage

const schema = `
-- The single installation user and its study totals.
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TEXT NOT NULL,
    total_cards_studied INTEGER NOT NULL DEFAULT 0,
    total_correct INTEGER NOT NULL DEFAULT 0,
    total_study_sessions INTEGER NOT NULL DEFAULT 0
);

-- Decks own their cards; seq keeps the user's ordering.
CREATE TABLE IF NOT EXISTS decks (
    id TEXT PRIMARY KEY,
    seq INTEGER NOT NULL,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    deck_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    front TEXT NOT NULL,
    back TEXT NOT NULL,
    created_at TEXT NOT NULL,
    times_studied INTEGER NOT NULL DEFAULT 0,
    times_correct INTEGER NOT NULL DEFAULT 0,

    FOREIGN KEY(deck_id) REFERENCES decks(id) ON DELETE CASCADE
);

-- Practice tests reference their deck by id only, so there is no foreign key.
CREATE TABLE IF NOT EXISTS practice_tests (
    id TEXT PRIMARY KEY,
    seq INTEGER NOT NULL,
    deck_id TEXT NOT NULL,
    deck_name TEXT NOT NULL,
    is_completed BOOLEAN NOT NULL DEFAULT FALSE,
    score DOUBLE PRECISION,
    created_at TEXT NOT NULL,
    completed_at TEXT
);

CREATE TABLE IF NOT EXISTS questions (
    id TEXT PRIMARY KEY,
    test_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    question TEXT NOT NULL,
    correct_answer TEXT NOT NULL,
    user_answer TEXT,
    is_correct BOOLEAN,

    FOREIGN KEY(test_id) REFERENCES practice_tests(id) ON DELETE CASCADE
);
`
