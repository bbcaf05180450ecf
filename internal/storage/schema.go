package storage

const schema = `
-- One row per card, in deck insertion order.
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    question TEXT NOT NULL,
    answer TEXT NOT NULL
);

-- Leitner progress of each card. Timestamps are UTC RFC 3339 text.
CREATE TABLE IF NOT EXISTS progress (
    card_id TEXT PRIMARY KEY,
    box INTEGER NOT NULL CHECK (box BETWEEN 1 AND 5),
    next_due TEXT NOT NULL,
    last_confidence TEXT,
    review_count INTEGER NOT NULL DEFAULT 0,

    FOREIGN KEY(card_id) REFERENCES cards(id)
);

-- Append-only review log.
CREATE TABLE IF NOT EXISTS history (
    seq INTEGER PRIMARY KEY,
    ts TEXT NOT NULL,
    card_id TEXT NOT NULL,
    prior_box INTEGER NOT NULL,
    new_box INTEGER NOT NULL,
    confidence TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
