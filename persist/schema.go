package persist

const Schema = `
CREATE TABLE IF NOT EXISTS clock_state (
	name TEXT PRIMARY KEY,
	record BLOB NOT NULL,
	when_ns INTEGER NOT NULL,
	updated_at DATETIME NOT NULL
);
`
