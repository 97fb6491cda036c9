package migrations

func init() {
	Register(Migration{
		Timestamp:   "20250301-000000",
		Description: "Initial schema",
		Up: []string{
			// API keys. The secret is stored raw (unique) so listings can
			// mask it; revocation flips is_active rather than deleting.
			`CREATE TABLE IF NOT EXISTS api_keys (
				id TEXT PRIMARY KEY,
				key TEXT UNIQUE NOT NULL,
				name TEXT NOT NULL,
				is_admin INTEGER NOT NULL DEFAULT 0,
				rate_limit INTEGER,
				requests_count INTEGER NOT NULL DEFAULT 0,
				requests_reset_at TEXT NOT NULL,
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_api_keys_key ON api_keys(key)`,

			// Movie cache - one row per external ID, fully replaced on upsert.
			`CREATE TABLE IF NOT EXISTS movie_cache (
				imdb_id TEXT PRIMARY KEY,
				slug TEXT NOT NULL,
				title TEXT NOT NULL,
				year INTEGER,
				critic_score INTEGER,
				audience_score INTEGER,
				critic_rating TEXT,
				audience_rating TEXT,
				consensus TEXT,
				url TEXT NOT NULL,
				cached_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_movie_cache_cached_at ON movie_cache(cached_at)`,

			// List cache - keyed by SHA-256 of the normalized source URL.
			`CREATE TABLE IF NOT EXISTS list_cache (
				url_hash TEXT PRIMARY KEY,
				source_url TEXT NOT NULL,
				title TEXT NOT NULL,
				movies TEXT NOT NULL,
				cached_at TEXT NOT NULL
			)`,
		},
	})
}
