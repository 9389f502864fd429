package sqlite

// Schema statements applied by Migrate, in order. The counter row is
// seeded here so id assignment never races with config seeding.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS recur_subscriptions (
		id             INTEGER PRIMARY KEY,
		subscriber     TEXT    NOT NULL,
		merchant       TEXT    NOT NULL,
		price          INTEGER NOT NULL,
		interval       INTEGER NOT NULL,
		active         INTEGER NOT NULL,
		created_at     INTEGER NOT NULL,
		last_payment   INTEGER NOT NULL,
		next_due       INTEGER NOT NULL,
		total_payments INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recur_subscriptions_subscriber
		ON recur_subscriptions (subscriber)`,

	`CREATE TABLE IF NOT EXISTS recur_payments (
		subscription_id INTEGER NOT NULL,
		sequence        INTEGER NOT NULL,
		base_amount     INTEGER NOT NULL,
		settle_amount   INTEGER NOT NULL,
		rate            INTEGER NOT NULL,
		fee             INTEGER NOT NULL,
		height          INTEGER NOT NULL,
		PRIMARY KEY (subscription_id, sequence)
	)`,

	`CREATE TABLE IF NOT EXISTS recur_subscriber_index (
		subscriber      TEXT    NOT NULL,
		position        INTEGER NOT NULL,
		subscription_id INTEGER NOT NULL,
		PRIMARY KEY (subscriber, position)
	)`,

	`CREATE TABLE IF NOT EXISTS recur_earnings (
		merchant TEXT PRIMARY KEY,
		total    INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS recur_config (
		id              INTEGER PRIMARY KEY CHECK (id = 1),
		rate            INTEGER NOT NULL,
		fee_recipient   TEXT    NOT NULL,
		paused          INTEGER NOT NULL,
		rate_updated_at INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS recur_counters (
		name  TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	)`,
	`INSERT OR IGNORE INTO recur_counters (name, value) VALUES ('subscriptions', 0)`,
}
