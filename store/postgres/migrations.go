package postgres

// Schema statements applied by Migrate, in order.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS recur_subscriptions (
		id               BIGINT PRIMARY KEY,
		subscriber       TEXT   NOT NULL,
		merchant         TEXT   NOT NULL,
		price            BIGINT NOT NULL,
		billing_interval BIGINT NOT NULL,
		active           BOOLEAN NOT NULL,
		created_at       BIGINT NOT NULL,
		last_payment     BIGINT NOT NULL,
		next_due         BIGINT NOT NULL,
		total_payments   BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recur_subscriptions_subscriber
		ON recur_subscriptions (subscriber)`,

	`CREATE TABLE IF NOT EXISTS recur_payments (
		subscription_id BIGINT NOT NULL,
		sequence        BIGINT NOT NULL,
		base_amount     BIGINT NOT NULL,
		settle_amount   BIGINT NOT NULL,
		rate            BIGINT NOT NULL,
		fee             BIGINT NOT NULL,
		height          BIGINT NOT NULL,
		PRIMARY KEY (subscription_id, sequence)
	)`,

	`CREATE TABLE IF NOT EXISTS recur_subscriber_index (
		subscriber      TEXT   NOT NULL,
		position        BIGINT NOT NULL,
		subscription_id BIGINT NOT NULL,
		PRIMARY KEY (subscriber, position)
	)`,

	`CREATE TABLE IF NOT EXISTS recur_earnings (
		merchant TEXT PRIMARY KEY,
		total    BIGINT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS recur_config (
		id              INT PRIMARY KEY CHECK (id = 1),
		rate            BIGINT  NOT NULL,
		fee_recipient   TEXT    NOT NULL,
		paused          BOOLEAN NOT NULL,
		rate_updated_at BIGINT  NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS recur_counters (
		name  TEXT PRIMARY KEY,
		value BIGINT NOT NULL
	)`,
	`INSERT INTO recur_counters (name, value) VALUES ('subscriptions', 0)
		ON CONFLICT (name) DO NOTHING`,
}
