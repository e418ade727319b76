package postgres

// Migration is a single versioned schema step. Versions apply in
// lexical order and are recorded in invoicer_schema_migrations, so
// Migrate is safe to run on every start.
type Migration struct {
	Name    string
	Version string
	Up      string
	Down    string
}

// Migrations is the ordered schema for the Invoicer store.
var Migrations = []Migration{
	{
		Name:    "create_invoicer_invoices",
		Version: "20240101000001",
		Up: `
CREATE TABLE IF NOT EXISTS invoicer_invoices (
    id           TEXT PRIMARY KEY,
    number       TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL DEFAULT 'draft',
    client_name  TEXT NOT NULL DEFAULT '',
    client_email TEXT NOT NULL DEFAULT '',
    issue_date   TIMESTAMPTZ,
    currency     TEXT NOT NULL DEFAULT '',
    terms        TEXT NOT NULL DEFAULT '',
    line_items   JSONB NOT NULL DEFAULT '[]',
    company      JSONB NOT NULL DEFAULT '{}',
    total_amount TEXT NOT NULL DEFAULT '0',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_invoicer_invoices_number
    ON invoicer_invoices (number) WHERE number <> '';
CREATE INDEX IF NOT EXISTS idx_invoicer_invoices_status ON invoicer_invoices (status);
CREATE INDEX IF NOT EXISTS idx_invoicer_invoices_created ON invoicer_invoices (created_at DESC);
`,
		Down: `DROP TABLE IF EXISTS invoicer_invoices`,
	},
	{
		Name:    "create_invoicer_counters",
		Version: "20240101000002",
		Up: `
CREATE TABLE IF NOT EXISTS invoicer_counters (
    name  TEXT PRIMARY KEY,
    value BIGINT NOT NULL DEFAULT 0
);
`,
		Down: `DROP TABLE IF EXISTS invoicer_counters`,
	},
}
