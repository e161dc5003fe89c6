package ledger

// createLedgerSQL is the PostgreSQL DDL for the schema_migrations table.
// The unique constraint on name is the only concurrency guard migration
// runs rely on: two runs racing to apply the same unit cannot both insert.
const createLedgerSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
    id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    name        VARCHAR(255) NOT NULL UNIQUE,
    applied_on  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
