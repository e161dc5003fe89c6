package postgres

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// RequiresAutoCommit parses sql with the real PostgreSQL parser and reports
// whether any statement is a CREATE INDEX CONCURRENTLY. Such statements
// cannot run inside a transaction block and must be executed directly on
// the pool.
func (b *Backend) RequiresAutoCommit(sql string) (bool, error) {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return false, nil
	}

	tree, err := pg_query.Parse(trimmed)
	if err != nil {
		return false, fmt.Errorf("parsing SQL for concurrent index detection: %w", err)
	}

	for _, stmt := range tree.Stmts {
		node, ok := stmt.Stmt.Node.(*pg_query.Node_IndexStmt)
		if !ok {
			continue
		}

		if node.IndexStmt != nil && node.IndexStmt.Concurrent {
			return true, nil
		}
	}

	return false, nil
}
