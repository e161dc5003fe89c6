package cli

// Database engines register their dialect openers on import.
import (
	_ "github.com/sediment-db/sediment/internal/dialect/mysql"
	_ "github.com/sediment-db/sediment/internal/dialect/postgres"
	_ "github.com/sediment-db/sediment/internal/dialect/sqlite"
)
