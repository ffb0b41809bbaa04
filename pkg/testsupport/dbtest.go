package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var memoryDBSeq atomic.Uint64

// NewSQLiteMemoryDB opens an in-memory sqlite database private to the caller.
// Each call gets its own shared-cache name so parallel tests do not observe
// each other's tables.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	name := fmt.Sprintf("contentblocks_test_%d", memoryDBSeq.Add(1))
	return sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared")
}

// NewSQLiteBunDB wraps NewSQLiteMemoryDB in a bun handle closed on cleanup.
func NewSQLiteBunDB(tb testing.TB) *bun.DB {
	tb.Helper()
	sqlDB, err := NewSQLiteMemoryDB()
	if err != nil {
		tb.Fatalf("open sqlite memory db: %v", err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	tb.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
