// Package siftql compiles SiftQL filter queries into complete SQL
// statements for columnar log stores.
//
// SiftQL is a small filter language for log exploration:
//
//	service="api" and level="error" (status>=500 or msg~"timeout") | timestamp service msg
//
// A Compiler is configured once per table and dialect and reused across
// requests:
//
//	compiler, err := siftql.New(siftql.Config{
//	    Table:   "logs.app",
//	    Dialect: siftql.DialectClickHouse,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result := compiler.Compile(siftql.Request{
//	    Query:  `level="error" and svc.name~"auth"`,
//	    Schema: schema,
//	    Range:  siftql.TimeRange{Start: from, End: to},
//	    Limit:  200,
//	})
//	if !result.Valid {
//	    // result.Diagnostics carries positioned parse errors
//	}
//
// The language pipeline lives in the ql subpackage. This package adds the
// table-level concerns around it: configuration, schema handling, the
// injected time-range condition, default ordering and limits, and raw SQL
// passthrough.
package siftql
