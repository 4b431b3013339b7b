// Package audit records CAPTCHA verification decisions for later inspection.
//
// Every guarded request produces one Record: the action, strategy, outcome,
// failure codes, score and latency. Records are written through the Store
// interface; SQLiteStore persists them in WAL-mode SQLite, MemoryStore keeps
// them in memory for tests and ephemeral deployments. The retention Pruner
// deletes old records, either on demand or on a cron schedule.
package audit
