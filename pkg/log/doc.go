/*
Package log provides structured logging for the repository core using
zerolog.

Every package obtains a logger via log.WithComponent("store"),
log.WithComponent("layout"), log.WithComponent("model"), etc., and
attaches request-scoped fields (uid, txn id, event type) with the
With* helpers before emitting. The global logger is configured once at
startup with Init and is safe for concurrent use thereafter.
*/
package log
