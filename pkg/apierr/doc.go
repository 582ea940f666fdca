// Package apierr's error kinds are plain structs implementing error,
// not wrapped sentinels, so callers use errors.As (IsNotFound,
// IsTombstone, IsTransient, IsFatal are thin convenience wrappers
// around that). Validation and existence errors are returned to the
// caller unchanged; transient store errors abort the current
// transaction; fatal errors are logged and the process exits.
package apierr
