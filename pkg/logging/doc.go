// Package logging manages the process's logger hierarchy and the sinks
// behind it so that logging survives checkpoint/restore.
//
// Loggers are plain *slog.Logger values obtained from Manager.Logger. Their
// names form a dot-separated hierarchy rooted at "": a logger without an
// explicit level inherits the level of its nearest configured ancestor,
// and the root starts at INFO. Every logger writes through the manager's
// current set of sinks, so handles obtained before a checkpoint keep
// working after restore.
//
// # Sinks
//
// The console sink writes to the stderr captured at construction and is
// never closed. File sinks write to a RollingFile and are the only sinks
// with checkpoint-sensitive state:
//
//   - BeforeCheckpoint closes each file sink and keeps its FileSinkSpec.
//   - AfterRestore reopens every kept spec on a fresh handle.
//
// A checkpoint waits for records being written, because record dispatch
// holds the manager's read lock.
//
// # Usage
//
//	mgr := logging.Initialize()
//	if err := mgr.Configure(cfg); err != nil {
//	    return err
//	}
//
//	log := mgr.Logger("app.http")
//	mgr.SetLevel("app", logging.LevelDebug)
//	log.Debug("now visible")
//
// Initialize also redirects os.Stdout and os.Stderr into the "stdout" and
// "stderr" loggers. That redirection cannot be undone. Use New for an
// independent manager without it.
//
// # Levels file
//
// SetLevelsFromFile reads name=LEVEL lines (Java properties syntax) or, for
// .yaml and .yml files, a mapping of names to levels:
//
//	# levels.properties
//	app.http=DEBUG
//	app.db: warn
//
// Level names are case-insensitive. A malformed file is rejected with
// ErrConfig before any level is changed.
package logging
