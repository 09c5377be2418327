// Package logger holds the small slog helpers shared by every bootkit
// package: attribute constructors with consistent key names, a handler
// decorator that injects request- or cycle-scoped values from
// context.Context, and a no-op logger used as the default when a caller
// does not supply one.
//
// The package deliberately does not build loggers. Named loggers and their
// sinks are owned by package logging, which survives checkpoint/restore;
// this package only shapes the records that flow into it.
//
// # Usage
//
//	log := mgr.Logger("listener")
//	log.Warn("close failed during checkpoint",
//	    logger.Endpoint("admin"),
//	    logger.Error(err),
//	)
//
// # Error Handling
//
// Error and Errors produce attributes only for non-nil errors, so callers
// can pass a possibly-nil error without an additional check:
//
//	log.Info("restore finished", logger.Error(err))
//
// # Context Extraction
//
// NewLogHandlerDecorator wraps any slog.Handler and runs ContextExtractor
// callbacks on every Handle call:
//
//	h := logger.NewLogHandlerDecorator(base,
//	    logger.ContextValue("cycle_id", cycleKey),
//	)
package logger
