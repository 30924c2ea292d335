// Package pkg holds what every softtwi package shares: component-tagged
// logging, the driver error sentinels with their compact [Code] mirror, and
// the [BusType] a device driver checks before accepting a bus.
//
// # Logging
//
// Records carry a component attribute naming the subsystem that wrote
// them (twi, hal, sim, clock, rtc, datetime, config, shell). The package
// level starts at warn. The master logs its bit-rate choice at info, and bus
// faults and timeouts at debug:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.SetLogFormat(pkg.LogFormatJSON)
//
// Loggers built with nil options follow [SetLogLevel]. The interrupt
// handler checks [LogEnabled] before building attributes.
//
// # Errors
//
// Every driver failure is one of the Err sentinels, possibly wrapped:
//
//	if errors.Is(err, pkg.ErrCommunicationTimeout) {
//	    // The engine was still busy when the tick budget ran out.
//	}
//
// Drivers also keep their most recent error behind a LastError accessor.
// [CodeOf] reduces it to a [Code] for status displays.
package pkg
