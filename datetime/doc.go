// Package datetime holds a calendar date and time of day as kept by a
// real-time clock: separate date and time halves that may be set
// independently, 12/24-hour formats and a civil UTC offset.
package datetime
