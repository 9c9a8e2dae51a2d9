// Package announce speaks the line protocol of the external route
// announcer, which runs the failover engine as a subprocess and reads its
// standard output:
//
//	announce route 10.0.100.1/32 next-hop self
//	withdraw route 10.0.100.1/32 next-hop self
//
// Each command is one newline-terminated line, flushed as soon as it is
// written. Delivery is fire-and-forget; a write error means the announcer
// is gone and is returned to the caller as fatal.
package announce
