// Package httpserver runs the optional metrics listener.
//
// The listen address is validated up front. Run serves until its context
// is cancelled and then shuts the server down with a bounded timeout, so
// a drain is never held up by a scraper.
package httpserver
