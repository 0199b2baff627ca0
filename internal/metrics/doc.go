// Package metrics records lifecycle operation counts and durations with
// Prometheus collectors and writes them in the node_exporter textfile
// format, so a one-shot CLI run can still be scraped.
package metrics
