// Package metrics collects Prometheus metrics about model solves and exports
// them in the text exposition format, either to a writer or to a textfile
// suitable for the node_exporter textfile collector.
package metrics
