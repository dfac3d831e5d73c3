// Package inventory models warehouse stock and answers whether an order can be
// fulfilled from it. The Ledger is read-only to the pipeline: a check never
// reserves or decrements stock. Snapshots are replaced wholesale by the refresh job.
package inventory
