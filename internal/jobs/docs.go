// Package jobs provides the background work of the order pipeline.
//
// # Available Jobs
//
//  1. DeliveryTracker - owns one goroutine per order that streams paced location
//     updates through a DeliveryStreamer until the destination or cancellation
//  2. InventoryRefreshJob - reloads the inventory ledger from the stock store on a
//     cron schedule (robfig/cron with seconds)
//
// # Usage
//
// Jobs are managed through JobManager:
//
//	jobManager := jobs.NewJobManager(refreshJob, tracker)
//	if err := jobManager.StartAll(ctx); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Publish failures inside a delivery run are logged and the run keeps pacing;
// only cancellation ends it early. A failed refresh keeps the previous snapshot.
package jobs
