// Package async provides a minimal future primitive used by the dispatch
// fan-out: start every subscription delivery concurrently, then join on all
// of them before acknowledging the job.
//
// Unlike errgroup-style helpers, Join never short-circuits: delivery is
// best-effort and one failed webhook must not hide the outcomes of its
// siblings. Every future is awaited and every error is collected.
package async
