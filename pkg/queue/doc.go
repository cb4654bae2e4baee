// Package queue provides the delivery queue behind the webhook dispatch
// engine: producers enqueue signed jobs, consumers process them with
// at-least-once semantics.
//
// Two drivers ship with the package. Memory is a process-local FIFO for
// tests and single-node deployments. Redis persists jobs in Redis lists so
// multiple worker processes can share the load and jobs survive restarts.
//
// A handler that returns nil acknowledges the job and retires it. A handler
// error puts the job back for redelivery, up to the driver's attempt limit.
// Consumers must therefore tolerate seeing the same job more than once.
package queue
