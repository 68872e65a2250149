// Package memory provides in-process implementations of the store
// interfaces. They back the command-line client, single-node deployments
// without Postgres or Redis, and tests.
package memory
