// Package ports defines the contracts between the application core and its
// adapters: repositories and the unit of work for persistence, the change
// feed consumed by the realtime bridge, the clock and metrics hooks.
package ports
