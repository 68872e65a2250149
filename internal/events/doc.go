// Package events carries domain notifications between components.
//
// Services emit an Event when something worth recording happens during
// practice (an answer graded, a run finished, a badge or the daily
// challenge earned) without knowing who listens. Handlers registered on an
// emitter receive every event in registration order.
package events
