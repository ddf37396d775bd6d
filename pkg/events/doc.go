/*
Package events provides an in-memory event broker for scheduler events.

The scheduling loop publishes an event for every committed placement, failed
binding, and strategy switch. Subscribers receive events on buffered channels
with non-blocking delivery, so a slow consumer can never stall a scheduling
pass. The Prometheus observer is the main consumer; additional subscribers can
attach for debugging or experiment tooling.
*/
package events
