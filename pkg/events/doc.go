/*
Package events implements the transaction changelog described in the
design's transaction/ordering facade: a per-transaction FIFO of delta
records, each pairing a remove/add triple set with event metadata
(event type, timestamp, resource types, actor). The changelog is
drained by an external messaging collaborator after a successful
commit; the core only guarantees ordering and delivery-once-drained,
not persistence or retry.
*/
package events
