// Package delivery surfaces stored feed entries to the UI.
//
// Every arrival is decoded and, if it is a record (a BIPF list), reported at
// once as new_event. Entries whose side-chain is still missing are reported
// as new_incomplete_event instead. Independently, each feed has a frontier:
// the next sequence not yet reported as new_in_order_event. Whenever an
// arrival lands at or beyond the frontier, the notifier walks forward from
// the frontier while the store can supply complete, decodable content, and
// persists the frontier after every step. In-order notifications per feed
// are therefore 1, 2, 3, ... with no gaps or repeats, across restarts.
package delivery
