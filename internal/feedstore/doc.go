// Package feedstore is the local log store the bridge reads entries from.
//
// Each feed is an append-only sequence of entries keyed by its ed25519 public
// key. An entry holds the first ChunkSize bytes of its content inline; the
// rest travels as side-chain chunks that may arrive later. Content becomes
// readable only once every chunk is present.
//
// Keys:
//   - feed/{fid}/m                   (metadata: max seq)
//   - feed/{fid}/e/{seq_be8}         (entry record: chunk count + ref | head)
//   - feed/{fid}/c/{seq_be8}{idx_be4} (side-chain chunk)
//
// Replication is out of scope. Ingest and AddChunk are the seams a transport
// calls when bytes become locally available.
package feedstore
