// Package pebblestore wraps the single Pebble database the bridge keeps under
// its data directory. It adds an fsync policy, prefix scans and range deletes
// on top of the raw Pebble API.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: "./data/db",
//	    Fsync:   pebblestore.FsyncModeAlways,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	_ = db.Set([]byte("frontier/ab12"), next)
//	_ = db.ScanPrefix([]byte("frontier/"), func(k, v []byte) bool { return true })
package pebblestore
