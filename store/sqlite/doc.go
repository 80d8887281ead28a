// Package sqlite provides a SQLite-backed store.RunStore, for single-machine
// runs where a file-based ledger with no external service is preferred.
//
//	s, err := sqlite.New(sqlite.Options{Path: "./runs.db"})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
package sqlite
