// Package postgres provides a PostgreSQL-backed store.RunStore, for batch
// runs submitted to a cluster where several users query the same ledger.
//
//	s, err := postgres.New(ctx, postgres.Options{ConnString: "postgres://..."})
//	if err != nil {
//		return err
//	}
//	defer s.Close()
package postgres
