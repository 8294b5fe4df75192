package tx

import (
	"context"
	"database/sql"

	"github.com/go-jet/jet/v2/qrm"

	"pivotdash/utils/db"
)

type TxExtension struct {
	Postgresql *db.Database
}

// GetTx prefers the transaction stashed in the context by db.Transaction,
// falling back to the pool.
func (p TxExtension) GetTx(ctx context.Context) qrm.DB {
	tx := ctx.Value("tx")
	if tx != nil {
		result, ok := tx.(*sql.Tx)
		if !ok {
			return p.Postgresql.DbForJet
		}
		return result
	}
	return p.Postgresql.DbForJet
}
