package repository

import (
	"database/sql"

	"gorm.io/gorm"
)

// TxManager runs a function inside a database transaction, committing when
// the function returns nil and rolling back when it returns an error.
// *gorm.DB satisfies it directly; tests substitute an implementation that
// invokes the function without a live database.
type TxManager interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}
