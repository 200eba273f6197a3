package postgres

import (
	"github.com/treasury-network/treasury-engine/internal/postgres"
	"github.com/treasury-network/treasury-engine/modules/treasury/datagateway"
)

// Make sure Repository implements the TreasuryDataGateway interface
var _ datagateway.TreasuryDataGateway = (*Repository)(nil)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) *Repository {
	return &Repository{
		db: db,
	}
}
