package circulation

import (
	"github.com/google/uuid"
)

// Account is a patron account. A blocked account cannot borrow.
type Account struct {
	ID          uuid.UUID
	Username    string
	FullName    string
	IsBlocked   bool
	BlockReason string
}

// BuildAccount creates an active (unblocked) Account.
func BuildAccount(id uuid.UUID, username, fullName string) Account {
	return Account{
		ID:       id,
		Username: username,
		FullName: fullName,
	}
}

// Validate checks that a blocked account carries a reason.
func (a Account) Validate() error {
	if a.IsBlocked && a.BlockReason == "" {
		return ErrEmptyBlockReason
	}

	return nil
}
