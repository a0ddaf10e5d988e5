package returnloan

import "github.com/AntonStoeckl/library-circulation/circulation"

// Decide checks that loan can be returned.
func Decide(loan circulation.Loan) error {
	if !loan.IsOpen() || loan.Status == circulation.LoanReturned {
		return circulation.ErrLoanAlreadyReturned
	}

	switch loan.Status {
	case circulation.LoanBorrowed, circulation.LoanOverdue:
		return nil
	default:
		return circulation.ErrLoanNotOpen
	}
}
