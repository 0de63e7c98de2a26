package ledger

import "sort"

type Categorized struct {
	ActionRequired []Loan
	Lent           []Loan
	Borrowed       []Loan
	Repaid         []Loan
}

// Categorize buckets the viewer's loans for display. Loans where the viewer
// is neither creditor nor debtor are left out. Every bucket is sorted by
// CreatedAt, newest first.
func Categorize(loans []Loan, viewerID string) Categorized {
	out := Categorized{
		ActionRequired: []Loan{},
		Lent:           []Loan{},
		Borrowed:       []Loan{},
		Repaid:         []Loan{},
	}

	for _, loan := range loans {
		if !loan.IsParty(viewerID) {
			continue
		}
		isCreditor := loan.CreditorID == viewerID
		isDebtor := loan.DebtorID == viewerID

		switch {
		case loan.Status.IsSettled():
			out.Repaid = append(out.Repaid, loan)
		case isDebtor && loan.Status == StatusPendingConfirmation,
			isCreditor && loan.PendingRepayment != nil:
			out.ActionRequired = append(out.ActionRequired, loan)
		case isCreditor:
			out.Lent = append(out.Lent, loan)
		default:
			out.Borrowed = append(out.Borrowed, loan)
		}
	}

	for _, bucket := range [][]Loan{out.ActionRequired, out.Lent, out.Borrowed, out.Repaid} {
		sortNewestFirst(bucket)
	}
	return out
}

func sortNewestFirst(loans []Loan) {
	sort.SliceStable(loans, func(i, j int) bool {
		if loans[i].CreatedAt.Equal(loans[j].CreatedAt) {
			return loans[i].ID > loans[j].ID
		}
		return loans[i].CreatedAt.After(loans[j].CreatedAt)
	})
}
