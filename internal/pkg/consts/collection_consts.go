package consts

const (
	LoansCollection         = "Loans"
	TransactionsCollection  = "Transactions"
	UsersCollection         = "Users"
	FamilyMembersCollection = "FamilyMembers"
)
