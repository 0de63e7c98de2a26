package models

type User struct {
	ID       string `bson:"_id" json:"id"`
	FullName string `bson:"fullName" json:"fullName"`
	Email    string `bson:"email" json:"email"`
}

type FamilyMember struct {
	ID       string `bson:"_id"`
	FamilyID string `bson:"familyId"`
	UserID   string `bson:"userId"`
	Role     string `bson:"role,omitempty"`
}
