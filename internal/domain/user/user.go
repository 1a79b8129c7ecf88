package user

// User is the registered-player record. Registration and profile editing
// live outside this service; only the win and loss counters are mutated
// here.
type User struct {
	UID      string `json:"uid" bson:"uid"`
	Username string `json:"username" bson:"username"`
	Email    string `json:"email" bson:"email"`
	Bio      string `json:"bio" bson:"bio"`
	Wins     int    `json:"wins" bson:"wins"`
	Losses   int    `json:"losses" bson:"losses"`
}
