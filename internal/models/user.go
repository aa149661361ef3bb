package models

// User represents the user model in the database
type User struct {
	Base
	FirstName string `gorm:"size:30" json:"first_name"`
	Surname   string `gorm:"size:30" json:"surname"`
	Username  string `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	Admin     bool   `gorm:"default:false" json:"-"`
}
