package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"        json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"            json:"username"`
	Email        string    `gorm:"uniqueIndex;not null"            json:"email"`
	PasswordHash string    `gorm:"not null"                        json:"-"`
	Roles        []Role    `gorm:"many2many:user_roles"            json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleNames returns the role names in assignment order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

type Role struct {
	ID          uint         `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name        string       `gorm:"uniqueIndex;not null"          json:"name"`
	Permissions []Permission `gorm:"many2many:role_permissions"    json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Permission struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"         json:"id"`
	Name        string    `gorm:"uniqueIndex;not null"             json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Asset is a publishable catalog entry for goods. ServiceEntry mirrors it
// for the services collection; the two are persisted separately on purpose.
type Asset struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Description string    `gorm:"not null"                 json:"description"`
	StartDate   time.Time `gorm:"not null"                 json:"start_date"`
	EndDate     time.Time `gorm:"not null"                 json:"end_date"`
	PublishedAt time.Time `gorm:"not null"                 json:"published_at"`
	Year        string    `gorm:"index;not null"           json:"year"`
	Link        string    `gorm:"not null"                 json:"link"`
	Published   bool      `gorm:"not null"                 json:"published"`
	Publisher   string    `gorm:"index;not null"           json:"publisher"`
	Editable    bool      `gorm:"not null"                 json:"editable"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ServiceEntry struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Description string    `gorm:"not null"                 json:"description"`
	StartDate   time.Time `gorm:"not null"                 json:"start_date"`
	EndDate     time.Time `gorm:"not null"                 json:"end_date"`
	PublishedAt time.Time `gorm:"not null"                 json:"published_at"`
	Year        string    `gorm:"index;not null"           json:"year"`
	Link        string    `gorm:"not null"                 json:"link"`
	Published   bool      `gorm:"not null"                 json:"published"`
	Publisher   string    `gorm:"index;not null"           json:"publisher"`
	Editable    bool      `gorm:"not null"                 json:"editable"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ServiceEntry) TableName() string { return "services" }
