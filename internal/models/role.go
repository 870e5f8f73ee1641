package models

type Role struct {
	ID          uint64 `gorm:"primarykey" json:"role_key"`
	Name        string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:varchar(255)" json:"description"`

	Users []User `gorm:"foreignKey:RoleID" json:"-"`
}
