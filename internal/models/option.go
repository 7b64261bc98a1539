package models

// OptionModel is a generic key-value row used for the persisted settings document.
type OptionModel struct {
	ID    uint   `json:"id"    gorm:"primaryKey;autoIncrement"`
	Name  string `json:"name"  gorm:"uniqueIndex;not null"`
	Value string `json:"value" gorm:"type:longtext"`
}

func (OptionModel) TableName() string { return "options" }
