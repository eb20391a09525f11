package models

import "time"

// EquipmentCondition describes the physical state of an item.
type EquipmentCondition string

const (
	ConditionExcellent EquipmentCondition = "excellent"
	ConditionGood      EquipmentCondition = "good"
	ConditionFair      EquipmentCondition = "fair"
	ConditionPoor      EquipmentCondition = "poor"
)

// Equipment represents a lendable item with a finite pool of units.
type Equipment struct {
	ID          string             `db:"id" json:"id"`
	Name        string             `db:"name" json:"name"`
	Category    string             `db:"category" json:"category"`
	Condition   EquipmentCondition `db:"condition" json:"condition"`
	Quantity    int                `db:"quantity" json:"quantity"`
	Description string             `db:"description" json:"description"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updated_at"`
}

// EquipmentDetail annotates an item with the number of units free today.
type EquipmentDetail struct {
	Equipment
	Available int `json:"available"`
}

// EquipmentFilter captures filtering criteria for listing equipment.
type EquipmentFilter struct {
	Category string
	Search   string
}
