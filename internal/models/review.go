package models

import "time"

type Review struct {
	BaseModel
	CustomerID string `gorm:"size:36;not null;index" json:"customer_id"`
	Customer   *User  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	DesignerID string `gorm:"size:36;not null;index" json:"designer_id"`
	Designer   *User  `gorm:"foreignKey:DesignerID" json:"designer,omitempty"`
	Rating     int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment    string `gorm:"type:text;not null" json:"comment"`

	DesignerResponse *string    `gorm:"type:text" json:"designer_response"`
	ResponseDate     *time.Time `json:"response_date"`

	// Модерация: пара флагов выводится из workflow.ReviewState
	IsFlagged    bool   `gorm:"not null;index" json:"is_flagged"`
	ReportReason string `gorm:"type:text" json:"report_reason,omitempty"`
	IsApproved   bool   `gorm:"not null;index" json:"is_approved"`
}
