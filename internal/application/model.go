package application

import (
	"time"

	"github.com/shopspring/decimal"
)

// Application lifecycle states.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Accounting states an approved application moves through.
const (
	AccountingWaiting = "waiting"
	AccountingDone    = "done"
)

type Application struct {
	ID               int             `json:"id"`
	AppNo            string          `json:"appNo"`
	PurchaserID      int             `json:"purchaserId"`
	PurchaserName    string          `json:"purchaserName"`
	PurchaseDate     time.Time       `json:"purchaseDate"`
	Notes            *string         `json:"notes"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Status           string          `json:"status"`
	ReviewTime       *time.Time      `json:"reviewTime"`
	ReviewerID       *int            `json:"reviewerId"`
	ReviewNotes      *string         `json:"reviewNotes"`
	AccountingStatus *string         `json:"accountingStatus"`
	AccountingTime   *time.Time      `json:"accountingTime"`
	AccountingPerson *string         `json:"accountingPerson"`
	AccountingNotes  *string         `json:"accountingNotes"`
	CreatedAt        time.Time       `json:"createdAt"`

	Items       []Item       `json:"items"`
	Attachments []Attachment `json:"attachments"`

	// Advisory carries the anomaly annotations for pending applications,
	// one message per line, nil when nothing stands out.
	Advisory *string `json:"advisory"`
}

type Item struct {
	ID            int             `json:"id"`
	ApplicationID int             `json:"-"`
	ItemName      string          `json:"itemName"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	Price         decimal.Decimal `json:"price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type Attachment struct {
	ID            int       `json:"id"`
	ApplicationID int       `json:"-"`
	FileName      string    `json:"fileName"`
	FilePath      string    `json:"filePath"`
	FileType      string    `json:"fileType"`
	FileSize      int64     `json:"fileSize"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Stats summarizes the application board for the dashboard.
type Stats struct {
	Total             int             `json:"total"`
	Pending           int             `json:"pending"`
	Approved          int             `json:"approved"`
	Rejected          int             `json:"rejected"`
	WaitingAccounting int             `json:"waitingAccounting"`
	ApprovedAmount    decimal.Decimal `json:"approvedAmount"`
	LearnedItems      int             `json:"learnedItems"`
}
