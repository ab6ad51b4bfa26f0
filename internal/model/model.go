package model

import "time"

type Role string

const (
	RoleOperator   Role = "operator"
	RoleTechnician Role = "technician"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOperator, RoleTechnician, RoleAdmin:
		return true
	default:
		return false
	}
}

type Profile struct {
	ID           string
	Role         Role
	FullName     *string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Machine struct {
	ID                string
	Code              string
	Name              string
	Brand             *string
	Model             *string
	SerialNumber      *string
	YearOfManufacture *int
	Location          string
	Description       *string
	MainImageURL      *string
	// ScanToken is the secondary identifier printed on the physical QR
	// label. It is never the primary key.
	ScanToken string
	CreatedAt time.Time
}

type CheckIn struct {
	ID         string
	UserID     string
	MachineID  string
	ShiftStart time.Time
	CreatedAt  time.Time
}

type ChecklistQuestion struct {
	ID       string
	Question string
	Category string
}

type ChecklistStatus string

const (
	ChecklistStatusOK            ChecklistStatus = "ok"
	ChecklistStatusIssueReported ChecklistStatus = "issue_reported"
)

type ItemStatus string

const (
	ItemStatusOK      ItemStatus = "ok"
	ItemStatusWarning ItemStatus = "warning"
	ItemStatusFail    ItemStatus = "fail"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusOK, ItemStatusWarning, ItemStatusFail:
		return true
	default:
		return false
	}
}

type Checklist struct {
	ID           string
	CheckInID    string
	MachineID    string
	UserID       string
	Observations string
	Status       ChecklistStatus
	CreatedAt    time.Time
}

type ChecklistItem struct {
	ID          string
	ChecklistID string
	QuestionID  string
	Status      ItemStatus
	Notes       string
}

type RefreshSession struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}
