package voucher

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeAttendance    Type = "ATTENDANCE"
	TypeReimbursement Type = "REIMBURSEMENT"
)

func (t Type) IsValid() bool {
	return t == TypeAttendance || t == TypeReimbursement
}

// Voucher is the payable record of one beneficiary for one pay cycle. It is
// open while BatchID is nil and frozen once a payment batch claims it.
type Voucher struct {
	ID              string          `json:"id"`
	OfficeID        string          `json:"officeId"`
	BeneficiaryID   string          `json:"beneficiaryId"`
	CycleStart      string          `json:"cycleStart"`
	CycleEnd        string          `json:"cycleEnd"`
	Type            Type            `json:"type"`
	AttendanceCount decimal.Decimal `json:"attendanceCount"`
	Amount          decimal.Decimal `json:"amount"`
	BatchID         *string         `json:"batchId"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (v Voucher) IsOpen() bool {
	return v.BatchID == nil
}

// OpenKey identifies the single open voucher allowed per beneficiary, cycle
// and type.
type OpenKey struct {
	OfficeID      string
	BeneficiaryID string
	CycleStart    string
	CycleEnd      string
	Type          Type
}

func (v Voucher) OpenKey() OpenKey {
	return OpenKey{
		OfficeID:      v.OfficeID,
		BeneficiaryID: v.BeneficiaryID,
		CycleStart:    v.CycleStart,
		CycleEnd:      v.CycleEnd,
		Type:          v.Type,
	}
}

// ClaimStatus is the approval state of a reimbursement claim.
type ClaimStatus string

const (
	ClaimPending   ClaimStatus = "PENDING"
	ClaimConfirmed ClaimStatus = "CONFIRMED"
	ClaimCancelled ClaimStatus = "CANCELLED"
)

func (s ClaimStatus) IsValid() bool {
	switch s {
	case ClaimPending, ClaimConfirmed, ClaimCancelled:
		return true
	}
	return false
}

// ReimbursementClaim is one expense claim; confirmed claims in a cycle add up
// to the REIMBURSEMENT voucher.
type ReimbursementClaim struct {
	ID          string          `json:"id"`
	OfficeID    string          `json:"office_id"`
	PhoneNumber string          `json:"phone_number"`
	ClaimType   string          `json:"claim_type"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   int64           `json:"timestamp"`
	Status      ClaimStatus     `json:"status"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
