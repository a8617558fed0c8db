package identity

import (
	"context"
	"encoding/base64"
	"encoding/json"

	companyDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/company"
	employeeDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/employee"
	qrDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/qrcode"
)

const (
	CategoryManpower  = "manpower"
	CategoryPermanent = "permanent"
)

// Identity is the canonical result of resolving a scanned token.
type Identity struct {
	CredentialID string  `json:"credentialId"`
	QRID         string  `json:"qrId"`
	CompanyID    string  `json:"companyId"`
	CompanyName  string  `json:"companyName"`
	EmployeeID   *string `json:"employeeId,omitempty"`
	Category     string  `json:"category"`
}

func (i *Identity) HasEmployee() bool {
	return i != nil && i.EmployeeID != nil && *i.EmployeeID != ""
}

// Credential is a scan credential as returned to QR issuance callers.
type Credential struct {
	ID          string  `json:"id"`
	QRID        string  `json:"qrId"`
	CompanyID   string  `json:"companyId"`
	CompanyName string  `json:"companyName"`
	EmployeeID  *string `json:"employeeId,omitempty"`
	Category    string  `json:"category"`
	Payload     string  `json:"payload"`
}

// Payload is the JSON body a QR image encodes, optionally wrapped in base64.
type Payload struct {
	QRID        string `json:"qrId,omitempty"`
	CompanyID   string `json:"companyId,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	EmployeeID  string `json:"employeeId,omitempty"`
}

// EncodePayload renders the base64 JSON payload printed on an employee's QR code.
func EncodePayload(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

type RepositoryAPI interface {
	GetCredentialByQRID(ctx context.Context, qrID string) (*qrDatamodel.QRCode, error)
	GetCredentialByID(ctx context.Context, id string) (*qrDatamodel.QRCode, error)
	GetCredentialByEmployeeID(ctx context.Context, employeeID string) (*qrDatamodel.QRCode, error)
	CreateCredential(ctx context.Context, credential *qrDatamodel.QRCode) error
	GetEmployeeByID(ctx context.Context, id string) (*employeeDatamodel.Employee, error)
	GetEmployeeByCode(ctx context.Context, code string) (*employeeDatamodel.Employee, error)
	GetCompany(ctx context.Context, idOrCode string) (*companyDatamodel.Company, error)
}

func FromCredential(q *qrDatamodel.QRCode) *Identity {
	return &Identity{
		CredentialID: q.ID,
		QRID:         q.QRID,
		CompanyID:    q.CompanyID,
		CompanyName:  q.CompanyName,
		EmployeeID:   q.EmployeeID,
		Category:     q.Category,
	}
}

func ToCredential(q *qrDatamodel.QRCode, payload string) *Credential {
	return &Credential{
		ID:          q.ID,
		QRID:        q.QRID,
		CompanyID:   q.CompanyID,
		CompanyName: q.CompanyName,
		EmployeeID:  q.EmployeeID,
		Category:    q.Category,
		Payload:     payload,
	}
}
