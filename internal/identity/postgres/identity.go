package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/workforce-presence/internal"
	"github.com/frahmantamala/workforce-presence/internal/core/common/validation"
	companyDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/company"
	employeeDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/employee"
	qrDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/qrcode"
	"github.com/frahmantamala/workforce-presence/internal/identity"
	"gorm.io/gorm"
)

// IdentityRepository implements identity.RepositoryAPI using GORM
type IdentityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) identity.RepositoryAPI {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) GetCredentialByQRID(ctx context.Context, qrID string) (*qrDatamodel.QRCode, error) {
	return r.firstCredential(ctx, "qr_id = ?", qrID)
}

func (r *IdentityRepository) GetCredentialByID(ctx context.Context, id string) (*qrDatamodel.QRCode, error) {
	return r.firstCredential(ctx, "id = ?", id)
}

func (r *IdentityRepository) GetCredentialByEmployeeID(ctx context.Context, employeeID string) (*qrDatamodel.QRCode, error) {
	return r.firstCredential(ctx, "employee_id = ?", employeeID)
}

func (r *IdentityRepository) firstCredential(ctx context.Context, query string, arg string) (*qrDatamodel.QRCode, error) {
	var q qrDatamodel.QRCode
	err := r.db.WithContext(ctx).Where(query, arg).First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrQRNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *IdentityRepository) CreateCredential(ctx context.Context, credential *qrDatamodel.QRCode) error {
	err := r.db.WithContext(ctx).Create(credential).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return identity.ErrCredentialExists.WithCause(err)
	}
	return err
}

func (r *IdentityRepository) GetEmployeeByID(ctx context.Context, id string) (*employeeDatamodel.Employee, error) {
	var e employeeDatamodel.Employee
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *IdentityRepository) GetEmployeeByCode(ctx context.Context, code string) (*employeeDatamodel.Employee, error) {
	var e employeeDatamodel.Employee
	err := r.db.WithContext(ctx).Where("employee_code = ?", code).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetCompany looks a company up by row id when the reference is a UUID, otherwise by business code.
func (r *IdentityRepository) GetCompany(ctx context.Context, idOrCode string) (*companyDatamodel.Company, error) {
	var c companyDatamodel.Company
	column := "company_code = ?"
	if validation.IsUUID(idOrCode) {
		column = "id = ?"
	}
	err := r.db.WithContext(ctx).Where(column, idOrCode).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrCompanyNotFound
		}
		return nil, err
	}
	return &c, nil
}
