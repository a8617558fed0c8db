package testdb

import (
	companyDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/company"
	employeeDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/employee"
	qrDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/qrcode"
	"gorm.io/gorm"
)

func CreateCompany(db *gorm.DB, code, name, category string) (*companyDatamodel.Company, error) {
	c := &companyDatamodel.Company{CompanyCode: code, Name: name, EmployeeTypeAllowed: category}
	return c, db.Create(c).Error
}

func CreateEmployee(db *gorm.DB, company *companyDatamodel.Company, code, name string) (*employeeDatamodel.Employee, error) {
	e := &employeeDatamodel.Employee{
		EmployeeCode: code,
		Name:         name,
		Category:     company.EmployeeTypeAllowed,
		CompanyID:    company.ID,
		IsActive:     true,
	}
	return e, db.Create(e).Error
}

// CreateCredential issues a credential for employee, or a shared one when employee is nil.
func CreateCredential(db *gorm.DB, company *companyDatamodel.Company, employee *employeeDatamodel.Employee) (*qrDatamodel.QRCode, error) {
	q := &qrDatamodel.QRCode{
		CompanyID:   company.ID,
		CompanyName: company.Name,
		Category:    company.EmployeeTypeAllowed,
	}
	if employee != nil {
		id := employee.ID
		q.EmployeeID = &id
		q.Category = employee.Category
	}
	return q, db.Create(q).Error
}
