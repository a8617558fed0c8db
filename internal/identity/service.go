package identity

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/workforce-presence/internal"
	"github.com/frahmantamala/workforce-presence/internal/core/common/validation"
	qrDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/qrcode"
)

var (
	ErrEmployeeCodeNotFound    = internal.ErrEmployeeNotFound.WithMessage("employee code not found")
	ErrEmployeeWithoutQR       = internal.ErrQRNotFound.WithMessage("QR code not found for this employee")
	ErrEmployeeCompanyMismatch = internal.NewBadRequestError("employee does not belong to the QR code's company", internal.ErrCodeEmployeeMismatch)
	ErrCredentialExists        = internal.NewConflictError("QR code already exists for this employee", internal.ErrCodeQRAlreadyIssued)
)

// candidate is what a parser located. A nil candidate with a nil error means the
// token was not in that parser's format and the next parser should try.
type candidate struct {
	credential      *qrDatamodel.QRCode
	payloadEmployee string
}

type parser func(ctx context.Context, token string) (*candidate, error)

type Service struct {
	repo    RepositoryAPI
	logger  *slog.Logger
	parsers []parser
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	s := &Service{
		repo:   repo,
		logger: logger,
	}
	s.parsers = []parser{
		s.tryParseJSONPayload,
		s.tryParseBase64Payload,
		s.tryParseDirectID,
		s.tryParseBusinessCode,
	}
	return s
}

// Resolve turns a scanned token into a credential identity. override, when it is a
// well-formed employee id of the credential's company, wins over both the employee
// carried in the payload and the credential's own employee.
func (s *Service) Resolve(ctx context.Context, token, override string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, internal.ErrQRRequired
	}

	var found *candidate
	for _, parse := range s.parsers {
		c, err := parse(ctx, token)
		if err != nil {
			return nil, err
		}
		if c != nil {
			found = c
			break
		}
	}
	if found == nil || found.credential == nil {
		return nil, internal.ErrQRNotFound
	}

	id := FromCredential(found.credential)
	for _, ref := range []string{strings.TrimSpace(override), found.payloadEmployee} {
		if !validation.IsUUID(ref) {
			continue
		}
		employeeID, err := s.validateOverride(ctx, found.credential, ref)
		if err != nil {
			return nil, err
		}
		id.EmployeeID = &employeeID
		break
	}

	s.logger.Debug("identity resolved",
		"credential_id", id.CredentialID,
		"company_id", id.CompanyID,
		"has_employee", id.HasEmployee())

	return id, nil
}

// IssueForEmployee returns the employee's credential, creating it on first request.
func (s *Service) IssueForEmployee(ctx context.Context, employeeID string) (*Credential, error) {
	employeeID = strings.TrimSpace(employeeID)
	v := validation.NewValidator()
	v.Field("employeeId", employeeID).Required().UUID()
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}

	emp, err := s.repo.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	cred, err := s.repo.GetCredentialByEmployeeID(ctx, emp.ID)
	switch {
	case err == nil:
	case errors.Is(err, internal.ErrQRNotFound):
		cred, err = s.createCredential(ctx, emp.ID, emp.CompanyID, emp.Category)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	payload, err := EncodePayload(Payload{
		CompanyID:   cred.CompanyID,
		CompanyName: cred.CompanyName,
		EmployeeID:  emp.ID,
	})
	if err != nil {
		return nil, internal.NewInternalError("failed to encode QR payload", err)
	}

	return ToCredential(cred, payload), nil
}

func (s *Service) createCredential(ctx context.Context, employeeID, companyID, category string) (*qrDatamodel.QRCode, error) {
	company, err := s.repo.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	cred := &qrDatamodel.QRCode{
		CompanyID:   company.ID,
		CompanyName: company.Name,
		EmployeeID:  &employeeID,
		Category:    category,
	}
	if err := s.repo.CreateCredential(ctx, cred); err != nil {
		if errors.Is(err, ErrCredentialExists) {
			// a concurrent request issued it first
			return s.repo.GetCredentialByEmployeeID(ctx, employeeID)
		}
		s.logger.Error("failed to create credential", "error", err, "employee_id", employeeID)
		return nil, err
	}

	s.logger.Info("credential issued", "credential_id", cred.ID, "employee_id", employeeID)
	return cred, nil
}

func (s *Service) validateOverride(ctx context.Context, cred *qrDatamodel.QRCode, employeeID string) (string, error) {
	emp, err := s.repo.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		return "", err
	}
	if emp.CompanyID != cred.CompanyID {
		s.logger.Warn("employee override rejected",
			"employee_id", employeeID,
			"employee_company_id", emp.CompanyID,
			"credential_company_id", cred.CompanyID)
		return "", ErrEmployeeCompanyMismatch
	}
	return emp.ID, nil
}

func (s *Service) tryParseJSONPayload(ctx context.Context, token string) (*candidate, error) {
	if !strings.HasPrefix(token, "{") {
		return nil, nil
	}
	var p Payload
	if err := json.Unmarshal([]byte(token), &p); err != nil {
		return nil, nil
	}

	c := &candidate{}
	if validation.IsUUID(p.EmployeeID) {
		c.payloadEmployee = p.EmployeeID
	}

	var err error
	switch {
	case p.QRID != "":
		c.credential, err = s.lookupReference(ctx, p.QRID)
	case validation.IsUUID(p.EmployeeID):
		c.credential, err = s.credentialForEmployee(ctx, p.EmployeeID)
	case p.EmployeeID != "":
		c.credential, err = s.credentialForCode(ctx, p.EmployeeID)
	default:
		return nil, internal.ErrQRNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) tryParseBase64Payload(ctx context.Context, token string) (*candidate, error) {
	raw, ok := decodeBase64(token)
	if !ok {
		return nil, nil
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil || !validation.IsUUID(p.EmployeeID) {
		return nil, nil
	}

	cred, err := s.credentialForEmployee(ctx, p.EmployeeID)
	if err != nil {
		return nil, err
	}
	return &candidate{credential: cred, payloadEmployee: p.EmployeeID}, nil
}

func (s *Service) tryParseDirectID(ctx context.Context, token string) (*candidate, error) {
	if !validation.IsUUID(token) {
		return nil, nil
	}
	cred, err := s.credentialByDirectID(ctx, token)
	if err != nil {
		return nil, err
	}
	return &candidate{credential: cred}, nil
}

func (s *Service) tryParseBusinessCode(ctx context.Context, token string) (*candidate, error) {
	cred, err := s.credentialForCode(ctx, token)
	if err != nil {
		return nil, err
	}
	return &candidate{credential: cred}, nil
}

func (s *Service) lookupReference(ctx context.Context, ref string) (*qrDatamodel.QRCode, error) {
	ref = strings.TrimSpace(ref)
	if validation.IsUUID(ref) {
		return s.credentialByDirectID(ctx, ref)
	}
	return s.credentialForCode(ctx, ref)
}

// credentialByDirectID accepts either the public qr_id or the row id of older codes.
func (s *Service) credentialByDirectID(ctx context.Context, id string) (*qrDatamodel.QRCode, error) {
	cred, err := s.repo.GetCredentialByQRID(ctx, id)
	if err == nil {
		return cred, nil
	}
	if !errors.Is(err, internal.ErrQRNotFound) {
		return nil, err
	}
	return s.repo.GetCredentialByID(ctx, id)
}

func (s *Service) credentialForEmployee(ctx context.Context, employeeID string) (*qrDatamodel.QRCode, error) {
	cred, err := s.repo.GetCredentialByEmployeeID(ctx, employeeID)
	if errors.Is(err, internal.ErrQRNotFound) {
		return nil, ErrEmployeeWithoutQR
	}
	return cred, err
}

func (s *Service) credentialForCode(ctx context.Context, code string) (*qrDatamodel.QRCode, error) {
	emp, err := s.repo.GetEmployeeByCode(ctx, code)
	if errors.Is(err, internal.ErrEmployeeNotFound) {
		return nil, ErrEmployeeCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.credentialForEmployee(ctx, emp.ID)
}

func decodeBase64(token string) ([]byte, bool) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if raw, err := enc.DecodeString(token); err == nil {
			return raw, true
		}
	}
	return nil, false
}
