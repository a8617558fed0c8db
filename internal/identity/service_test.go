package identity_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/frahmantamala/workforce-presence/internal"
	companyDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/company"
	employeeDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/employee"
	qrDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/qrcode"
	"github.com/frahmantamala/workforce-presence/internal/core/testdb"
	"github.com/frahmantamala/workforce-presence/internal/identity"
	identityPostgres "github.com/frahmantamala/workforce-presence/internal/identity/postgres"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func statusOf(err error) int {
	appErr, ok := internal.IsAppError(err)
	Expect(ok).To(BeTrue(), "expected AppError, got %v", err)
	return appErr.StatusCode
}

var _ = Describe("Identity Resolver", func() {
	var (
		ctx        context.Context
		db         *gorm.DB
		service    *identity.Service
		acme       *companyDatamodel.Company
		globex     *companyDatamodel.Company
		alice      *employeeDatamodel.Employee
		bob        *employeeDatamodel.Employee
		outsider   *employeeDatamodel.Employee
		aliceQR    *qrDatamodel.QRCode
		sharedQR   *qrDatamodel.QRCode
		noQRWorker *employeeDatamodel.Employee
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = identity.NewService(identityPostgres.NewIdentityRepository(db), slogger)

		acme, err = testdb.CreateCompany(db, "ACME", "Acme Manpower", identity.CategoryManpower)
		Expect(err).NotTo(HaveOccurred())
		globex, err = testdb.CreateCompany(db, "GLOBEX", "Globex", identity.CategoryPermanent)
		Expect(err).NotTo(HaveOccurred())

		alice, err = testdb.CreateEmployee(db, acme, "EMP001", "Alice")
		Expect(err).NotTo(HaveOccurred())
		bob, err = testdb.CreateEmployee(db, acme, "EMP002", "Bob")
		Expect(err).NotTo(HaveOccurred())
		outsider, err = testdb.CreateEmployee(db, globex, "GLX001", "Olive")
		Expect(err).NotTo(HaveOccurred())
		noQRWorker, err = testdb.CreateEmployee(db, acme, "EMP003", "Carl")
		Expect(err).NotTo(HaveOccurred())

		aliceQR, err = testdb.CreateCredential(db, acme, alice)
		Expect(err).NotTo(HaveOccurred())
		sharedQR, err = testdb.CreateCredential(db, acme, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Resolve", func() {
		Context("with a raw credential id", func() {
			It("resolves the public qr id", func() {
				id, err := service.Resolve(ctx, aliceQR.QRID, "")
				Expect(err).NotTo(HaveOccurred())
				Expect(id.CredentialID).To(Equal(aliceQR.ID))
				Expect(id.CompanyID).To(Equal(acme.ID))
				Expect(id.CompanyName).To(Equal("Acme Manpower"))
				Expect(*id.EmployeeID).To(Equal(alice.ID))
			})

			It("falls back to the row id for older codes", func() {
				id, err := service.Resolve(ctx, aliceQR.ID, "")
				Expect(err).NotTo(HaveOccurred())
				Expect(id.QRID).To(Equal(aliceQR.QRID))
			})

			It("fails with NotFound for an unknown id", func() {
				_, err := service.Resolve(ctx, uuid.NewString(), "")
				Expect(errors.Is(err, internal.ErrQRNotFound)).To(BeTrue())
				Expect(statusOf(err)).To(Equal(http.StatusNotFound))
			})
		})

		Context("with a JSON payload", func() {
			It("prefers the qrId field", func() {
				token := fmt.Sprintf(`{"qrId":%q,"employeeId":"EMP002"}`, aliceQR.QRID)
				id, err := service.Resolve(ctx, token, "")
				Expect(err).NotTo(HaveOccurred())
				Expect(id.CredentialID).To(Equal(aliceQR.ID))
				Expect(*id.EmployeeID).To(Equal(alice.ID))
			})

			It("remembers a UUID employeeId as the employee", func() {
				token := fmt.Sprintf(`{"qrId":%q,"employeeId":%q}`, sharedQR.QRID, bob.ID)
				id, err := service.Resolve(ctx, token, "")
				Expect(err).NotTo(HaveOccurred())
				Expect(id.CredentialID).To(Equal(sharedQR.ID))
				Expect(*id.EmployeeID).To(Equal(bob.ID))
			})

			It("resolves a business code carried in employeeId", func() {
				id, err := service.Resolve(ctx, `{"employeeId":"EMP001"}`, "")
				Expect(err).NotTo(HaveOccurred())
				Expect(id.CredentialID).To(Equal(aliceQR.ID))
			})

			It("fails when neither field is present", func() {
				_, err := service.Resolve(ctx, `{"companyId":"x"}`, "")
				Expect(errors.Is(err, internal.ErrQRNotFound)).To(BeTrue())
			})
		})

		Context("with a base64 payload", func() {
			It("resolves the employee's credential and employee", func() {
				raw, _ := json.Marshal(map[string]string{
					"companyId":   acme.ID,
					"companyName": acme.Name,
					"employeeId":  alice.ID,
				})
				token := base64.StdEncoding.EncodeToString(raw)

				id, err := service.Resolve(ctx, token, "")
				Expect(err).NotTo(HaveOccurred())
				Expect(id.CredentialID).To(Equal(aliceQR.ID))
				Expect(*id.EmployeeID).To(Equal(alice.ID))
			})

			It("reports a missing credential for that employee", func() {
				raw, _ := json.Marshal(map[string]string{"employeeId": noQRWorker.ID})
				_, err := service.Resolve(ctx, base64.StdEncoding.EncodeToString(raw), "")
				Expect(errors.Is(err, internal.ErrQRNotFound)).To(BeTrue())
				Expect(err.Error()).To(ContainSubstring("QR code not found for this employee"))
			})
		})

		Context("with a business employee code", func() {
			It("resolves EMP001 to Alice's credential", func() {
				id, err := service.Resolve(ctx, "EMP001", "")
				Expect(err).NotTo(HaveOccurred())
				Expect(id.CredentialID).To(Equal(aliceQR.ID))
				Expect(*id.EmployeeID).To(Equal(alice.ID))
			})

			It("fails with employee code not found", func() {
				_, err := service.Resolve(ctx, "EMP999", "")
				Expect(errors.Is(err, internal.ErrEmployeeNotFound)).To(BeTrue())
				Expect(err.Error()).To(Equal("employee code not found"))
				Expect(statusOf(err)).To(Equal(http.StatusNotFound))
			})
		})

		It("rejects an empty token", func() {
			_, err := service.Resolve(ctx, "   ", "")
			Expect(errors.Is(err, internal.ErrQRRequired)).To(BeTrue())
			Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
		})

		Context("with an explicit employee override", func() {
			It("leaves a shared credential without employee when absent", func() {
				id, err := service.Resolve(ctx, sharedQR.QRID, "")
				Expect(err).NotTo(HaveOccurred())
				Expect(id.HasEmployee()).To(BeFalse())
			})

			It("assigns a same-company employee to a shared credential", func() {
				id, err := service.Resolve(ctx, sharedQR.QRID, bob.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(*id.EmployeeID).To(Equal(bob.ID))
			})

			It("takes precedence over the payload employee", func() {
				token := fmt.Sprintf(`{"qrId":%q,"employeeId":%q}`, sharedQR.QRID, bob.ID)
				id, err := service.Resolve(ctx, token, alice.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(*id.EmployeeID).To(Equal(alice.ID))
			})

			It("rejects an employee of another company", func() {
				_, err := service.Resolve(ctx, sharedQR.QRID, outsider.ID)
				Expect(errors.Is(err, identity.ErrEmployeeCompanyMismatch)).To(BeTrue())
				Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
			})

			It("fails with NotFound for an unknown employee", func() {
				_, err := service.Resolve(ctx, sharedQR.QRID, uuid.NewString())
				Expect(errors.Is(err, internal.ErrEmployeeNotFound)).To(BeTrue())
			})

			It("ignores a malformed override", func() {
				id, err := service.Resolve(ctx, aliceQR.QRID, "not-a-uuid")
				Expect(err).NotTo(HaveOccurred())
				Expect(*id.EmployeeID).To(Equal(alice.ID))
			})
		})
	})

	Describe("IssueForEmployee", func() {
		It("creates the credential once and returns it afterwards", func() {
			first, err := service.IssueForEmployee(ctx, noQRWorker.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.QRID).NotTo(BeEmpty())
			Expect(first.CompanyName).To(Equal(acme.Name))

			second, err := service.IssueForEmployee(ctx, noQRWorker.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.ID).To(Equal(first.ID))
			Expect(second.QRID).To(Equal(first.QRID))
		})

		It("encodes a payload that resolves back to the employee", func() {
			cred, err := service.IssueForEmployee(ctx, alice.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(cred.ID).To(Equal(aliceQR.ID))

			raw, err := base64.StdEncoding.DecodeString(cred.Payload)
			Expect(err).NotTo(HaveOccurred())
			var p identity.Payload
			Expect(json.Unmarshal(raw, &p)).To(Succeed())
			Expect(p.EmployeeID).To(Equal(alice.ID))
			Expect(p.CompanyID).To(Equal(acme.ID))

			id, err := service.Resolve(ctx, cred.Payload, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(id.CredentialID).To(Equal(aliceQR.ID))
		})

		It("rejects a malformed employee id", func() {
			_, err := service.IssueForEmployee(ctx, "EMP001")
			Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
			Expect(err).To(MatchError("employeeId must be a valid UUID"))

			_, err = service.IssueForEmployee(ctx, "  ")
			Expect(err).To(MatchError("employeeId is required"))
		})

		It("fails with NotFound for an unknown employee", func() {
			_, err := service.IssueForEmployee(ctx, uuid.NewString())
			Expect(errors.Is(err, internal.ErrEmployeeNotFound)).To(BeTrue())
		})
	})
})

type failingRepo struct {
	identity.RepositoryAPI
	err error
}

func (f *failingRepo) GetCredentialByQRID(ctx context.Context, qrID string) (*qrDatamodel.QRCode, error) {
	return nil, f.err
}

var _ = Describe("Identity Resolver with a failing store", func() {
	It("propagates unexpected store errors instead of masking them as NotFound", func() {
		storeErr := errors.New("connection reset")
		service := identity.NewService(&failingRepo{err: storeErr}, slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))

		_, err := service.Resolve(context.Background(), uuid.NewString(), "")
		Expect(err).To(MatchError(storeErr))
	})
})
