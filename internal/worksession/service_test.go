package worksession_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/frahmantamala/workforce-presence/internal"
	"github.com/frahmantamala/workforce-presence/internal/attendance"
	attendancePostgres "github.com/frahmantamala/workforce-presence/internal/attendance/postgres"
	"github.com/frahmantamala/workforce-presence/internal/clock"
	companyDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/company"
	employeeDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/employee"
	qrDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/qrcode"
	"github.com/frahmantamala/workforce-presence/internal/core/testdb"
	"github.com/frahmantamala/workforce-presence/internal/identity"
	identityPostgres "github.com/frahmantamala/workforce-presence/internal/identity/postgres"
	"github.com/frahmantamala/workforce-presence/internal/worksession"
	sessionPostgres "github.com/frahmantamala/workforce-presence/internal/worksession/postgres"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var wib = time.FixedZone("WIB", 7*60*60)

func statusOf(err error) int {
	appErr, ok := internal.IsAppError(err)
	Expect(ok).To(BeTrue(), "expected AppError, got %v", err)
	return appErr.StatusCode
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var _ = Describe("Work Session Service", func() {
	var (
		ctx        context.Context
		clk        *clock.FakeClock
		service    *worksession.Service
		gate       *attendance.Service
		acme       *companyDatamodel.Company
		alice      *employeeDatamodel.Employee
		bob        *employeeDatamodel.Employee
		aliceQR    *qrDatamodel.QRCode
		sharedQR   *qrDatamodel.QRCode
		checkIn    func(token, override string)
		toggle     func(process string) (*worksession.ToggleResult, error)
		dayStarted time.Time
	)

	BeforeEach(func() {
		db, err := testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()

		dayStarted = time.Date(2025, 1, 15, 7, 55, 0, 0, wib)
		clk = clock.Fake(dayStarted)
		resolver := identity.NewService(identityPostgres.NewIdentityRepository(db), quietLogger())
		gate = attendance.NewService(attendancePostgres.NewAttendanceRepository(db), resolver, clk, wib, quietLogger())
		service = worksession.NewService(sessionPostgres.NewWorkSessionRepository(db), resolver, clk, wib, quietLogger())

		acme, err = testdb.CreateCompany(db, "ACME", "Acme Manpower", identity.CategoryManpower)
		Expect(err).NotTo(HaveOccurred())
		alice, err = testdb.CreateEmployee(db, acme, "EMP001", "Alice")
		Expect(err).NotTo(HaveOccurred())
		bob, err = testdb.CreateEmployee(db, acme, "EMP002", "Bob")
		Expect(err).NotTo(HaveOccurred())
		aliceQR, err = testdb.CreateCredential(db, acme, alice)
		Expect(err).NotTo(HaveOccurred())
		sharedQR, err = testdb.CreateCredential(db, acme, nil)
		Expect(err).NotTo(HaveOccurred())

		checkIn = func(token, override string) {
			_, err := gate.ScanSecurity(ctx, attendance.ScanRequest{QRID: token, EmployeeID: override})
			Expect(err).NotTo(HaveOccurred())
		}
		toggle = func(process string) (*worksession.ToggleResult, error) {
			return service.Toggle(ctx, worksession.ToggleRequest{QRID: aliceQR.QRID, ProcessName: process})
		}
	})

	Describe("Toggle", func() {
		BeforeEach(func() {
			checkIn(aliceQR.QRID, "")
			clk.Advance(5 * time.Minute)
		})

		It("yields IN, OUT, IN with a rounded duration", func() {
			first, err := toggle("CUTTING")
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Direction).To(Equal(worksession.DirectionIn))
			Expect(first.Message).To(Equal(worksession.MessageStarted))
			Expect(first.Session.IsOpen()).To(BeTrue())
			Expect(*first.Session.EmployeeID).To(Equal(alice.ID))

			clk.Advance(30*time.Minute + 30*time.Second)
			second, err := toggle("CUTTING")
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Direction).To(Equal(worksession.DirectionOut))
			Expect(second.Message).To(Equal(worksession.MessageEnded))
			Expect(second.Session.ID).To(Equal(first.Session.ID))
			Expect(*second.Session.DurationMinutes).To(Equal(int64(31)))

			clk.Advance(time.Minute)
			third, err := toggle("CUTTING")
			Expect(err).NotTo(HaveOccurred())
			Expect(third.Direction).To(Equal(worksession.DirectionIn))
			Expect(third.Session.ID).NotTo(Equal(first.Session.ID))
		})

		It("rounds durations under half a minute down", func() {
			_, err := toggle("CUTTING")
			Expect(err).NotTo(HaveOccurred())
			clk.Advance(45*time.Minute + 29*time.Second)
			out, err := toggle("CUTTING")
			Expect(err).NotTo(HaveOccurred())
			Expect(*out.Session.DurationMinutes).To(Equal(int64(45)))
		})

		It("refuses a parallel session in another process with Conflict", func() {
			_, err := toggle("CUTTING")
			Expect(err).NotTo(HaveOccurred())

			_, err = toggle("SEWING")
			Expect(errors.Is(err, worksession.ErrParallelSession)).To(BeTrue())
			Expect(statusOf(err)).To(Equal(http.StatusConflict))
		})

		It("lets a stop through after the employee checked OUT", func() {
			_, err := toggle("CUTTING")
			Expect(err).NotTo(HaveOccurred())
			checkIn(aliceQR.QRID, "")

			out, err := toggle("CUTTING")
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Direction).To(Equal(worksession.DirectionOut))
		})
	})

	Describe("security precondition", func() {
		It("rejects a start without check-in", func() {
			_, err := toggle("CUTTING")
			Expect(errors.Is(err, worksession.ErrCheckInRequired)).To(BeTrue())
			Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
		})

		It("rejects a start after the latest scan was OUT", func() {
			checkIn(aliceQR.QRID, "")
			clk.Advance(time.Hour)
			checkIn(aliceQR.QRID, "")

			_, err := toggle("CUTTING")
			Expect(errors.Is(err, worksession.ErrCheckInRequired)).To(BeTrue())
		})

		It("ignores yesterday's check-in", func() {
			checkIn(aliceQR.QRID, "")
			clk.Advance(24 * time.Hour)

			_, err := toggle("CUTTING")
			Expect(errors.Is(err, worksession.ErrCheckInRequired)).To(BeTrue())
		})
	})

	Describe("shared credentials", func() {
		It("requires a named employee", func() {
			_, err := service.Toggle(ctx, worksession.ToggleRequest{QRID: sharedQR.QRID, ProcessName: "CUTTING"})
			Expect(errors.Is(err, worksession.ErrEmployeeRequired)).To(BeTrue())
			Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
		})

		It("opens the session for the override employee", func() {
			checkIn(sharedQR.QRID, bob.ID)

			result, err := service.Toggle(ctx, worksession.ToggleRequest{QRID: sharedQR.QRID, ProcessName: "CUTTING", EmployeeID: bob.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Direction).To(Equal(worksession.DirectionIn))
			Expect(*result.Session.EmployeeID).To(Equal(bob.ID))
			Expect(result.Session.QRCodeID).To(Equal(sharedQR.ID))
		})
	})

	Describe("Start and Stop", func() {
		It("rejects a second start for the same credential and process", func() {
			checkIn(aliceQR.QRID, "")
			req := worksession.ToggleRequest{QRID: aliceQR.QRID, ProcessName: "CUTTING"}
			_, err := service.Start(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Start(ctx, req)
			Expect(errors.Is(err, worksession.ErrSessionInProgress)).To(BeTrue())
			Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
		})

		It("reports NotFound when nothing is open", func() {
			_, err := service.Stop(ctx, worksession.ToggleRequest{QRID: aliceQR.QRID, ProcessName: "CUTTING"})
			Expect(errors.Is(err, worksession.ErrNoOpenSession)).To(BeTrue())
			Expect(statusOf(err)).To(Equal(http.StatusNotFound))
		})

		It("requires a process name", func() {
			_, err := service.Toggle(ctx, worksession.ToggleRequest{QRID: aliceQR.QRID})
			Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("UpdateTimes", func() {
		var sessionID string

		BeforeEach(func() {
			checkIn(aliceQR.QRID, "")
			result, err := toggle("CUTTING")
			Expect(err).NotTo(HaveOccurred())
			sessionID = result.Session.ID
		})

		It("recomputes the duration and records the editor", func() {
			start := time.Date(2025, 1, 15, 8, 0, 0, 0, wib)
			end := time.Date(2025, 1, 15, 9, 30, 0, 0, wib)
			editor := uuid.NewString()

			updated, err := service.UpdateTimes(ctx, sessionID, worksession.UpdateTimesRequest{StartTime: &start, EndTime: &end}, editor)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.StartTime).To(BeTemporally("==", start))
			Expect(updated.EndTime).NotTo(BeNil())
			Expect(*updated.DurationMinutes).To(Equal(int64(90)))
			Expect(*updated.EditedBy).To(Equal(editor))
		})

		It("rejects an end before the start", func() {
			start := time.Date(2025, 1, 15, 10, 0, 0, 0, wib)
			end := time.Date(2025, 1, 15, 9, 0, 0, 0, wib)

			_, err := service.UpdateTimes(ctx, sessionID, worksession.UpdateTimesRequest{StartTime: &start, EndTime: &end}, "")
			Expect(errors.Is(err, worksession.ErrInvalidTimeRange)).To(BeTrue())
			Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
		})

		It("fails with NotFound for an unknown session", func() {
			_, err := service.UpdateTimes(ctx, uuid.NewString(), worksession.UpdateTimesRequest{}, "")
			Expect(errors.Is(err, worksession.ErrSessionNotFound)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("filters the day's sessions by status", func() {
			checkIn(aliceQR.QRID, "")
			checkIn(sharedQR.QRID, bob.ID)

			_, err := toggle("CUTTING")
			Expect(err).NotTo(HaveOccurred())
			clk.Advance(10 * time.Minute)
			_, err = toggle("CUTTING")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Toggle(ctx, worksession.ToggleRequest{QRID: sharedQR.QRID, ProcessName: "SEWING", EmployeeID: bob.ID})
			Expect(err).NotTo(HaveOccurred())

			all, err := service.List(ctx, worksession.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))

			open, err := service.List(ctx, worksession.ListFilter{Date: "2025-01-15", Status: "OPEN"})
			Expect(err).NotTo(HaveOccurred())
			Expect(open).To(HaveLen(1))
			Expect(open[0].ProcessName).To(Equal("SEWING"))

			closed, err := service.List(ctx, worksession.ListFilter{Date: "2025-01-15", Status: worksession.StatusClosed})
			Expect(err).NotTo(HaveOccurred())
			Expect(closed).To(HaveLen(1))

			other, err := service.List(ctx, worksession.ListFilter{Date: "2025-01-14"})
			Expect(err).NotTo(HaveOccurred())
			Expect(other).To(BeEmpty())
		})

		It("rejects an unknown status", func() {
			_, err := service.List(ctx, worksession.ListFilter{Status: "paused"})
			Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
		})
	})
})
