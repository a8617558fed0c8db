package analytics_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/workforce-presence/internal/analytics"
	analyticsPostgres "github.com/frahmantamala/workforce-presence/internal/analytics/postgres"
	"github.com/frahmantamala/workforce-presence/internal/clock"
	attendanceDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/attendance"
	breakDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/breaksession"
	companyDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/company"
	employeeDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/employee"
	qrDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/qrcode"
	sessionDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/worksession"
	"github.com/frahmantamala/workforce-presence/internal/core/testdb"
	"github.com/frahmantamala/workforce-presence/internal/identity"
	"github.com/frahmantamala/workforce-presence/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var wib = time.FixedZone("WIB", 7*60*60)

func at(day, hour, minute int) time.Time {
	return time.Date(2025, 1, day, hour, minute, 0, 0, wib).UTC()
}

func minutes(n int64) *int64 { return &n }

func ptr(t time.Time) *time.Time { return &t }

var _ = Describe("Analytics Service", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		clk      *clock.FakeClock
		service  *analytics.Service
		acme     *companyDatamodel.Company
		zeta     *companyDatamodel.Company
		beta     *companyDatamodel.Company
		alice    *employeeDatamodel.Employee
		bob      *employeeDatamodel.Employee
		carol    *employeeDatamodel.Employee
		dave     *employeeDatamodel.Employee
		sharedQR *qrDatamodel.QRCode
		zetaQR   *qrDatamodel.QRCode
		daveQR   *qrDatamodel.QRCode
	)

	scan := func(emp *employeeDatamodel.Employee, cred *qrDatamodel.QRCode, scanType string, when time.Time) {
		Expect(db.Create(&attendanceDatamodel.AttendanceLog{
			QRCodeID:     cred.ID,
			CompanyID:    emp.CompanyID,
			EmployeeID:   emp.ID,
			ScanType:     scanType,
			ScanLocation: "SECURITY",
			ScanTime:     when,
			WorkDate:     when.In(wib).Format("2006-01-02"),
		}).Error).To(Succeed())
	}

	session := func(cred *qrDatamodel.QRCode, emp *employeeDatamodel.Employee, start time.Time, end *time.Time, duration *int64) {
		row := &sessionDatamodel.WorkSession{
			QRCodeID:        cred.ID,
			CompanyID:       cred.CompanyID,
			ProcessName:     "CUTTING-" + start.Format("150405"),
			StartTime:       start,
			EndTime:         end,
			DurationMinutes: duration,
		}
		if emp != nil {
			id := emp.ID
			row.EmployeeID = &id
		}
		Expect(db.Create(row).Error).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		sqlxDB, err := testdb.SQLX(db)
		Expect(err).NotTo(HaveOccurred())

		ctx = context.Background()
		clk = clock.Fake(time.Date(2025, 1, 15, 17, 30, 0, 0, wib))
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = analytics.NewService(analyticsPostgres.NewAnalyticsRepository(sqlxDB), clk, wib, logger)

		acme, err = testdb.CreateCompany(db, "ACME", "Acme Manpower", identity.CategoryManpower)
		Expect(err).NotTo(HaveOccurred())
		zeta, err = testdb.CreateCompany(db, "ZETA", "Zeta Labor", identity.CategoryManpower)
		Expect(err).NotTo(HaveOccurred())
		beta, err = testdb.CreateCompany(db, "BETA", "Beta Permanent", identity.CategoryPermanent)
		Expect(err).NotTo(HaveOccurred())

		alice, err = testdb.CreateEmployee(db, acme, "EMP001", "Alice")
		Expect(err).NotTo(HaveOccurred())
		bob, err = testdb.CreateEmployee(db, acme, "EMP002", "Bob")
		Expect(err).NotTo(HaveOccurred())
		carol, err = testdb.CreateEmployee(db, zeta, "EMP003", "Carol")
		Expect(err).NotTo(HaveOccurred())
		dave, err = testdb.CreateEmployee(db, beta, "EMP004", "Dave")
		Expect(err).NotTo(HaveOccurred())

		sharedQR, err = testdb.CreateCredential(db, acme, nil)
		Expect(err).NotTo(HaveOccurred())
		zetaQR, err = testdb.CreateCredential(db, zeta, nil)
		Expect(err).NotTo(HaveOccurred())
		daveQR, err = testdb.CreateCredential(db, beta, dave)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("manpower hours", func() {
		BeforeEach(func() {
			session(sharedQR, alice, at(15, 8, 0), ptr(at(15, 8, 30)), minutes(30))
			session(sharedQR, alice, at(15, 9, 0), ptr(at(15, 9, 45)), nil)
			session(sharedQR, alice, at(15, 17, 15), nil, nil)
			session(zetaQR, carol, at(15, 10, 0), ptr(at(15, 10, 20)), minutes(20))
			session(daveQR, dave, at(15, 8, 0), ptr(at(15, 9, 0)), minutes(60))
			session(sharedQR, bob, at(2, 8, 0), ptr(at(2, 9, 0)), minutes(60))
		})

		It("totals manpower sessions of the day per company", func() {
			report, err := service.DailyHours(ctx, "2025-01-15")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Date).To(Equal("2025-01-15"))
			Expect(report.Rows).To(HaveLen(2))

			first := report.Rows[0]
			Expect(first.CompanyName).To(Equal("Acme Manpower"))
			Expect(first.CompanyID).To(Equal(acme.ID))
			Expect(first.SessionCount).To(Equal(3))
			Expect(first.TotalMinutes).To(Equal(90.0))
			Expect(first.TotalHours).To(Equal(1.5))
			Expect(first.AverageHoursPerSession).To(BeNil())

			Expect(report.Rows[1].CompanyName).To(Equal("Zeta Labor"))
			Expect(report.Rows[1].TotalHours).To(Equal(0.33))
		})

		It("orders company names byte-wise", func() {
			night, err := testdb.CreateCompany(db, "NITE", "acme Night Shift", identity.CategoryManpower)
			Expect(err).NotTo(HaveOccurred())
			nightQR, err := testdb.CreateCredential(db, night, nil)
			Expect(err).NotTo(HaveOccurred())
			session(nightQR, nil, at(15, 11, 0), ptr(at(15, 11, 30)), minutes(30))

			report, err := service.DailyHours(ctx, "2025-01-15")
			Expect(err).NotTo(HaveOccurred())
			names := make([]string, 0, len(report.Rows))
			for _, row := range report.Rows {
				names = append(names, row.CompanyName)
			}
			Expect(names).To(Equal([]string{"Acme Manpower", "Zeta Labor", "acme Night Shift"}))
		})

		It("adds the per-session average", func() {
			report, err := service.DailyAverageHours(ctx, "2025-01-15")
			Expect(err).NotTo(HaveOccurred())
			Expect(*report.Rows[0].AverageHoursPerSession).To(Equal(0.5))
			Expect(*report.Rows[1].AverageHoursPerSession).To(Equal(0.33))
		})

		It("covers the whole month", func() {
			report, err := service.MonthlyHours(ctx, "2025-01")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Month).To(Equal("2025-01"))
			Expect(report.Rows[0].SessionCount).To(Equal(4))
			Expect(report.Rows[0].TotalMinutes).To(Equal(150.0))
			Expect(report.Rows[0].TotalHours).To(Equal(2.5))
		})

		It("defaults to the current day and month", func() {
			daily, err := service.DailyHours(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(daily.Date).To(Equal("2025-01-15"))

			monthly, err := service.MonthlyHours(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(monthly.Month).To(Equal("2025-01"))
		})

		It("rejects malformed periods", func() {
			_, err := service.DailyHours(ctx, "2025/01/15")
			Expect(err).To(HaveOccurred())
			_, err = service.MonthlyHours(ctx, "January")
			Expect(err).To(HaveOccurred())
		})

		It("returns no rows for a quiet day", func() {
			report, err := service.DailyAverageHours(ctx, "2025-01-20")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Rows).To(BeEmpty())
		})
	})

	Describe("DailyIdle", func() {
		BeforeEach(func() {
			aliceQR, err := testdb.CreateCredential(db, acme, alice)
			Expect(err).NotTo(HaveOccurred())

			scan(alice, aliceQR, "IN", at(15, 8, 0))
			scan(alice, aliceQR, "OUT", at(15, 17, 0))
			scan(bob, sharedQR, "IN", at(15, 16, 0))
			scan(carol, zetaQR, "IN", at(15, 16, 50))
			scan(dave, daveQR, "OUT", at(15, 7, 0))

			session(sharedQR, alice, at(15, 8, 10), ptr(at(15, 8, 40)), minutes(30))
			session(sharedQR, alice, at(15, 9, 0), ptr(at(15, 9, 45)), nil)
			session(sharedQR, alice, at(15, 17, 15), nil, nil)

			Expect(db.Create(&breakDatamodel.BreakSession{BreakType: "LUNCH", StartTime: at(15, 12, 0), EndTime: ptr(at(15, 12, 45))}).Error).To(Succeed())
			Expect(db.Create(&breakDatamodel.BreakSession{BreakType: "TEA", StartTime: at(15, 17, 15)}).Error).To(Succeed())
			Expect(db.Create(&breakDatamodel.BreakSession{BreakType: "LUNCH", StartTime: at(14, 12, 0), EndTime: ptr(at(14, 13, 0))}).Error).To(Succeed())
		})

		It("splits presence into work, break and idle time", func() {
			report, err := service.DailyIdle(ctx, "2025-01-15")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.BreakMinutes).To(Equal(60.0))
			Expect(report.Rows).To(HaveLen(3))

			byID := map[string]*analytics.IdleRow{}
			for _, row := range report.Rows {
				byID[row.EmployeeID] = row
			}

			a := byID[alice.ID]
			Expect(a.EmployeeCode).To(Equal("EMP001"))
			Expect(a.CompanyName).To(Equal("Acme Manpower"))
			Expect(a.IsCheckedOut).To(BeTrue())
			Expect(a.CheckOutTime.Equal(at(15, 17, 0))).To(BeTrue())
			Expect(a.PresenceMinutes).To(Equal(540.0))
			Expect(a.PresenceHours).To(Equal(9.0))
			Expect(a.WorkMinutes).To(Equal(90.0))
			Expect(a.BreakMinutes).To(Equal(60.0))
			Expect(a.IdleMinutes).To(Equal(390.0))
			Expect(a.IdleHours).To(Equal(6.5))

			b := byID[bob.ID]
			Expect(b.IsCheckedOut).To(BeFalse())
			Expect(b.CheckOutTime).To(BeNil())
			Expect(b.PresenceMinutes).To(Equal(90.0))
			Expect(b.IdleMinutes).To(Equal(30.0))

			c := byID[carol.ID]
			Expect(c.PresenceMinutes).To(Equal(40.0))
			Expect(c.IdleMinutes).To(Equal(0.0))
		})

		It("sorts by idle time and skips employees without a check-in", func() {
			report, err := service.DailyIdle(ctx, "2025-01-15")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Rows[0].EmployeeID).To(Equal(alice.ID))
			Expect(report.Rows[1].EmployeeID).To(Equal(bob.ID))
			Expect(report.Rows[2].EmployeeID).To(Equal(carol.ID))
			for _, row := range report.Rows {
				Expect(row.EmployeeID).NotTo(Equal(dave.ID))
				Expect(row.IdleMinutes).To(BeNumerically(">=", 0))
			}
		})

		It("returns an empty report for a day without scans", func() {
			report, err := service.DailyIdle(ctx, "2025-01-10")
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Rows).To(BeEmpty())
			Expect(report.BreakMinutes).To(Equal(0.0))
		})
	})

	Describe("Handler", func() {
		var router chi.Router

		BeforeEach(func() {
			h := analytics.NewHandler(transport.NewBaseHandler(slog.New(slog.NewTextHandler(io.Discard, nil))), service)
			router = chi.NewRouter()
			router.Get("/report/analytics/employee-idle/daily", h.DailyIdle)
			router.Get("/report/analytics/manpower-hours/daily", h.DailyHours)
			router.Get("/report/analytics/manpower-hours/daily-average", h.DailyAverageHours)
			router.Get("/report/analytics/manpower-hours/monthly", h.MonthlyHours)
			session(sharedQR, alice, at(15, 8, 0), ptr(at(15, 8, 30)), minutes(30))
		})

		It("serves the daily average report", func() {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report/analytics/manpower-hours/daily-average?date=2025-01-15", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var body analytics.HoursReport
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Rows).To(HaveLen(1))
			Expect(*body.Rows[0].AverageHoursPerSession).To(Equal(0.5))
		})

		It("answers 400 for a malformed month", func() {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report/analytics/manpower-hours/monthly?month=2025-13", nil))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("serves the idle report", func() {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report/analytics/employee-idle/daily?date=2025-01-15", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"breakMinutes":0`))
		})
	})
})
