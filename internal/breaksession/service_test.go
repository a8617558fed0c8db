package breaksession_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/workforce-presence/internal"
	"github.com/frahmantamala/workforce-presence/internal/breaksession"
	breakPostgres "github.com/frahmantamala/workforce-presence/internal/breaksession/postgres"
	"github.com/frahmantamala/workforce-presence/internal/clock"
	"github.com/frahmantamala/workforce-presence/internal/core/testdb"
	"github.com/frahmantamala/workforce-presence/internal/transport"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var wib = time.FixedZone("WIB", 7*60*60)

var _ = Describe("Break Session Service", func() {
	var (
		ctx     context.Context
		clk     *clock.FakeClock
		service *breaksession.Service
		logger  *slog.Logger
	)

	BeforeEach(func() {
		db, err := testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		clk = clock.Fake(time.Date(2025, 1, 15, 12, 0, 0, 0, wib))
		service = breaksession.NewService(breakPostgres.NewBreakSessionRepository(db), clk, wib, logger)
	})

	Describe("Create", func() {
		It("starts now when no start time is given", func() {
			created, err := service.Create(ctx, breaksession.CreateRequest{BreakType: "lunch"})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.BreakType).To(Equal(breaksession.TypeLunch))
			Expect(created.StartTime.Equal(clk.Now())).To(BeTrue())
			Expect(created.EndTime).To(BeNil())
		})

		It("keeps explicit start and end times", func() {
			start := time.Date(2025, 1, 15, 9, 0, 0, 0, wib)
			end := start.Add(15 * time.Minute)
			created, err := service.Create(ctx, breaksession.CreateRequest{
				BreakType: breaksession.TypeTea,
				StartTime: &start,
				EndTime:   &end,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.EndTime.Sub(created.StartTime)).To(Equal(15 * time.Minute))
		})

		It("rejects an unknown break type", func() {
			_, err := service.Create(ctx, breaksession.CreateRequest{BreakType: "NAP"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
			details := appErr.Details.(internal.ValidationErrors)
			Expect(details.Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidBreakType)))
		})

		It("requires a break type", func() {
			_, err := service.Create(ctx, breaksession.CreateRequest{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
			details := appErr.Details.(internal.ValidationErrors)
			Expect(details.Errors).To(HaveLen(1))
			Expect(details.Errors[0].Field).To(Equal("breakType"))
			Expect(err.Error()).To(Equal("breakType is required"))
		})

		It("rejects an end before the start", func() {
			start := clk.Now()
			end := start.Add(-time.Minute)
			_, err := service.Create(ctx, breaksession.CreateRequest{BreakType: "TEA", StartTime: &start, EndTime: &end})
			Expect(errors.Is(err, breaksession.ErrInvalidTimeRange)).To(BeTrue())
		})
	})

	Describe("End", func() {
		It("closes an open break once", func() {
			created, err := service.Create(ctx, breaksession.CreateRequest{BreakType: "LUNCH"})
			Expect(err).NotTo(HaveOccurred())

			clk.Advance(30 * time.Minute)
			ended, err := service.End(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ended.EndTime.Sub(ended.StartTime)).To(Equal(30 * time.Minute))

			_, err = service.End(ctx, created.ID)
			Expect(errors.Is(err, breaksession.ErrBreakAlreadyEnded)).To(BeTrue())
		})

		It("reports an unknown break", func() {
			_, err := service.End(ctx, uuid.NewString())
			Expect(errors.Is(err, breaksession.ErrBreakNotFound)).To(BeTrue())
		})
	})

	Describe("List and Delete", func() {
		It("lists one day newest first", func() {
			morning := time.Date(2025, 1, 15, 9, 0, 0, 0, wib)
			noon := time.Date(2025, 1, 15, 12, 0, 0, 0, wib)
			yesterday := time.Date(2025, 1, 14, 23, 30, 0, 0, wib)
			for _, at := range []time.Time{morning, noon, yesterday} {
				at := at
				_, err := service.Create(ctx, breaksession.CreateRequest{BreakType: "TEA", StartTime: &at})
				Expect(err).NotTo(HaveOccurred())
			}

			day, err := service.List(ctx, "2025-01-15")
			Expect(err).NotTo(HaveOccurred())
			Expect(day).To(HaveLen(2))
			Expect(day[0].StartTime.Equal(noon)).To(BeTrue())

			all, err := service.List(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))

			_, err = service.List(ctx, "15-01-2025")
			Expect(err).To(HaveOccurred())
		})

		It("deletes a break and reports a second delete as not found", func() {
			created, err := service.Create(ctx, breaksession.CreateRequest{BreakType: "CLOTHES"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, created.ID)).To(Succeed())
			Expect(errors.Is(service.Delete(ctx, created.ID), breaksession.ErrBreakNotFound)).To(BeTrue())
		})
	})

	Describe("Handler", func() {
		var router chi.Router

		BeforeEach(func() {
			h := breaksession.NewHandler(transport.NewBaseHandler(logger), service)
			router = chi.NewRouter()
			router.Get("/break-session", h.List)
			router.Post("/break-session", h.Create)
			router.Patch("/break-session/{id}/end", h.End)
			router.Delete("/break-session/{id}", h.Delete)
		})

		It("creates with 201 and deletes with 204", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/break-session", strings.NewReader(`{"breakType":"BREAKFAST"}`))
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(rec.Body.String()).To(ContainSubstring("Break session created"))

			list, err := service.List(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))

			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/break-session/"+list[0].ID, nil))
			Expect(rec.Code).To(Equal(http.StatusNoContent))

			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/break-session/"+list[0].ID, nil))
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})
})
