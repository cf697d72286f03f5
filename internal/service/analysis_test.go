package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"frontier.app/frontier/common/id"
	"frontier.app/frontier/internal/archive"
	"frontier.app/frontier/internal/model"
	"frontier.app/frontier/internal/queue"
	"frontier.app/frontier/internal/service"
	"frontier.app/frontier/internal/store"
)

var _ = Describe("AnalysisService", func() {
	var (
		ctx      context.Context
		runs     *mockRunStore
		producer *mockProducer
		svc      service.AnalysisService
	)

	BeforeEach(func() {
		ctx = context.Background()
		runs = &mockRunStore{}
		producer = &mockProducer{}
		svc = service.NewAnalysisService(runs, producer, archive.New(nil, nil), nil)

		Expect(id.Init(1)).To(Succeed())
	})

	Describe("Create", func() {
		It("persists a pending run and enqueues a task for it", func() {
			var created *model.AnalysisRun
			runs.createFn = func(_ context.Context, run *model.AnalysisRun) error {
				created = run
				return nil
			}

			run, err := svc.Create(ctx, service.CreateAnalysisParams{
				SeedURL:             "https://example.org/paper",
				MaxPapers:           5,
				ValidationThreshold: 2,
				Mode:                "thorough",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(run.ID).NotTo(BeZero())
			Expect(run.Status).To(Equal(model.RunStatusPending))
			Expect(*run.SeedURL).To(Equal("https://example.org/paper"))
			Expect(run.SeedText).To(BeNil())

			Expect(created).NotTo(BeNil())
			Expect(producer.enqueued).To(HaveLen(1))
			Expect(producer.enqueued[0].RunID).To(Equal(run.ID))
			Expect(producer.enqueued[0].Attempt).To(Equal(1))
		})

		It("defaults the mode to thorough", func() {
			run, err := svc.Create(ctx, service.CreateAnalysisParams{SeedText: "raw paper text"})

			Expect(err).NotTo(HaveOccurred())
			Expect(run.Mode).To(Equal("thorough"))
		})

		It("forwards the trace id to the queue", func() {
			trace := "0af7651916cd43dd8448eb211c80319c"

			_, err := svc.Create(ctx, service.CreateAnalysisParams{
				SeedURL: "https://example.org/paper",
				TraceID: &trace,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(producer.enqueued[0].TraceID).To(HaveValue(Equal(trace)))
		})

		DescribeTable("request validation",
			func(params service.CreateAnalysisParams) {
				_, err := svc.Create(ctx, params)
				Expect(errors.Is(err, service.ErrInvalidRequest)).To(BeTrue())
				Expect(producer.enqueued).To(BeEmpty())
			},
			Entry("missing seed", service.CreateAnalysisParams{}),
			Entry("both seed forms", service.CreateAnalysisParams{SeedURL: "u", SeedText: "t"}),
			Entry("unknown mode", service.CreateAnalysisParams{SeedURL: "u", Mode: "deep"}),
			Entry("max_papers too large", service.CreateAnalysisParams{SeedURL: "u", MaxPapers: 21}),
			Entry("negative max_papers", service.CreateAnalysisParams{SeedURL: "u", MaxPapers: -1}),
			Entry("threshold too large", service.CreateAnalysisParams{SeedURL: "u", ValidationThreshold: 6}),
		)

		It("accepts zero limits as mode defaults", func() {
			_, err := svc.Create(ctx, service.CreateAnalysisParams{SeedURL: "https://example.org/paper"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("propagates store failures", func() {
			runs.createFn = func(_ context.Context, _ *model.AnalysisRun) error {
				return errors.New("insert failed")
			}

			_, err := svc.Create(ctx, service.CreateAnalysisParams{SeedURL: "https://example.org/paper"})

			Expect(err).To(HaveOccurred())
			Expect(producer.enqueued).To(BeEmpty())
		})

		It("propagates enqueue failures", func() {
			producer.enqueueFn = func(_ context.Context, _ queue.AnalysisTask) error {
				return errors.New("redis down")
			}

			_, err := svc.Create(ctx, service.CreateAnalysisParams{SeedURL: "https://example.org/paper"})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Cancel", func() {
		It("cancels the run through the store", func() {
			var gotID int64
			runs.cancelFn = func(_ context.Context, id int64) error {
				gotID = id
				return nil
			}

			Expect(svc.Cancel(ctx, 42)).To(Succeed())
			Expect(gotID).To(BeEquivalentTo(42))
		})

		It("propagates a finished-run refusal", func() {
			runs.cancelFn = func(_ context.Context, _ int64) error {
				return store.ErrAlreadyFinished
			}

			err := svc.Cancel(ctx, 42)

			Expect(errors.Is(err, store.ErrAlreadyFinished)).To(BeTrue())
		})

		It("propagates missing runs", func() {
			runs.cancelFn = func(_ context.Context, _ int64) error {
				return store.ErrNotFound
			}

			err := svc.Cancel(ctx, 42)

			Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("Documents", func() {
		It("fails when the run does not exist", func() {
			runs.getFn = func(_ context.Context, _ int64) (*model.AnalysisRun, error) {
				return nil, store.ErrNotFound
			}

			_, err := svc.Documents(ctx, 42)

			Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())
		})

		It("returns nothing when no archive is configured", func() {
			docs, err := svc.Documents(ctx, 42)

			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(BeEmpty())
		})
	})
})
