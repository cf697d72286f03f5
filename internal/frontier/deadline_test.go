package frontier_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"frontier.app/frontier/internal/domain"
	"frontier.app/frontier/internal/frontier"
)

var _ = Describe("Deadline", func() {
	It("is not expired while budget remains", func() {
		d := frontier.NewDeadlineWithBudget(time.Minute)

		Expect(d.Expired()).To(BeFalse())
		Expect(d.Remaining()).To(BeNumerically(">", 50*time.Second))
		Expect(d.Remaining()).To(BeNumerically("<=", time.Minute))
	})

	It("treats a zero budget as already expired", func() {
		d := frontier.NewDeadlineWithBudget(0)

		Expect(d.Expired()).To(BeTrue())
		Expect(d.Remaining()).To(Equal(time.Duration(0)))
	})

	It("treats a negative budget as already expired", func() {
		d := frontier.NewDeadlineWithBudget(-time.Second)

		Expect(d.Expired()).To(BeTrue())
		Expect(d.Remaining()).To(Equal(time.Duration(0)))
	})

	It("gives fast mode a tighter budget than thorough mode", func() {
		fast := frontier.NewDeadline(domain.AnalysisModeFast)
		thorough := frontier.NewDeadline(domain.AnalysisModeThorough)

		Expect(fast.Remaining()).To(BeNumerically("<", thorough.Remaining()))
		Expect(fast.Remaining()).To(BeNumerically("<=", 60*time.Second))
		Expect(thorough.Remaining()).To(BeNumerically("<=", 15*time.Minute))
	})
})
