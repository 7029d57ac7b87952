package report_test

import (
	"errors"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/renzon/robottelo/pkg/poll"
	"github.com/renzon/robottelo/pkg/satellite"
	"github.com/renzon/robottelo/test/e2e/report"
)

var _ = Describe("Recorder", func() {
	var r *report.Recorder

	BeforeEach(func() {
		r = report.NewRecorder()
		r.Record(satellite.Observation{Operation: "task 1 (Publish)", State: poll.Succeeded, Polls: 2, Elapsed: time.Second})
		r.Record(satellite.Observation{
			Operation:   "job invocation 7 (Run uptime)",
			State:       poll.Failed,
			Polls:       4,
			Elapsed:     3 * time.Second,
			Last:        "status=failed succeeded=0 failed=1 pending=0",
			Err:         errors.New("job invocation 7 failed"),
			HostOutputs: map[string][]string{"web01.example.com": {"bash: uptim: command not found"}},
		})
		r.Record(satellite.Observation{Operation: "task 2 (Promote)", State: poll.TimedOut, Polls: 10, Elapsed: time.Minute})
	})

	It("should count observations per state", func() {
		Expect(r.Counts()).To(Equal(map[poll.State]int{poll.Succeeded: 1, poll.Failed: 1, poll.TimedOut: 1}))
	})

	// Given a failed job with host output
	// When we print the summary
	// Then the failure should be detailed with its output and successes only counted
	It("should detail unsuccessful observations", func() {
		summary := r.String()

		Expect(summary).To(ContainSubstring("Asynchronous operations observed: 3"))
		Expect(summary).To(ContainSubstring("[failed] job invocation 7 (Run uptime) after 4 polls"))
		Expect(summary).To(ContainSubstring("| bash: uptim: command not found"))
		Expect(summary).To(ContainSubstring("[timed_out] task 2 (Promote)"))
		Expect(summary).NotTo(ContainSubstring("[succeeded]"))
	})

	It("should write a workbook", func() {
		path := filepath.Join(GinkgoT().TempDir(), "report.xlsx")

		Expect(r.WriteXLSX(path)).To(Succeed())

		f, err := excelize.OpenFile(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		rows, err := f.GetRows("Observations")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(4))
		Expect(rows[0][0]).To(Equal("Operation"))
		Expect(rows[2][1]).To(Equal("failed"))

		outputs, err := f.GetRows("Host Output")
		Expect(err).NotTo(HaveOccurred())
		Expect(outputs).To(HaveLen(2))
		Expect(outputs[1]).To(Equal([]string{"job invocation 7 (Run uptime)", "web01.example.com", "bash: uptim: command not found"}))
	})
})
