package qbench

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func testTicket(id string) Ticket {
	return Ticket{
		ID:           id,
		Scheme:       SchemeFRQI,
		Size:         256,
		Shots:        50000,
		Distribution: DistReversing,
		Seed:         1234,
		Handle:       "handle-" + id,
		SubmittedAt:  time.Now(),
	}
}

func TestJobLedger(t *testing.T) {
	Convey("Given an open job ledger", t, func() {
		path := filepath.Join(t.TempDir(), "ledger.db")
		ledger, err := OpenJobLedger(path)
		So(err, ShouldBeNil)

		Reset(func() {
			ledger.Close()
		})

		Convey("A recorded submission shows up as pending", func() {
			So(ledger.RecordSubmission(testTicket("t1")), ShouldBeNil)

			pending, err := ledger.Pending()
			So(err, ShouldBeNil)
			So(len(pending), ShouldEqual, 1)
			So(pending[0].ID, ShouldEqual, "t1")
			So(pending[0].Scheme, ShouldEqual, SchemeFRQI)
			So(pending[0].Size, ShouldEqual, 256)
			So(pending[0].Seed, ShouldEqual, 1234)
			So(pending[0].Handle, ShouldEqual, "handle-t1")
			So(pending[0].Status, ShouldEqual, TicketSubmitted)
		})

		Convey("Resolving removes the ticket from the pending set", func() {
			So(ledger.RecordSubmission(testTicket("t1")), ShouldBeNil)
			So(ledger.RecordSubmission(testTicket("t2")), ShouldBeNil)

			So(ledger.MarkResolved("t1"), ShouldBeNil)

			pending, err := ledger.Pending()
			So(err, ShouldBeNil)
			So(len(pending), ShouldEqual, 1)
			So(pending[0].ID, ShouldEqual, "t2")

			Convey("Resolving the same ticket again is harmless", func() {
				So(ledger.MarkResolved("t1"), ShouldBeNil)

				pending, err := ledger.Pending()
				So(err, ShouldBeNil)
				So(len(pending), ShouldEqual, 1)
			})
		})

		Convey("Failing a ticket records the cause", func() {
			So(ledger.RecordSubmission(testTicket("t1")), ShouldBeNil)
			So(ledger.MarkFailed("t1", errors.New("device rejected the job")), ShouldBeNil)

			pending, err := ledger.Pending()
			So(err, ShouldBeNil)
			So(len(pending), ShouldEqual, 0)
		})

		Convey("Duplicate ticket identifiers are rejected", func() {
			So(ledger.RecordSubmission(testTicket("t1")), ShouldBeNil)
			So(ledger.RecordSubmission(testTicket("t1")), ShouldNotBeNil)
		})
	})
}

func TestJobLedgerDurability(t *testing.T) {
	Convey("Given a ledger written by one process", t, func() {
		path := filepath.Join(t.TempDir(), "ledger.db")

		first, err := OpenJobLedger(path)
		So(err, ShouldBeNil)
		So(first.RecordSubmission(testTicket("t1")), ShouldBeNil)
		So(first.Close(), ShouldBeNil)

		Convey("A fresh instance sees the pending ticket", func() {
			second, err := OpenJobLedger(path)
			So(err, ShouldBeNil)
			defer second.Close()

			pending, err := second.Pending()
			So(err, ShouldBeNil)
			So(len(pending), ShouldEqual, 1)
			So(pending[0].Handle, ShouldEqual, "handle-t1")
		})
	})
}
