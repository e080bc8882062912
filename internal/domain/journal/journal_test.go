package journal_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/mergington/activities/internal/domain/journal"
	"github.com/mergington/activities/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func change(i int) model.RosterChange {
	return model.RosterChange{
		ID:       fmt.Sprintf("change-%d", i),
		Seq:      uint64(i),
		Kind:     model.ChangeSignup,
		Activity: "Chess Club",
		Email:    fmt.Sprintf("student%d@mergington.edu", i),
	}
}

func TestJournal(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty journal", t, func() {
		j := journal.New(3)

		Convey("Then Recent should return an empty, non-nil slice", func() {
			got := j.Recent(ctx, 10)
			So(got, ShouldNotBeNil)
			So(got, ShouldBeEmpty)
			So(j.Len(), ShouldEqual, 0)
		})
	})

	Convey("Given a journal with capacity 3", t, func() {
		j := journal.New(3)

		Convey("When recording two changes", func() {
			So(j.Record(ctx, change(1)), ShouldBeNil)
			So(j.Record(ctx, change(2)), ShouldBeNil)

			Convey("Then Recent should return them newest first", func() {
				got := j.Recent(ctx, 5)
				So(got, ShouldHaveLength, 2)
				So(got[0].ID, ShouldEqual, "change-2")
				So(got[1].ID, ShouldEqual, "change-1")
			})

			Convey("Then Recent should honour the limit", func() {
				got := j.Recent(ctx, 1)
				So(got, ShouldHaveLength, 1)
				So(got[0].ID, ShouldEqual, "change-2")
			})
		})

		Convey("When recording more changes than the capacity", func() {
			for i := 1; i <= 5; i++ {
				So(j.Record(ctx, change(i)), ShouldBeNil)
			}

			Convey("Then only the newest changes should be kept", func() {
				So(j.Len(), ShouldEqual, 3)
				got := j.Recent(ctx, 10)
				So(got[0].ID, ShouldEqual, "change-5")
				So(got[1].ID, ShouldEqual, "change-4")
				So(got[2].ID, ShouldEqual, "change-3")
			})
		})
	})

	Convey("Given changes recorded out of order", t, func() {
		j := journal.New(3)
		for _, i := range []int{2, 1, 4, 3, 5} {
			So(j.Record(ctx, change(i)), ShouldBeNil)
		}

		Convey("Then Recent should order them by sequence, newest first", func() {
			got := j.Recent(ctx, 10)
			So(got, ShouldHaveLength, 3)
			So(got[0].ID, ShouldEqual, "change-5")
			So(got[1].ID, ShouldEqual, "change-4")
			So(got[2].ID, ShouldEqual, "change-3")
		})

		Convey("When a change older than everything retained arrives", func() {
			So(j.Record(ctx, change(0)), ShouldBeNil)

			Convey("Then it should be evicted right away", func() {
				got := j.Recent(ctx, 10)
				So(got, ShouldHaveLength, 3)
				So(got[2].ID, ShouldEqual, "change-3")
			})
		})
	})

	Convey("Given changes sharing a sequence number", t, func() {
		j := journal.New(3)
		a, b := change(1), change(1)
		b.ID = "change-1b"
		So(j.Record(ctx, a), ShouldBeNil)
		So(j.Record(ctx, b), ShouldBeNil)

		Convey("Then the later arrival should count as newer", func() {
			got := j.Recent(ctx, 2)
			So(got[0].ID, ShouldEqual, "change-1b")
			So(got[1].ID, ShouldEqual, "change-1")
		})
	})

	Convey("Given a journal with a non-positive capacity", t, func() {
		j := journal.New(0)

		Convey("Then it should still accept changes", func() {
			So(j.Record(ctx, change(1)), ShouldBeNil)
			So(j.Len(), ShouldEqual, 1)
		})
	})

	Convey("Given concurrent writers", t, func() {
		j := journal.New(50)
		var wg sync.WaitGroup
		for i := range 100 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = j.Record(ctx, change(i))
			}()
		}
		wg.Wait()

		Convey("Then the journal should keep the newest changes in order", func() {
			So(j.Len(), ShouldEqual, 50)
			got := j.Recent(ctx, 100)
			So(got, ShouldHaveLength, 50)
			for i, c := range got {
				So(c.Seq, ShouldEqual, uint64(99-i))
			}
		})
	})
}
