package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/railshot/internal/adapters/mq/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWindow(t *testing.T) {
	Convey("Given a window of three ids", t, func() {
		ctx := context.Background()
		w := dedupe.NewWindow(dedupe.WithCapacity(3))
		So(w.Size(), ShouldEqual, 0)

		Convey("When an id is recorded twice", func() {
			So(w.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			So(w.SeenAndRecord(ctx, "a"), ShouldBeTrue)
			So(w.Size(), ShouldEqual, 1)
		})

		Convey("When more ids than the capacity are recorded", func() {
			for _, id := range []string{"a", "b", "c", "d"} {
				So(w.SeenAndRecord(ctx, id), ShouldBeFalse)
			}

			Convey("Then the oldest id is evicted first", func() {
				So(w.Size(), ShouldEqual, 3)
				So(w.SeenAndRecord(ctx, "a"), ShouldBeFalse)
				So(w.SeenAndRecord(ctx, "d"), ShouldBeTrue)
			})
		})

		Convey("When an id is unrecorded", func() {
			w.SeenAndRecord(ctx, "a")
			w.SeenAndRecord(ctx, "b")
			w.Unrecord(ctx, "a")
			w.Unrecord(ctx, "missing")

			Convey("Then it can be recorded again", func() {
				So(w.Size(), ShouldEqual, 1)
				So(w.SeenAndRecord(ctx, "a"), ShouldBeFalse)
				So(w.Size(), ShouldEqual, 2)
			})

			Convey("And evicting its old slot leaves the new record alone", func() {
				w.SeenAndRecord(ctx, "c")
				w.SeenAndRecord(ctx, "a")
				So(w.Size(), ShouldEqual, 3)
				So(w.SeenAndRecord(ctx, "a"), ShouldBeTrue)
			})
		})
	})
}

func TestWindowConcurrency(t *testing.T) {
	Convey("Given concurrent submitters racing on the same ids", t, func() {
		ctx := context.Background()
		w := dedupe.NewWindow()
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			fresh int
		)
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					if !w.SeenAndRecord(ctx, fmt.Sprintf("req-%d", i)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		So(fresh, ShouldEqual, 100)
		So(w.Size(), ShouldEqual, 100)
	})
}
