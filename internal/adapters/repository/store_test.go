package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/railshot/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

func exerciseStore(s repository.Store) {
	ctx := context.Background()

	Convey("When a key was never written", func() {
		_, err := s.Get(ctx, repository.KeyModel)
		So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
	})

	Convey("When a blob is written and read back", func() {
		So(s.Put(ctx, repository.KeyModel, []byte(`{"version":1}`)), ShouldBeNil)
		got, err := s.Get(ctx, repository.KeyModel)
		So(err, ShouldBeNil)
		So(string(got), ShouldEqual, `{"version":1}`)

		Convey("Then a second write replaces it", func() {
			So(s.Put(ctx, repository.KeyModel, []byte("v2")), ShouldBeNil)
			got, err := s.Get(ctx, repository.KeyModel)
			So(err, ShouldBeNil)
			So(string(got), ShouldEqual, "v2")
		})

		Convey("Then other keys are unaffected", func() {
			_, err := s.Get(ctx, repository.KeyMemory)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("When the key is blank", func() {
		So(errors.Is(s.Put(ctx, " ", []byte("x")), repository.ErrInvalidKey), ShouldBeTrue)
	})

	Convey("When the context is cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		So(errors.Is(s.Put(cctx, repository.KeyModel, nil), context.Canceled), ShouldBeTrue)
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given an in-memory store", t, func() {
		s := repository.NewMemoryStore()
		exerciseStore(s)

		Convey("Then stored blobs do not alias the caller's slice", func() {
			ctx := context.Background()
			buf := []byte("abc")
			So(s.Put(ctx, "k", buf), ShouldBeNil)
			buf[0] = 'x'
			got, _ := s.Get(ctx, "k")
			So(string(got), ShouldEqual, "abc")
		})
	})
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given a SQLite store", t, func() {
		path := filepath.Join(t.TempDir(), "railshot.db")
		at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		s, err := repository.OpenSQLite(path, repository.WithClock(func() time.Time { return at }))
		So(err, ShouldBeNil)
		Reset(func() { _ = s.Close() })

		exerciseStore(s)

		Convey("Then writes are stamped", func() {
			ctx := context.Background()
			So(s.Put(ctx, repository.KeyMemory, []byte("m")), ShouldBeNil)
			ts, err := s.UpdatedAt(ctx, repository.KeyMemory)
			So(err, ShouldBeNil)
			So(ts.Equal(at), ShouldBeTrue)
		})

		Convey("Then data survives reopening", func() {
			ctx := context.Background()
			So(s.Put(ctx, repository.KeyMemory, []byte("persisted")), ShouldBeNil)
			So(s.Close(), ShouldBeNil)

			again, err := repository.OpenSQLite(path)
			So(err, ShouldBeNil)
			defer again.Close()
			got, err := again.Get(ctx, repository.KeyMemory)
			So(err, ShouldBeNil)
			So(string(got), ShouldEqual, "persisted")
		})
	})

	Convey("Given an empty path", t, func() {
		_, err := repository.OpenSQLite("  ")
		So(err, ShouldNotBeNil)
	})
}
