package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/okian/sleigh/internal/app"
	"github.com/okian/sleigh/internal/domain/reindeer"
	"github.com/okian/sleigh/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestService_Operations(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := app.New()
		ctx := context.Background()

		Convey("When greeting", func() {
			So(svc.Greet(ctx), ShouldEqual, "Hello, world!")
		})

		Convey("When recalibrating a sled", func() {
			So(svc.Recalibrate(ctx, "4/8"), ShouldEqual, uint32(1728))
			So(svc.Recalibrate(ctx, "4/5/8/10"), ShouldEqual, uint32(27))
		})

		Convey("When summing strength", func() {
			herd := []reindeer.Reindeer{{Strength: 5}, {Strength: 6}}
			So(svc.CombinedStrength(ctx, herd), ShouldEqual, uint32(11))
		})

		Convey("When running a contest", func() {
			herd := []reindeer.Reindeer{
				{Name: "Dasher", Speed: 50.4, Height: 80, SnowMagicPower: 9001, CandiesEatenYesterday: 2},
				{Name: "Dancer", Speed: 48.2, Height: 65, SnowMagicPower: 4004, CandiesEatenYesterday: 5},
			}
			got, err := svc.Contest(ctx, herd)

			Convey("Then it should return the standings", func() {
				So(err, ShouldBeNil)
				So(got.Fastest, ShouldEqual, "Speeding past the finish line with a strength of 5 is Dasher")
				So(got.Consumer, ShouldEqual, "Dancer ate lots of candies, but also some grass")
			})
		})

		Convey("When running a contest on an empty herd", func() {
			_, err := svc.Contest(ctx, nil)

			Convey("Then it should fail and not count the call", func() {
				So(err, ShouldEqual, reindeer.ErrEmptyHerd)
				ops := svc.GetStats()["operations"].(map[string]uint64)
				So(ops[app.OpContest], ShouldEqual, uint64(0))
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a service with a fixed clock", t, func() {
		start := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
		now := start
		svc := app.New(app.WithClock(func() time.Time { return now }))
		ctx := context.Background()

		Convey("When no calls were made", func() {
			stats := svc.GetStats()

			Convey("Then every operation should report zero", func() {
				ops := stats["operations"].(map[string]uint64)
				So(ops, ShouldHaveLength, 4)
				for _, n := range ops {
					So(n, ShouldEqual, uint64(0))
				}
				So(stats["totalCalls"], ShouldEqual, uint64(0))
				So(stats["startedAt"], ShouldEqual, "2023-12-01T00:00:00Z")
			})
		})

		Convey("When calls were made and time passed", func() {
			svc.Greet(ctx)
			svc.Greet(ctx)
			svc.Recalibrate(ctx, "10")
			svc.CombinedStrength(ctx, nil)
			now = start.Add(90 * time.Second)

			stats := svc.GetStats()

			Convey("Then the counters and uptime should reflect them", func() {
				ops := stats["operations"].(map[string]uint64)
				So(ops[app.OpGreet], ShouldEqual, uint64(2))
				So(ops[app.OpRecalibrate], ShouldEqual, uint64(1))
				So(ops[app.OpStrength], ShouldEqual, uint64(1))
				So(stats["totalCalls"], ShouldEqual, uint64(4))
				So(stats["uptimeSeconds"], ShouldEqual, 90.0)
			})
		})
	})
}

func TestService_Concurrency(t *testing.T) {
	Convey("Given a service shared by many goroutines", t, func() {
		svc := app.New()
		ctx := context.Background()
		const goroutines, perGoroutine = 16, 250

		var wg sync.WaitGroup
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < perGoroutine; j++ {
					svc.Greet(ctx)
					svc.Recalibrate(ctx, "1/2/3")
				}
			}()
		}
		wg.Wait()

		Convey("Then no call should be lost", func() {
			ops := svc.GetStats()["operations"].(map[string]uint64)
			So(ops[app.OpGreet], ShouldEqual, uint64(goroutines*perGoroutine))
			So(ops[app.OpRecalibrate], ShouldEqual, uint64(goroutines*perGoroutine))
		})
	})
}
