package rostercheck

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mergington/activities/internal/adapters/http/api"
	"github.com/mergington/activities/internal/adapters/repository"
	app "github.com/mergington/activities/internal/app"
	"github.com/mergington/activities/internal/domain/model"
	"github.com/mergington/activities/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testSeed() []model.Activity {
	return []model.Activity{
		{
			Name:            "Robotics Club",
			Description:     "Build robots",
			Schedule:        "Saturdays",
			MaxParticipants: 6,
			Participants:    []string{"ada@mergington.edu"},
		},
	}
}

// startServer runs the activities API over a fresh service.
func startServer(store repository.Store) (*httptest.Server, *app.Service) {
	ctx := context.Background()
	svc := app.New(app.WithStore(store), app.WithSeed(testSeed()))
	So(svc.Start(ctx), ShouldBeNil)

	r := api.NewRouter(api.RouterOptions{Logger: logger.Get()})
	api.NewServer(svc).Register(ctx, r)
	srv := httptest.NewServer(r)

	Reset(func() {
		srv.Close()
		_ = svc.Stop(ctx)
	})
	return srv, svc
}

// cancellingStore cancels the run as soon as the first signup lands.
type cancellingStore struct {
	repository.Store
	cancel context.CancelFunc
}

func (s *cancellingStore) Signup(ctx context.Context, name, email string) error {
	err := s.Store.Signup(ctx, name, email)
	s.cancel()
	return err
}

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:  baseURL,
		Activity: "Robotics Club",
		Students: 20,
		Workers:  4,
		Timeout:  5 * time.Second,
	}
}

func roster(svc *app.Service) []string {
	activities, err := svc.ListActivities(context.Background())
	So(err, ShouldBeNil)
	return activities[0].Participants
}

func TestRun(t *testing.T) {
	Convey("Given a running service without capacity enforcement", t, func() {
		srv, svc := startServer(repository.NewMemStore())
		cfg := testConfig(srv.URL)

		Convey("When running the check", func() {
			stats, err := Run(context.Background(), cfg)

			Convey("Then every student should be accepted once and removed again", func() {
				So(err, ShouldBeNil)
				So(stats.Signups, ShouldEqual, 20)
				So(stats.Duplicates, ShouldEqual, 20)
				So(stats.Full, ShouldEqual, 0)
				So(stats.Unregistered, ShouldEqual, 20)
				So(stats.BaselineRoster, ShouldEqual, 1)
				So(roster(svc), ShouldResemble, []string{"ada@mergington.edu"})
			})
		})

		Convey("When running the check with keep set", func() {
			cfg.Keep = true
			cfg.Domain = "keep.example.com"
			_, err := Run(context.Background(), cfg)

			Convey("Then the generated students should stay on the roster", func() {
				So(err, ShouldBeNil)
				participants := roster(svc)
				So(participants, ShouldHaveLength, 21)
				So(participants[0], ShouldEqual, "ada@mergington.edu")
				for _, p := range participants[1:] {
					So(strings.HasSuffix(p, "@keep.example.com"), ShouldBeTrue)
				}
			})
		})

		Convey("When the activity is not listed", func() {
			cfg.Activity = "Underwater Basket Weaving"
			_, err := Run(context.Background(), cfg)

			Convey("Then it should report the unknown activity", func() {
				So(errors.Is(err, ErrUnknownActivity), ShouldBeTrue)
			})
		})
	})

	Convey("Given a running service enforcing capacity", t, func() {
		srv, svc := startServer(repository.NewMemStore(repository.WithCapacityEnforcement(true)))

		Convey("When more students apply than there are spots", func() {
			stats, err := Run(context.Background(), testConfig(srv.URL))

			Convey("Then only the free spots should be filled", func() {
				So(err, ShouldBeNil)
				So(stats.Signups, ShouldEqual, 5)
				So(stats.Duplicates, ShouldEqual, 5)
				So(stats.Full, ShouldEqual, 30)
				So(stats.Unregistered, ShouldEqual, 5)
				So(roster(svc), ShouldResemble, []string{"ada@mergington.edu"})
			})
		})
	})

	Convey("Given a run whose context is cancelled during signup", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		srv, _ := startServer(&cancellingStore{Store: repository.NewMemStore(), cancel: cancel})

		Convey("Then it should report the cancellation, not a roster mismatch", func() {
			_, err := Run(ctx, testConfig(srv.URL))
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(errors.Is(err, ErrRosterMismatch), ShouldBeFalse)
		})
	})

	Convey("Given no service listening", t, func() {
		srv := httptest.NewServer(nil)
		srv.Close()

		Convey("Then the health check should fail", func() {
			_, err := Run(context.Background(), testConfig(srv.URL))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})
}

func TestVerifyRoster(t *testing.T) {
	Convey("Given a baseline roster", t, func() {
		baseline := []string{"a@x.edu", "b@x.edu"}

		Convey("Then the baseline plus additions in any order should pass", func() {
			So(verifyRoster([]string{"a@x.edu", "b@x.edu", "d@x.edu", "c@x.edu"}, baseline, []string{"c@x.edu", "d@x.edu"}), ShouldBeNil)
		})

		Convey("Then a duplicated email should fail", func() {
			err := verifyRoster([]string{"a@x.edu", "b@x.edu", "c@x.edu", "c@x.edu"}, baseline, []string{"c@x.edu", "d@x.edu"})
			So(errors.Is(err, ErrRosterMismatch), ShouldBeTrue)
		})

		Convey("Then a missing addition should fail", func() {
			err := verifyRoster([]string{"a@x.edu", "b@x.edu", "e@x.edu"}, baseline, []string{"c@x.edu"})
			So(errors.Is(err, ErrRosterMismatch), ShouldBeTrue)
		})

		Convey("Then a reordered baseline should fail", func() {
			err := verifyRoster([]string{"b@x.edu", "a@x.edu"}, baseline, nil)
			So(errors.Is(err, ErrRosterMismatch), ShouldBeTrue)
		})
	})
}

func TestGenerateEmails(t *testing.T) {
	Convey("Given a batch of generated emails", t, func() {
		emails := generateEmails(500, DefaultDomain)

		Convey("Then they should be distinct and use the domain", func() {
			seen := map[string]bool{}
			for _, e := range emails {
				So(seen[e], ShouldBeFalse)
				seen[e] = true
				So(strings.HasSuffix(e, "@"+DefaultDomain), ShouldBeTrue)
			}
		})

		Convey("Then doubling should repeat each email back to back", func() {
			d := doubled(emails[:3])
			So(d, ShouldResemble, []string{emails[0], emails[0], emails[1], emails[1], emails[2], emails[2]})
		})
	})
}
