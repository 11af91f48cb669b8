package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/gradebook/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Store, convey.ShouldEqual, config.StoreFile)
			convey.So(cfg.HistoryPath, convey.ShouldEqual, "data/evaluation_history.json")
			convey.So(cfg.RedisKey, convey.ShouldEqual, "gradebook:history")
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.AllowedOrigins(), convey.ShouldResemble, []string{"*"})
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_AllowedOrigins(t *testing.T) {
	convey.Convey("Given a comma separated origin list", t, func() {
		cfg := config.New()
		cfg.CORSOrigins = " http://a.test, ,http://b.test "

		convey.Convey("Then blanks are dropped and entries trimmed", func() {
			convey.So(cfg.AllowedOrigins(), convey.ShouldResemble, []string{"http://a.test", "http://b.test"})
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with problems", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = " " }},
			{"unknown store", func(c *config.Config) { c.Store = "tape" }},
			{"file store without path", func(c *config.Config) { c.HistoryPath = "" }},
			{"redis store without addr", func(c *config.Config) { c.Store = config.StoreRedis; c.RedisAddr = "" }},
			{"negative redis db", func(c *config.Config) { c.Store = config.StoreRedis; c.RedisDB = -1 }},
			{"zero timeout", func(c *config.Config) { c.RequestTimeoutMS = 0 }},
			{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
		}

		for _, tc := range cases {
			convey.Convey("Then "+tc.name+" is rejected", func() {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then sqlite and memory need no extra keys", func() {
			cfg := config.New()
			cfg.Store = config.StoreSQLite
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			cfg.Store = config.StoreMemory
			cfg.HistoryPath = ""
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
