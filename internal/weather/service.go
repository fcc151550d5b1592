package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/climabridge/climabridge/internal/config"
	"github.com/climabridge/climabridge/internal/qweather"
)

// UpstreamAPI is the slice of the upstream client the aggregator depends on.
type UpstreamAPI interface {
	Now(ctx context.Context, location string) (qweather.NowResponse, error)
	Daily(ctx context.Context, location string, kind int) (qweather.DailyResponse, error)
	Hourly(ctx context.Context, location string) (qweather.HourlyResponse, error)
	Indices(ctx context.Context, location string, types string) (qweather.IndicesResponse, error)
}

// Service assembles the composite weather view from concurrent upstream
// sub-calls, tolerating partial failure: a failed sub-call leaves its section
// of the view absent instead of failing the request.
type Service struct {
	api          UpstreamAPI
	indicesTypes string
	zone         *time.Location
	now          func() time.Time
}

// dailyLayout and hourlyLayout are the upstream's documented time formats.
const (
	dailyLayout  = "2006-01-02"
	hourlyLayout = "2006-01-02T15:04-07:00"

	displayDateLayout = "01月02日"
	displayTimeLayout = "15:04"
)

var weekdayLabels = [7]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

func NewService(api UpstreamAPI, cfg config.QWeatherConfig) (*Service, error) {
	zone, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading display time zone %q: %w", cfg.TimeZone, err)
	}

	return &Service{
		api:          api,
		indicesTypes: cfg.IndicesTypes,
		zone:         zone,
		now:          time.Now,
	}, nil
}

// GetWeather issues the four upstream sub-calls concurrently, waits for all
// of them to settle, and merges whatever subset succeeded in fixed order:
// current conditions, daily forecast, hourly forecast, indices. When every
// sub-call fails the (empty) view is still returned; surfacing that as an
// error is the boundary layer's decision.
func (s *Service) GetWeather(ctx context.Context, location string) (*CompositeView, error) {
	if location == "" {
		return nil, &qweather.InvalidArgumentError{Param: "location", Reason: "must not be empty"}
	}

	var (
		now     qweather.NowResponse
		daily   qweather.DailyResponse
		hourly  qweather.HourlyResponse
		indices qweather.IndicesResponse

		nowErr, dailyErr, hourlyErr, indicesErr error
	)

	// Each goroutine records its own error and returns nil: a sub-call
	// failure must not cancel its siblings.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		now, nowErr = s.api.Now(gctx, location)
		return nil
	})
	g.Go(func() error {
		daily, dailyErr = s.api.Daily(gctx, location, qweather.DayKind7Days)
		return nil
	})
	g.Go(func() error {
		hourly, hourlyErr = s.api.Hourly(gctx, location)
		return nil
	})
	g.Go(func() error {
		indices, indicesErr = s.api.Indices(gctx, location, s.indicesTypes)
		return nil
	})
	_ = g.Wait()

	view := &CompositeView{}

	if nowErr != nil {
		log.Warn().Err(nowErr).Str("location", location).Msg("current conditions unavailable")
	} else {
		s.applyNow(view, now.Now)
	}

	if dailyErr != nil {
		log.Warn().Err(dailyErr).Str("location", location).Msg("daily forecast unavailable")
	} else {
		view.DailyWeatherList = s.buildDaily(daily.Daily)
	}

	if hourlyErr != nil {
		log.Warn().Err(hourlyErr).Str("location", location).Msg("hourly forecast unavailable")
	} else {
		view.HourlyWeatherList = s.buildHourly(hourly.Hourly)
	}

	if indicesErr != nil {
		log.Warn().Err(indicesErr).Str("location", location).Msg("life indices unavailable")
	} else {
		view.IndicesList = buildIndices(indices.Daily)
	}

	return view, nil
}

func (s *Service) applyNow(view *CompositeView, now qweather.RealTimeData) {
	view.Temp = now.Temp
	view.FeelsLike = now.FeelsLike
	view.Humidity = now.Humidity
	view.Icon = now.Icon
	view.Text = now.Text
	view.WindDir = now.WindDir
	view.WindScale = now.WindScale
	view.WindSpeed = now.WindSpeed
}

func (s *Service) buildDaily(daily []qweather.DailyData) []DailyWeather {
	today := s.now().In(s.zone)
	list := make([]DailyWeather, 0, len(daily))

	for _, d := range daily {
		entry := DailyWeather{
			FxDate:  d.FxDate,
			TempMax: d.TempMax,
			TempMin: d.TempMin,
			Icon:    d.IconDay,
			Text:    d.TextDay,
		}

		date, err := time.ParseInLocation(dailyLayout, d.FxDate, s.zone)
		if err != nil {
			log.Warn().Str("fxDate", d.FxDate).Msg("unparseable forecast date")
		} else {
			entry.FxDate = date.Format(displayDateLayout)
			if sameDay(date, today) {
				entry.DayOfWeek = "今天"
			} else {
				entry.DayOfWeek = weekdayLabels[date.Weekday()]
			}
		}

		list = append(list, entry)
	}

	return list
}

func (s *Service) buildHourly(hourly []qweather.HourlyData) []HourlyWeather {
	list := make([]HourlyWeather, 0, len(hourly))

	for _, h := range hourly {
		entry := HourlyWeather{
			FxTime:    h.FxTime,
			Temp:      h.Temp,
			Icon:      h.Icon,
			Text:      h.Text,
			WindSpeed: h.WindSpeed,
		}

		at, err := time.Parse(hourlyLayout, h.FxTime)
		if err != nil {
			log.Warn().Str("fxTime", h.FxTime).Msg("unparseable forecast time")
		} else {
			entry.FxTime = at.In(s.zone).Format(displayTimeLayout)
		}

		list = append(list, entry)
	}

	return list
}

func buildIndices(daily []qweather.IndexData) []Index {
	list := make([]Index, 0, len(daily))
	for _, d := range daily {
		list = append(list, Index{
			Name:     d.Name,
			Type:     d.Type,
			Category: d.Category,
			Text:     d.Text,
		})
	}
	return list
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
