package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/climabridge/climabridge/internal/citydata"
	"github.com/climabridge/climabridge/internal/qweather"
	"github.com/climabridge/climabridge/internal/weather"
)

// HTTPStatuser provides HTTP status information for errors
type HTTPStatuser interface {
	Status() (int, string)
}

// ResultResponse is the uniform envelope every route returns: code 200 on
// success, 400 for parameter errors, 500 for generic failures, and upstream
// error codes passed through with a descriptive message.
type ResultResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// GeoLookupVO is one stitched location candidate: the truncated provider
// names resolved against the gazetteer, with parsed coordinates.
type GeoLookupVO struct {
	Name     string  `json:"name"`
	Province string  `json:"province"`
	City     string  `json:"city"`
	District string  `json:"district,omitempty"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

func handleGetWeather(svc *weather.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		location := r.URL.Query().Get("location")
		if location == "" {
			writeParamError(w, "location is required")
			return
		}

		view, err := svc.GetWeather(r.Context(), location)
		if err != nil {
			writeFailure(w, err)
			return
		}

		writeSuccess(w, view)
	})
}

func handleGeoLookup(api *qweather.Client, cities *citydata.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		location := r.URL.Query().Get("location")
		if location == "" {
			writeParamError(w, "location is required")
			return
		}

		candidates, err := api.LookupGeo(r.Context(), location)
		if err != nil {
			writeFailure(w, err)
			return
		}

		list := make([]GeoLookupVO, 0, len(candidates))
		for _, c := range candidates {
			vo := GeoLookupVO{
				Name:     c.Name,
				Province: c.Adm1,
				City:     c.Adm2,
			}
			vo.Lat, _ = strconv.ParseFloat(c.Lat, 64)
			vo.Lon, _ = strconv.ParseFloat(c.Lon, 64)

			// The provider truncates administrative names; stitch the full
			// forms back on from the gazetteer where a match exists.
			fullCity, fullName := cities.ResolveDistrict(c.Adm1, c.Adm2, c.Name)
			vo.City = fullCity
			vo.Name = fullName
			if fullName != fullCity {
				vo.District = fullName
			}

			list = append(list, vo)
		}

		writeSuccess(w, list)
	})
}

func handleWeatherNow(api *qweather.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		location := r.URL.Query().Get("location")
		if location == "" {
			writeParamError(w, "location is required")
			return
		}

		resp, err := api.Now(r.Context(), location)
		if err != nil {
			writeFailure(w, err)
			return
		}

		writeSuccess(w, resp.Now)
	})
}

func handleWeatherDaily(api *qweather.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		location := r.URL.Query().Get("location")
		if location == "" {
			writeParamError(w, "location is required")
			return
		}

		kind := qweather.DayKind3Days
		if v := r.URL.Query().Get("queryDailyType"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				writeParamError(w, "queryDailyType must be an integer")
				return
			}
			kind = parsed
		}

		resp, err := api.Daily(r.Context(), location, kind)
		if err != nil {
			writeFailure(w, err)
			return
		}

		writeSuccess(w, resp.Daily)
	})
}

func handleWeatherHourly(api *qweather.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		location := r.URL.Query().Get("location")
		if location == "" {
			writeParamError(w, "location is required")
			return
		}

		resp, err := api.Hourly(r.Context(), location)
		if err != nil {
			writeFailure(w, err)
			return
		}

		writeSuccess(w, resp.Hourly)
	})
}

func handleIndices(api *qweather.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		location := r.URL.Query().Get("location")
		if location == "" {
			writeParamError(w, "location is required")
			return
		}
		types := r.URL.Query().Get("type")

		resp, err := api.Indices(r.Context(), location, types)
		if err != nil {
			writeFailure(w, err)
			return
		}

		writeSuccess(w, resp.Daily)
	})
}

func handleCitySearch(cities *citydata.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		keyword := r.URL.Query().Get("keyword")
		if keyword == "" {
			writeParamError(w, "keyword is required")
			return
		}

		results := cities.SearchDistrict(keyword)
		if results == nil {
			results = []string{}
		}

		writeSuccess(w, results)
	})
}

func handleTopCities(api *qweather.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		rangeCode := r.URL.Query().Get("range")

		number := 0
		if v := r.URL.Query().Get("number"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				writeParamError(w, "number must be an integer")
				return
			}
			number = parsed
		}

		cities, err := api.TopCities(r.Context(), rangeCode, number)
		if err != nil {
			writeFailure(w, err)
			return
		}

		writeSuccess(w, cities)
	})
}

func handleHealthCheck() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func maxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.MaxBytesHandler(next, limit)
	}
}

// recoverPanics maps any handler panic to the generic 500 envelope so no raw
// internal error surfaces to the caller.
func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).
					Msg("handler panicked")
				writeEnvelope(w, http.StatusInternalServerError, ResultResponse{
					Code:    http.StatusInternalServerError,
					Message: http.StatusText(http.StatusInternalServerError),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeEnvelope(w, http.StatusOK, ResultResponse{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func writeParamError(w http.ResponseWriter, message string) {
	writeEnvelope(w, http.StatusBadRequest, ResultResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// writeFailure maps an error to the envelope: typed errors carry their own
// status, everything else is a generic 500.
func writeFailure(w http.ResponseWriter, err error) {
	status, message := errorStatus(err)
	log.Info().Err(err).Int("status", status).Msg("request failed")
	writeEnvelope(w, status, ResultResponse{
		Code:    status,
		Message: message,
	})
}

func writeEnvelope(w http.ResponseWriter, statusCode int, response ResultResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		// the status code is already written; logging is all that remains
		log.Info().Msgf("failed to write response envelope: %v", err)
	}
}

// errorStatus extracts HTTP status code and message from an error.
// Returns (StatusInternalServerError, StatusText) for errors that don't
// implement HTTPStatuser.
func errorStatus(err error) (int, string) {
	var statuser HTTPStatuser
	if errors.As(err, &statuser) {
		return statuser.Status()
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

// drainRequestBody drains the request body by reading and discarding the
// contents, keeping HTTP/1 connections reusable.
func drainRequestBody(r *http.Request) {
	if r.Body != nil {
		io.CopyN(io.Discard, r.Body, 5*1024*1024)
	}
}
