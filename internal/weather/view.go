package weather

// CompositeView is the merged weather object returned to callers of the
// aggregated endpoint. Each section is independently present or absent
// depending on whether its upstream sub-call succeeded; it is assembled
// per-request and never persisted.
type CompositeView struct {
	Temp      string `json:"temp,omitempty"`
	FeelsLike string `json:"feelsLike,omitempty"`
	Humidity  string `json:"humidity,omitempty"`
	Icon      string `json:"icon,omitempty"`
	Text      string `json:"text,omitempty"`
	WindDir   string `json:"windDir,omitempty"`
	WindScale string `json:"windScale,omitempty"`
	WindSpeed string `json:"windSpeed,omitempty"`

	DailyWeatherList  []DailyWeather  `json:"dailyWeatherList,omitempty"`
	HourlyWeatherList []HourlyWeather `json:"hourlyWeatherList,omitempty"`
	IndicesList       []Index         `json:"indicesList,omitempty"`
}

// DailyWeather is one forecast day in display form: the date re-emitted as
// MM月dd日 and a day-of-week label (今天 for the current date).
type DailyWeather struct {
	FxDate    string `json:"fxDate"`
	DayOfWeek string `json:"dayOfWeek"`
	TempMax   string `json:"tempMax"`
	TempMin   string `json:"tempMin"`
	Icon      string `json:"icon"`
	Text      string `json:"text"`
}

// HourlyWeather is one forecast hour in display form (HH:mm).
type HourlyWeather struct {
	FxTime    string `json:"fxTime"`
	Temp      string `json:"temp"`
	Icon      string `json:"icon"`
	Text      string `json:"text"`
	WindSpeed string `json:"windSpeed"`
}

// Index is one life-style index entry of the composite view.
type Index struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Text     string `json:"text"`
}
