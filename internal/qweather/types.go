package qweather

// Envelope is the common wrapper every upstream endpoint returns. The code
// field is a string holding an HTTP-like status; "200" is the only success
// value and the only one that unlocks caching.
type Envelope struct {
	Code       string `json:"code"`
	UpdateTime string `json:"updateTime,omitempty"`
	FxLink     string `json:"fxLink,omitempty"`
	Refer      *Refer `json:"refer,omitempty"`
}

type Refer struct {
	Sources []string `json:"sources,omitempty"`
	License []string `json:"license,omitempty"`
}

// OK reports whether the envelope carries the upstream success code.
func (e Envelope) OK() bool {
	return e.Code == CodeOK
}

// CodeOK is the upstream's embedded success code.
const CodeOK = "200"

// RealTimeData is the observation payload of the weather-now endpoint.
type RealTimeData struct {
	ObsTime   string `json:"obsTime"`
	Temp      string `json:"temp"`
	FeelsLike string `json:"feelsLike"`
	Icon      string `json:"icon"`
	Text      string `json:"text"`
	Wind360   string `json:"wind360"`
	WindDir   string `json:"windDir"`
	WindScale string `json:"windScale"`
	WindSpeed string `json:"windSpeed"`
	Humidity  string `json:"humidity"`
	Precip    string `json:"precip"`
	Pressure  string `json:"pressure"`
	Vis       string `json:"vis"`
	Cloud     string `json:"cloud,omitempty"`
	Dew       string `json:"dew,omitempty"`
}

// DailyData is one day of the multi-day forecast.
type DailyData struct {
	FxDate         string `json:"fxDate"`
	Sunrise        string `json:"sunrise,omitempty"`
	Sunset         string `json:"sunset,omitempty"`
	Moonrise       string `json:"moonrise,omitempty"`
	Moonset        string `json:"moonset,omitempty"`
	MoonPhase      string `json:"moonPhase,omitempty"`
	MoonPhaseIcon  string `json:"moonPhaseIcon,omitempty"`
	TempMax        string `json:"tempMax"`
	TempMin        string `json:"tempMin"`
	IconDay        string `json:"iconDay"`
	TextDay        string `json:"textDay"`
	IconNight      string `json:"iconNight"`
	TextNight      string `json:"textNight"`
	Wind360Day     string `json:"wind360Day,omitempty"`
	WindDirDay     string `json:"windDirDay,omitempty"`
	WindScaleDay   string `json:"windScaleDay,omitempty"`
	WindSpeedDay   string `json:"windSpeedDay,omitempty"`
	Wind360Night   string `json:"wind360Night,omitempty"`
	WindDirNight   string `json:"windDirNight,omitempty"`
	WindScaleNight string `json:"windScaleNight,omitempty"`
	WindSpeedNight string `json:"windSpeedNight,omitempty"`
	Humidity       string `json:"humidity,omitempty"`
	Precip         string `json:"precip,omitempty"`
	Pressure       string `json:"pressure,omitempty"`
	Vis            string `json:"vis,omitempty"`
	Cloud          string `json:"cloud,omitempty"`
	UVIndex        string `json:"uvIndex,omitempty"`
}

// HourlyData is one hour of the 24-hour forecast.
type HourlyData struct {
	FxTime    string `json:"fxTime"`
	Temp      string `json:"temp"`
	Icon      string `json:"icon"`
	Text      string `json:"text"`
	Wind360   string `json:"wind360,omitempty"`
	WindDir   string `json:"windDir,omitempty"`
	WindScale string `json:"windScale,omitempty"`
	WindSpeed string `json:"windSpeed,omitempty"`
	Humidity  string `json:"humidity,omitempty"`
	Pop       string `json:"pop,omitempty"`
	Precip    string `json:"precip,omitempty"`
	Pressure  string `json:"pressure,omitempty"`
	Cloud     string `json:"cloud,omitempty"`
	Dew       string `json:"dew,omitempty"`
}

// IndexData is one life-style index entry.
type IndexData struct {
	Date     string `json:"date"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Level    string `json:"level"`
	Category string `json:"category"`
	Text     string `json:"text"`
}

// GeoLocation is one candidate from the city lookup endpoint.
type GeoLocation struct {
	Name      string `json:"name"`
	ID        string `json:"id"`
	Lat       string `json:"lat"`
	Lon       string `json:"lon"`
	Adm1      string `json:"adm1"`
	Adm2      string `json:"adm2"`
	Country   string `json:"country,omitempty"`
	Tz        string `json:"tz,omitempty"`
	UTCOffset string `json:"utcOffset,omitempty"`
	Type      string `json:"type,omitempty"`
	Rank      string `json:"rank,omitempty"`
	FxLink    string `json:"fxLink,omitempty"`
}

// GeoError is the problem object the geo endpoints return in place of a
// non-200 code for some request failures.
type GeoError struct {
	Status int    `json:"status,omitempty"`
	Type   string `json:"type,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
}

type NowResponse struct {
	Envelope
	Now RealTimeData `json:"now"`
}

type DailyResponse struct {
	Envelope
	Daily []DailyData `json:"daily"`
}

type HourlyResponse struct {
	Envelope
	Hourly []HourlyData `json:"hourly"`
}

type IndicesResponse struct {
	Envelope
	Daily []IndexData `json:"daily"`
}

type GeoResponse struct {
	Envelope
	Location []GeoLocation `json:"location"`
	Error    *GeoError     `json:"error,omitempty"`
}

type TopCityResponse struct {
	Envelope
	TopCityList []GeoLocation `json:"topCityList"`
}
