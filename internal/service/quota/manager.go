// Package quota accounts for YouTube Data API units spent by the ingestion job.
package quota

// Unit costs of the Data API endpoints the job calls.
const (
	SearchListCost   = 100
	VideosListCost   = 1
	ChannelsListCost = 1

	// CostPerVideo is the documented cost of ingesting one video: one search, one video lookup,
	// one channel lookup. Cached channel lookups are not discounted.
	CostPerVideo = SearchListCost + VideosListCost + ChannelsListCost
)

// Endpoint names used for per-endpoint accounting.
const (
	EndpointSearch   = "search_list"
	EndpointVideos   = "videos_list"
	EndpointChannels = "channels_list"
)

var endpointCosts = map[string]int{
	EndpointSearch:   SearchListCost,
	EndpointVideos:   VideosListCost,
	EndpointChannels: ChannelsListCost,
}

// Calculate returns the quota units charged for videoCount ingested videos.
func Calculate(videoCount int) int {
	if videoCount <= 0 {
		return 0
	}
	return videoCount * CostPerVideo
}

// Meter tracks the units actually spent during one run, per endpoint.
// It is not safe for concurrent use; a run is sequential.
type Meter struct {
	units map[string]int
	calls map[string]int
}

// NewMeter creates an empty Meter.
func NewMeter() *Meter {
	return &Meter{
		units: make(map[string]int),
		calls: make(map[string]int),
	}
}

// Record charges one call to endpoint. Unknown endpoints cost one unit.
func (m *Meter) Record(endpoint string) {
	cost, ok := endpointCosts[endpoint]
	if !ok {
		cost = 1
	}
	m.units[endpoint] += cost
	m.calls[endpoint]++
}

// Units returns the units spent on endpoint.
func (m *Meter) Units(endpoint string) int {
	return m.units[endpoint]
}

// Calls returns the number of calls made to endpoint.
func (m *Meter) Calls(endpoint string) int {
	return m.calls[endpoint]
}

// Total returns the units spent across all endpoints.
func (m *Meter) Total() int {
	total := 0
	for _, units := range m.units {
		total += units
	}
	return total
}

// Endpoints returns the per-endpoint unit totals.
func (m *Meter) Endpoints() map[string]int {
	out := make(map[string]int, len(m.units))
	for endpoint, units := range m.units {
		out[endpoint] = units
	}
	return out
}
