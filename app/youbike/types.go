package youbike

// Station is one raw record from the YouBike v2 realtime feed. Field names
// follow the upstream JSON; the feed is transient and never persisted as-is.
//
// The feed carries three distinct "updated" timestamps: Mday is the
// per-station data time, SrcUpdateTime is the source's update time, and
// UpdateTime is the platform relay's update time.
type Station struct {
	Sno                  string  `json:"sno"`
	Sna                  string  `json:"sna"`
	Sarea                string  `json:"sarea"`
	Mday                 string  `json:"mday"`
	Ar                   string  `json:"ar"`
	SareaEn              string  `json:"sareaen"`
	SnaEn                string  `json:"snaen"`
	ArEn                 string  `json:"aren"`
	Act                  string  `json:"act"`
	SrcUpdateTime        string  `json:"srcUpdateTime"`
	UpdateTime           string  `json:"updateTime"`
	InfoTime             string  `json:"infoTime"`
	InfoDate             string  `json:"infoDate"`
	Quantity             int     `json:"Quantity"`
	AvailableRentBikes   int     `json:"available_rent_bikes"`
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	AvailableReturnBikes int     `json:"available_return_bikes"`
}

// ActActive is the tri-state activity sentinel meaning "in service".
// Any other value maps to inactive downstream.
const ActActive = "1"
