package ingest

import (
	"github.com/chweng/bike-radar/app/database"
	"github.com/chweng/bike-radar/app/youbike"
)

// buildStationUpserts maps raw feed records to the station metadata write
// shape, one per record.
func buildStationUpserts(data []youbike.Station) []database.StationUpsert {
	stations := make([]database.StationUpsert, len(data))
	for i, s := range data {
		stations[i] = database.StationUpsert{
			Sno:           s.Sno,
			NameZh:        s.Sna,
			NameEn:        s.SnaEn,
			AreaZh:        s.Sarea,
			AreaEn:        s.SareaEn,
			AddressZh:     s.Ar,
			AddressEn:     s.ArEn,
			TotalCapacity: s.Quantity,
			Latitude:      s.Latitude,
			Longitude:     s.Longitude,
		}
	}
	return stations
}

// buildStatusInserts maps raw feed records to snapshot rows, one per record.
// The feed's tri-state act field collapses to a boolean here: only the
// "in service" sentinel maps to active, everything else is inactive.
func buildStatusInserts(data []youbike.Station) []database.StatusInsert {
	statuses := make([]database.StatusInsert, len(data))
	for i, s := range data {
		statuses[i] = database.StatusInsert{
			StationSno:           s.Sno,
			DataTimestamp:        s.Mday,
			AvailableRentBikes:   s.AvailableRentBikes,
			AvailableReturnDocks: s.AvailableReturnBikes,
			IsActive:             s.Act == youbike.ActActive,
			SrcUpdateTime:        s.SrcUpdateTime,
			APIUpdateTime:        s.UpdateTime,
		}
	}
	return statuses
}
