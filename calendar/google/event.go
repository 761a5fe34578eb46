package google

import (
	"google.golang.org/api/calendar/v3"

	"github.com/guilherme-santos/zoomlauncher/internal"
)

const noTitle = "No title"

func newEvent(event *calendar.Event) *internal.Event {
	e := &internal.Event{
		ID:          event.Id,
		Summary:     event.Summary,
		Location:    event.Location,
		Description: event.Description,
		HangoutLink: event.HangoutLink,
	}
	if e.Summary == "" {
		e.Summary = noTitle
	}
	if event.Start != nil {
		e.Start = internal.EventTime{
			DateTime: event.Start.DateTime,
			Date:     event.Start.Date,
		}
	}
	if event.ConferenceData != nil {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep == nil {
				continue
			}
			e.EntryPoints = append(e.EntryPoints, internal.EntryPoint{
				Type: ep.EntryPointType,
				URI:  ep.Uri,
			})
		}
	}
	return e
}
