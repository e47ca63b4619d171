package sources

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/user/catalogs/internal/catalog"
	"resty.dev/v3"
)

type tmEvent struct {
	Name  *string `json:"name"`
	URL   *string `json:"url"`
	Dates *struct {
		Start *struct {
			LocalDate *string `json:"localDate"`
		} `json:"start"`
	} `json:"dates"`
	Images []struct {
		URL *string `json:"url"`
	} `json:"images"`
}

// EventEndpoint searches the Ticketmaster Discovery API by city. Records are
// nested under "_embedded.events".
func EventEndpoint(apiKey string) Endpoint {
	return Endpoint{
		Kind: catalog.Event,
		Path: "/discovery/v2/events.json",
		Prepare: func(r *resty.Request, query string, opts Options) {
			r.SetQueryParam("apikey", apiKey).
				SetQueryParam("city", query)
			if opts.Radius != "" {
				r.SetQueryParam("radius", opts.Radius)
			}
		},
		Extract: extractTicketmaster,
		Map:     mapTicketmaster,
	}
}

func NewEventSource(baseURL, apiKey string, timeout time.Duration) *Client {
	return NewClient(EventEndpoint(apiKey), baseURL, timeout)
}

func extractTicketmaster(body []byte) ([]json.RawMessage, error) {
	var resp struct {
		Embedded *struct {
			Events *[]json.RawMessage `json:"events"`
		} `json:"_embedded"`
		Page *json.RawMessage `json:"page"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	// Ticketmaster omits _embedded entirely when nothing matched.
	if resp.Embedded == nil {
		if resp.Page == nil {
			return nil, fmt.Errorf("response has neither %q nor %q", "_embedded", "page")
		}
		return nil, nil
	}
	if resp.Embedded.Events == nil {
		return nil, fmt.Errorf("response has no %q array", "_embedded.events")
	}
	return *resp.Embedded.Events, nil
}

func mapTicketmaster(raw json.RawMessage) (catalog.Item, error) {
	var e tmEvent
	if err := decodeRecord(catalog.Event, raw, &e); err != nil {
		return catalog.Item{}, err
	}

	name, err := required(catalog.Event, "name", e.Name)
	if err != nil {
		return catalog.Item{}, err
	}
	if e.Dates == nil {
		return catalog.Item{}, &catalog.MappingError{Kind: catalog.Event, Field: "dates"}
	}
	if e.Dates.Start == nil {
		return catalog.Item{}, &catalog.MappingError{Kind: catalog.Event, Field: "dates.start"}
	}
	date, err := required(catalog.Event, "dates.start.localDate", e.Dates.Start.LocalDate)
	if err != nil {
		return catalog.Item{}, err
	}
	link, err := required(catalog.Event, "url", e.URL)
	if err != nil {
		return catalog.Item{}, err
	}
	if len(e.Images) == 0 {
		return catalog.Item{}, &catalog.MappingError{Kind: catalog.Event, Field: "images"}
	}
	image, err := required(catalog.Event, "images[0].url", e.Images[0].URL)
	if err != nil {
		return catalog.Item{}, err
	}

	return catalog.Item{
		Kind:  catalog.Event,
		Title: name,
		Attrs: []catalog.Attr{
			{Key: "startingDate", Value: date},
			{Key: "priceRange", Value: catalog.EventPriceRange},
		},
		ImageURL: image,
		LinkURL:  link,
	}, nil
}
