package sources

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/user/catalogs/internal/catalog"
	"resty.dev/v3"
)

type pexelsPhoto struct {
	Width        *int    `json:"width"`
	Height       *int    `json:"height"`
	URL          *string `json:"url"`
	Photographer *string `json:"photographer"`
	Src          *struct {
		Tiny     *string `json:"tiny"`
		Original *string `json:"original"`
	} `json:"src"`
}

// PhotoEndpoint searches Pexels. The API key travels in the Authorization header
// and records are listed under "photos".
func PhotoEndpoint(apiKey string) Endpoint {
	return Endpoint{
		Kind: catalog.Photo,
		Path: "/v1/search",
		Prepare: func(r *resty.Request, query string, _ Options) {
			r.SetHeader("Authorization", apiKey).
				SetQueryParam("query", query)
		},
		Extract: extractPexels,
		Map:     mapPexels,
	}
}

func NewPhotoSource(baseURL, apiKey string, timeout time.Duration) *Client {
	return NewClient(PhotoEndpoint(apiKey), baseURL, timeout)
}

func extractPexels(body []byte) ([]json.RawMessage, error) {
	var resp struct {
		Photos *[]json.RawMessage `json:"photos"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Photos == nil {
		return nil, fmt.Errorf("response has no %q array", "photos")
	}
	return *resp.Photos, nil
}

func mapPexels(raw json.RawMessage) (catalog.Item, error) {
	var p pexelsPhoto
	if err := decodeRecord(catalog.Photo, raw, &p); err != nil {
		return catalog.Item{}, err
	}

	if p.Width == nil {
		return catalog.Item{}, &catalog.MappingError{Kind: catalog.Photo, Field: "width"}
	}
	if p.Height == nil {
		return catalog.Item{}, &catalog.MappingError{Kind: catalog.Photo, Field: "height"}
	}
	link, err := required(catalog.Photo, "url", p.URL)
	if err != nil {
		return catalog.Item{}, err
	}
	photographer, err := required(catalog.Photo, "photographer", p.Photographer)
	if err != nil {
		return catalog.Item{}, err
	}
	if p.Src == nil {
		return catalog.Item{}, &catalog.MappingError{Kind: catalog.Photo, Field: "src"}
	}
	tiny, err := required(catalog.Photo, "src.tiny", p.Src.Tiny)
	if err != nil {
		return catalog.Item{}, err
	}
	original, err := required(catalog.Photo, "src.original", p.Src.Original)
	if err != nil {
		return catalog.Item{}, err
	}

	return catalog.Item{
		Kind:  catalog.Photo,
		Title: photographer,
		Attrs: []catalog.Attr{
			{Key: "width", Value: strconv.Itoa(*p.Width)},
			{Key: "height", Value: strconv.Itoa(*p.Height)},
			{Key: "thumbnailUrl", Value: tiny},
		},
		ImageURL: original,
		LinkURL:  link,
	}, nil
}
