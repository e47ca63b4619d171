package sources

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/user/catalogs/internal/catalog"
	"resty.dev/v3"
)

// omdbMovie matches the OMDb title lookup response (?t=...).
type omdbMovie struct {
	Title      *string `json:"Title"`
	Year       *string `json:"Year"`
	ImdbRating *string `json:"imdbRating"`
	Runtime    *string `json:"Runtime"`
	Actors     *string `json:"Actors"`
	Plot       *string `json:"Plot"`
	Poster     *string `json:"Poster"`
}

// omdbEnvelope is only used to detect OMDb's in-band errors.
type omdbEnvelope struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// MovieEndpoint searches OMDb by exact title. The response is a single object,
// so a successful search yields at most one record.
func MovieEndpoint(apiKey string) Endpoint {
	return Endpoint{
		Kind: catalog.Movie,
		Path: "/",
		Prepare: func(r *resty.Request, query string, _ Options) {
			r.SetQueryParam("apikey", apiKey).
				SetQueryParam("t", query)
		},
		Extract: extractOMDb,
		Map:     mapOMDb,
	}
}

func NewMovieSource(baseURL, apiKey string, timeout time.Duration) *Client {
	return NewClient(MovieEndpoint(apiKey), baseURL, timeout)
}

func extractOMDb(body []byte) ([]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("response is not a JSON object")
	}

	var env omdbEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if env.Response == "False" {
		msg := env.Error
		if msg == "" {
			msg = "omdb returned Response=False"
		}
		return nil, &catalog.FetchError{Kind: catalog.FetchShape, Message: msg}
	}

	return []json.RawMessage{json.RawMessage(body)}, nil
}

func mapOMDb(raw json.RawMessage) (catalog.Item, error) {
	var m omdbMovie
	if err := decodeRecord(catalog.Movie, raw, &m); err != nil {
		return catalog.Item{}, err
	}

	fields := []struct {
		name string
		v    *string
	}{
		{"Title", m.Title},
		{"Year", m.Year},
		{"imdbRating", m.ImdbRating},
		{"Runtime", m.Runtime},
		{"Actors", m.Actors},
		{"Plot", m.Plot},
		{"Poster", m.Poster},
	}
	vals := make([]string, len(fields))
	for i, f := range fields {
		v, err := required(catalog.Movie, f.name, f.v)
		if err != nil {
			return catalog.Item{}, err
		}
		vals[i] = v
	}

	return catalog.Item{
		Kind:  catalog.Movie,
		Title: vals[0],
		Attrs: []catalog.Attr{
			{Key: "year", Value: vals[1]},
			{Key: "rating", Value: vals[2]},
			{Key: "runtime", Value: vals[3]},
			{Key: "mainActors", Value: vals[4]},
			{Key: "plot", Value: vals[5]},
		},
		ImageURL: vals[6],
	}, nil
}
