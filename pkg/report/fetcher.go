package report

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/artic-report/pkg/client"
	"github.com/Sternrassler/artic-report/pkg/logging"
)

const (
	// detailChunkSize bounds ids per detail request to keep query strings
	// within upstream URL-length limits while minimizing request count.
	detailChunkSize = 50

	// maxPageSize is the largest page the search endpoint accepts.
	maxPageSize = 100

	// maxSearchPages bounds pagination against an API that keeps returning
	// non-empty pages of ids it never fulfills.
	maxSearchPages = 1000
)

// Fetcher turns a report spec into a complete dataset using the API client.
// All requests within one fetch are strictly sequential.
type Fetcher struct {
	client *client.Client
	logger zerolog.Logger
}

// NewFetcher creates a Fetcher on top of the given client.
func NewFetcher(c *client.Client) *Fetcher {
	return &Fetcher{
		client: c,
		logger: logging.NewLogger("report-fetcher"),
	}
}

// FetchReportData normalizes the spec, searches for matching ids, fetches
// their details in chunks, and wraps the result. Fetch failures propagate
// untranslated so the batch driver can record a per-report failure.
func (f *Fetcher) FetchReportData(ctx context.Context, spec Spec) (*Data, error) {
	spec = spec.Normalize()

	f.logger.Info().
		Str("report", spec.Name).
		Str("search", spec.Search).
		Strs("fields", spec.Fields).
		Int("max_items", spec.MaxItems).
		Msg("Fetch start")

	ids, err := f.searchIDs(ctx, spec.Search, spec.MaxItems)
	if err != nil {
		return nil, err
	}
	f.logger.Info().Str("report", spec.Name).Int("ids", len(ids)).Msg("Search complete")

	items, err := f.fetchDetails(ctx, ids, spec.Fields)
	if err != nil {
		return nil, err
	}
	f.logger.Info().Str("report", spec.Name).Int("items", len(items)).Msg("Details fetched")

	return &Data{
		Spec:  spec,
		Items: items,
		Count: len(items),
	}, nil
}

type searchPayload struct {
	Data []struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

type detailPayload struct {
	Data []Record `json:"data"`
}

// searchIDs pages through /search accumulating item ids until maxItems is
// reached or the API returns an empty page. The result is truncated to
// exactly maxItems. Entries lacking an id are skipped without error.
func (f *Fetcher) searchIDs(ctx context.Context, term string, maxItems int) ([]string, error) {
	var ids []string

	pageSize := maxItems
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	for page := 1; len(ids) < maxItems; page++ {
		if page > maxSearchPages {
			f.logger.Warn().
				Int("pages", maxSearchPages).
				Int("ids", len(ids)).
				Msg("Search page bound reached, stopping pagination")
			break
		}

		query := url.Values{}
		query.Set("q", term)
		query.Set("page", strconv.Itoa(page))
		query.Set("limit", strconv.Itoa(pageSize))

		var payload searchPayload
		if err := f.client.GetJSON(ctx, "/search", query, &payload); err != nil {
			return nil, fmt.Errorf("search page %d: %w", page, err)
		}

		if len(payload.Data) == 0 {
			break
		}

		for _, hit := range payload.Data {
			if id, ok := idString(hit.ID); ok {
				ids = append(ids, id)
			}
		}
	}

	if len(ids) > maxItems {
		ids = ids[:maxItems]
	}
	return ids, nil
}

// fetchDetails retrieves full records for the ids in consecutive chunks of
// detailChunkSize, preserving input order across chunk boundaries. Empty ids
// short-circuits without any network call.
func (f *Fetcher) fetchDetails(ctx context.Context, ids []string, fields []string) ([]Record, error) {
	results := []Record{}
	if len(ids) == 0 {
		return results, nil
	}

	fieldsCSV := strings.Join(DefaultFields, ",")
	if len(fields) > 0 {
		fieldsCSV = strings.Join(fields, ",")
	}

	for _, batch := range chunk(ids, detailChunkSize) {
		query := url.Values{}
		query.Set("ids", strings.Join(batch, ","))
		query.Set("fields", fieldsCSV)

		var payload detailPayload
		if err := f.client.GetJSON(ctx, "", query, &payload); err != nil {
			return nil, fmt.Errorf("fetch details (%d ids): %w", len(batch), err)
		}
		results = append(results, payload.Data...)
	}

	return results, nil
}

// chunk splits ids into consecutive groups of at most size elements; the
// last group may be smaller.
func chunk(ids []string, size int) [][]string {
	var out [][]string
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[i:end])
	}
	return out
}

// idString renders a raw JSON id value (number or string) as a string.
// Returns false for missing, null, or empty ids.
func idString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}
