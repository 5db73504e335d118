package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/studiowebux/restdeck/internal/types"
)

// Stats aggregates the log per collection, most recently fetched first
func (m *Manager) Stats() ([]types.FetchStats, error) {
	query := `
		WITH status_codes_agg AS (
			SELECT
				collection,
				json_group_object(CAST(status AS TEXT), count) AS status_codes_json
			FROM (
				SELECT collection, status, COUNT(*) AS count
				FROM fetch_history
				GROUP BY collection, status
			)
			GROUP BY collection
		)
		SELECT
			h.collection,
			COUNT(*) AS total_fetches,
			SUM(CASE WHEN h.status >= 200 AND h.status < 300 AND h.error IS NULL THEN 1 ELSE 0 END) AS success_count,
			SUM(CASE WHEN h.status >= 300 OR (h.status > 0 AND h.error IS NOT NULL) THEN 1 ELSE 0 END) AS error_count,
			SUM(CASE WHEN h.status = 0 THEN 1 ELSE 0 END) AS network_errors,
			SUM(h.discarded) AS discarded,
			AVG(h.duration_ms) AS avg_duration,
			MIN(h.duration_ms) AS min_duration,
			MAX(h.duration_ms) AS max_duration,
			SUM(h.response_size) AS total_size,
			MAX(h.timestamp) AS last_fetched,
			COALESCE(s.status_codes_json, '{}') AS status_codes_json
		FROM fetch_history h
		LEFT JOIN status_codes_agg s ON h.collection = s.collection
		GROUP BY h.collection
		ORDER BY last_fetched DESC
	`

	rows, err := m.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get fetch stats: %w", err)
	}
	defer rows.Close()

	var statsList []types.FetchStats
	for rows.Next() {
		var (
			s               types.FetchStats
			lastFetched     sql.NullString
			statusCodesJSON string
		)
		err := rows.Scan(
			&s.Collection,
			&s.TotalFetches,
			&s.SuccessCount,
			&s.ErrorCount,
			&s.NetworkErrors,
			&s.Discarded,
			&s.AvgDurationMs,
			&s.MinDurationMs,
			&s.MaxDurationMs,
			&s.TotalSize,
			&lastFetched,
			&statusCodesJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fetch stats: %w", err)
		}

		if lastFetched.Valid {
			parsed, err := time.ParseInLocation(timestampLayout, lastFetched.String, time.UTC)
			if err != nil {
				return nil, fmt.Errorf("invalid history timestamp %q: %w", lastFetched.String, err)
			}
			s.LastFetched = parsed.Local()
		}

		s.StatusCodes, err = parseStatusCodes(statusCodesJSON)
		if err != nil {
			return nil, err
		}

		statsList = append(statsList, s)
	}

	return statsList, rows.Err()
}

// parseStatusCodes converts SQLite's json_group_object output to a status histogram
func parseStatusCodes(raw string) (map[int]int, error) {
	var byText map[string]int
	if err := json.Unmarshal([]byte(raw), &byText); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status codes: %w", err)
	}

	codes := make(map[int]int, len(byText))
	for text, count := range byText {
		code, err := strconv.Atoi(text)
		if err != nil {
			continue
		}
		codes[code] = count
	}
	return codes, nil
}
