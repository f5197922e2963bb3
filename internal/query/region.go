package query

import (
	"fmt"
)

// UsersInRegion returns the distinct ids of users having at least one
// trackpoint strictly inside the axis-aligned box centered on
// (centerLat, centerLon) with the given half width in degrees, resolved to
// the owning activity's user. This is a bounding-box test, not a radius.
// Result is sorted by user id ascending.
func (e *Engine) UsersInRegion(centerLat, centerLon, halfWidth float64) ([]string, error) {
	rows, err := e.db.Conn().Query(`
		SELECT DISTINCT a.user_id
		FROM trackpoints t
		JOIN activities a ON a.id = t.activity_id
		WHERE t.lat > ? AND t.lat < ?
		  AND t.lon > ? AND t.lon < ?
		ORDER BY a.user_id
	`, centerLat-halfWidth, centerLat+halfWidth,
		centerLon-halfWidth, centerLon+halfWidth)
	if err != nil {
		return nil, fmt.Errorf("failed to query users in region: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users in region: %w", err)
	}
	return ids, nil
}
