package dreo

import "strings"

// Endpoints are region-partitioned; tokens from one region are not
// valid in another. The open-api token carries its region as a
// colon-delimited suffix, e.g. "eyJhb...:NA".
const defaultRegionSlug = "us"

// regionMap maps the token's region suffix to the API/WebSocket
// region slug.
var regionMap = map[string]string{
	"NA": "us",
	"US": "us",
	"EU": "eu",
}

// RegionFromToken extracts the region suffix from an open-api access
// token. Returns an empty string when the token carries no suffix.
func RegionFromToken(token string) string {
	if idx := strings.LastIndex(token, ":"); idx >= 0 {
		return token[idx+1:]
	}
	return ""
}

// RegionSlug resolves a region code to the endpoint slug. Unrecognized
// codes fall back to the default region; callers should log the
// fallback since it usually means the token format changed.
func RegionSlug(region string) (slug string, known bool) {
	slug, known = regionMap[strings.ToUpper(region)]
	if !known {
		slug = defaultRegionSlug
	}
	return slug, known
}
