// Package domain models earthquake records from the USGS event feed and the
// normalized events retained after filtering.
//
// # Data Source
//
// Records come from the USGS Earthquake Hazards Program CSV summary feeds,
// e.g. https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_month.csv.
// The first row is a header; each following row is one seismic event.
//
// # Column Contract
//
// Only a handful of the feed's columns are read, by position:
//
//	0   time       ISO-8601 UTC, e.g. "2017-02-01T04:35:11.290Z"
//	1   latitude   decimal degrees
//	2   longitude  decimal degrees
//	4   mag        decimal magnitude, precision varies by network ("2.3", "1.05")
//	13  place      "<distance> <compass> of <City>, <Region>"
//	14  type       "earthquake", "quarry blast", "explosion", ...
//
// Rows shorter than the contract read missing columns as empty strings.
//
// # Place Format
//
//	"25km NE of Soledad, California"  →  "Soledad, California"
//
// Everything up to and including the last " of " in the description is
// dropped. A description without a ", " separator cannot be split into
// city and region and is reported as malformed.
//
// # Numeric Coercion
//
// Latitude, longitude, and magnitude parse permissively: empty or
// non-numeric values become 0. A missing magnitude therefore yields a felt
// threshold of 0 miles, and missing coordinates place the event at (0, 0);
// both almost always exclude the record. This mirrors the upstream tool's
// behavior and is kept deliberately.
//
// # Felt Heuristic
//
// An event is considered felt at the reference point when
//
//	distance_miles <= round(magnitude * 100)
//
// with distance rounded to the nearest whole mile. See [IsFelt].
//
// # ID Generation
//
// Event IDs are truncated SHA-256 hashes of time|place|magnitude. Republishing
// the same catalog produces the same keys. See [Event.ID].
package domain
