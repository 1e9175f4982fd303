package mcpserver

// DocumentFormat describes the JSON documents returned by the catalog tools
// so that LLM consumers know which nested fields to expect.
const DocumentFormat = `# Trakker Document Format

Every artist, track, link and tag is returned as a JSON object with the
scalar fields ` + "`id`, `name`, `created_at` and `updated_at`" + `.
Tracks add ` + "`artist_id`" + `; links add ` + "`artist_id` and `track_id`" + `.

## Nested fields

| Entity | Nested fields |
|--------|---------------|
| artist | tracks, links, tags |
| track  | artist, links, tags |
| link   | artist, track, tags |
| tag    | artists, tracks, links |

A nested object never repeats the relation that leads back to its parent.
For example the tracks nested inside an artist carry no ` + "`artist`" + ` field,
and the artist nested inside a link carries no ` + "`links`" + ` field.

Nesting stops after a fixed number of hops; objects at the last level carry
scalar fields only. To-many fields are always lists, never null.

## Example

` + "```" + `json
{
  "id": 1,
  "name": "Paranoid Android (live)",
  "artist_id": 1,
  "track_id": 1,
  "artist": {"id": 1, "name": "Radiohead", "tracks": [...], "tags": [...]},
  "track": {"id": 1, "name": "Paranoid Android", "artist_id": 1, "artist": {...}, "tags": [...]},
  "tags": [{"id": 1, "name": "rock", "artists": [...], "tracks": [...]}],
  "created_at": "2024-01-01T09:00:00Z",
  "updated_at": "2024-01-01T09:00:00Z"
}
` + "```" + `
`
