package store

// Option configures a Store.
type Option func(*Store)

// WithLinkArtistMatch makes link writes fail unless the link's artist is also
// the artist of its track. Track writes that would break the rule for existing
// links fail as well.
func WithLinkArtistMatch(enabled bool) Option {
	return func(s *Store) {
		s.linkArtistMatch = enabled
	}
}
