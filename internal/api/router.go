package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/trakker/internal/catalog"
	"github.com/starford/trakker/internal/models"
	"github.com/starford/trakker/internal/schema"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether JWT Bearer auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *catalog.Service, dumper schema.Dumper, authEnabled bool, jwtSecret string, sseHandler http.Handler) chi.Router {
	artists := resource[models.Artist]{
		entity: "artist", plural: "artists",
		load: schema.LoadArtist,
		list: svc.ListArtists, get: svc.GetArtist,
		create: svc.CreateArtist, update: svc.UpdateArtist, remove: svc.DeleteArtist,
		dumpOne: dumper.Artist, dumpMany: dumper.Artists,
	}
	tracks := resource[models.Track]{
		entity: "track", plural: "tracks",
		load: schema.LoadTrack,
		list: svc.ListTracks, get: svc.GetTrack,
		create: svc.CreateTrack, update: svc.UpdateTrack, remove: svc.DeleteTrack,
		dumpOne: dumper.Track, dumpMany: dumper.Tracks,
	}
	links := resource[models.Link]{
		entity: "link", plural: "links",
		load: schema.LoadLink,
		list: svc.ListLinks, get: svc.GetLink,
		create: svc.CreateLink, update: svc.UpdateLink, remove: svc.DeleteLink,
		dumpOne: dumper.Link, dumpMany: dumper.Links,
	}
	tags := resource[models.Tag]{
		entity: "tag", plural: "tags",
		load: schema.LoadTag,
		list: svc.ListTags, get: svc.GetTag,
		create: svc.CreateTag, update: svc.UpdateTag, remove: svc.DeleteTag,
		dumpOne: dumper.Tag, dumpMany: dumper.Tags,
	}

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, jwtSecret))

	r.Route("/artists", artists.routes)
	r.Route("/tracks", tracks.routes)
	r.Route("/links", links.routes)
	r.Route("/tags", tags.routes)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
