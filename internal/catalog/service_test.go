package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/starford/trakker/internal/apperr"
	"github.com/starford/trakker/internal/models"
	"github.com/starford/trakker/internal/schema"
	"github.com/starford/trakker/internal/store"
	"github.com/starford/trakker/internal/testutil"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) PublishChange(entity, action string, _ int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, entity+"."+action)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func testService(t *testing.T, opts ...store.Option) (*Service, *recorder, *clock) {
	t.Helper()
	rec := &recorder{}
	clk := &clock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewService(testutil.TestStore(t, opts...), WithNotifier(rec), WithClock(clk.now), WithDepth(2))
	return svc, rec, clk
}

func TestEndToEndLinkScenario(t *testing.T) {
	svc, rec, _ := testService(t)
	ctx := context.Background()

	a, err := svc.CreateArtist(ctx, &models.Artist{Name: "A"})
	if err != nil {
		t.Fatalf("CreateArtist: %v", err)
	}
	tr, err := svc.CreateTrack(ctx, &models.Track{Name: "T", ArtistID: a.ID})
	if err != nil {
		t.Fatalf("CreateTrack: %v", err)
	}
	g, err := svc.CreateTag(ctx, &models.Tag{
		Name:    "G",
		Artists: []*models.Artist{{ID: a.ID}},
		Tracks:  []*models.Track{{ID: tr.ID}},
	})
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	l, err := svc.CreateLink(ctx, &models.Link{
		Name:     "L",
		ArtistID: a.ID,
		TrackID:  tr.ID,
		Tags:     []*models.Tag{{ID: g.ID}},
	})
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	doc := schema.NewDumper(2).Link(l)
	artist := doc["artist"].(schema.Document)
	track := doc["track"].(schema.Document)
	tags := doc["tags"].([]schema.Document)
	if artist["name"] != "A" || track["name"] != "T" {
		t.Fatalf("artist/track = %v / %v", artist["name"], track["name"])
	}
	if len(tags) != 1 || tags[0]["name"] != "G" {
		t.Fatalf("tags = %v", tags)
	}
	for _, nested := range []schema.Document{artist, track, tags[0]} {
		if _, ok := nested["links"]; ok {
			t.Errorf("nested %v re-embeds links", nested["name"])
		}
	}

	want := []string{"artist.created", "track.created", "tag.created", "link.created"}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, rec.events[i], want[i])
		}
	}
}

func TestTimestamps(t *testing.T) {
	svc, _, clk := testService(t)
	ctx := context.Background()
	created := clk.t

	a, err := svc.CreateArtist(ctx, &models.Artist{Name: "A"})
	if err != nil {
		t.Fatal(err)
	}
	if !a.CreatedAt.Equal(created) || !a.UpdatedAt.Equal(created) {
		t.Fatalf("timestamps after create = %v / %v", a.CreatedAt, a.UpdatedAt)
	}

	clk.t = created.Add(time.Hour)
	a, err = svc.UpdateArtist(ctx, a.ID, &models.Artist{Name: "A prime"})
	if err != nil {
		t.Fatal(err)
	}
	if !a.CreatedAt.Equal(created) {
		t.Errorf("created_at changed to %v", a.CreatedAt)
	}
	if !a.UpdatedAt.Equal(clk.t) {
		t.Errorf("updated_at = %v, want %v", a.UpdatedAt, clk.t)
	}
}

func TestCreateIgnoresClientIdentity(t *testing.T) {
	svc, _, clk := testService(t)
	ctx := context.Background()
	in := &models.Artist{ID: 99, Name: "A"}
	in.CreatedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	a, err := svc.CreateArtist(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == 99 {
		t.Error("client-supplied id should be ignored")
	}
	if !a.CreatedAt.Equal(clk.t) {
		t.Errorf("created_at = %v, want server time", a.CreatedAt)
	}
}

func TestConstraintErrorsPropagate(t *testing.T) {
	svc, rec, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateTrack(ctx, &models.Track{Name: "T", ArtistID: 1}); !errors.Is(err, apperr.ErrConstraintViolation) {
		t.Fatalf("track without artist: %v", err)
	}
	if _, err := svc.CreateArtist(ctx, &models.Artist{Name: "A"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateArtist(ctx, &models.Artist{Name: "A"}); !errors.Is(err, apperr.ErrConstraintViolation) {
		t.Fatalf("duplicate artist: %v", err)
	}
	if len(rec.events) != 1 {
		t.Errorf("failed writes must not publish: %v", rec.events)
	}
}

func TestDeleteArtistCascadeThroughService(t *testing.T) {
	svc, rec, _ := testService(t)
	ctx := context.Background()
	a, _ := svc.CreateArtist(ctx, &models.Artist{Name: "A"})
	tr, _ := svc.CreateTrack(ctx, &models.Track{Name: "T", ArtistID: a.ID})
	if _, err := svc.CreateLink(ctx, &models.Link{Name: "L", ArtistID: a.ID, TrackID: tr.ID}); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteArtist(ctx, a.ID); err != nil {
		t.Fatalf("DeleteArtist: %v", err)
	}
	tracks, _ := svc.ListTracks(ctx)
	links, _ := svc.ListLinks(ctx)
	if len(tracks) != 0 || len(links) != 0 {
		t.Errorf("tracks=%d links=%d after cascade", len(tracks), len(links))
	}
	if last := rec.events[len(rec.events)-1]; last != "artist.deleted" {
		t.Errorf("last event = %q", last)
	}
	if err := svc.DeleteArtist(ctx, a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
}

func TestDeleteTagKeepsRecords(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()
	g, _ := svc.CreateTag(ctx, &models.Tag{Name: "G"})
	a, err := svc.CreateArtist(ctx, &models.Artist{Name: "A", Tags: []*models.Tag{{ID: g.ID}}})
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Tags) != 1 {
		t.Fatalf("artist tags = %d", len(a.Tags))
	}
	if err := svc.DeleteTag(ctx, g.ID); err != nil {
		t.Fatal(err)
	}
	a, err = svc.GetArtist(ctx, a.ID)
	if err != nil {
		t.Fatalf("artist gone after tag delete: %v", err)
	}
	if len(a.Tags) != 0 {
		t.Errorf("artist still tagged: %+v", a.Tags)
	}
}

func TestUpdateTrackKeepsTagsWhenOmitted(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()
	a, _ := svc.CreateArtist(ctx, &models.Artist{Name: "A"})
	g, _ := svc.CreateTag(ctx, &models.Tag{Name: "G"})
	tr, err := svc.CreateTrack(ctx, &models.Track{Name: "T", ArtistID: a.ID, Tags: []*models.Tag{{ID: g.ID}}})
	if err != nil {
		t.Fatal(err)
	}
	tr, err = svc.UpdateTrack(ctx, tr.ID, &models.Track{Name: "T2", ArtistID: a.ID})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Name != "T2" || len(tr.Tags) != 1 {
		t.Errorf("track after update = %q with %d tags", tr.Name, len(tr.Tags))
	}
	tags, _ := svc.ListTags(ctx)
	if len(tags) != 1 || len(tags[0].Tracks) != 1 {
		t.Errorf("tag tracks = %+v", tags)
	}
}

func TestLinkArtistRule(t *testing.T) {
	svc, _, _ := testService(t, store.WithLinkArtistMatch(true))
	ctx := context.Background()
	a, _ := svc.CreateArtist(ctx, &models.Artist{Name: "A"})
	b, _ := svc.CreateArtist(ctx, &models.Artist{Name: "B"})
	tr, _ := svc.CreateTrack(ctx, &models.Track{Name: "T", ArtistID: a.ID})

	if _, err := svc.CreateLink(ctx, &models.Link{Name: "L", ArtistID: b.ID, TrackID: tr.ID}); !errors.Is(err, apperr.ErrConstraintViolation) {
		t.Fatalf("mismatch: %v", err)
	}
	l, err := svc.CreateLink(ctx, &models.Link{Name: "L", ArtistID: a.ID, TrackID: tr.ID})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateLink(ctx, l.ID, &models.Link{Name: "L", ArtistID: b.ID, TrackID: tr.ID}); !errors.Is(err, apperr.ErrConstraintViolation) {
		t.Fatalf("update mismatch: %v", err)
	}
	got, _ := svc.GetLink(ctx, l.ID)
	if got.ArtistID != a.ID {
		t.Errorf("rejected update was applied: artist_id = %d", got.ArtistID)
	}
}
