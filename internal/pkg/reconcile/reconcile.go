// Package reconcile computes and applies the minimal set of media-host
// operations needed to move a project's persisted media references from
// their previous state to the state the editor staged: upload what is new,
// keep what is retained, delete what is no longer referenced.
//
// Ordering is the whole point. Uploads resolve first; the caller persists
// the project only after every required upload succeeded; orphan deletion
// runs last, once the new state is confirmed. The worst reachable failure
// is an orphaned object on the host — never a deleted kept image, never a
// persisted reference to something that was not uploaded.
package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hossamdev/portfolio-api/internal/modules/model"
	"github.com/hossamdev/portfolio-api/internal/pkg/mediaref"
)

// MediaStore is the slice of the media gateway the engine needs.
type MediaStore interface {
	UploadImage(ctx context.Context, filename string, data []byte) (model.MediaRef, error)
	// DeleteImage reports found=false (no error) for identifiers the host
	// no longer knows; deletion is idempotent from the engine's side.
	DeleteImage(ctx context.Context, publicID string) (bool, error)
}

// OrphanSink receives identifiers whose best-effort delete failed, for
// later retry. May be nil.
type OrphanSink interface {
	EnqueueCleanup(ctx context.Context, publicID string)
}

type itemKind int

const (
	kindExisting itemKind = iota + 1
	kindNew
)

// Item is a staged media slot: either a retained reference to an already
// hosted object, or a newly selected file awaiting upload. The two states
// are constructed through Existing/NewUpload so an Item can never be both.
type Item struct {
	kind     itemKind
	url      string
	filename string
	data     []byte
}

func Existing(url string) Item { return Item{kind: kindExisting, url: url} }

func NewUpload(filename string, data []byte) Item {
	return Item{kind: kindNew, filename: filename, data: data}
}

func (it Item) IsNew() bool { return it.kind == kindNew }

// Resolved is the outcome of step one: every slot turned into a final URL,
// extras in their original staged order.
type Resolved struct {
	MainURL   string
	ExtraURLs []string
}

// URLs returns the kept references, main first, empties dropped.
func (r Resolved) URLs() []string {
	out := make([]string, 0, 1+len(r.ExtraURLs))
	if r.MainURL != "" {
		out = append(out, r.MainURL)
	}
	for _, u := range r.ExtraURLs {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

type Engine struct {
	store MediaStore
	sink  OrphanSink
	log   *zap.Logger
}

func NewEngine(store MediaStore, sink OrphanSink, log *zap.Logger) *Engine {
	return &Engine{store: store, sink: sink, log: log}
}

// Resolve uploads every new item and passes retained references through.
// Extra uploads run concurrently; results land at their staged index, so
// order is preserved regardless of completion order. Any upload failure
// aborts the whole submission — the caller must not persist and must not
// delete anything when an error is returned.
func (e *Engine) Resolve(ctx context.Context, main *Item, extras []Item) (Resolved, error) {
	var res Resolved

	if main != nil {
		switch main.kind {
		case kindExisting:
			res.MainURL = main.url
		case kindNew:
			ref, err := e.store.UploadImage(ctx, main.filename, main.data)
			if err != nil {
				return Resolved{}, fmt.Errorf("upload main image: %w", err)
			}
			res.MainURL = ref.URL
		}
	}

	urls := make([]string, len(extras))
	g, gctx := errgroup.WithContext(ctx)
	for i, it := range extras {
		switch it.kind {
		case kindExisting:
			urls[i] = it.url
		case kindNew:
			g.Go(func() error {
				ref, err := e.store.UploadImage(gctx, it.filename, it.data)
				if err != nil {
					return fmt.Errorf("upload image %q: %w", it.filename, err)
				}
				urls[i] = ref.URL
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return Resolved{}, err
	}

	for _, u := range urls {
		if u != "" {
			res.ExtraURLs = append(res.ExtraURLs, u)
		}
	}
	return res, nil
}

// Plan returns the previous references absent from the resolved kept set,
// in their previous order. An empty previous set (creation) plans nothing.
func Plan(previous []string, res Resolved) []string {
	kept := make(map[string]struct{}, 1+len(res.ExtraURLs))
	for _, u := range res.URLs() {
		kept[u] = struct{}{}
	}

	var orphans []string
	seen := make(map[string]struct{}, len(previous))
	for _, u := range previous {
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		if _, ok := kept[u]; !ok {
			orphans = append(orphans, u)
		}
	}
	return orphans
}

// DeleteOrphans issues best-effort deletes for the given reference URLs.
// Failures are logged and handed to the sink for retry; they never
// propagate, because an orphan on the host is a storage leak, not a
// correctness violation of the saved project.
func (e *Engine) DeleteOrphans(ctx context.Context, refs []string) {
	for _, url := range refs {
		id := mediaref.PublicIDFromURL(url)
		if id == "" {
			e.log.Warn("skipping orphan with underivable id", zap.String("url", url))
			continue
		}
		found, err := e.store.DeleteImage(ctx, id)
		if err != nil {
			e.log.Warn("orphan delete failed, queued for retry",
				zap.String("public_id", id), zap.Error(err))
			if e.sink != nil {
				e.sink.EnqueueCleanup(ctx, id)
			}
			continue
		}
		if !found {
			// Already gone; fine.
			e.log.Debug("orphan already absent on host", zap.String("public_id", id))
		}
	}
}
