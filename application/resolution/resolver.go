// Package resolution decides, per path, between a designed page and a
// stored section-driven page.
package resolution

import (
	"context"

	"go.uber.org/zap"

	"loopsite/application/designed"
	"loopsite/application/ports"
	"loopsite/domain/pages"
	"loopsite/domain/slots"
	apperrors "loopsite/pkg/errors"
)

// PlanKind says which pipeline renders a path.
type PlanKind string

const (
	PlanDesigned PlanKind = "designed"
	PlanGeneric  PlanKind = "generic"
)

// Plan is the outcome of resolving a path.
type Plan struct {
	Kind PlanKind
	Path string

	// Designed and Slots are set for PlanDesigned.
	Designed designed.Page
	Slots    slots.Values

	// Page is set for PlanGeneric.
	Page *pages.Page
}

// DesignedLookup is the part of the designed registry resolution needs.
type DesignedLookup interface {
	Lookup(path string) (designed.Page, bool)
}

// Resolver resolves paths against the designed registry and storage. It
// holds no mutable state.
type Resolver struct {
	designed DesignedLookup
	store    ports.PageReader
	logger   *zap.Logger
}

// NewResolver creates a resolver
func NewResolver(registry DesignedLookup, store ports.PageReader, logger *zap.Logger) *Resolver {
	return &Resolver{designed: registry, store: store, logger: logger}
}

// Resolve returns the plan for path.
//
// Designed pages never trigger a section fetch; slot overrides are fetched
// only when the page declares slots. Any other path is fetched from
// storage: absence, or an unpublished page, is ContentNotFound and a
// storage failure is StorageUnavailable. Neither is retried here.
func (r *Resolver) Resolve(ctx context.Context, path string) (*Plan, error) {
	path = pages.NormalizePath(path)

	if page, ok := r.designed.Lookup(path); ok {
		values, err := r.designedSlots(ctx, page)
		if err != nil {
			return nil, err
		}
		return &Plan{Kind: PlanDesigned, Path: path, Designed: page, Slots: values}, nil
	}

	stored, found, err := r.store.FetchPage(ctx, path)
	if err != nil {
		return nil, apperrors.NewStorageUnavailableError("fetch page", err)
	}
	if !found || stored == nil || !stored.Published {
		return nil, apperrors.NewContentNotFoundError(path)
	}
	return &Plan{Kind: PlanGeneric, Path: path, Page: stored}, nil
}

func (r *Resolver) designedSlots(ctx context.Context, page designed.Page) (slots.Values, error) {
	cfg := page.Slots()
	if cfg.Len() == 0 {
		return slots.Values{}, nil
	}

	// Overrides are keyed by the designed page's own path, so every path
	// in a subtree shares them.
	overrides, found, err := r.store.FetchSlotOverrides(ctx, page.Path())
	if err != nil {
		return nil, apperrors.NewStorageUnavailableError("fetch slot overrides", err)
	}
	if !found {
		overrides = nil
	}
	if r.logger != nil {
		if ignored := undeclared(cfg, overrides); len(ignored) > 0 {
			r.logger.Debug("Ignoring undeclared slot overrides",
				zap.String("path", page.Path()),
				zap.Strings("slot_ids", ignored),
			)
		}
	}
	return slots.MergeSlots(cfg, overrides), nil
}

func undeclared(cfg slots.Config, overrides slots.Overrides) []string {
	var ids []string
	for id := range overrides {
		if _, ok := cfg.Lookup(id); !ok {
			ids = append(ids, id)
		}
	}
	return ids
}
