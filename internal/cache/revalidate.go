package cache

import (
	"context"
	"log"
	"time"
)

// Invalidator is the revalidation dispatcher: mutating handlers call it
// after a successful write to mark dependent cached reads stale.
type Invalidator struct {
	store GenStore
}

func NewInvalidator(store GenStore) *Invalidator {
	return &Invalidator{store: store}
}

// Revalidate bumps the given tags. Failures are logged and swallowed: a
// cache-refresh failure must never fail the mutation that triggered it.
func (i *Invalidator) Revalidate(tags ...string) {
	if len(tags) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := i.store.Bump(ctx, tags...); err != nil {
		log.Printf("[CACHE] revalidate %v failed: %v", tags, err)
	}
}

func (i *Invalidator) revalidateResource(resource string) {
	i.Revalidate(targetsFor(resource)...)
}

func (i *Invalidator) RevalidateProducts() {
	i.revalidateResource(TagProducts)
}

func (i *Invalidator) RevalidateCategories() {
	i.revalidateResource(TagCategories)
}

func (i *Invalidator) RevalidateOrders() {
	i.revalidateResource(TagOrders)
}

func (i *Invalidator) RevalidateReviews() {
	i.revalidateResource(TagReviews)
}

func (i *Invalidator) RevalidateReviewGallery() {
	i.revalidateResource(TagReviewGallery)
}

func (i *Invalidator) RevalidateUsers() {
	i.revalidateResource(TagUsers)
}

func (i *Invalidator) RevalidateCoupons() {
	i.revalidateResource(TagCoupons)
}

func (i *Invalidator) RevalidateSettings() {
	i.revalidateResource(TagSettings)
}

func (i *Invalidator) RevalidateHeroSlides() {
	i.revalidateResource(TagHeroSlides)
}

// RevalidateAll stales every tag plus the page root. Last resort: it throws
// away all the granularity the per-resource helpers exist for.
func (i *Invalidator) RevalidateAll() {
	i.Revalidate(allTargets()...)
}
