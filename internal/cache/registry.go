package cache

// Logical resource tags. Every cached query result is stamped with one of
// these; mutations bump the tag to mark dependents stale.
const (
	TagProducts      = "products"
	TagCategories    = "categories"
	TagOrders        = "orders"
	TagReviews       = "reviews"
	TagReviewGallery = "reviewGallery"
	TagUsers         = "users"
	TagCoupons       = "coupons"
	TagSettings      = "settings"
	TagHeroSlides    = "heroSlides"
)

// target pairs a resource tag with the rendered page paths that embed it.
// Kept as a fixed table rather than built from strings at call sites so the
// invalidation set stays exhaustive and typo-proof.
type target struct {
	tags  []string
	paths []string
}

var registry = map[string]target{
	TagProducts: {
		tags:  []string{TagProducts},
		paths: []string{"/", "/products", "/admin/products"},
	},
	TagCategories: {
		tags:  []string{TagCategories},
		paths: []string{"/", "/products", "/admin/categories"},
	},
	TagOrders: {
		tags:  []string{TagOrders},
		paths: []string{"/admin/orders", "/account/orders"},
	},
	TagReviews: {
		tags:  []string{TagReviews, TagProducts},
		paths: []string{"/products"},
	},
	TagReviewGallery: {
		tags:  []string{TagReviewGallery},
		paths: []string{"/"},
	},
	TagUsers: {
		tags:  []string{TagUsers},
		paths: []string{"/admin/users"},
	},
	TagCoupons: {
		tags:  []string{TagCoupons},
		paths: []string{"/admin/coupons"},
	},
	TagSettings: {
		tags:  []string{TagSettings},
		paths: []string{"/", "/contact"},
	},
	TagHeroSlides: {
		tags:  []string{TagHeroSlides},
		paths: []string{"/", "/admin/hero-slides"},
	},
}

// PageTag converts a rendered page path into the tag its cached render is
// stamped with.
func PageTag(path string) string {
	return "page:" + path
}

// targetsFor expands a resource into the full tag set to bump: its own tags
// plus the page tags of every path that embeds it.
func targetsFor(resource string) []string {
	entry, ok := registry[resource]
	if !ok {
		return []string{resource}
	}

	tags := make([]string, 0, len(entry.tags)+len(entry.paths))
	tags = append(tags, entry.tags...)
	for _, path := range entry.paths {
		tags = append(tags, PageTag(path))
	}
	return tags
}

// allTargets is the union of every registered tag and page tag, used by the
// RevalidateAll escape hatch.
func allTargets() []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(registry)*3)

	for resource := range registry {
		for _, tag := range targetsFor(resource) {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}

	if _, ok := seen[PageTag("/")]; !ok {
		out = append(out, PageTag("/"))
	}
	return out
}
