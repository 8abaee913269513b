package localcache

import "github.com/angelmondragon/jewelry-admin/pkg/enums"

const (
	// ProductsKey keeps the key the dashboard has always written products under.
	ProductsKey = "localProducts"
	TokenKey    = "accessToken"

	keyNamespace = "jewelry"
)

// KeyFor returns the cache key holding the given entity kind.
func KeyFor(kind enums.EntityKind) string {
	if kind == enums.EntityKindProduct {
		return ProductsKey
	}
	return keyNamespace + ":" + string(kind)
}
