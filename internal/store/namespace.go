package store

import "context"

// Namespaced prefixes every key so several independent session managers can
// share one backing store.
type Namespaced struct {
	inner  Store
	prefix string
}

func Namespace(inner Store, prefix string) *Namespaced {
	return &Namespaced{inner: inner, prefix: prefix}
}

func (n *Namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}
