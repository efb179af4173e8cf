package storage

import (
	"context"
	"io"

	"go.uber.org/zap"
)

// Instrument wraps a store so that every call is logged at debug level.
//
// Tests also use the wrapper, with an observed zap core, to assert which
// backend calls a run performed.
func Instrument(l *zap.Logger, store Store) Store {
	return &instrumentedStore{
		store: store,
		l:     l.With(zap.String("store", store.String())),
	}
}

type instrumentedStore struct {
	store Store
	l     *zap.Logger
}

func (i *instrumentedStore) String() string {
	return i.store.String()
}

func (i *instrumentedStore) Has(ctx context.Context, key string) (bool, error) {
	i.l.Debug("storage has", zap.String("key", key))
	return i.store.Has(ctx, key)
}

func (i *instrumentedStore) Head(ctx context.Context, key string) (ObjectInfo, error) {
	i.l.Debug("storage head", zap.String("key", key))
	return i.store.Head(ctx, key)
}

func (i *instrumentedStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	i.l.Debug("storage get", zap.String("key", key))
	return i.store.Get(ctx, key)
}

func (i *instrumentedStore) Put(ctx context.Context, key string, rdr io.Reader) error {
	i.l.Debug("storage put", zap.String("key", key))
	return i.store.Put(ctx, key, rdr)
}

func (i *instrumentedStore) KeysPrefix(ctx context.Context, token, prefix string, count int) ([]ObjectInfo, string, error) {
	i.l.Debug("storage keys with prefix", zap.String("prefix", prefix), zap.String("token", token))
	return i.store.KeysPrefix(ctx, token, prefix, count)
}
