package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/codewandler/actr-go/ports/kv"
)

const DefaultBucket = "actr_leftovers"

type KvConfig struct {
	Connect Connector
	Bucket  string
	// TTL applies to the whole bucket. Per-key TTLs are not supported.
	TTL      time.Duration
	MaxBytes int64
	// Timeout bounds each operation whose context has no deadline.
	Timeout time.Duration
}

// KvStore is a kv.Store backed by a JetStream key/value bucket.
type KvStore struct {
	kv      jetstream.KeyValue
	close   closeFunc
	timeout time.Duration
}

type kvRecord struct {
	Data []byte         `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

func NewKvStore(ctx context.Context, cfg KvConfig) (*KvStore, error) {
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 16 * 1024 * 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	doConnect := cfg.Connect
	if doConnect == nil {
		doConnect = ConnectDefault()
	}

	nc, closeConn, err := doConnect()
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		closeConn()
		return nil, err
	}

	bucket, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:   cfg.Bucket,
		Storage:  jetstream.FileStorage,
		MaxBytes: cfg.MaxBytes,
		TTL:      cfg.TTL,
	})
	if err != nil {
		closeConn()
		return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
	}

	return &KvStore{kv: bucket, close: closeConn, timeout: cfg.Timeout}, nil
}

func (k *KvStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, k.timeout)
}

func (k *KvStore) Put(ctx context.Context, key string, entry kv.Entry, _ kv.PutOptions) error {
	if key == "" {
		return kv.ErrInvalidKey
	}

	data, err := json.Marshal(kvRecord{Data: entry.Data, Meta: entry.Meta})
	if err != nil {
		return err
	}

	ctx, cancel := k.withTimeout(ctx)
	defer cancel()

	if _, err = k.kv.Put(ctx, key, data); err != nil {
		if errors.Is(err, jetstream.ErrInvalidKey) {
			return fmt.Errorf("%w: %s", kv.ErrInvalidKey, key)
		}
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (k *KvStore) Get(ctx context.Context, key string) (entry kv.Entry, err error) {
	ctx, cancel := k.withTimeout(ctx)
	defer cancel()

	v, err := k.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return entry, kv.ErrNotFound
		}
		if errors.Is(err, jetstream.ErrInvalidKey) {
			return entry, fmt.Errorf("%w: %s", kv.ErrInvalidKey, key)
		}
		return entry, fmt.Errorf("get %s: %w", key, err)
	}

	var rec kvRecord
	if err = json.Unmarshal(v.Value(), &rec); err != nil {
		return entry, fmt.Errorf("decode %s: %w", key, err)
	}
	return kv.Entry{Data: rec.Data, Meta: rec.Meta}, nil
}

func (k *KvStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := k.withTimeout(ctx)
	defer cancel()

	if err := k.kv.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (k *KvStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := k.withTimeout(ctx)
	defer cancel()

	lister, err := k.kv.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer func() { _ = lister.Stop() }()

	keys := make([]string, 0)
	for key := range lister.Keys() {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close releases the connection lease.
func (k *KvStore) Close() {
	if k.close != nil {
		k.close()
	}
}

var _ kv.Store = (*KvStore)(nil)
