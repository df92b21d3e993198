package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "tree:a"); err != nil || hit {
		t.Fatalf("Get on empty cache = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "tree:a", []byte(`{"leaves":3}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "tree:a")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if string(data) != `{"leaves":3}` {
		t.Errorf("Get = %s, want {\"leaves\":3}", data)
	}

	if err := c.Delete(ctx, "tree:a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "tree:a"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "tree:a"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)

	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry not removed from disk")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("Get on corrupt entry = hit %v, err %v, want clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if c.Dir() != dir {
		t.Errorf("Dir = %s, want %s", c.Dir(), dir)
	}

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("root removed by Clear: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("%d entries left after Clear", len(entries))
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
}

func TestFileCacheClearKeepsForeignFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "a", []byte("a"), time.Hour); err != nil {
		t.Fatal(err)
	}
	shard := filepath.Dir(c.path("a"))

	keep := []string{
		filepath.Join(dir, "README"),
		filepath.Join(dir, "notes", "x.txt"),
		filepath.Join(dir, "zz", "y.json"),
		filepath.Join(shard, "keep.txt"),
	}
	for _, p := range keep {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 1 {
		t.Errorf("Clear removed %d entries, want 1", n)
	}
	for _, p := range keep {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s removed by Clear: %v", p, err)
		}
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
	if Hash([]byte("world")) == h1 {
		t.Error("different inputs should hash differently")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	g := Hash([]byte("3\n0 1\n1 2\n"))

	key := k.TreeKey(g, TreeKeyOpts{Strategy: "exhaustive"})
	if !strings.HasPrefix(key, "tree:") {
		t.Errorf("TreeKey = %s, want tree: prefix", key)
	}
	if key != k.TreeKey(g, TreeKeyOpts{Strategy: "exhaustive"}) {
		t.Error("TreeKey should be deterministic")
	}

	// Exhaustive results do not depend on iterations or seed.
	if key != k.TreeKey(g, TreeKeyOpts{Strategy: "exhaustive", Iterations: 50, Seed: 7}) {
		t.Error("exhaustive key should ignore iterations and seed")
	}

	r1 := k.TreeKey(g, TreeKeyOpts{Strategy: "randomized", Iterations: 100, Seed: 1})
	r2 := k.TreeKey(g, TreeKeyOpts{Strategy: "randomized", Iterations: 100, Seed: 2})
	r3 := k.TreeKey(g, TreeKeyOpts{Strategy: "randomized", Iterations: 200, Seed: 1})
	if r1 == r2 || r1 == r3 || r1 == key {
		t.Error("randomized keys should vary with iterations and seed")
	}

	if key == k.TreeKey(Hash([]byte("2\n0 1\n")), TreeKeyOpts{Strategy: "exhaustive"}) {
		t.Error("different graphs should have different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	k := NewScopedKeyer(inner, "api:")
	opts := TreeKeyOpts{Strategy: "exhaustive"}

	got := k.TreeKey("abc", opts)
	want := "api:" + inner.TreeKey("abc", opts)
	if got != want {
		t.Errorf("TreeKey = %s, want %s", got, want)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	k := NewScopedKeyer(nil, "x:")
	if !strings.HasPrefix(k.TreeKey("abc", TreeKeyOpts{}), "x:tree:") {
		t.Error("nil inner keyer should fall back to DefaultKeyer")
	}
}

type fakeRedis struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	err    error
	closed bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = value.([]byte)
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	c := &RedisCache{client: fake, prefix: "leafspan:"}

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Fatalf("Get on empty = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := fake.data["leafspan:k"]; !ok {
		t.Error("key not stored under prefix")
	}
	if fake.ttls["leafspan:k"] != time.Minute {
		t.Errorf("ttl = %v, want 1m", fake.ttls["leafspan:k"])
	}

	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get = %q, %v, %v; want v, true, nil", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry present after Delete")
	}

	if err := c.Close(); err != nil || !fake.closed {
		t.Error("Close should close the client")
	}
}

func TestRedisCacheError(t *testing.T) {
	fake := newFakeRedis()
	fake.err = errors.New("connection refused")
	c := &RedisCache{client: fake}

	if _, _, err := c.Get(context.Background(), "k"); err == nil {
		t.Error("Get should surface backend errors")
	}
	if err := c.Set(context.Background(), "k", []byte("v"), 0); err == nil {
		t.Error("Set should surface backend errors")
	}
}

type fakeCollection struct {
	docs map[string]mongoEntry
	err  error
}

func docID(filter any) string {
	for _, e := range filter.(bson.D) {
		if e.Key == "_id" {
			return e.Value.(string)
		}
	}
	return ""
}

func (f *fakeCollection) FindOne(_ context.Context, filter any, _ ...*options.FindOneOptions) *mongo.SingleResult {
	if f.err != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, f.err, nil)
	}
	doc, ok := f.docs[docID(filter)]
	if !ok {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(doc, nil, nil)
}

func (f *fakeCollection) ReplaceOne(_ context.Context, filter any, replacement any, _ ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.docs[docID(filter)] = replacement.(mongoEntry)
	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

func (f *fakeCollection) DeleteOne(_ context.Context, filter any, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	delete(f.docs, docID(filter))
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

func TestMongoCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	coll := &fakeCollection{docs: map[string]mongoEntry{}}
	c := &MongoCache{coll: coll, now: func() time.Time { return now }}

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Fatalf("Get on empty = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	stored := coll.docs["k"]
	if stored.ExpiresAt == nil || !stored.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expires_at = %v, want %v", stored.ExpiresAt, now.Add(time.Hour))
	}

	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get = %q, %v, %v; want v, true, nil", data, hit, err)
	}

	// Past expiry but not yet reaped by the TTL monitor.
	now = now.Add(2 * time.Hour)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired document returned")
	}

	if err := c.Set(ctx, "p", []byte("w"), 0); err != nil {
		t.Fatal(err)
	}
	if coll.docs["p"].ExpiresAt != nil {
		t.Error("zero ttl should not set expires_at")
	}

	if err := c.Delete(ctx, "p"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "p"); hit {
		t.Error("entry present after Delete")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestMongoCacheError(t *testing.T) {
	coll := &fakeCollection{docs: map[string]mongoEntry{}, err: errors.New("server selection timeout")}
	c := &MongoCache{coll: coll, now: time.Now}
	if _, _, err := c.Get(context.Background(), "k"); err == nil {
		t.Error("Get should surface backend errors")
	}
	if err := c.Set(context.Background(), "k", nil, 0); err == nil {
		t.Error("Set should surface backend errors")
	}
}
