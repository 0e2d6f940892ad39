package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Operation names passed to the Memory error hook.
const (
	OpGet    = "get"
	OpList   = "list"
	OpSet    = "set"
	OpMerge  = "merge"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Memory is an in-process Store. It backs the application when no document
// store credentials are configured, persisting to a local JSON file, and
// doubles as the test store: it records writes and can inject failures.
//
// Documents are keyed by their full slash path, so subcollections nest the
// same way they do in the real store and deleting a document leaves its
// subcollection documents in place.
type Memory struct {
	mu     sync.RWMutex
	docs   map[string]map[string]any
	writes []string
	hook   func(op, path string) error
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{docs: map[string]map[string]any{}}
}

// Fail installs a hook consulted before every operation. A non-nil return
// aborts the operation with that error. Pass nil to clear.
func (m *Memory) Fail(hook func(op, path string) error) {
	m.mu.Lock()
	m.hook = hook
	m.mu.Unlock()
}

// Seed inserts a document directly, bypassing the hook and the write log.
// The path must be a full document path such as "workplaces/front_desk".
func (m *Memory) Seed(path string, data map[string]any) {
	m.mu.Lock()
	m.docs[path] = copyMap(data)
	m.mu.Unlock()
}

// Writes returns the mutating operations performed so far, oldest first,
// formatted as "<op> <path>".
func (m *Memory) Writes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.writes))
	copy(out, m.writes)
	return out
}

// WriteCount reports how many mutating operations have been performed.
func (m *Memory) WriteCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.writes)
}

// LoadFile replaces the store contents with documents read from a JSON
// file previously written by SaveFile.
func (m *Memory) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read data file: %w", err)
	}
	var docs map[string]map[string]any
	if err := json.Unmarshal(raw, &docs); err != nil {
		return fmt.Errorf("parse data file %s: %w", path, err)
	}
	if docs == nil {
		docs = map[string]map[string]any{}
	}
	m.mu.Lock()
	m.docs = docs
	m.mu.Unlock()
	return nil
}

// SaveFile writes the store contents to a JSON file.
func (m *Memory) SaveFile(path string) error {
	m.mu.RLock()
	raw, err := json.MarshalIndent(m.docs, "", "    ")
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode data file: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write data file %s: %w", path, err)
	}
	return nil
}

func (m *Memory) Collection(name string) CollectionRef {
	return memCollection{store: m, path: name}
}

func (m *Memory) Batch() WriteBatch {
	return &memBatch{store: m}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) hookCall(op, path string) error {
	m.mu.RLock()
	hook := m.hook
	m.mu.RUnlock()
	if hook == nil {
		return nil
	}
	return hook(op, path)
}

func (m *Memory) logWrite(op, path string) {
	m.writes = append(m.writes, op+" "+path)
}

type memCond struct {
	field string
	value any
}

type memCollection struct {
	store    *Memory
	path     string
	conds    []memCond
	orderBy  string
	limit    int
	limitSet bool
}

func (c memCollection) Path() string { return c.path }

func (c memCollection) Doc(id string) DocumentRef {
	return memDocument{store: c.store, path: c.path + "/" + id}
}

func (c memCollection) NewDoc() DocumentRef {
	return c.Doc(uuid.NewString())
}

func (c memCollection) Add(ctx context.Context, data map[string]any) (string, error) {
	doc := c.NewDoc()
	if err := doc.Set(ctx, data); err != nil {
		return "", err
	}
	return doc.ID(), nil
}

func (c memCollection) Documents(ctx context.Context) ([]Snapshot, error) {
	if !validCollectionPath(c.path) {
		return nil, ErrInvalidRef
	}
	if err := c.store.hookCall(OpList, c.path); err != nil {
		return nil, err
	}

	c.store.mu.RLock()
	var snaps []Snapshot
	prefix := c.path + "/"
	for path, data := range c.store.docs {
		id, ok := strings.CutPrefix(path, prefix)
		if !ok || strings.Contains(id, "/") {
			continue
		}
		if !c.matches(data) {
			continue
		}
		snaps = append(snaps, Snapshot{ID: id, Exists: true, Data: copyMap(data)})
	}
	c.store.mu.RUnlock()

	if c.orderBy != "" {
		field := c.orderBy
		sort.SliceStable(snaps, func(i, j int) bool {
			a, b := fmt.Sprint(snaps[i].Data[field]), fmt.Sprint(snaps[j].Data[field])
			if a != b {
				return a > b
			}
			return snaps[i].ID < snaps[j].ID
		})
	} else {
		sort.Slice(snaps, func(i, j int) bool { return snaps[i].ID < snaps[j].ID })
	}
	if c.limitSet && len(snaps) > c.limit {
		snaps = snaps[:c.limit]
	}
	return snaps, nil
}

func (c memCollection) matches(data map[string]any) bool {
	for _, cond := range c.conds {
		if !reflect.DeepEqual(data[cond.field], cond.value) {
			return false
		}
	}
	return true
}

func (c memCollection) Limit(n int) Query {
	c.limit = n
	c.limitSet = true
	return c
}

func (c memCollection) WhereEqual(field string, value any) Query {
	conds := make([]memCond, len(c.conds), len(c.conds)+1)
	copy(conds, c.conds)
	c.conds = append(conds, memCond{field: field, value: value})
	return c
}

func (c memCollection) OrderByDesc(field string) Query {
	c.orderBy = field
	return c
}

type memDocument struct {
	store *Memory
	path  string
}

func (d memDocument) ID() string {
	if i := strings.LastIndex(d.path, "/"); i >= 0 {
		return d.path[i+1:]
	}
	return d.path
}

func (d memDocument) Path() string { return d.path }

func (d memDocument) Collection(name string) CollectionRef {
	return memCollection{store: d.store, path: d.path + "/" + name}
}

func (d memDocument) Get(ctx context.Context) (Snapshot, error) {
	if !validDocumentPath(d.path) {
		return Snapshot{}, ErrInvalidRef
	}
	if err := d.store.hookCall(OpGet, d.path); err != nil {
		return Snapshot{}, err
	}
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()
	data, ok := d.store.docs[d.path]
	if !ok {
		return Snapshot{ID: d.ID()}, nil
	}
	return Snapshot{ID: d.ID(), Exists: true, Data: copyMap(data)}, nil
}

func (d memDocument) Set(ctx context.Context, data map[string]any) error {
	return d.write(OpSet, func(docs map[string]map[string]any) error {
		docs[d.path] = copyMap(data)
		return nil
	})
}

func (d memDocument) SetMerge(ctx context.Context, data map[string]any) error {
	return d.write(OpMerge, func(docs map[string]map[string]any) error {
		existing, ok := docs[d.path]
		if !ok {
			docs[d.path] = copyMap(data)
			return nil
		}
		docs[d.path] = mergeMaps(existing, data)
		return nil
	})
}

func (d memDocument) Update(ctx context.Context, data map[string]any) error {
	return d.write(OpUpdate, func(docs map[string]map[string]any) error {
		existing, ok := docs[d.path]
		if !ok {
			return fmt.Errorf("update %s: %w", d.path, ErrNotFound)
		}
		for field, value := range data {
			existing[field] = copyValue(value)
		}
		return nil
	})
}

func (d memDocument) Delete(ctx context.Context) error {
	return d.write(OpDelete, func(docs map[string]map[string]any) error {
		delete(docs, d.path)
		return nil
	})
}

func (d memDocument) write(op string, apply func(docs map[string]map[string]any) error) error {
	if !validDocumentPath(d.path) {
		return ErrInvalidRef
	}
	if err := d.store.hookCall(op, d.path); err != nil {
		return err
	}
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	if err := apply(d.store.docs); err != nil {
		return err
	}
	d.store.logWrite(op, d.path)
	return nil
}

type memBatch struct {
	store *Memory
	ops   []func(ctx context.Context) error
	err   error
}

func (b *memBatch) Set(doc DocumentRef, data map[string]any) {
	d, ok := doc.(memDocument)
	if !ok || d.store != b.store {
		b.err = ErrInvalidRef
		return
	}
	b.ops = append(b.ops, func(ctx context.Context) error { return d.Set(ctx, data) })
}

func (b *memBatch) Delete(doc DocumentRef) {
	d, ok := doc.(memDocument)
	if !ok || d.store != b.store {
		b.err = ErrInvalidRef
		return
	}
	b.ops = append(b.ops, func(ctx context.Context) error { return d.Delete(ctx) })
}

func (b *memBatch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	for _, op := range b.ops {
		if err := op(ctx); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
	}
	return nil
}

// validCollectionPath requires an odd number of non-empty segments.
func validCollectionPath(path string) bool {
	n, ok := segments(path)
	return ok && n%2 == 1
}

// validDocumentPath requires an even number of non-empty segments.
func validDocumentPath(path string) bool {
	n, ok := segments(path)
	return ok && n%2 == 0
}

func segments(path string) (int, bool) {
	if path == "" {
		return 0, false
	}
	parts := strings.Split(path, "/")
	for _, part := range parts {
		if part == "" {
			return 0, false
		}
	}
	return len(parts), true
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return copyMap(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = copyValue(item)
		}
		return out
	case []string:
		out := make([]string, len(x))
		copy(out, x)
		return out
	default:
		return v
	}
}

func mergeMaps(dst, src map[string]any) map[string]any {
	out := copyMap(dst)
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := out[k].(map[string]any); ok {
				out[k] = mergeMaps(existing, sub)
				continue
			}
		}
		out[k] = copyValue(v)
	}
	return out
}
