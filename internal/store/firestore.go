package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore adapts a Cloud Firestore client to the Store port.
//
// The client's Collection and Doc methods return nil for empty or malformed
// path components; the adapter wraps those as invalid references that fail
// with ErrInvalidRef on first use instead of panicking.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore wraps an existing client. The caller keeps ownership of the
// client's lifecycle until Close is called on the returned store.
func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (f *Firestore) Collection(name string) CollectionRef {
	return &fsCollection{ref: f.client.Collection(name)}
}

func (f *Firestore) Batch() WriteBatch {
	return &fsBatch{client: f.client}
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

type fsCollection struct {
	ref *firestore.CollectionRef
}

func (c *fsCollection) Path() string {
	if c.ref == nil {
		return ""
	}
	return c.ref.Path
}

func (c *fsCollection) Doc(id string) DocumentRef {
	if c.ref == nil {
		return &fsDocument{}
	}
	return &fsDocument{ref: c.ref.Doc(id)}
}

func (c *fsCollection) NewDoc() DocumentRef {
	if c.ref == nil {
		return &fsDocument{}
	}
	return &fsDocument{ref: c.ref.NewDoc()}
}

func (c *fsCollection) Add(ctx context.Context, data map[string]any) (string, error) {
	if c.ref == nil {
		return "", ErrInvalidRef
	}
	ref, _, err := c.ref.Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("add to %s: %w", c.ref.Path, err)
	}
	return ref.ID, nil
}

func (c *fsCollection) Documents(ctx context.Context) ([]Snapshot, error) {
	if c.ref == nil {
		return nil, ErrInvalidRef
	}
	return collectSnapshots(c.ref.Documents(ctx))
}

func (c *fsCollection) Limit(n int) Query {
	if c.ref == nil {
		return errQuery{}
	}
	return fsQuery{q: c.ref.Limit(n)}
}

func (c *fsCollection) WhereEqual(field string, value any) Query {
	if c.ref == nil {
		return errQuery{}
	}
	// FieldPath spares us escaping rules for field names with spaces.
	return fsQuery{q: c.ref.WherePath(firestore.FieldPath{field}, "==", value)}
}

func (c *fsCollection) OrderByDesc(field string) Query {
	if c.ref == nil {
		return errQuery{}
	}
	return fsQuery{q: c.ref.OrderByPath(firestore.FieldPath{field}, firestore.Desc)}
}

type fsQuery struct {
	q firestore.Query
}

func (q fsQuery) Documents(ctx context.Context) ([]Snapshot, error) {
	return collectSnapshots(q.q.Documents(ctx))
}

func (q fsQuery) Limit(n int) Query {
	return fsQuery{q: q.q.Limit(n)}
}

func (q fsQuery) WhereEqual(field string, value any) Query {
	return fsQuery{q: q.q.WherePath(firestore.FieldPath{field}, "==", value)}
}

func (q fsQuery) OrderByDesc(field string) Query {
	return fsQuery{q: q.q.OrderByPath(firestore.FieldPath{field}, firestore.Desc)}
}

// errQuery stands in for queries rooted at an invalid reference.
type errQuery struct{}

func (errQuery) Documents(ctx context.Context) ([]Snapshot, error) { return nil, ErrInvalidRef }
func (e errQuery) Limit(n int) Query                               { return e }
func (e errQuery) WhereEqual(field string, value any) Query        { return e }
func (e errQuery) OrderByDesc(field string) Query                  { return e }

type fsDocument struct {
	ref *firestore.DocumentRef
}

func (d *fsDocument) ID() string {
	if d.ref == nil {
		return ""
	}
	return d.ref.ID
}

func (d *fsDocument) Path() string {
	if d.ref == nil {
		return ""
	}
	return d.ref.Path
}

func (d *fsDocument) Collection(name string) CollectionRef {
	if d.ref == nil {
		return &fsCollection{}
	}
	return &fsCollection{ref: d.ref.Collection(name)}
}

func (d *fsDocument) Get(ctx context.Context) (Snapshot, error) {
	if d.ref == nil {
		return Snapshot{}, ErrInvalidRef
	}
	snap, err := d.ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Snapshot{ID: d.ref.ID}, nil
		}
		return Snapshot{}, fmt.Errorf("get %s: %w", d.ref.Path, err)
	}
	return Snapshot{ID: snap.Ref.ID, Exists: snap.Exists(), Data: snap.Data()}, nil
}

func (d *fsDocument) Set(ctx context.Context, data map[string]any) error {
	if d.ref == nil {
		return ErrInvalidRef
	}
	if _, err := d.ref.Set(ctx, data); err != nil {
		return fmt.Errorf("set %s: %w", d.ref.Path, err)
	}
	return nil
}

func (d *fsDocument) SetMerge(ctx context.Context, data map[string]any) error {
	if d.ref == nil {
		return ErrInvalidRef
	}
	if _, err := d.ref.Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("merge %s: %w", d.ref.Path, err)
	}
	return nil
}

func (d *fsDocument) Update(ctx context.Context, data map[string]any) error {
	if d.ref == nil {
		return ErrInvalidRef
	}
	updates := make([]firestore.Update, 0, len(data))
	for field, value := range data {
		updates = append(updates, firestore.Update{
			FieldPath: firestore.FieldPath{field},
			Value:     value,
		})
	}
	if _, err := d.ref.Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("update %s: %w", d.ref.Path, ErrNotFound)
		}
		return fmt.Errorf("update %s: %w", d.ref.Path, err)
	}
	return nil
}

func (d *fsDocument) Delete(ctx context.Context) error {
	if d.ref == nil {
		return ErrInvalidRef
	}
	if _, err := d.ref.Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", d.ref.Path, err)
	}
	return nil
}

// fsBatch buffers operations and flushes them through a BulkWriter on
// Commit. Enqueue-time problems (foreign or invalid refs) are remembered
// and surfaced by Commit so the call sites stay append-only.
type fsBatch struct {
	client *firestore.Client
	ops    []fsBatchOp
	err    error
}

type fsBatchOp struct {
	set  bool
	ref  *firestore.DocumentRef
	data map[string]any
}

func (b *fsBatch) Set(doc DocumentRef, data map[string]any) {
	ref, err := b.resolve(doc)
	if err != nil {
		b.err = err
		return
	}
	b.ops = append(b.ops, fsBatchOp{set: true, ref: ref, data: data})
}

func (b *fsBatch) Delete(doc DocumentRef) {
	ref, err := b.resolve(doc)
	if err != nil {
		b.err = err
		return
	}
	b.ops = append(b.ops, fsBatchOp{ref: ref})
}

func (b *fsBatch) resolve(doc DocumentRef) (*firestore.DocumentRef, error) {
	d, ok := doc.(*fsDocument)
	if !ok || d.ref == nil {
		return nil, ErrInvalidRef
	}
	return d.ref, nil
}

func (b *fsBatch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	bw := b.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(b.ops))
	for _, op := range b.ops {
		var (
			job *firestore.BulkWriterJob
			err error
		)
		if op.set {
			job, err = bw.Set(op.ref, op.data)
		} else {
			job, err = bw.Delete(op.ref)
		}
		if err != nil {
			bw.End()
			return fmt.Errorf("enqueue batch write for %s: %w", op.ref.Path, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
	}
	return nil
}

func collectSnapshots(it *firestore.DocumentIterator) ([]Snapshot, error) {
	defer it.Stop()
	var snaps []Snapshot
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			return snaps, nil
		}
		if err != nil {
			return nil, fmt.Errorf("iterate documents: %w", err)
		}
		snaps = append(snaps, Snapshot{ID: doc.Ref.ID, Exists: true, Data: doc.Data()})
	}
}
