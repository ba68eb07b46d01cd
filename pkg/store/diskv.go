package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"github.com/peterbourgon/diskv/v3"
	"github.com/rs/zerolog"

	"tableflip.dev/lostfound/pkg/errs"
)

// Config supplies where the disk store keeps its files.
type Config interface {
	BasePath() string
}

const docExt = ".json"

// Disk keeps each document as a JSON file. The file for document <id> in
// collection a/b/c is <base>/a/b/c/<id>.json, so nested collections sit in a
// directory next to their parent document.
type Disk struct {
	d        *diskv.Diskv
	basePath string
	clock    clock
	newID    func() string
}

var _ Store = (*Disk)(nil)

// Load opens the disk store at cfg.BasePath(), creating it if needed.
func Load(cfg Config) (*Disk, error) {
	if cfg == nil {
		return nil, errors.New("store: no config")
	}
	basePath, err := homedir.Expand(cfg.BasePath())
	if err != nil {
		return nil, fmt.Errorf("store: expand base path: %w", err)
	}
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	basePath = filepath.Clean(basePath)
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &Disk{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			TempDir:           basePath + ".tmp",
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			// Other processes write here too, so reads always go to disk.
			CacheSizeMax: 0,
		}),
		basePath: basePath,
		newID:    uuid.NewString,
	}, nil
}

// BasePath is the directory holding the documents.
func (s *Disk) BasePath() string {
	return s.basePath
}

func (s *Disk) Append(ctx context.Context, collection string, data map[string]any, serverTimestamps ...string) (Document, error) {
	if err := validCollection(collection); err != nil {
		return Document{}, err
	}
	doc := Document{ID: s.newID(), Data: cloneData(data)}
	stamp(doc.Data, serverTimestamps, s.clock.next())
	if err := s.write(collection, doc); err != nil {
		return Document{}, fmt.Errorf("store: append %s: %w", collection, err)
	}
	zerolog.Ctx(ctx).Debug().Str("collection", collection).Str("id", doc.ID).Msg("document appended")
	return doc, nil
}

func (s *Disk) Get(_ context.Context, collection, id string) (Document, error) {
	if err := validCollection(collection); err != nil {
		return Document{}, err
	}
	if err := validSegment(id); err != nil {
		return Document{}, errs.NotFoundError{Resource: collection + "/" + id}
	}
	key := toKey(collection, id)
	if !s.d.Has(key) {
		return Document{}, errs.NotFoundError{Resource: collection + "/" + id}
	}
	return s.read(key)
}

func (s *Disk) Update(ctx context.Context, collection, id string, fields map[string]any, serverTimestamps ...string) error {
	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	for k, v := range fields {
		doc.Data[k] = v
	}
	stamp(doc.Data, serverTimestamps, s.clock.next())
	if err := s.write(collection, doc); err != nil {
		return fmt.Errorf("store: update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Disk) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.Get(ctx, collection, id); err != nil {
		return err
	}
	nested := collection + "/" + id + "/"
	for key := range s.d.KeysPrefix(nested, ctx.Done()) {
		if err := s.d.Erase(key); err != nil {
			return fmt.Errorf("store: delete %s: %w", key, err)
		}
	}
	if err := s.d.Erase(toKey(collection, id)); err != nil {
		return fmt.Errorf("store: delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Disk) Query(ctx context.Context, q Query) (Snapshot, error) {
	if err := validCollection(q.Collection); err != nil {
		return nil, err
	}
	docs, err := s.list(ctx, q.Collection)
	if err != nil {
		return nil, err
	}
	return apply(docs, q), nil
}

// list reads every document directly in collection.
func (s *Disk) list(ctx context.Context, collection string) ([]Document, error) {
	dir := filepath.Join(s.basePath, filepath.FromSlash(collection))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: list %s: %w", collection, err)
	}
	docs := make([]Document, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), docExt) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), docExt)
		doc, err := s.read(toKey(collection, id))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			zerolog.Ctx(ctx).Warn().Err(err).Str("collection", collection).Str("id", id).Msg("skipping unreadable document")
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Disk) read(key string) (Document, error) {
	val, err := s.d.Read(key)
	if err != nil {
		return Document{}, err
	}
	data := map[string]any{}
	if err := json.Unmarshal(val, &data); err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", key, err)
	}
	pk := keyToPathTransform(key)
	return Document{ID: strings.TrimSuffix(pk.FileName, docExt), Data: data}, nil
}

func (s *Disk) write(collection string, doc Document) error {
	data, err := json.Marshal(doc.Data)
	if err != nil {
		return err
	}
	return s.d.Write(toKey(collection, doc.ID), data)
}

func toKey(collection, id string) string {
	return collection + "/" + id
}

func keyToPathTransform(key string) *diskv.PathKey {
	parts := strings.Split(key, "/")
	last := len(parts) - 1
	fileName := parts[last]
	if fileName != "" {
		fileName += docExt
	}
	return &diskv.PathKey{
		Path:     parts[:last],
		FileName: fileName,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	id := strings.TrimSuffix(pathKey.FileName, docExt)
	if len(pathKey.Path) == 0 {
		return id
	}
	return strings.Join(pathKey.Path, "/") + "/" + id
}
