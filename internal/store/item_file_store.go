package store

import (
	"encoding/json"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"secretsession/internal/domain"
)

// ItemsFilename is the file an ItemFileStore keeps under its directory.
const ItemsFilename = "items.json"

// ItemFileStore persists items as one JSON file. With a passphrase the file
// is sealed with scrypt and XChaCha20-Poly1305.
type ItemFileStore struct {
	path       string
	passphrase string
	params     scryptParams
	mu         sync.Mutex
}

// NewItemFileStore returns a store backed by dir/items.json. An empty
// passphrase stores the file in the clear.
func NewItemFileStore(dir, passphrase string) *ItemFileStore {
	return &ItemFileStore{
		path:       filepath.Join(dir, ItemsFilename),
		passphrase: passphrase,
		params:     defaultScrypt,
	}
}

// Path returns the backing file.
func (s *ItemFileStore) Path() string { return s.path }

func (s *ItemFileStore) LoadItem(path domain.ObjectPath) (domain.StoredItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return domain.StoredItem{}, false, err
	}
	it, ok := items[path]
	return it, ok, nil
}

func (s *ItemFileStore) SaveItem(path domain.ObjectPath, item domain.StoredItem) error {
	if !path.IsValid() {
		return errors.Errorf("invalid item path %q", path)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	items[path] = cloneItem(item)
	return s.save(items)
}

func (s *ItemFileStore) ListItems() ([]domain.ObjectPath, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return nil, err
	}
	return sortedPaths(items), nil
}

func (s *ItemFileStore) load() (map[domain.ObjectPath]domain.StoredItem, error) {
	items := map[domain.ObjectPath]domain.StoredItem{}
	b, err := readFile(s.path)
	if err != nil || b == nil {
		return items, err
	}
	if s.passphrase != "" {
		if b, err = openEnvelope(s.passphrase, b); err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", s.path)
	}
	return items, nil
}

func (s *ItemFileStore) save(items map[domain.ObjectPath]domain.StoredItem) error {
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	if s.passphrase != "" {
		if b, err = sealEnvelope(s.passphrase, b, s.params); err != nil {
			return err
		}
	}
	return writeFile(s.path, b, 0o600)
}

var _ domain.ItemStore = (*ItemFileStore)(nil)
