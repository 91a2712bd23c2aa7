package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/markusressel/pidctl/internal/loops"
	"github.com/markusressel/pidctl/internal/ui"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/exp/slices"
)

const (
	BucketTraces = "traces"
)

// Persistence stores recorded loop traces. Controller state is never persisted.
type Persistence interface {
	Init() error

	SaveTrace(loopId string, trace []loops.Sample) (err error)
	LoadTrace(loopId string) ([]loops.Sample, error)
	DeleteTrace(loopId string) (err error)
	// ListTraces returns the ids of all loops with a stored trace
	ListTraces() ([]string, error)
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	p := &persistence{
		dbPath: dbPath,
	}
	return p
}

func (p persistence) Init() (err error) {
	// get parent path of dbPath
	parentDir := filepath.Dir(p.dbPath)
	_, err = os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		// create directory
		ui.Info("Creating directory for db: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// SaveTrace saves the trace of the given loop, replacing any previous one
func (p persistence) SaveTrace(loopId string, trace []loops.Sample) (err error) {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	if trace == nil {
		trace = []loops.Sample{}
	}
	data, err := json.Marshal(trace)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketTraces))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		return b.Put([]byte(loopId), data)
	})
}

// LoadTrace loads the trace of the given loop, returning os.ErrNotExist if there is none
func (p persistence) LoadTrace(loopId string) ([]loops.Sample, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	var trace []loops.Sample
	corrupt := false
	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketTraces))
		if b == nil {
			return os.ErrNotExist
		}
		v := b.Get([]byte(loopId))
		if v == nil {
			return os.ErrNotExist
		}

		err := json.Unmarshal(v, &trace)
		if err != nil {
			// if we cannot read the saved data, delete it
			ui.Warning("Unable to unmarshal saved trace for %s: %v", loopId, err)
			err := b.Delete([]byte(loopId))
			if err != nil {
				ui.Error("Unable to delete corrupt data key %s: %v", loopId, err)
			}
			trace = nil
			corrupt = true
		}

		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil && corrupt {
		return nil, os.ErrNotExist
	}

	return trace, err
}

func (p persistence) DeleteTrace(loopId string) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketTraces))
		if b == nil {
			// no trace bucket yet
			return nil
		}
		v := b.Get([]byte(loopId))
		if v == nil {
			// no data for given key
			return nil
		}

		return b.Delete([]byte(loopId))
	})
}

func (p persistence) ListTraces() ([]string, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	var result []string
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketTraces))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			result = append(result, string(k))
			return nil
		})
	})
	slices.Sort(result)

	return result, err
}
