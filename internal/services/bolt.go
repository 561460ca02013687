package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/trafer/advocacia-web/internal/models"
	bolt "go.etcd.io/bbolt"
)

var leadsBucket = []byte("leads")

// BoltDB stores contact-form leads in a BoltDB file. Leads are keyed by a bucket sequence so that
// iteration order matches submission order.
type BoltDB struct {
	db *bolt.DB
}

// NewBoltDB opens (or creates, with 0600 permissions) the database at path and makes sure the leads
// bucket exists.
func NewBoltDB(path string) (BoltDB, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return BoltDB{}, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(leadsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return BoltDB{}, fmt.Errorf("failed to create leads bucket: %w", err)
	}

	return BoltDB{db: db}, nil
}

// Close releases the database file.
func (b BoltDB) Close() error {
	return b.db.Close()
}

// AddLead stores a new lead. The stored ID is the bucket sequence number prefixed to lead.ID, and is
// returned to the caller.
func (b BoltDB) AddLead(_ context.Context, lead models.Lead) (string, error) {
	var newID string
	err := b.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(leadsBucket)
		if b == nil {
			return fmt.Errorf("bucket %s not found", leadsBucket)
		}

		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}
		newID = fmt.Sprintf("%08d-%s", seq, lead.ID)
		lead.ID = newID

		v, err := json.Marshal(lead)
		if err != nil {
			return fmt.Errorf("failed to marshal lead: %w", err)
		}

		return b.Put([]byte(newID), v)
	})
	if err != nil {
		return "", err
	}

	return newID, nil
}

// Leads returns every stored lead, newest first.
func (b BoltDB) Leads(context.Context) ([]models.Lead, error) {
	var leads []models.Lead
	err := b.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(leadsBucket)
		if b == nil {
			return nil
		}

		return b.ForEach(func(_, v []byte) error {
			var lead models.Lead
			if err := json.Unmarshal(v, &lead); err != nil {
				return fmt.Errorf("failed to unmarshal lead: %w", err)
			}
			leads = append(leads, lead)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(leads)
	return leads, nil
}
