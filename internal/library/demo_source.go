package library

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// DemoSource reads demo user records from a flat JSON file: one record
// per user with a "library" field. The file is a migration artifact
// from an earlier JSON-backed deployment and is consulted read-only.
type DemoSource struct {
	path string
}

func NewDemoSource(path string) *DemoSource {
	return &DemoSource{path: path}
}

type demoUser struct {
	ID      string      `json:"_id"`
	AltID   string      `json:"id"`
	Email   string      `json:"email"`
	Library []demoEntry `json:"library"`
}

// demoEntry tolerates the identifier and title drift across demo
// record generations.
type demoEntry struct {
	ProductID string     `json:"productId"`
	ID        string     `json:"_id"`
	AltID     string     `json:"id"`
	Title     string     `json:"title"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Thumbnail string     `json:"thumbnail"`
	FilePath  string     `json:"filePath"`
	Purchased *time.Time `json:"purchasedAt"`
	Created   *time.Time `json:"createdAt"`
	Progress  float64    `json:"progress"`
}

// EntriesFor returns the demo library for the user keyed by userKey
// (the user's email in current records, a raw id in older ones). A
// user with no record yields no entries and no error.
func (d *DemoSource) EntriesFor(_ context.Context, userKey string) ([]Entry, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, fmt.Errorf("read demo records: %w", err)
	}

	var users []demoUser
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse demo records: %w", err)
	}

	for _, u := range users {
		if u.ID == userKey || u.AltID == userKey || u.Email == userKey {
			entries := make([]Entry, 0, len(u.Library))
			for _, item := range u.Library {
				entries = append(entries, item.toEntry())
			}
			return entries, nil
		}
	}
	return nil, nil
}

func (e demoEntry) toEntry() Entry {
	id := e.ProductID
	if id == "" {
		id = e.ID
	}
	if id == "" {
		id = e.AltID
	}

	title := e.Title
	if title == "" {
		title = e.Name
	}

	var at time.Time
	switch {
	case e.Purchased != nil:
		at = *e.Purchased
	case e.Created != nil:
		at = *e.Created
	}

	return Entry{
		ProductID:   id,
		Title:       title,
		Type:        e.Type,
		Thumbnail:   e.Thumbnail,
		FilePath:    e.FilePath,
		PurchasedAt: at,
		Progress:    e.Progress,
		Source:      SourceDemo,
	}
}
