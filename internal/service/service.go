// Package service implements the entity services sitting between the
// storage gateway and the application state. Every mutation re-reads
// the entire collection, mutates it in memory, and writes the entire
// collection back (last-writer-wins; see storage.Gateway).
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/megactek/productivity-management/internal/storage"
)

// Entity collection names as persisted through the storage gateway.
const (
	entityTodos             = "todos"
	entityProjects          = "projects"
	entityNotes             = "notes"
	entityNotifications     = "notifications"
	entitySettings          = "settings"
	entityNotificationPrefs = "notification_preferences"
)

// readCollection loads an entire entity collection. Reads never fail:
// a storage miss resolves to an empty collection, and any other read
// or decode failure is absorbed with a warning so callers never block
// on a read error.
func readCollection[T any](ctx context.Context, gw *storage.Gateway, entity string) []T {
	data, err := gw.Read(ctx, entity, "")
	if err != nil {
		if !storage.IsNotFound(err) {
			log.Printf("service: reading %s degraded to empty collection: %v", entity, err)
		}
		return []T{}
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		log.Printf("service: decoding %s degraded to empty collection: %v", entity, err)
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// writeCollection replaces an entire entity collection.
func writeCollection[T any](ctx context.Context, gw *storage.Gateway, entity string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", entity, err)
	}
	return gw.Write(ctx, entity, "", data)
}

// readSingleton loads a singleton document, resolving any read failure
// to the provided default.
func readSingleton[T any](ctx context.Context, gw *storage.Gateway, entity string, def T) T {
	data, err := gw.Read(ctx, entity, "")
	if err != nil {
		if !storage.IsNotFound(err) {
			log.Printf("service: reading %s degraded to default: %v", entity, err)
		}
		return def
	}
	out := def
	if err := json.Unmarshal(data, &out); err != nil {
		log.Printf("service: decoding %s degraded to default: %v", entity, err)
		return def
	}
	return out
}

// writeSingleton replaces a singleton document.
func writeSingleton[T any](ctx context.Context, gw *storage.Gateway, entity string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", entity, err)
	}
	return gw.Write(ctx, entity, "", data)
}
