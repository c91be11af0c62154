// Package session owns the loaded dataset. A Dataset is immutable; Reload
// builds a replacement and swaps it in atomically, so readers never lock.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"northwind-analytics/internal/store"
	"northwind-analytics/internal/view"
)

// Source supplies the five tables.
type Source interface {
	LoadTables(ctx context.Context) (store.Tables, error)
}

var ErrNotLoaded = errors.New("session: no dataset loaded")

type Dataset struct {
	ID       uuid.UUID
	Store    *store.Store
	Views    *view.Views
	LoadedAt time.Time
}

// Full is the dataset's fact table.
func (d *Dataset) Full() view.View { return d.Views.Full() }

// NewDataset validates tables and composes the views.
func NewDataset(tables store.Tables) (*Dataset, error) {
	s, err := store.Load(tables)
	if err != nil {
		return nil, err
	}
	return &Dataset{
		ID:       uuid.New(),
		Store:    s,
		Views:    view.Build(s),
		LoadedAt: time.Now(),
	}, nil
}

type Session struct {
	current atomic.Pointer[Dataset]
	logger  *logrus.Logger
}

func New(logger *logrus.Logger) *Session {
	return &Session{logger: logger}
}

// Current returns the active dataset.
func (s *Session) Current() (*Dataset, error) {
	d := s.current.Load()
	if d == nil {
		return nil, ErrNotLoaded
	}
	return d, nil
}

// Reload loads src into a new dataset and swaps it in. On error the previous
// dataset stays active.
func (s *Session) Reload(ctx context.Context, src Source) (*Dataset, error) {
	tables, err := src.LoadTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	d, err := NewDataset(tables)
	if err != nil {
		return nil, err
	}
	prev := s.current.Swap(d)
	entry := s.logger.WithFields(logrus.Fields{
		"dataset": d.ID.String(),
		"rows":    d.Full().Len(),
	})
	if prev != nil {
		entry = entry.WithField("replaced", prev.ID.String())
	}
	entry.Info("dataset loaded")
	return d, nil
}
