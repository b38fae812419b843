package services

import (
	"context"

	"worklog/internal/core"
)

// Ports for the stores the services drive. Both the SQLite repository and
// the in-memory store satisfy them.
type (
	UserStore interface {
		CreateUser(ctx context.Context, u core.User) error
		GetUserByID(ctx context.Context, id string) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		ListUsers(ctx context.Context) ([]core.User, error)
		UpdateUser(ctx context.Context, u core.User) error
		UpdateUserPassword(ctx context.Context, id, passwordHash string) error
		// DeleteUser removes the user and cascades to the user's entries,
		// returning how many entries went with them.
		DeleteUser(ctx context.Context, id string) (int64, error)
	}

	EntryStore interface {
		CreateEntry(ctx context.Context, e core.TimeEntry) error
		GetEntry(ctx context.Context, id string) (core.TimeEntry, error)
		ListEntries(ctx context.Context) ([]core.TimeEntry, error)
		ListEntriesByUser(ctx context.Context, userID string) ([]core.TimeEntry, error)
		UpdateEntry(ctx context.Context, e core.TimeEntry) error
		DeleteEntry(ctx context.Context, id string) error
	}

	// EntryEventPublisher feeds the timesheet export pipeline. A nil
	// publisher disables exporting; publish failures never fail the
	// originating request.
	EntryEventPublisher interface {
		PublishEntrySync(ctx context.Context, id string) error
		PublishEntryDelete(ctx context.Context, id string) error
	}
)
