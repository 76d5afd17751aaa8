package repository

import (
	"context"

	"contactsapi/internal/model"
)

// ContactFields carries the mutable columns of a contact for updates.
// Nil pointers mean "leave unchanged" so PUT and PATCH share one method.
// Pointing AdditionalData at an empty string clears the stored value.
type ContactFields struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Phone          *string
	Birthday       *model.Date
	AdditionalData *string
}

// ContactRepository defines data access for contacts. Every operation is
// scoped to an owner; a contact belonging to another user behaves exactly
// like a missing row.
type ContactRepository interface {
	// Create inserts a new contact and returns the stored row.
	Create(ctx context.Context, contact *model.Contact) (*model.Contact, error)

	// FindByID returns the owner's contact by ID.
	FindByID(ctx context.Context, ownerID, id string) (*model.Contact, error)

	// FindByEmail returns the owner's contact with the given email address.
	FindByEmail(ctx context.Context, ownerID, email string) (*model.Contact, error)

	// List returns a page of the owner's contacts.
	List(ctx context.Context, ownerID string, pq PageQuery) (*PageResult[model.Contact], error)

	// Search matches the query against first name, last name and email.
	Search(ctx context.Context, ownerID, query string) ([]model.Contact, error)

	// UpcomingBirthdays returns contacts whose birthday falls within the
	// next days, including the year-wrap around December 31.
	UpcomingBirthdays(ctx context.Context, ownerID string, days int) ([]model.Contact, error)

	// Update applies the non-nil fields and returns the updated row.
	Update(ctx context.Context, ownerID, id string, fields ContactFields) (*model.Contact, error)

	// Delete removes the owner's contact by ID. Returns sql.ErrNoRows when
	// the row does not exist.
	Delete(ctx context.Context, ownerID, id string) error
}
