package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"contactsapi/internal/cache"
	"contactsapi/internal/model"
	"contactsapi/internal/repository"
)

var (
	ErrContactNotFound   = errors.New("contact not found")
	ErrContactEmailTaken = errors.New("contact with this email already exists")
	ErrIDRequired        = errors.New("id is required")
)

const defaultBirthdayWindowDays = 7

// ContactInput carries the fields accepted when creating a contact.
type ContactInput struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Birthday       model.Date
	AdditionalData string
}

// ContactListResult is the service-level DTO for paginated contacts.
type ContactListResult struct {
	Items []model.Contact `json:"data"`
	Total int             `json:"total"`
}

// ContactService defines the contact-book use cases. Every operation is
// scoped to the calling user's ID.
type ContactService interface {
	// Create adds a contact, rejecting a duplicate email within the
	// owner's book.
	Create(ctx context.Context, ownerID string, in ContactInput) (*model.Contact, error)

	// List returns a page of the owner's contacts.
	List(ctx context.Context, ownerID string, limit, offset int) (*ContactListResult, error)

	// Get returns a single contact, served cache-aside from Redis.
	Get(ctx context.Context, ownerID, id string) (*model.Contact, error)

	// Search matches the query against names and email.
	Search(ctx context.Context, ownerID, query string) ([]model.Contact, error)

	// UpcomingBirthdays returns contacts with a birthday in the next
	// days (default window when days <= 0).
	UpcomingBirthdays(ctx context.Context, ownerID string, days int) ([]model.Contact, error)

	// Update applies the non-nil fields to the contact.
	Update(ctx context.Context, ownerID, id string, fields repository.ContactFields) (*model.Contact, error)

	// Delete removes the contact.
	Delete(ctx context.Context, ownerID, id string) error
}

// contactService is a concrete implementation of ContactService.
type contactService struct {
	contacts repository.ContactRepository
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewContactService constructs a new ContactService.
func NewContactService(contacts repository.ContactRepository, c cache.Cache, cacheTTL time.Duration) ContactService {
	return &contactService{contacts: contacts, cache: c, cacheTTL: cacheTTL}
}

func contactCacheKey(ownerID, id string) string {
	return "contact:" + ownerID + ":" + id
}

func (s *contactService) Create(ctx context.Context, ownerID string, in ContactInput) (*model.Contact, error) {
	existing, err := s.contacts.FindByEmail(ctx, ownerID, in.Email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrContactEmailTaken
	}

	contact, err := s.contacts.Create(ctx, &model.Contact{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		Phone:          in.Phone,
		Birthday:       in.Birthday,
		AdditionalData: in.AdditionalData,
	})
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return contact, nil
}

// List returns paginated contacts without exposing repository types.
func (s *contactService) List(ctx context.Context, ownerID string, limit, offset int) (*ContactListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.contacts.List(ctx, ownerID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ContactListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *contactService) Get(ctx context.Context, ownerID, id string) (*model.Contact, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	if raw, err := s.cache.Get(ctx, contactCacheKey(ownerID, id)); err == nil {
		var c model.Contact
		if err := json.Unmarshal([]byte(raw), &c); err == nil {
			return &c, nil
		}
	}

	contact, err := s.contacts.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(contact); err == nil {
		_ = s.cache.Set(ctx, contactCacheKey(ownerID, id), string(payload), s.cacheTTL)
	}
	return contact, nil
}

func (s *contactService) Search(ctx context.Context, ownerID, query string) ([]model.Contact, error) {
	return s.contacts.Search(ctx, ownerID, query)
}

func (s *contactService) UpcomingBirthdays(ctx context.Context, ownerID string, days int) ([]model.Contact, error) {
	if days <= 0 {
		days = defaultBirthdayWindowDays
	}
	return s.contacts.UpcomingBirthdays(ctx, ownerID, days)
}

func (s *contactService) Update(ctx context.Context, ownerID, id string, fields repository.ContactFields) (*model.Contact, error) {
	if id == "" {
		return nil, ErrIDRequired
	}

	contact, err := s.contacts.Update(ctx, ownerID, id, fields)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}

	_ = s.cache.Delete(ctx, contactCacheKey(ownerID, id))
	return contact, nil
}

func (s *contactService) Delete(ctx context.Context, ownerID, id string) error {
	if id == "" {
		return ErrIDRequired
	}

	if err := s.contacts.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrContactNotFound
		}
		return err
	}

	_ = s.cache.Delete(ctx, contactCacheKey(ownerID, id))
	return nil
}
