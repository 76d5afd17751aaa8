package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"contactsapi/internal/http/middleware"
	"contactsapi/internal/model"
	"contactsapi/internal/repository"
	"contactsapi/internal/service"
)

// contactRequest is the JSON body for creating or fully replacing a contact.
type contactRequest struct {
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Birthday       model.Date `json:"birthday"`
	AdditionalData string     `json:"additional_data"`
}

// contactPatchRequest carries only the fields present in a partial update.
type contactPatchRequest struct {
	FirstName      *string     `json:"first_name"`
	LastName       *string     `json:"last_name"`
	Email          *string     `json:"email"`
	Phone          *string     `json:"phone"`
	Birthday       *model.Date `json:"birthday"`
	AdditionalData *string     `json:"additional_data"`
}

func validateContact(req contactRequest) (code, message string) {
	if strings.TrimSpace(req.FirstName) == "" || len(req.FirstName) > 50 {
		return "INVALID_FIRST_NAME", "first_name is required and must be at most 50 characters"
	}
	if strings.TrimSpace(req.LastName) == "" || len(req.LastName) > 50 {
		return "INVALID_LAST_NAME", "last_name is required and must be at most 50 characters"
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return "INVALID_EMAIL", "a valid email is required"
	}
	if len(req.Phone) > 50 {
		return "INVALID_PHONE", "phone must be at most 50 characters"
	}
	return "", ""
}

// CreateContact adds a contact to the caller's book.
func CreateContact(svc service.ContactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req contactRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if code, msg := validateContact(req); code != "" {
			return writeError(c, fiber.StatusUnprocessableEntity, code, msg)
		}

		contact, err := svc.Create(c.UserContext(), middleware.UserIDFromCtx(c), service.ContactInput{
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			Email:          req.Email,
			Phone:          req.Phone,
			Birthday:       req.Birthday,
			AdditionalData: req.AdditionalData,
		})
		if err != nil {
			if errors.Is(err, service.ErrContactEmailTaken) {
				return writeError(c, fiber.StatusConflict, "CONTACT_EMAIL_TAKEN", "contact with this email already exists")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(contact)
	}
}

// ListContacts returns a page of the caller's contacts (skip & limit).
func ListContacts(svc service.ContactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		skip, err := strconv.Atoi(c.Query("skip", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SKIP", "invalid skip")
		}

		res, err := svc.List(c.UserContext(), middleware.UserIDFromCtx(c), limit, skip)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// SearchContacts matches the query against names and email.
func SearchContacts(svc service.ContactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("query")
		if query == "" {
			return writeError(c, fiber.StatusBadRequest, "QUERY_REQUIRED", "query is required")
		}

		res, err := svc.Search(c.UserContext(), middleware.UserIDFromCtx(c), query)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// UpcomingBirthdays returns contacts with a birthday in the next N days.
func UpcomingBirthdays(svc service.ContactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		days, err := strconv.Atoi(c.Query("days", "7"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DAYS", "invalid days")
		}

		res, err := svc.UpcomingBirthdays(c.UserContext(), middleware.UserIDFromCtx(c), days)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetContact returns one contact from the caller's book.
func GetContact(svc service.ContactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		contact, err := svc.Get(c.UserContext(), middleware.UserIDFromCtx(c), id)
		if err != nil {
			if errors.Is(err, service.ErrContactNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "contact not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(contact)
	}
}

// ReplaceContact handles PUT: every field is written.
func ReplaceContact(svc service.ContactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req contactRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if code, msg := validateContact(req); code != "" {
			return writeError(c, fiber.StatusUnprocessableEntity, code, msg)
		}

		fields := repository.ContactFields{
			FirstName:      &req.FirstName,
			LastName:       &req.LastName,
			Email:          &req.Email,
			Phone:          &req.Phone,
			Birthday:       &req.Birthday,
			AdditionalData: &req.AdditionalData,
		}
		return applyContactUpdate(c, svc, id, fields)
	}
}

// PatchContact handles PATCH: only the provided fields change.
func PatchContact(svc service.ContactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req contactPatchRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.FirstName != nil && (strings.TrimSpace(*req.FirstName) == "" || len(*req.FirstName) > 50) {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_FIRST_NAME", "first_name must be 1-50 characters")
		}
		if req.LastName != nil && (strings.TrimSpace(*req.LastName) == "" || len(*req.LastName) > 50) {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_LAST_NAME", "last_name must be 1-50 characters")
		}
		if req.Email != nil && !strings.Contains(*req.Email, "@") {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_EMAIL", "a valid email is required")
		}

		fields := repository.ContactFields{
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			Email:          req.Email,
			Phone:          req.Phone,
			Birthday:       req.Birthday,
			AdditionalData: req.AdditionalData,
		}
		return applyContactUpdate(c, svc, id, fields)
	}
}

func applyContactUpdate(c *fiber.Ctx, svc service.ContactService, id string, fields repository.ContactFields) error {
	contact, err := svc.Update(c.UserContext(), middleware.UserIDFromCtx(c), id, fields)
	if err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "contact not found")
		}
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
	return c.JSON(contact)
}

// DeleteContact removes one contact from the caller's book.
func DeleteContact(svc service.ContactService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := svc.Delete(c.UserContext(), middleware.UserIDFromCtx(c), id); err != nil {
			if errors.Is(err, service.ErrContactNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "contact not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
