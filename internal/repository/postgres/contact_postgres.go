package postgres

import (
	"context"
	"database/sql"

	"contactsapi/internal/model"
	"contactsapi/internal/repository"
)

const contactColumns = `id, owner_id, first_name, last_name, email, phone, birthday, COALESCE(additional_data, ''), created_at`

// ContactPostgres is a PostgreSQL implementation of repository.ContactRepository.
// Every query filters by owner_id so one user can never touch another
// user's rows.
type ContactPostgres struct {
	db *sql.DB
}

// NewContactPostgres creates a new ContactPostgres repository.
func NewContactPostgres(db *sql.DB) *ContactPostgres {
	return &ContactPostgres{db: db}
}

var _ repository.ContactRepository = (*ContactPostgres)(nil)

func scanContact(row interface{ Scan(...any) error }) (*model.Contact, error) {
	var c model.Contact
	if err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Birthday,
		&c.AdditionalData,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new contact row and returns the stored record.
func (r *ContactPostgres) Create(ctx context.Context, contact *model.Contact) (*model.Contact, error) {
	const q = `
		INSERT INTO contacts (id, owner_id, first_name, last_name, email, phone, birthday, additional_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING ` + contactColumns
	row := r.db.QueryRowContext(ctx, q,
		contact.ID,
		contact.OwnerID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.Phone,
		contact.Birthday.Time,
		contact.AdditionalData,
	)
	return scanContact(row)
}

// FindByID fetches the owner's contact by its ID.
func (r *ContactPostgres) FindByID(ctx context.Context, ownerID, id string) (*model.Contact, error) {
	const q = `SELECT ` + contactColumns + ` FROM contacts WHERE owner_id = $1 AND id = $2`
	return scanContact(r.db.QueryRowContext(ctx, q, ownerID, id))
}

// FindByEmail fetches the owner's contact with the given email address.
func (r *ContactPostgres) FindByEmail(ctx context.Context, ownerID, email string) (*model.Contact, error) {
	const q = `SELECT ` + contactColumns + ` FROM contacts WHERE owner_id = $1 AND email = $2`
	return scanContact(r.db.QueryRowContext(ctx, q, ownerID, email))
}

// List returns the owner's contacts using LIMIT/OFFSET pagination and a total count.
func (r *ContactPostgres) List(ctx context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.Contact], error) {
	const qCount = `SELECT COUNT(*) FROM contacts WHERE owner_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, ownerID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE owner_id = $1
		ORDER BY last_name ASC, first_name ASC, id ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, ownerID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Contact]{Items: items, Total: total}, nil
}

// Search matches the query case-insensitively against first name, last
// name and email.
func (r *ContactPostgres) Search(ctx context.Context, ownerID, query string) ([]model.Contact, error) {
	const q = `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE owner_id = $1
		  AND (first_name ILIKE '%' || $2 || '%'
		       OR last_name ILIKE '%' || $2 || '%'
		       OR email ILIKE '%' || $2 || '%')
		ORDER BY last_name ASC, first_name ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpcomingBirthdays compares month-day values so the year of birth is
// irrelevant. When the window crosses December 31 the range splits into
// the tail of this year plus the head of the next.
func (r *ContactPostgres) UpcomingBirthdays(ctx context.Context, ownerID string, days int) ([]model.Contact, error) {
	const q = `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE owner_id = $1
		  AND (
		    (to_char(CURRENT_DATE, 'MMDD') <= to_char(CURRENT_DATE + $2::int, 'MMDD')
		     AND to_char(birthday, 'MMDD') BETWEEN to_char(CURRENT_DATE, 'MMDD') AND to_char(CURRENT_DATE + $2::int, 'MMDD'))
		    OR
		    (to_char(CURRENT_DATE, 'MMDD') > to_char(CURRENT_DATE + $2::int, 'MMDD')
		     AND (to_char(birthday, 'MMDD') >= to_char(CURRENT_DATE, 'MMDD')
		          OR to_char(birthday, 'MMDD') <= to_char(CURRENT_DATE + $2::int, 'MMDD')))
		  )
		ORDER BY to_char(birthday, 'MMDD') ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update applies the non-nil fields via COALESCE and returns the updated row.
// additional_data follows the same convention as Create: an empty string
// stores NULL, so a patch can clear the column.
func (r *ContactPostgres) Update(ctx context.Context, ownerID, id string, fields repository.ContactFields) (*model.Contact, error) {
	const q = `
		UPDATE contacts SET
			first_name      = COALESCE($3, first_name),
			last_name       = COALESCE($4, last_name),
			email           = COALESCE($5, email),
			phone           = COALESCE($6, phone),
			birthday        = COALESCE($7, birthday),
			additional_data = CASE WHEN $8::text IS NULL THEN additional_data ELSE NULLIF($8::text, '') END
		WHERE owner_id = $1 AND id = $2
		RETURNING ` + contactColumns

	var birthday any
	if fields.Birthday != nil {
		birthday = fields.Birthday.Time
	}
	row := r.db.QueryRowContext(ctx, q,
		ownerID,
		id,
		fields.FirstName,
		fields.LastName,
		fields.Email,
		fields.Phone,
		birthday,
		fields.AdditionalData,
	)
	return scanContact(row)
}

// Delete removes the owner's contact by ID.
func (r *ContactPostgres) Delete(ctx context.Context, ownerID, id string) error {
	const q = `DELETE FROM contacts WHERE owner_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q, ownerID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
