package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, password, full_name, dob, gender, phone_number,
	email, role, avatar, is_active, created_at, deleted_at`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, username, password, full_name, dob, gender, phone_number,
			email, role, avatar, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.FullName,
		user.DOB,
		user.Gender,
		user.PhoneNumber,
		user.Email,
		user.Role,
		user.Avatar,
		user.IsActive,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	return r.getBy(ctx, "phone_number", phone)
}

func (r *userRepository) getBy(ctx context.Context, column string, value interface{}) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1 AND deleted_at IS NULL`, userColumns, column)
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, value); err != nil {
		return nil, noRows(err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, page repository.Page) ([]*model.User, int, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2`, userColumns)

	users := []*model.User{}
	if err := r.db.SelectContext(ctx, &users, query, page.Skip, page.Limit); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	return users, total, nil
}

func (r *userRepository) Search(ctx context.Context, term string, page repository.Page) ([]*model.User, int, error) {
	pattern := "%" + term + "%"
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE deleted_at IS NULL AND (full_name ILIKE $1 OR username ILIKE $1)
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`, userColumns)

	users := []*model.User{}
	if err := r.db.SelectContext(ctx, &users, query, pattern, page.Skip, page.Limit); err != nil {
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND (full_name ILIKE $1 OR username ILIKE $1)`,
		pattern); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET
			full_name = $1, dob = $2, gender = $3, phone_number = $4, email = $5,
			role = $6, avatar = $7, is_active = $8, password = $9
		WHERE id = $10 AND deleted_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query,
		user.FullName,
		user.DOB,
		user.Gender,
		user.PhoneNumber,
		user.Email,
		user.Role,
		user.Avatar,
		user.IsActive,
		user.PasswordHash,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *userRepository) SoftDelete(ctx context.Context, id uuid.UUID, ts time.Time) error {
	query := `UPDATE users SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, ts, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

type doctorRepository struct {
	db *sqlx.DB
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `INSERT INTO doctors (id, user_id, specialization) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, doctor.ID, doctor.UserID, doctor.Specialization)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create doctor profile: %w", err)
	}
	return nil
}

func (r *doctorRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	query := `SELECT id, user_id, specialization FROM doctors WHERE user_id = $1`
	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, query, userID); err != nil {
		return nil, noRows(err)
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context, page repository.Page) ([]*model.DoctorProfile, int, error) {
	type row struct {
		model.Doctor
		U model.User `db:"u"`
	}
	query := `
		SELECT d.id, d.user_id, d.specialization,
			u.id AS "u.id", u.username AS "u.username", u.password AS "u.password",
			u.full_name AS "u.full_name", u.dob AS "u.dob", u.gender AS "u.gender",
			u.phone_number AS "u.phone_number", u.email AS "u.email", u.role AS "u.role",
			u.avatar AS "u.avatar", u.is_active AS "u.is_active",
			u.created_at AS "u.created_at", u.deleted_at AS "u.deleted_at"
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		WHERE u.deleted_at IS NULL
		ORDER BY u.created_at DESC
		OFFSET $1 LIMIT $2`

	rows := []row{}
	if err := r.db.SelectContext(ctx, &rows, query, page.Skip, page.Limit); err != nil {
		return nil, 0, fmt.Errorf("failed to list doctors: %w", err)
	}

	profiles := make([]*model.DoctorProfile, 0, len(rows))
	for i := range rows {
		u := rows[i].U
		profiles = append(profiles, &model.DoctorProfile{
			Doctor: rows[i].Doctor,
			User:   &u,
		})
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM doctors d JOIN users u ON u.id = d.user_id WHERE u.deleted_at IS NULL`); err != nil {
		return nil, 0, fmt.Errorf("failed to count doctors: %w", err)
	}
	return profiles, total, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	query := `UPDATE doctors SET specialization = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, doctor.Specialization, doctor.ID)
	if err != nil {
		return fmt.Errorf("failed to update doctor profile: %w", err)
	}
	return nil
}
