// Package user manages clinic accounts and doctor profiles.
package user

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
	"github.com/dermaclinic/clinic-api/pkg/errors"
	"github.com/dermaclinic/clinic-api/pkg/logger"
	"github.com/dermaclinic/clinic-api/pkg/security"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context, page repository.Page) ([]*model.User, int, error)
	Search(ctx context.Context, term string, page repository.Page) ([]*model.User, int, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error

	CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error)
	ListDoctors(ctx context.Context, page repository.Page) ([]*model.DoctorProfile, int, error)
	UpdateDoctor(ctx context.Context, userID uuid.UUID, specialization *string) (*model.Doctor, error)
}

type service struct {
	users   repository.UserRepository
	doctors repository.DoctorRepository
	hasher  security.PasswordHasher
	logger  *logger.Logger
}

func NewService(
	users repository.UserRepository,
	doctors repository.DoctorRepository,
	hasher security.PasswordHasher,
	log *logger.Logger,
) Service {
	return &service{
		users:   users,
		doctors: doctors,
		hasher:  hasher,
		logger:  log,
	}
}

// Create registers an account. Username, email and phone number must all
// be unique among non-deleted users. Accounts with the DOCTOR role also
// get an empty professional profile.
func (s *service) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if err := s.checkUnique(ctx, req.Username, req.Email, req.PhoneNumber); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errors.Validation("password does not meet requirements", nil)
	}

	u := &model.User{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
		FullName:     req.FullName,
		DOB:          req.DOB,
		Gender:       req.Gender,
		PhoneNumber:  req.PhoneNumber,
		Email:        strings.ToLower(req.Email),
		Role:         req.Role,
		Avatar:       req.Avatar,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.Conflict("username, email or phone number already in use")
		}
		return nil, errors.Internal(err)
	}

	if u.Role == model.RoleDoctor {
		doc := &model.Doctor{ID: uuid.New(), UserID: u.ID}
		if err := s.doctors.Create(ctx, doc); err != nil {
			return nil, errors.Internal(err)
		}
	}
	s.logger.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *service) checkUnique(ctx context.Context, username, emailAddr, phone string) error {
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return errors.Internal(err)
	}
	if existing != nil {
		return errors.Conflict("username already in use")
	}
	existing, err = s.users.GetByEmail(ctx, strings.ToLower(emailAddr))
	if err != nil {
		return errors.Internal(err)
	}
	if existing != nil {
		return errors.Conflict("email already in use")
	}
	existing, err = s.users.GetByPhone(ctx, phone)
	if err != nil {
		return errors.Internal(err)
	}
	if existing != nil {
		return errors.Conflict("phone number already in use")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if u == nil {
		return nil, errors.NotFound("user")
	}
	return u, nil
}

func (s *service) List(ctx context.Context, page repository.Page) ([]*model.User, int, error) {
	users, total, err := s.users.List(ctx, page)
	if err != nil {
		return nil, 0, errors.Internal(err)
	}
	return users, total, nil
}

func (s *service) Search(ctx context.Context, term string, page repository.Page) ([]*model.User, int, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx, page)
	}
	users, total, err := s.users.Search(ctx, term, page)
	if err != nil {
		return nil, 0, errors.Internal(err)
	}
	return users, total, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.DOB != nil {
		u.DOB = req.DOB
	}
	if req.Gender != nil {
		u.Gender = req.Gender
	}
	if req.PhoneNumber != nil {
		u.PhoneNumber = *req.PhoneNumber
	}
	if req.Email != nil {
		u.Email = strings.ToLower(*req.Email)
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.Avatar != nil {
		u.Avatar = req.Avatar
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := s.users.Update(ctx, u); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.Conflict("email or phone number already in use")
		}
		return nil, errors.Internal(err)
	}
	return u, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.users.SoftDelete(ctx, id, time.Now()); err != nil {
		return errors.Internal(err)
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

func (s *service) CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	u, err := s.Get(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if u.Role != model.RoleDoctor {
		return nil, errors.Conflict("user does not have the DOCTOR role")
	}

	existing, err := s.doctors.GetByUser(ctx, req.UserID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if existing != nil {
		return nil, errors.Conflict("doctor profile already exists")
	}

	doc := &model.Doctor{
		ID:             uuid.New(),
		UserID:         req.UserID,
		Specialization: req.Specialization,
	}
	if err := s.doctors.Create(ctx, doc); err != nil {
		return nil, errors.Internal(err)
	}
	return doc, nil
}

func (s *service) ListDoctors(ctx context.Context, page repository.Page) ([]*model.DoctorProfile, int, error) {
	doctors, total, err := s.doctors.List(ctx, page)
	if err != nil {
		return nil, 0, errors.Internal(err)
	}
	return doctors, total, nil
}

func (s *service) UpdateDoctor(ctx context.Context, userID uuid.UUID, specialization *string) (*model.Doctor, error) {
	doc, err := s.doctors.GetByUser(ctx, userID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if doc == nil {
		return nil, errors.NotFound("doctor")
	}
	if specialization != nil {
		doc.Specialization = specialization
	}
	if err := s.doctors.Update(ctx, doc); err != nil {
		return nil, errors.Internal(err)
	}
	return doc, nil
}
