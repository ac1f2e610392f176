package services

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"onboard/internal/apperr"
	"onboard/internal/auth"
	"onboard/internal/models"
	"onboard/internal/pagination"
)

type Users struct {
	db *gorm.DB
	lg *zap.SugaredLogger
}

func NewUsers(db *gorm.DB, lg *zap.SugaredLogger) *Users {
	return &Users{db: db, lg: lg}
}

type CreateUserInput struct {
	Email                  string  `json:"email" validate:"required,email"`
	Password               string  `json:"password" validate:"required,max=100"`
	FullName               *string `json:"full_name" validate:"omitempty,max=200"`
	IsActive               *bool   `json:"is_active"`
	PasswordChangeRequired *bool   `json:"password_change_required"`
}

type InviteUserInput struct {
	Email    string  `json:"email" validate:"required,email"`
	FullName *string `json:"full_name" validate:"omitempty,max=200"`
}

type UpdateUserInput struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,max=100"`
	FullName *string `json:"full_name" validate:"omitempty,max=200"`
	IsActive *bool   `json:"is_active"`
}

// Create registers a new account. The first user in the whole system gets the
// highest-privilege role and a pre-verified email; everyone after that starts
// as a tenant.
func (s *Users) Create(rc *auth.RequestContext, in CreateUserInput) (*models.User, error) {
	if !auth.IsStrongPassword(in.Password) {
		return nil, apperr.BadRequest(auth.StrengthMessage)
	}
	existing, err := s.FindByEmail(rc, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("User with this email already exists")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, apperr.Internal(err.Error())
	}
	isFirst := count == 0
	roleName := auth.RoleTenant
	if isFirst {
		roleName = auth.RoleSuperAdmin
	}
	role, err := s.roleByName(roleName)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err.Error())
	}
	user := models.User{
		Email:    in.Email,
		Password: hash,
		FullName: in.FullName,
		IsActive: true,
		RoleID:   &role.ID,
		Role:     role,
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.PasswordChangeRequired != nil {
		user.PasswordChangeRequired = *in.PasswordChangeRequired
	}
	if isFirst {
		now := time.Now()
		user.EmailVerifiedAt = &now
	}
	if err := s.db.Create(&user).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflict("User with this email already exists")
		}
		return nil, apperr.Internal(err.Error())
	}
	return &user, nil
}

// Invite provisions an account with a generated temporary password that the
// user must change on first login.
func (s *Users) Invite(rc *auth.RequestContext, in InviteUserInput) (*models.User, error) {
	existing, err := s.FindByEmail(rc, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("User with this email already exists")
	}
	role, err := s.roleByName(auth.RoleTenant)
	if err != nil {
		return nil, err
	}

	temp := auth.GenerateTempPassword()
	// TODO: deliver the temporary password by email instead of logging it.
	s.lg.Infow("invited user", "email", in.Email, "tempPassword", temp)

	hash, err := auth.HashPassword(temp)
	if err != nil {
		return nil, apperr.Internal(err.Error())
	}
	user := models.User{
		Email:                  in.Email,
		Password:               hash,
		FullName:               in.FullName,
		IsActive:               true,
		PasswordChangeRequired: true,
		RoleID:                 &role.ID,
		Role:                   role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflict("User with this email already exists")
		}
		return nil, apperr.Internal(err.Error())
	}
	return &user, nil
}

func (s *Users) FindAll(rc *auth.RequestContext, p pagination.Params) (pagination.Result[models.User], error) {
	var total int64
	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return pagination.Result[models.User]{}, apperr.Internal(err.Error())
	}
	var users []models.User
	err := s.db.Preload("Role").Order("created_at desc").
		Limit(p.Limit).Offset(p.Offset()).Find(&users).Error
	if err != nil {
		return pagination.Result[models.User]{}, apperr.Internal(err.Error())
	}
	return pagination.NewResult(users, total, p), nil
}

func (s *Users) FindByID(rc *auth.RequestContext, id string) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Role").First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User with ID " + id + " not found")
	}
	if err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return &user, nil
}

// FindByEmail returns nil without error when no account matches.
func (s *Users) FindByEmail(rc *auth.RequestContext, email string) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Role").First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return &user, nil
}

// Update applies a partial update. A password change is re-hashed and clears
// the forced-change flag.
func (s *Users) Update(rc *auth.RequestContext, id string, in UpdateUserInput) (*models.User, error) {
	user, err := s.FindByID(rc, id)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.FullName != nil {
		user.FullName = in.FullName
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.Password != nil && *in.Password != "" {
		if !auth.IsStrongPassword(*in.Password) {
			return nil, apperr.BadRequest(auth.StrengthMessage)
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, apperr.Internal(err.Error())
		}
		user.Password = hash
		user.PasswordChangeRequired = false
	}
	if err := s.db.Save(user).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflict("User with this email already exists")
		}
		return nil, apperr.Internal(err.Error())
	}
	return user, nil
}

func (s *Users) Remove(rc *auth.RequestContext, id string) error {
	user, err := s.FindByID(rc, id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(user).Error; err != nil {
		return apperr.Internal(err.Error())
	}
	return nil
}

func (s *Users) roleByName(name string) (*models.Role, error) {
	var role models.Role
	err := s.db.First(&role, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(name + " role not found. Please ensure roles are seeded.")
	}
	if err != nil {
		return nil, apperr.Internal(err.Error())
	}
	return &role, nil
}
