// Package relational implements the Credential Store on a SQL database via gorm.
package relational

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/accountd/internal/models"
	"github.com/charlesng35/accountd/internal/store"
)

// Store is the gorm-backed Credential Store.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Option customises the Store.
type Option func(*Store)

// WithClock overrides the clock used for updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New wraps an open gorm handle. InitSchema must have been run against it.
func New(db *gorm.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, errors.New("relational: db is required")
	}
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DB exposes the underlying handle for health probes.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&row).Error
	if err != nil {
		return nil, translate("find by email", err)
	}
	return row.toModel(), nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*models.User, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	var row userRow
	if err := s.db.WithContext(ctx).Take(&row, "id = ?", key).Error; err != nil {
		return nil, translate("find by id", err)
	}
	return row.toModel(), nil
}

func (s *Store) Insert(ctx context.Context, in store.NewUser) (*models.User, error) {
	now := s.now().UTC()
	row := userRow{
		Email:     in.Email,
		Username:  in.Username,
		Password:  in.PasswordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.VerificationCode != "" {
		code := in.VerificationCode
		row.VerificationCode = &code
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, translate("insert", err)
	}
	return row.toModel(), nil
}

func (s *Store) Update(ctx context.Context, id string, update store.UserUpdate) (*models.User, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, store.ErrNotFound
	}

	var row userRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&userRow{}).Where("id = ?", key).Updates(updateColumns(update, s.now().UTC()))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return tx.Take(&row, "id = ?", key).Error
	})
	if err != nil {
		return nil, translate("update", err)
	}
	return row.toModel(), nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	key, ok := parseID(id)
	if !ok {
		return store.ErrNotFound
	}
	result := s.db.WithContext(ctx).Where("id = ?", key).Delete(&userRow{})
	if result.Error != nil {
		return translate("delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&userRow{}).Error
	if err != nil {
		return translate("delete all", err)
	}
	return nil
}

func (s *Store) ListAll(ctx context.Context) ([]models.User, error) {
	var rows []userRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, translate("list", err)
	}
	users := make([]models.User, 0, len(rows))
	for i := range rows {
		users = append(users, *rows[i].toModel())
	}
	return users, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("relational: ping: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("relational: close: %w", err)
	}
	return sqlDB.Close()
}

func updateColumns(update store.UserUpdate, now time.Time) map[string]any {
	cols := map[string]any{"updated_at": now}
	if update.Email != nil {
		cols["email"] = *update.Email
	}
	if update.Username != nil {
		cols["username"] = *update.Username
	}
	if update.PasswordHash != nil {
		cols["password"] = *update.PasswordHash
	}
	if update.Verified != nil {
		cols["verified"] = *update.Verified
	}
	switch {
	case update.ClearCode:
		cols["verification_code"] = nil
	case update.VerificationCode != nil:
		cols["verification_code"] = *update.VerificationCode
	}
	return cols
}

func parseID(id string) (uint64, bool) {
	key, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	if err != nil || key == 0 {
		return 0, false
	}
	return key, true
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case isUniqueConstraintError(err):
		return fmt.Errorf("relational: %s: %w", op, store.ErrConflict)
	default:
		return fmt.Errorf("relational: %s: %w", op, err)
	}
}

func (r *userRow) toModel() *models.User {
	u := &models.User{
		ID:           strconv.FormatUint(r.ID, 10),
		Email:        r.Email,
		Username:     r.Username,
		PasswordHash: r.Password,
		Verified:     r.Verified,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.VerificationCode != nil {
		code := *r.VerificationCode
		u.VerificationCode = &code
	}
	return u
}
