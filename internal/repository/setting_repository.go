package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
)

// Setting keys stored in system_setting.
const (
	SettingMarketDataAPIKey = "market_data_api_key"
)

// ErrEncryptionKeyMissing is returned when an encrypted setting is written
// or read without a configured key.
var ErrEncryptionKeyMissing = errors.New("encryption key not configured")

// SettingRepository stores key/value system settings. Secret values are
// encrypted with fernet before they reach the database.
type SettingRepository struct {
	db   *sql.DB
	tx   *sql.Tx
	keys []*fernet.Key
}

// NewSettingRepository creates a new SettingRepository. encryptionKey is a
// base64 fernet key; it may be empty when no encrypted settings are used.
func NewSettingRepository(db *sql.DB, encryptionKey string) (*SettingRepository, error) {
	r := &SettingRepository{db: db}
	if encryptionKey != "" {
		keys, err := fernet.DecodeKeys(encryptionKey)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption key: %w", err)
		}
		r.keys = keys
	}
	return r, nil
}

// WithTx returns a new SettingRepository scoped to the provided transaction.
func (r *SettingRepository) WithTx(tx *sql.Tx) *SettingRepository {
	return &SettingRepository{
		db:   r.db,
		tx:   tx,
		keys: r.keys,
	}
}

func (r *SettingRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetSetting returns the plain value of a setting, decrypting it if needed.
// Returns apperrors.ErrSettingNotFound if the key was never stored.
func (r *SettingRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	var encrypted bool
	err := r.getQuerier().QueryRowContext(ctx,
		`SELECT value, encrypted FROM system_setting WHERE key = ?`, key,
	).Scan(&value, &encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query system_setting: %w", err)
	}

	if !encrypted {
		return value, nil
	}
	if len(r.keys) == 0 {
		return "", ErrEncryptionKeyMissing
	}

	// A negative TTL disables the token age check.
	plain := fernet.VerifyAndDecrypt([]byte(value), -1, r.keys)
	if plain == nil {
		return "", fmt.Errorf("failed to decrypt setting %s", key)
	}
	return string(plain), nil
}

// SetSetting stores a setting, encrypting the value when encrypt is true.
func (r *SettingRepository) SetSetting(ctx context.Context, key, value string, encrypt bool) error {
	stored := value
	if encrypt {
		if len(r.keys) == 0 {
			return ErrEncryptionKeyMissing
		}
		tok, err := fernet.EncryptAndSign([]byte(value), r.keys[0])
		if err != nil {
			return fmt.Errorf("failed to encrypt setting %s: %w", key, err)
		}
		stored = string(tok)
	}

	_, err := r.getQuerier().ExecContext(ctx, `
		INSERT INTO system_setting (key, value, encrypted, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			encrypted = excluded.encrypted,
			updated_at = excluded.updated_at
	`, key, stored, encrypt, formatTimestamp(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to store system_setting: %w", err)
	}
	return nil
}
