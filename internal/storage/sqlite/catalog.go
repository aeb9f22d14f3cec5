package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/slok/crxsync/internal/model"
)

// ListCreators returns the creators sorted by name.
func (r *Repository) ListCreators(ctx context.Context) ([]model.Creator, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, remote_id, name FROM creators ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("could not query creators: %w", err)
	}
	defer rows.Close()

	res := []model.Creator{}
	for rows.Next() {
		var c model.Creator
		if err := rows.Scan(&c.ID, &c.RemoteID, &c.Name); err != nil {
			return nil, fmt.Errorf("could not scan creator: %w", err)
		}
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return res, nil
}

// ReplaceCreators replaces all the creators.
func (r *Repository) ReplaceCreators(ctx context.Context, creators []model.Creator) error {
	return r.replace(ctx, "creators", len(creators), func(tx *sql.Tx, i int) error {
		c := creators[i]
		_, err := tx.ExecContext(ctx, `INSERT INTO creators (id, remote_id, name) VALUES (?, ?, ?)`, c.ID, c.RemoteID, c.Name)
		return err
	})
}

// ListContacts returns the contacts sorted by name.
func (r *Repository) ListContacts(ctx context.Context) ([]model.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, remote_id, first_name, last_name FROM contacts ORDER BY first_name, last_name, id`)
	if err != nil {
		return nil, fmt.Errorf("could not query contacts: %w", err)
	}
	defer rows.Close()

	res := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.RemoteID, &c.FirstName, &c.LastName); err != nil {
			return nil, fmt.Errorf("could not scan contact: %w", err)
		}
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return res, nil
}

// ReplaceContacts replaces all the contacts.
func (r *Repository) ReplaceContacts(ctx context.Context, contacts []model.Contact) error {
	return r.replace(ctx, "contacts", len(contacts), func(tx *sql.Tx, i int) error {
		c := contacts[i]
		_, err := tx.ExecContext(ctx, `INSERT INTO contacts (id, remote_id, first_name, last_name) VALUES (?, ?, ?, ?)`, c.ID, c.RemoteID, c.FirstName, c.LastName)
		return err
	})
}

func (r *Repository) replace(ctx context.Context, table string, n int, insert func(tx *sql.Tx, i int) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("could not delete %s: %w", table, err)
	}
	for i := 0; i < n; i++ {
		if err := insert(tx, i); err != nil {
			if isConstraintErr(err, "UNIQUE constraint failed") {
				return fmt.Errorf("duplicated entry in %s: %w", table, model.ErrAlreadyExists)
			}
			return fmt.Errorf("could not insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Replaced %d %s", n, table)
	return nil
}

const (
	prefLastSuccessAt     = "last_success_at"
	prefLastAttemptAt     = "last_attempt_at"
	prefLastError         = "last_error"
	prefOngoing           = "ongoing"
	prefPendingResourceID = "pending_resource_id"
	prefUserID            = "user_id"
	prefUserContactID     = "user_contact_id"
	prefDefaultCreatorID  = "default_creator_id"
)

// GetPreferences returns the preferences, missing values are zero values.
func (r *Repository) GetPreferences(ctx context.Context) (*model.Preferences, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM preferences`)
	if err != nil {
		return nil, fmt.Errorf("could not query preferences: %w", err)
	}
	defer rows.Close()

	kv := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("could not scan preference: %w", err)
		}
		kv[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	p := &model.Preferences{
		Status: model.SyncStatus{
			LastError: kv[prefLastError],
			Ongoing:   kv[prefOngoing] == "true",
		},
		PendingResourceID: kv[prefPendingResourceID],
		UserContactID:     kv[prefUserContactID],
	}

	if p.Status.LastSuccessAt, err = parseTimePref(kv[prefLastSuccessAt]); err != nil {
		return nil, err
	}
	if p.Status.LastAttemptAt, err = parseTimePref(kv[prefLastAttemptAt]); err != nil {
		return nil, err
	}
	if p.UserID, err = parseIntPref(kv[prefUserID]); err != nil {
		return nil, err
	}
	if p.DefaultCreatorID, err = parseIntPref(kv[prefDefaultCreatorID]); err != nil {
		return nil, err
	}

	return p, nil
}

// SavePreferences stores the preferences.
func (r *Repository) SavePreferences(ctx context.Context, p model.Preferences) error {
	kv := map[string]string{
		prefLastSuccessAt:     formatTimePref(p.Status.LastSuccessAt),
		prefLastAttemptAt:     formatTimePref(p.Status.LastAttemptAt),
		prefLastError:         p.Status.LastError,
		prefOngoing:           strconv.FormatBool(p.Status.Ongoing),
		prefPendingResourceID: p.PendingResourceID,
		prefUserID:            strconv.FormatInt(p.UserID, 10),
		prefUserContactID:     p.UserContactID,
		prefDefaultCreatorID:  strconv.FormatInt(p.DefaultCreatorID, 10),
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for k, v := range kv {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO preferences (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, v)
		if err != nil {
			return fmt.Errorf("could not store preference %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

func formatTimePref(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseTimePref(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time preference %q: %w", s, model.ErrNotValid)
	}
	return time.UnixMilli(ms).UTC(), nil
}

func parseIntPref(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid int preference %q: %w", s, model.ErrNotValid)
	}
	return v, nil
}
