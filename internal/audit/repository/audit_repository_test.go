package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/registry/internal/audit/domain"
	apperrors "github.com/allisson/registry/internal/errors"
)

func TestPostgreSQLAuditRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		record := &auditDomain.Record{
			TenantID:     uuid.Must(uuid.NewV7()),
			Actor:        "bootstrap",
			Action:       auditDomain.ActionTokenIssued,
			ResourceType: auditDomain.ResourceTypeToken,
			ResourceID:   uuid.Must(uuid.NewV7()).String(),
			Details:      map[string]string{"subject": "ci-bot"},
			OccurredAt:   time.Now().UTC(),
		}

		mock.ExpectQuery("INSERT INTO audit_records").
			WithArgs(
				record.TenantID,
				record.Actor,
				record.Action,
				record.ResourceType,
				record.ResourceID,
				sqlmock.AnyArg(),
				record.OccurredAt,
			).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

		repo := NewPostgreSQLAuditRepository(db)
		err = repo.Create(ctx, record)

		require.NoError(t, err)
		assert.Equal(t, int64(42), record.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_InsertFailure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("INSERT INTO audit_records").
			WillReturnError(errors.New("connection refused"))

		repo := NewPostgreSQLAuditRepository(db)
		err = repo.Create(ctx, &auditDomain.Record{TenantID: uuid.Must(uuid.NewV7())})

		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})
}

func TestPostgreSQLAuditRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_NewestFirst", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		tenantID := uuid.Must(uuid.NewV7())
		occurredAt := time.Now().UTC()

		rows := sqlmock.NewRows([]string{
			"id", "tenant_id", "actor", "action", "resource_type", "resource_id", "details", "occurred_at",
		}).
			AddRow(int64(2), tenantID, "root", "auth.pat.revoked", "token", "t2", []byte(`{"revoked_by":"root"}`), occurredAt).
			AddRow(int64(1), tenantID, "bootstrap", "auth.pat.issued", "token", "t1", []byte(`{}`), occurredAt)

		mock.ExpectQuery("SELECT (.+) FROM audit_records").
			WithArgs(tenantID, 100).
			WillReturnRows(rows)

		repo := NewPostgreSQLAuditRepository(db)
		records, err := repo.List(ctx, tenantID, 100)

		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, int64(2), records[0].ID)
		assert.Equal(t, "auth.pat.revoked", records[0].Action)
		assert.Equal(t, map[string]string{"revoked_by": "root"}, records[0].Details)
		assert.Equal(t, int64(1), records[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_Empty", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		tenantID := uuid.Must(uuid.NewV7())
		mock.ExpectQuery("SELECT (.+) FROM audit_records").
			WithArgs(tenantID, 100).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "tenant_id", "actor", "action", "resource_type", "resource_id", "details", "occurred_at",
			}))

		repo := NewPostgreSQLAuditRepository(db)
		records, err := repo.List(ctx, tenantID, 100)

		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestMySQLAuditRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		record := &auditDomain.Record{
			TenantID:     uuid.Must(uuid.NewV7()),
			Actor:        "root",
			Action:       auditDomain.ActionBindingUpserted,
			ResourceType: auditDomain.ResourceTypeRoleBinding,
			ResourceID:   "npm-local",
			Details:      map[string]string{"subject": "deployer", "roles": "read,write"},
			OccurredAt:   time.Now().UTC(),
		}

		mock.ExpectExec("INSERT INTO audit_records").
			WithArgs(
				record.TenantID.String(),
				record.Actor,
				record.Action,
				record.ResourceType,
				record.ResourceID,
				sqlmock.AnyArg(),
				record.OccurredAt,
			).
			WillReturnResult(sqlmock.NewResult(7, 1))

		repo := NewMySQLAuditRepository(db)
		err = repo.Create(ctx, record)

		require.NoError(t, err)
		assert.Equal(t, int64(7), record.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMySQLAuditRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		tenantID := uuid.Must(uuid.NewV7())
		occurredAt := time.Now().UTC()

		rows := sqlmock.NewRows([]string{
			"id", "tenant_id", "actor", "action", "resource_type", "resource_id", "details", "occurred_at",
		}).
			AddRow(int64(1), tenantID.String(), "bootstrap", "auth.pat.issued", "token", "t1", []byte(`{"subject":"ci-bot"}`), occurredAt)

		mock.ExpectQuery("SELECT (.+) FROM audit_records").
			WithArgs(tenantID.String(), 50).
			WillReturnRows(rows)

		repo := NewMySQLAuditRepository(db)
		records, err := repo.List(ctx, tenantID, 50)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, tenantID, records[0].TenantID)
		assert.Equal(t, map[string]string{"subject": "ci-bot"}, records[0].Details)
	})
}
