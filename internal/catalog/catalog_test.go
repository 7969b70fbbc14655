package catalog

import (
	"context"
	"testing"

	"waguri-alarm/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.NewCatalogRepository(db, zap.NewNop())
	return NewService(repo, zap.NewNop()), mock
}

func expectEntitlements(mock sqlmock.Sqlmock, owned ...string) {
	rows := sqlmock.NewRows([]string{"product_id"})
	for _, id := range owned {
		rows.AddRow(id)
	}
	mock.ExpectQuery(`SELECT product_id FROM entitlements`).WillReturnRows(rows)
}

func TestCharacters_FreeAndPremium(t *testing.T) {
	svc, _ := setupService(t)

	chars := svc.Characters()
	require.NotEmpty(t, chars)

	assert.Equal(t, DefaultCharacterID, chars[0].ID)
	assert.False(t, chars[0].Premium())

	premium := 0
	for _, c := range chars {
		if c.Premium() {
			premium++
			assert.Equal(t, PremiumPackProduct, c.ProductID)
		}
	}
	assert.Greater(t, premium, 0)
}

func TestGetSelected_DefaultsWhenUnset(t *testing.T) {
	svc, mock := setupService(t)

	mock.ExpectQuery(`SELECT value FROM settings`).
		WithArgs("selected_character").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	character, err := svc.GetSelected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultCharacterID, character.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSelected_ReturnsStoredCharacter(t *testing.T) {
	svc, mock := setupService(t)

	mock.ExpectQuery(`SELECT value FROM settings`).
		WithArgs("selected_character").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("kaede"))

	character, err := svc.GetSelected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "kaede", character.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSelected_UnknownStoredIDFallsBackToDefault(t *testing.T) {
	svc, mock := setupService(t)

	mock.ExpectQuery(`SELECT value FROM settings`).
		WithArgs("selected_character").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("retired-character"))

	character, err := svc.GetSelected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultCharacterID, character.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelect_FreeCharacterNeedsNoEntitlement(t *testing.T) {
	svc, mock := setupService(t)

	mock.ExpectExec(`INSERT INTO settings`).
		WithArgs("selected_character", "waguri").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Select(context.Background(), "waguri")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelect_PremiumCharacterRequiresPurchase(t *testing.T) {
	svc, mock := setupService(t)

	expectEntitlements(mock)

	err := svc.Select(context.Background(), "kaede")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires product")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelect_PremiumCharacterAllowedAfterPurchase(t *testing.T) {
	svc, mock := setupService(t)

	expectEntitlements(mock, PremiumPackProduct)
	mock.ExpectExec(`INSERT INTO settings`).
		WithArgs("selected_character", "kaede").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Select(context.Background(), "kaede")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelect_UnknownCharacter(t *testing.T) {
	svc, _ := setupService(t)

	err := svc.Select(context.Background(), "nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown character")
}

func TestPurchase_RecordsEntitlement(t *testing.T) {
	svc, mock := setupService(t)

	mock.ExpectExec(`INSERT INTO entitlements`).
		WithArgs(PremiumPackProduct, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := svc.Purchase(context.Background(), PremiumPackProduct)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchase_UnknownProduct(t *testing.T) {
	svc, _ := setupService(t)

	err := svc.Purchase(context.Background(), "no-such-product")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown product")
}
